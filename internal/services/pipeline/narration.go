package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/interfaces"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/templates"
)

// narration asks the text-generation capability for a short commentary on
// each stage output. Commentary is best effort: failures are logged and the
// stage is left without one.
type narration struct {
	narrator     interfaces.Narrator
	templatesDir string
	logger       arbor.ILogger
}

// promptData is the template context of a narration prompt.
type promptData struct {
	Location string
	Period   string
	Keywords string
	Data     string
}

func (n *narration) commentary(ctx context.Context, result *models.PipelineResult) map[models.StageName]string {
	outputs := map[models.StageName]any{}
	if result.Summary != nil {
		outputs[models.StagePix] = result.Summary
	}
	if result.Market != nil {
		outputs[models.StageMarket] = result.Market
	}
	if result.Analysis != nil {
		outputs[models.StageAnalysis] = result.Analysis
	}
	if result.Report != nil {
		outputs[models.StageReport] = result.Report
	}

	out := map[models.StageName]string{}
	for _, stage := range models.Stages {
		output, ok := outputs[stage]
		if !ok {
			continue
		}
		text, err := n.narrate(ctx, stage, result, output)
		if err != nil {
			n.logger.Warn().Str("stage", stage.String()).Err(err).Msg("Stage commentary skipped")
			continue
		}
		if text != "" {
			out[stage] = text
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (n *narration) narrate(ctx context.Context, stage models.StageName, result *models.PipelineResult, output any) (string, error) {
	tmpl, err := templates.GetTemplate(templates.NarrationName(stage.String()), n.templatesDir)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", err
	}

	task, err := tmpl.Render(promptData{
		Location: result.Location.Name,
		Period:   result.Period.String(),
		Keywords: result.Keywords,
		Data:     string(data),
	})
	if err != nil {
		return "", err
	}

	text, err := n.narrator.Narrate(ctx, interfaces.NarrationRequest{
		Role:        tmpl.SystemInstruction(),
		Task:        task,
		Temperature: tmpl.Temperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
