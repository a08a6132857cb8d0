package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

// RunStage executes one stage in isolation. The result is always non-nil;
// on failure its Error is set and returned as the error as well.
func (o *Orchestrator) RunStage(ctx context.Context, stage string, args models.StageArgs) (res *models.StageResult, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	res = &models.StageResult{Stage: models.StageName(strings.TrimSpace(stage))}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Str("stage", stage).Str("panic", fmt.Sprintf("%v", r)).Msg("Stage run panicked")
			res = &models.StageResult{
				Stage: res.Stage,
				Error: models.NewError(models.ErrFatal, res.Stage, fmt.Sprintf("Erro na execução da etapa: %v", r)),
			}
		}
		if res.Error != nil {
			err = res.Error
		}
	}()

	name, perr := models.ParseStageName(stage)
	if perr != nil {
		res.Error = models.AsError(perr)
		return res, nil
	}
	res.Stage = name

	var stageErr error
	switch name {
	case models.StagePix:
		var location models.Location
		var period models.Period
		if location, period, stageErr = o.stageLocation(args); stageErr == nil {
			res.Summary, stageErr = o.pix.FetchSummary(ctx, location, period)
		}

	case models.StageMarket:
		keywords := args.Keywords
		if keywords == "" {
			keywords = o.defaults.StageKeywords
		}
		limit := args.Limit
		if limit <= 0 {
			limit = o.defaults.MarketLimit
		}
		res.Market, stageErr = o.market.Bundle(ctx, keywords, limit)

	case models.StageAnalysis:
		if args.Summary == nil {
			stageErr = models.NewError(models.ErrInvalidInput, models.StageAnalysis, "dados Pix são obrigatórios para a análise")
			break
		}
		res.Analysis, stageErr = o.analyzer.Analyze(ctx, args.Summary, args.Market)

	case models.StageReport:
		var location models.Location
		var period models.Period
		if location, period, stageErr = o.stageLocation(args); stageErr == nil {
			res.Report, stageErr = o.reports.Assemble(ctx, location, period, args.Summary, args.Market, args.Analysis)
		}
	}

	if stageErr != nil {
		res.Error = models.AsError(stageErr)
		if res.Error.Stage == "" {
			res.Error = res.Error.WithStage(name)
		}
		o.logger.Warn().
			Str("stage", name.String()).
			Str("kind", string(res.Error.Kind)).
			Msg(res.Error.Message)
		return res, nil
	}

	o.logger.Info().Str("stage", name.String()).Msg("Stage run completed")
	return res, nil
}

// stageLocation resolves the location and period of a stage run, applying defaults.
func (o *Orchestrator) stageLocation(args models.StageArgs) (models.Location, models.Period, error) {
	name := strings.TrimSpace(args.Location)
	if args.Location == "" {
		name = o.defaults.Location
	}

	kind := o.defaults.Kind
	if args.Kind != "" {
		parsed, err := models.ParseLocationKind(string(args.Kind))
		if err != nil {
			return models.Location{}, models.Period{}, err
		}
		kind = parsed
	}

	raw := strings.TrimSpace(args.Period)
	if raw == "" {
		raw = o.defaults.Period
	}
	period, err := models.ParsePeriod(raw)
	if err != nil {
		return models.Location{}, models.Period{}, err
	}

	location := models.Location{Name: name, Kind: kind}
	if err := location.Validate(); err != nil {
		return models.Location{}, models.Period{}, err
	}
	return location, period, nil
}
