package llm

import (
	"context"
	"strings"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/interfaces"
)

var _ interfaces.Narrator = (*ProviderFactory)(nil)

// Narrate sends the task as a single user message with the role as system
// instruction and returns the trimmed text.
func (f *ProviderFactory) Narrate(ctx context.Context, req interfaces.NarrationRequest) (string, error) {
	resp, err := f.GenerateContent(ctx, &ContentRequest{
		Messages:          []interfaces.Message{{Role: "user", Content: req.Task}},
		Model:             req.Model,
		Temperature:       req.Temperature,
		SystemInstruction: req.Role,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}
