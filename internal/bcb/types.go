// Package bcb provides a client for the Banco Central do Brasil Olinda
// open-data service (Pix_DadosAbertos) and aggregates its Pix transaction
// statistics into summaries.
package bcb

import (
	"fmt"
	"time"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

const (
	// EntityMunicipality is the per-municipality OData function.
	EntityMunicipality = "TransacoesPixPorMunicipio"
	// EntityState is the per-state OData entity set.
	EntityState = "TransacoesPixPorEstado"

	// MaxDetails caps the provenance listing kept in a summary.
	MaxDetails = 5

	notFoundGuidance = "Tente períodos passados (ex: 2024-01) e nomes em maiúsculo (ex: SAO PAULO)"
)

// odataResponse is the JSON envelope returned by Olinda.
type odataResponse struct {
	Value []models.TransactionRecord `json:"value"`
}

// APIError represents a non-2xx response from the Olinda service.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("BCB API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// RateLimitError is returned when the local limiter could not grant a request.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("BCB rate limit exceeded, retry after %v", e.RetryAfter)
}
