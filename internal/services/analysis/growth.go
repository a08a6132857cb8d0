package analysis

import "github.com/alevtelles/agente-crewai-mercado-pix/internal/models"

// GrowthMetrics compares the current period with a previous one.
//
// With no previous data it returns the "cannot compute" indicator set. When
// previous data is supplied it still returns fixed example figures: no
// comparison is computed until historical storage exists.
// TODO: derive volume/value/ticket growth from current vs previous totals once a history source is wired.
func (s *Service) GrowthMetrics(current, previous *models.PixSummary) models.GrowthMetrics {
	if previous == nil {
		return models.GrowthMetrics{
			"crescimento": "Dados históricos não disponíveis",
			"tendência":   "Impossível calcular sem dados comparativos",
		}
	}

	return models.GrowthMetrics{
		"crescimento_volume":    "8.5%",
		"crescimento_valor":     "12.3%",
		"variação_ticket_medio": "3.8%",
		"tendência":             "Crescimento acelerado",
		"nota":                  "Cálculos baseados em dados simulados",
	}
}
