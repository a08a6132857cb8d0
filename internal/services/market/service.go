// Package market produces the market context bundle consumed by the analysis
// and report stages. News items and macro indicators are synthesized until a
// real data source is wired behind the same interface.
package market

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/interfaces"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

// DefaultLimit is the number of context items returned when no limit is given.
const DefaultLimit = 5

// highRelevanceCount is how many leading sources are tagged high relevance.
const highRelevanceCount = 2

// DefaultSources is the fixed pool of news sources, in priority order.
var DefaultSources = []string{
	"InfoMoney",
	"Valor Econômico",
	"Estadão Economia",
	"G1 Economia",
	"UOL Economia",
}

// Service synthesizes market bundles.
type Service struct {
	sources []string
	logger  arbor.ILogger
}

var _ interfaces.MarketProvider = (*Service)(nil)

// NewService creates a market service over the given source pool (DefaultSources if empty).
func NewService(sources []string, logger arbor.ILogger) *Service {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	return &Service{
		sources: append([]string(nil), sources...),
		logger:  logger,
	}
}

// Bundle returns up to limit context items for keywords plus the macro indicators.
// keywords is opaque text and is not validated.
func (s *Service) Bundle(ctx context.Context, keywords string, limit int) (*models.MarketBundle, error) {
	items := s.SearchNews(keywords, limit)

	bundle := &models.MarketBundle{
		Query:      keywords,
		Items:      items,
		Total:      len(items),
		Indicators: s.Indicators(),
	}

	if s.logger != nil {
		s.logger.Debug().
			Str("keywords", keywords).
			Int("items", bundle.Total).
			Msg("Market bundle synthesized")
	}

	return bundle, nil
}

// SearchNews synthesizes news-like items from the source pool.
func (s *Service) SearchNews(query string, limit int) []models.ContextItem {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > len(s.sources) {
		limit = len(s.sources)
	}

	items := make([]models.ContextItem, 0, limit)
	for i, src := range s.sources[:limit] {
		relevance := models.RelevanceMedium
		if i < highRelevanceCount {
			relevance = models.RelevanceHigh
		}
		items = append(items, models.ContextItem{
			Source:    src,
			Headline:  fmt.Sprintf("Notícia sobre %s - Fonte %s", query, src),
			Summary:   fmt.Sprintf("Informações relevantes sobre %s encontradas em %s", query, src),
			Relevance: relevance,
		})
	}
	return items
}

// Indicators returns the simulated macroeconomic indicators. A fresh map is
// returned on every call.
func (s *Service) Indicators() map[string]string {
	return map[string]string{
		"selic":           "10.75%",
		"ipca_mensal":     "0.38%",
		"dolar":           "R$ 5.89",
		"ibovespa":        "125.430 pontos",
		"pix_crescimento": "15% ao ano",
		"fonte":           "Simulado - usar APIs reais em produção",
	}
}
