package bcb

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

// FetchSummary queries the source for a location and period and aggregates
// the matching records. Transport failures are logged and treated as an
// empty match set, so the only errors returned are invalid input and not found.
func (c *Client) FetchSummary(ctx context.Context, location models.Location, period models.Period) (*models.PixSummary, error) {
	if err := location.Validate(); err != nil {
		return nil, models.AsError(err).WithStage(models.StagePix)
	}
	if period.IsZero() {
		return nil, models.NewError(models.ErrInvalidInput, models.StagePix, "período é obrigatório")
	}

	if location.Kind == models.LocationState {
		if _, err := StateCode(location.Name); err != nil {
			return nil, err
		}
	}

	var (
		records []models.TransactionRecord
		err     error
	)
	switch location.Kind {
	case models.LocationMunicipality:
		records, err = c.FetchByMunicipality(ctx, location.Name, period)
	case models.LocationState:
		records, err = c.FetchByState(ctx, location.Name, period)
	}

	if err != nil {
		c.logTransportFailure(location, period, err)
		records = nil
	}

	if len(records) == 0 {
		return nil, models.NewError(models.ErrNotFound, models.StagePix,
			fmt.Sprintf("Nenhum dado encontrado para %s em %s. %s", location.Name, period, notFoundGuidance))
	}

	summary := Summarize(records, location, period, c.now())

	if c.logger != nil {
		c.logger.Info().
			Str("location", location.Name).
			Str("period", period.String()).
			Int("matched", summary.Matched).
			Str("total_value", summary.Totals.TotalValue.String()).
			Int64("total_count", summary.Totals.TotalCount).
			Msg("Pix summary computed")
	}

	return summary, nil
}

// Summarize aggregates records into a success summary. records must be non-empty.
func Summarize(records []models.TransactionRecord, location models.Location, period models.Period, queriedAt time.Time) *models.PixSummary {
	var valuePF, countPF, valuePJ, countPJ decimal.Decimal
	for _, rec := range records {
		valuePF = valuePF.Add(rec.VL_PagadorPF)
		countPF = countPF.Add(rec.QT_PagadorPF)
		valuePJ = valuePJ.Add(rec.VL_PagadorPJ)
		countPJ = countPJ.Add(rec.QT_PagadorPJ)
	}

	n := len(records)
	if n > MaxDetails {
		n = MaxDetails
	}
	details := make([]models.RecordDetail, 0, n)
	for _, rec := range records[:n] {
		details = append(details, models.RecordDetail{
			Municipio: rec.Municipio,
			Estado:    rec.Estado,
			AnoMes:    rec.AnoMes,
			ValuePF:   rec.VL_PagadorPF,
			CountPF:   rec.QT_PagadorPF.IntPart(),
		})
	}

	return &models.PixSummary{
		Location:  location.Name,
		Period:    period,
		Kind:      location.Kind,
		Matched:   len(records),
		Totals:    models.NewPixTotals(valuePF, countPF.IntPart(), valuePJ, countPJ.IntPart()),
		Details:   details,
		QueriedAt: queriedAt,
		Status:    models.SummarySuccess,
	}
}

func (c *Client) logTransportFailure(location models.Location, period models.Period, err error) {
	if c.logger == nil {
		return
	}

	event := c.logger.Warn().
		Str("location", location.Name).
		Str("kind", location.Kind.String()).
		Str("period", period.String()).
		Err(err)

	var netErr net.Error
	if (errors.As(err, &netErr) && netErr.Timeout()) || errors.Is(err, context.DeadlineExceeded) {
		event.Msg("BCB request timed out, continuing with empty result")
		return
	}
	event.Msg("BCB request failed, continuing with empty result")
}
