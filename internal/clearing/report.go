package clearing

import (
	"context"

	"github.com/rs/zerolog"

	"minex-clearing/internal/models"
	"minex-clearing/internal/store"
)

// ExposureReport is a point-in-time snapshot of the clearing book.
type ExposureReport struct {
	TradesByStatus map[models.TradeStatus]int
	OpenTrades     int
	OpenExposure   float64 // total value of trades not yet settled
	MarginHeld     float64 // margin recorded against open trades
	SettledValue   float64
	ByMetal        map[models.MetalType]MetalExposure
}

// MetalExposure aggregates open positions per metal.
type MetalExposure struct {
	Trades   int
	Quantity float64 // metric tons
	Value    float64
}

// ReportService aggregates book-level exposure from the entity store.
type ReportService struct {
	store  store.EntityStore
	logger zerolog.Logger
}

// NewReportService creates a report service.
func NewReportService(st store.EntityStore, logger zerolog.Logger) *ReportService {
	return &ReportService{store: st, logger: logger}
}

// openStatuses are the trade states carrying live exposure.
var openStatuses = map[models.TradeStatus]bool{
	models.TradePending:         true,
	models.TradeConfirmed:       true,
	models.TradeNovated:         true,
	models.TradeMarginCollected: true,
	models.TradeActive:          true,
}

// BuildExposureReport walks the trade book and aggregates exposure,
// margin held, and settled value.
func (s *ReportService) BuildExposureReport(ctx context.Context) (*ExposureReport, error) {
	trades, err := s.store.QueryTrades(ctx, store.TradeFilter{})
	if err != nil {
		return nil, err
	}

	report := &ExposureReport{
		TradesByStatus: make(map[models.TradeStatus]int),
		ByMetal:        make(map[models.MetalType]MetalExposure),
	}

	for i := range trades {
		t := &trades[i]
		report.TradesByStatus[t.Status]++

		switch {
		case openStatuses[t.Status]:
			report.OpenTrades++
			report.OpenExposure += t.TotalValue

			exposure := report.ByMetal[t.Metal]
			exposure.Trades++
			exposure.Quantity += t.Quantity
			exposure.Value += t.TotalValue
			report.ByMetal[t.Metal] = exposure

			margins, err := s.store.GetMarginsByTrade(ctx, t.ID)
			if err != nil {
				return nil, err
			}
			for _, m := range margins {
				report.MarginHeld += m.TotalMargin
			}
		case t.Status == models.TradeSettled || t.Status == models.TradeCompleted:
			report.SettledValue += t.TotalValue
		}
	}

	s.logger.Debug().
		Int("open_trades", report.OpenTrades).
		Float64("open_exposure", report.OpenExposure).
		Float64("margin_held", report.MarginHeld).
		Msg("Exposure report built")

	return report, nil
}
