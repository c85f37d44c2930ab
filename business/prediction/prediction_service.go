package prediction

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Archanasadhasivam/AgriPricePredict/business/trainer"
	"github.com/Archanasadhasivam/AgriPricePredict/domain"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/logger"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/metrics"

	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"

	defaultListLimit = 20
	maxListLimit     = 100

	warningNotRecorded = "prediction computed but could not be recorded"
)

// PredictionRepository contract interface
type PredictionRepository interface {
	Create(ctx context.Context, record *domain.PredictionRecord) error
	FindRecent(ctx context.Context, productName string, limit int) ([]domain.PredictionRecord, error)
}

type latestPrice struct {
	value float64
	month string
}

// PredictionService serves predictions from a snapshot taken at startup.
// Nothing in it is mutated after construction, so handlers share it freely.
type PredictionService struct {
	models         map[string]domain.FittedModel
	latest         map[string]latestPrice
	predictionRepo PredictionRepository
	now            func() time.Time
}

// NewPredictionService builds the service from the loaded artifact and
// dataset. Either being nil leaves the service in the unavailable state.
func NewPredictionService(models map[string]domain.FittedModel, table *domain.PriceTable, predictionRepo PredictionRepository) *PredictionService {
	s := &PredictionService{
		predictionRepo: predictionRepo,
		now:            time.Now,
	}
	if models == nil || table == nil {
		return s
	}

	s.models = make(map[string]domain.FittedModel, len(models))
	for name, m := range models {
		s.models[name] = m
	}

	s.latest = make(map[string]latestPrice)
	for name := range s.models {
		if value, month, ok := LatestPrice(table, name); ok {
			s.latest[name] = latestPrice{value: value, month: month}
		}
	}

	return s
}

func (s *PredictionService) Available() bool {
	return s.models != nil
}

// Commodities lists the commodities that have a model, sorted by name.
func (s *PredictionService) Commodities() []string {
	names := make([]string, 0, len(s.models))
	for name := range s.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PredictPrice validates the request, computes the price and records it.
// A failed write does not fail the call: the result comes back with
// Persisted=false and a warning.
func (s *PredictionService) PredictPrice(ctx context.Context, commodity, targetDate string, userID *uint) (domain.PredictionResult, error) {
	if !s.Available() {
		return domain.PredictionResult{}, domain.ErrPredictionUnavailable
	}

	commodity = strings.TrimSpace(commodity)
	model, ok := s.models[commodity]
	if !ok {
		return domain.PredictionResult{}, fmt.Errorf("%w: %q", domain.ErrUnknownCommodity, commodity)
	}

	date, err := s.parseTargetDate(targetDate)
	if err != nil {
		return domain.PredictionResult{}, err
	}

	latest, ok := s.latest[commodity]
	if !ok {
		return domain.PredictionResult{}, fmt.Errorf("%w: no known price for %q", domain.ErrMissingPrice, commodity)
	}

	predicted := Predict(model, latest.value)

	result := domain.PredictionResult{
		Commodity:      commodity,
		PredictedPrice: predicted,
		PredictionDate: date.Format(DateLayout),
		LatestPrice:    latest.value,
		LatestMonth:    latest.month,
	}

	record := &domain.PredictionRecord{
		UserID:         userID,
		ProductName:    commodity,
		PredictedPrice: predicted,
		PredictionDate: date,
	}

	if err := s.predictionRepo.Create(ctx, record); err != nil {
		logger.Warn("Failed to record prediction", "commodity", commodity, "error", err.Error())
		metrics.PredictionPersistFailures.Inc()
		result.Warning = warningNotRecorded
		return result, nil
	}

	result.Persisted = true
	return result, nil
}

// ListPredictions returns the most recent prediction log rows, optionally
// filtered by product.
func (s *PredictionService) ListPredictions(ctx context.Context, productName string, limit int) ([]domain.PredictionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	records, err := s.predictionRepo.FindRecent(ctx, strings.TrimSpace(productName), limit)
	if err != nil {
		logger.Error("Failed to list predictions", err)
		return nil, err
	}

	return records, nil
}

func (s *PredictionService) parseTargetDate(raw string) (time.Time, error) {
	now := s.now().UTC()

	date, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", domain.ErrInvalidDate, raw)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return time.Time{}, fmt.Errorf("%w: %s is before %s", domain.ErrPastDate, date.Format(DateLayout), today.Format(DateLayout))
	}

	return date, nil
}

// Predict applies the model to the latest price and rounds to cents.
func Predict(model domain.FittedModel, latestPrice float64) float64 {
	return Round2(model.Apply(latestPrice))
}

// Round2 rounds to 2 decimal places, halves away from zero. Rounding is done
// on the shortest decimal form of v, so 1.005 becomes 1.01.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	rounded, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return rounded
}

// LatestPrice finds the most recent column with a price for the commodity
// and returns the mean of that column's prices across the commodity's rows.
func LatestPrice(table *domain.PriceTable, commodity string) (float64, string, bool) {
	var rows []domain.CommodityRow
	for _, row := range table.Rows {
		if row.Name == commodity {
			rows = append(rows, row)
		}
	}

	valid := trainer.ValidColumns(rows, len(table.Months))
	if len(valid) == 0 {
		return 0, "", false
	}

	col := valid[len(valid)-1]
	sum, n := 0.0, 0
	for _, row := range rows {
		if col < len(row.Prices) && row.Prices[col].Valid {
			sum += row.Prices[col].Float64
			n++
		}
	}

	return sum / float64(n), table.Months[col].Label, true
}
