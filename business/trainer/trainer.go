package trainer

import (
	"github.com/Archanasadhasivam/AgriPricePredict/domain"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/logger"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	ReasonInsufficientColumns = "fewer than 2 valid price columns"
	ReasonNoAlignedPoints     = "no rows with both feature and target prices"
)

// Omission records a commodity that got no model. It is not an error.
type Omission struct {
	Commodity    string `json:"commodity"`
	Reason       string `json:"reason"`
	ValidColumns int    `json:"valid_columns"`
}

type Result struct {
	Models    map[string]domain.FittedModel
	Omissions []Omission
}

// Train fits one model per distinct commodity. Price columns are used in
// table order, which the loader makes chronological when labels are months:
// the second-to-last valid column is the feature and the last one the target.
func Train(table *domain.PriceTable) Result {
	result := Result{Models: make(map[string]domain.FittedModel)}
	if table == nil {
		return result
	}

	names, groups := groupRows(table.Rows)
	for _, name := range names {
		model, omission, ok := trainCommodity(table, name, groups[name])
		if !ok {
			logger.Warn("Skipping commodity", "commodity", name, "reason", omission.Reason)
			result.Omissions = append(result.Omissions, omission)
			continue
		}

		logger.Debug("Model trained", "commodity", name, "points", model.TrainingPointCount)
		result.Models[name] = model
	}

	return result
}

func trainCommodity(table *domain.PriceTable, name string, rows []domain.CommodityRow) (domain.FittedModel, Omission, bool) {
	valid := ValidColumns(rows, len(table.Months))
	if len(valid) < 2 {
		return domain.FittedModel{}, Omission{Commodity: name, Reason: ReasonInsufficientColumns, ValidColumns: len(valid)}, false
	}

	featureCol, targetCol := valid[len(valid)-2], valid[len(valid)-1]

	xs := make([]float64, 0, len(rows))
	ys := make([]float64, 0, len(rows))
	for _, row := range rows {
		if targetCol >= len(row.Prices) {
			continue
		}
		x, y := row.Prices[featureCol], row.Prices[targetCol]
		if !x.Valid || !y.Valid {
			continue
		}
		xs = append(xs, x.Float64)
		ys = append(ys, y.Float64)
	}

	if len(xs) == 0 {
		return domain.FittedModel{}, Omission{Commodity: name, Reason: ReasonNoAlignedPoints, ValidColumns: len(valid)}, false
	}

	slope, intercept := FitOLS(xs, ys)

	return domain.FittedModel{
		CommodityName:      name,
		Slope:              slope,
		Intercept:          intercept,
		TrainingPointCount: len(xs),
		FeatureMonth:       table.Months[featureCol].Label,
		TargetMonth:        table.Months[targetCol].Label,
	}, Omission{}, true
}

// FitOLS fits y = slope*x + intercept by ordinary least squares. When the
// feature has no spread (a single point, or identical x values) the slope is
// 0 and the intercept is the mean target.
func FitOLS(xs, ys []float64) (slope, intercept float64) {
	if len(xs) == 0 {
		return 0, 0
	}

	if len(xs) == 1 || floats.Max(xs) == floats.Min(xs) {
		return 0, stat.Mean(ys, nil)
	}

	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	return slope, intercept
}

// ValidColumns returns the indexes of columns holding at least one price
// across rows, in column order.
func ValidColumns(rows []domain.CommodityRow, width int) []int {
	var valid []int
	for col := 0; col < width; col++ {
		for _, row := range rows {
			if col < len(row.Prices) && row.Prices[col].Valid {
				valid = append(valid, col)
				break
			}
		}
	}
	return valid
}

// groupRows keys rows by commodity name, keeping first-appearance order.
func groupRows(rows []domain.CommodityRow) ([]string, map[string][]domain.CommodityRow) {
	var names []string
	groups := make(map[string][]domain.CommodityRow)
	for _, row := range rows {
		if _, seen := groups[row.Name]; !seen {
			names = append(names, row.Name)
		}
		groups[row.Name] = append(groups[row.Name], row)
	}
	return names, groups
}
