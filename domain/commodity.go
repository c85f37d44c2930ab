package domain

import (
	"database/sql"
	"time"
)

// MonthColumn is one price column of the dataset. Month is the first day of
// the month the label names, or the zero time when the label is not a month.
type MonthColumn struct {
	Label string
	Month time.Time
}

// CommodityRow holds one source row. Prices is aligned with PriceTable.Months.
type CommodityRow struct {
	Name   string
	Prices []sql.NullFloat64
}

// PriceTable is the cleaned wide dataset: one row per commodity, one column
// per month, oldest month first when Chronological is true.
type PriceTable struct {
	IdentifierColumn string
	Months           []MonthColumn
	Rows             []CommodityRow
	Chronological    bool
}

// FittedModel is a single-feature OLS line: target = Slope*feature + Intercept.
type FittedModel struct {
	CommodityName      string  `json:"commodity_name"`
	Slope              float64 `json:"slope"`
	Intercept          float64 `json:"intercept"`
	TrainingPointCount int     `json:"training_point_count"`
	FeatureMonth       string  `json:"feature_month,omitempty"`
	TargetMonth        string  `json:"target_month,omitempty"`
}

// Apply evaluates the fitted line at x without rounding.
func (m FittedModel) Apply(x float64) float64 {
	return m.Slope*x + m.Intercept
}
