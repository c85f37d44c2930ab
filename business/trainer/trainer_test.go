package trainer

import (
	"database/sql"
	"math"
	"strings"
	"testing"

	"github.com/Archanasadhasivam/AgriPricePredict/business/dataset"
	"github.com/Archanasadhasivam/AgriPricePredict/domain"
)

func price(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }

var missing = sql.NullFloat64{}

func months(labels ...string) []domain.MonthColumn {
	out := make([]domain.MonthColumn, len(labels))
	for i, l := range labels {
		out[i] = domain.MonthColumn{Label: l}
	}
	return out
}

func TestFitOLS(t *testing.T) {
	t.Run("perfect positive trend", func(t *testing.T) {
		xs := []float64{1, 2, 3, 4}
		ys := []float64{3, 5, 7, 9}
		slope, intercept := FitOLS(xs, ys)
		if math.Abs(slope-2) > 1e-9 {
			t.Errorf("slope = %v, want 2", slope)
		}
		if math.Abs(intercept-1) > 1e-9 {
			t.Errorf("intercept = %v, want 1", intercept)
		}
	})

	t.Run("single point fallback", func(t *testing.T) {
		slope, intercept := FitOLS([]float64{10}, []float64{12})
		if slope != 0 {
			t.Errorf("slope = %v, want 0 for single point", slope)
		}
		if intercept != 12 {
			t.Errorf("intercept = %v, want 12 for single point", intercept)
		}
	})

	t.Run("constant feature uses mean target", func(t *testing.T) {
		slope, intercept := FitOLS([]float64{5, 5}, []float64{8, 10})
		if slope != 0 || intercept != 9 {
			t.Errorf("got slope=%v intercept=%v, want 0 and 9", slope, intercept)
		}
	})

	t.Run("empty sample", func(t *testing.T) {
		slope, intercept := FitOLS(nil, nil)
		if slope != 0 || intercept != 0 {
			t.Errorf("got slope=%v intercept=%v, want zeros", slope, intercept)
		}
	})
}

func TestTrainRiceScenario(t *testing.T) {
	table, err := dataset.Load(strings.NewReader("Commodities,Jan-24,Feb-24\nRice,10.00,12.00\n"), dataset.Options{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	result := Train(table)
	model, ok := result.Models["Rice"]
	if !ok {
		t.Fatal("expected a model for Rice")
	}
	if model.Slope != 0 || model.Intercept != 12 {
		t.Errorf("got slope=%v intercept=%v, want 0 and 12", model.Slope, model.Intercept)
	}
	if model.TrainingPointCount != 1 {
		t.Errorf("TrainingPointCount = %d, want 1", model.TrainingPointCount)
	}
	if model.FeatureMonth != "Jan-24" || model.TargetMonth != "Feb-24" {
		t.Errorf("months = %s -> %s", model.FeatureMonth, model.TargetMonth)
	}
}

func TestTrainUsesLastTwoValidColumns(t *testing.T) {
	table := &domain.PriceTable{
		Months: months("Jan-24", "Feb-24", "Mar-24", "Apr-24"),
		Rows: []domain.CommodityRow{
			{Name: "Onion", Prices: []sql.NullFloat64{price(1), price(2), price(30), missing}},
			{Name: "Onion", Prices: []sql.NullFloat64{price(1), price(4), price(50), missing}},
		},
	}

	result := Train(table)
	model, ok := result.Models["Onion"]
	if !ok {
		t.Fatal("expected a model for Onion")
	}
	// Apr-24 is empty for Onion, so Feb-24 -> Mar-24 is used: (2,30), (4,50)
	if model.FeatureMonth != "Feb-24" || model.TargetMonth != "Mar-24" {
		t.Errorf("months = %s -> %s, want Feb-24 -> Mar-24", model.FeatureMonth, model.TargetMonth)
	}
	if math.Abs(model.Slope-10) > 1e-9 || math.Abs(model.Intercept-10) > 1e-9 {
		t.Errorf("got slope=%v intercept=%v, want 10 and 10", model.Slope, model.Intercept)
	}
	if model.TrainingPointCount != 2 {
		t.Errorf("TrainingPointCount = %d, want 2", model.TrainingPointCount)
	}
}

func TestTrainOmissions(t *testing.T) {
	table := &domain.PriceTable{
		Months: months("Jan-24", "Feb-24", "Mar-24"),
		Rows: []domain.CommodityRow{
			{Name: "Garlic", Prices: []sql.NullFloat64{missing, price(5), missing}},
			{Name: "Ginger", Prices: []sql.NullFloat64{missing, missing, missing}},
			// feature and target are valid columns but never on the same row
			{Name: "Peas", Prices: []sql.NullFloat64{missing, price(3), missing}},
			{Name: "Peas", Prices: []sql.NullFloat64{missing, missing, price(4)}},
			{Name: "Tomato", Prices: []sql.NullFloat64{price(2), missing, price(3)}},
		},
	}

	result := Train(table)

	if len(result.Models) != 1 {
		t.Fatalf("len(Models) = %d, want 1: %+v", len(result.Models), result.Models)
	}
	if _, ok := result.Models["Tomato"]; !ok {
		t.Error("Tomato should be trained on Jan-24 -> Mar-24")
	}

	reasons := make(map[string]string)
	for _, o := range result.Omissions {
		reasons[o.Commodity] = o.Reason
	}
	want := map[string]string{
		"Garlic": ReasonInsufficientColumns,
		"Ginger": ReasonInsufficientColumns,
		"Peas":   ReasonNoAlignedPoints,
	}
	for name, reason := range want {
		if reasons[name] != reason {
			t.Errorf("omission for %s = %q, want %q", name, reasons[name], reason)
		}
	}
}

func TestTrainEveryCommodityWithTwoColumnsGetsModel(t *testing.T) {
	input := "Commodities,Jan-24,Feb-24,Mar-24\n" +
		"A,1,2,3\n" +
		"B,,2,3\n" +
		"C,1,,3\n" +
		"D,,,3\n" +
		"E,1,,\n"
	table, err := dataset.Load(strings.NewReader(input), dataset.Options{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	result := Train(table)
	for _, name := range []string{"A", "B", "C"} {
		if _, ok := result.Models[name]; !ok {
			t.Errorf("expected model for %s", name)
		}
	}
	for _, name := range []string{"D", "E"} {
		if _, ok := result.Models[name]; ok {
			t.Errorf("unexpected model for %s", name)
		}
	}
	if len(result.Omissions) != 2 {
		t.Errorf("len(Omissions) = %d, want 2", len(result.Omissions))
	}
}

func TestTrainDeterministic(t *testing.T) {
	input := "Commodities,Jan-24,Feb-24\nRice,10,12\nRice,11,13.5\nRice,9,11\n"
	table, err := dataset.Load(strings.NewReader(input), dataset.Options{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	first := Train(table).Models["Rice"]
	second := Train(table).Models["Rice"]
	if first != second {
		t.Errorf("training not deterministic: %+v vs %+v", first, second)
	}
}

func TestTrainNilTable(t *testing.T) {
	result := Train(nil)
	if len(result.Models) != 0 || len(result.Omissions) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}
