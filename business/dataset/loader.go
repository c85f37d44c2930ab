package dataset

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Archanasadhasivam/AgriPricePredict/domain"

	"github.com/xuri/excelize/v2"
)

const DefaultIdentifierColumn = "Commodities"

// month label layouts accepted in the header, most common first
var monthLayouts = []string{
	"Jan-06",
	"January-06",
	"Jan-2006",
	"January-2006",
	"2006-01",
	"Jan 2006",
	"January 2006",
	"Jan 06",
}

type Options struct {
	// IdentifierColumn names the commodity column; matched case-insensitively
	// after trimming. Empty means DefaultIdentifierColumn.
	IdentifierColumn string
}

func (o Options) identifier() string {
	if strings.TrimSpace(o.IdentifierColumn) == "" {
		return DefaultIdentifierColumn
	}
	return strings.TrimSpace(o.IdentifierColumn)
}

// LoadFile reads a dataset from disk. Files ending in .xlsx are read from
// their first sheet; everything else is parsed as CSV.
func LoadFile(path string, opts Options) (*domain.PriceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrDataset, path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadXLSX(f, opts)
	}

	return Load(f, opts)
}

// Load parses CSV input whose header is the identifier column followed by
// one column per month.
func Load(r io.Reader, opts Options) (*domain.PriceTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv: %v", domain.ErrDataset, err)
	}

	return build(records, opts)
}

// LoadXLSX parses the first sheet of an Excel workbook with the same rules
// as Load.
func LoadXLSX(r io.Reader, opts Options) (*domain.PriceTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", domain.ErrDataset, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrDataset)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", domain.ErrDataset, sheets[0], err)
	}

	return build(rows, opts)
}

func build(records [][]string, opts Options) (*domain.PriceTable, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty dataset", domain.ErrDataset)
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}

	identifier := opts.identifier()
	idIdx := -1
	for i, name := range header {
		if strings.EqualFold(name, identifier) {
			idIdx = i
			break
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("%w: identifier column %q not found", domain.ErrDataset, identifier)
	}

	type column struct {
		source int
		month  domain.MonthColumn
	}

	columns := make([]column, 0, len(header)-1)
	allMonths := true
	for i, name := range header {
		if i == idIdx {
			continue
		}
		month, ok := parseMonth(name)
		if !ok {
			allMonths = false
		}
		columns = append(columns, column{source: i, month: domain.MonthColumn{Label: name, Month: month}})
	}

	if len(columns) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 price columns, found %d", domain.ErrDataset, len(columns))
	}

	if allMonths {
		sort.SliceStable(columns, func(i, j int) bool {
			return columns[i].month.Month.Before(columns[j].month.Month)
		})
	}

	table := &domain.PriceTable{
		IdentifierColumn: header[idIdx],
		Months:           make([]domain.MonthColumn, len(columns)),
		Chronological:    allMonths,
	}
	for i, c := range columns {
		table.Months[i] = c.month
	}

	for _, record := range records[1:] {
		if idIdx >= len(record) {
			continue
		}
		name := strings.TrimSpace(record[idIdx])
		if name == "" {
			continue
		}

		prices := make([]sql.NullFloat64, len(columns))
		for i, c := range columns {
			if c.source < len(record) {
				prices[i] = parsePrice(record[c.source])
			}
		}

		table.Rows = append(table.Rows, domain.CommodityRow{Name: name, Prices: prices})
	}

	return table, nil
}

// parsePrice never fails: anything that is not a finite number is missing.
func parsePrice(raw string) sql.NullFloat64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sql.NullFloat64{}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: v, Valid: true}
}

func parseMonth(label string) (time.Time, bool) {
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
