// Package preprocessing cleans raw RentCast listings into a model-ready
// frame, and provides the feature scalers used by the models.
//
// Preprocess runs the fixed cleaning pipeline; DropOutliers and
// DropMissingKeyFeatures are optional follow-up filters; GroupColumns splits
// the result into identification, prediction features and targets.
package preprocessing

import (
	"math"
	"time"

	"github.com/hopus-ml/hopus/frame"
	"github.com/hopus-ml/hopus/hpi"
	"github.com/hopus-ml/hopus/listing"
	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/pkg/log"
)

func stepLogger(step string) log.Logger {
	return log.GetLoggerWithName("preprocessing").With(
		log.PhaseKey, log.PhasePreprocessing,
		log.PipelineStepKey, step,
	)
}

func droppedRows(dropped, remaining int) []any {
	return []any{log.DroppedRowsKey, dropped, log.SamplesKey, remaining}
}

// pipeline carries the listings through the cleaning steps. Until the
// features object is expanded the rows live in table; afterwards in frame.
type pipeline struct {
	table *listing.Table
	frame *frame.Frame
	index *hpi.Index
}

type step struct {
	name string
	run  func(p *pipeline) (dropped int, err error)
}

var steps = []step{
	{"single_family", (*pipeline).keepSingleFamily},
	{"drop_missing_sizes", (*pipeline).dropMissingSizes},
	{"rename_columns", (*pipeline).renameColumns},
	{"expand_features", (*pipeline).expandFeatures},
	{"drop_multi_unit", (*pipeline).dropMultiUnit},
	{"fill_zero", (*pipeline).fillZero},
	{"fill_year_built", (*pipeline).fillYearBuilt},
	{"sale_month", (*pipeline).convertSaleDate},
	{"merge_hpi", (*pipeline).mergeHomePriceIndex},
	{"price_per_sqft", (*pipeline).pricePerSqFt},
	{"log_price", (*pipeline).logPrice},
}

// Preprocess cleans raw listings and joins them with the home price index.
//
// The steps, in order:
//
//  1. keep Single Family listings and drop the propertyType column
//  2. drop listings missing squareFootage or lotSize
//  3. rename lastSalePrice, squareFootage and lastSaleDate to price, sqFt
//     and saleDate
//  4. expand the features object into features_ columns
//  5. drop listings whose features_unitCount exceeds 1
//  6. zero-fill ZeroFillColumns, adding a <column>_nan sentinel for each
//  7. fill yearBuilt with its median, adding yearBuilt_nan
//  8. truncate saleDate to its month, adding saleMonth and saleYear
//  9. inner-join with the index on the sale month, adding
//     trueValueHomePriceIndex and availableValueHomePriceIndex
//  10. add pricePerSqFt and timeNormalizedPricePerSqFt
//  11. drop listings without a positive price and add logPrice
//
// The raw table is not modified. When every listing is removed the error
// wraps errors.ErrNoRows.
func Preprocess(raw *listing.Table, index *hpi.Index) (*frame.Frame, error) {
	if raw == nil || raw.Len() == 0 {
		return nil, errors.NewModelError("Preprocess", "empty data", errors.ErrEmptyData)
	}
	if index == nil || index.Len() == 0 {
		return nil, errors.NewValueError("Preprocess", "home price index is empty")
	}

	start := time.Now()
	p := &pipeline{
		table: &listing.Table{Frame: raw.Frame.Clone(), Features: raw.Features},
		index: index,
	}
	for _, s := range steps {
		dropped, err := s.run(p)
		if err != nil {
			return nil, errors.Wrapf(err, "preprocess step %s", s.name)
		}
		remaining := p.len()
		stepLogger(s.name).Debug("Step completed", droppedRows(dropped, remaining)...)
		if remaining == 0 {
			return nil, errors.Wrapf(errors.ErrNoRows, "preprocess step %s", s.name)
		}
	}

	log.GetLoggerWithName("preprocessing").Info("Preprocessed listings",
		log.SamplesKey, p.frame.Len(),
		log.FeaturesKey, p.frame.Width(),
		log.DroppedRowsKey, raw.Len()-p.frame.Len(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return p.frame, nil
}

func (p *pipeline) len() int {
	if p.frame != nil {
		return p.frame.Len()
	}
	return p.table.Len()
}

func (p *pipeline) keepSingleFamily() (int, error) {
	types, err := p.table.Frame.String(listing.PropertyTypeColumn)
	if err != nil {
		return 0, err
	}
	var dropped int
	p.table, dropped = p.table.DropRows(func(i int) bool { return types[i] != listing.SingleFamily })
	return dropped, p.table.Frame.Drop(listing.PropertyTypeColumn)
}

func (p *pipeline) dropMissingSizes() (int, error) {
	sqFt, err := p.table.Frame.Float(listing.SquareFootageColumn)
	if err != nil {
		return 0, err
	}
	lot, err := p.table.Frame.Float(listing.LotSizeColumn)
	if err != nil {
		return 0, err
	}
	var dropped int
	p.table, dropped = p.table.DropRows(func(i int) bool {
		return math.IsNaN(sqFt[i]) || math.IsNaN(lot[i])
	})
	return dropped, nil
}

func (p *pipeline) renameColumns() (int, error) {
	return 0, p.table.Frame.Rename(map[string]string{
		listing.LastSalePriceColumn: PriceColumn,
		listing.SquareFootageColumn: SqFtColumn,
		listing.LastSaleDateColumn:  SaleDateColumn,
	})
}

func (p *pipeline) expandFeatures() (int, error) {
	f := p.table.Frame
	for _, e := range expandFeatures(p.table.Features) {
		if err := f.AddFloat(e.name, e.values); err != nil {
			return 0, err
		}
	}
	p.frame = f
	p.table = nil
	return 0, nil
}

func (p *pipeline) dropMultiUnit() (int, error) {
	if !p.frame.Has(UnitCountColumn) {
		return 0, nil
	}
	units, err := p.frame.Float(UnitCountColumn)
	if err != nil {
		return 0, err
	}
	var dropped int
	p.frame, dropped = p.frame.DropRows(func(i int) bool { return units[i] > 1 })
	return dropped, nil
}

func (p *pipeline) fillZero() (int, error) {
	logger := stepLogger("fill_zero")
	for _, name := range ZeroFillColumns {
		if !p.frame.Has(name) {
			missing := make([]float64, p.frame.Len())
			for i := range missing {
				missing[i] = math.NaN()
			}
			if err := p.frame.AddFloat(name, missing); err != nil {
				return 0, err
			}
			logger.Warn("Column absent, created as missing", log.ColumnKey, name)
		}
		sentinel, err := p.frame.IsNaN(name)
		if err != nil {
			return 0, err
		}
		if err := p.frame.AddFloat(name+MissingSuffix, sentinel); err != nil {
			return 0, err
		}
		filled, err := p.frame.FillNaN(name, 0)
		if err != nil {
			return 0, err
		}
		logger.Debug("Filled missing values", log.ColumnKey, name, log.FilledValuesKey, filled)
	}
	return 0, nil
}

func (p *pipeline) fillYearBuilt() (int, error) {
	sentinel, err := p.frame.IsNaN(YearBuiltColumn)
	if err != nil {
		return 0, err
	}
	if err := p.frame.AddFloat(YearBuiltColumn+MissingSuffix, sentinel); err != nil {
		return 0, err
	}
	median, err := p.frame.Median(YearBuiltColumn)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(median) {
		return 0, errors.NewColumnError("fillYearBuilt", YearBuiltColumn, "every value is missing")
	}
	_, err = p.frame.FillNaN(YearBuiltColumn, median)
	return 0, err
}

// convertSaleDate replaces saleDate by its YYYY-MM month. Listings without a
// parseable sale date cannot be joined with the index and are dropped here.
func (p *pipeline) convertSaleDate() (int, error) {
	dates, err := p.frame.String(SaleDateColumn)
	if err != nil {
		return 0, err
	}
	months := make([]hpi.Month, len(dates))
	bad := make([]bool, len(dates))
	for i, d := range dates {
		m, err := hpi.ParseMonth(d)
		if err != nil || d == "" {
			bad[i] = true
			continue
		}
		months[i] = m
	}

	keep := make([]int, 0, len(dates))
	for i := range dates {
		if !bad[i] {
			keep = append(keep, i)
		}
	}
	p.frame = p.frame.Take(keep)

	text := make([]string, len(keep))
	saleMonth := make([]float64, len(keep))
	saleYear := make([]float64, len(keep))
	for j, i := range keep {
		text[j] = months[i].String()
		saleMonth[j] = float64(months[i].Month)
		saleYear[j] = float64(months[i].Year)
	}
	if err := p.frame.AddString(SaleDateColumn, text); err != nil {
		return 0, err
	}
	if err := p.frame.AddFloat(SaleMonth, saleMonth); err != nil {
		return 0, err
	}
	if err := p.frame.AddFloat(SaleYear, saleYear); err != nil {
		return 0, err
	}
	return len(dates) - len(keep), nil
}

func (p *pipeline) mergeHomePriceIndex() (int, error) {
	dates, err := p.frame.String(SaleDateColumn)
	if err != nil {
		return 0, err
	}
	keep := make([]int, 0, len(dates))
	var trueValues, available []float64
	for i, d := range dates {
		m, err := hpi.ParseMonth(d)
		if err != nil {
			return 0, err
		}
		tv, av, ok := p.index.Lookup(m)
		if !ok {
			continue
		}
		keep = append(keep, i)
		trueValues = append(trueValues, tv)
		available = append(available, av)
	}
	n := p.frame.Len()
	p.frame = p.frame.Take(keep)
	if err := p.frame.AddFloat(hpi.TrueValueColumn+HPISuffix, orEmpty(trueValues)); err != nil {
		return 0, err
	}
	if err := p.frame.AddFloat(hpi.AvailableValueColumn+HPISuffix, orEmpty(available)); err != nil {
		return 0, err
	}
	return n - len(keep), nil
}

func orEmpty(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

func (p *pipeline) pricePerSqFt() (int, error) {
	price, err := p.frame.Float(PriceColumn)
	if err != nil {
		return 0, err
	}
	sqFt, err := p.frame.Float(SqFtColumn)
	if err != nil {
		return 0, err
	}
	hpiTrue, err := p.frame.Float(TrueHPIColumn)
	if err != nil {
		return 0, err
	}
	perSqFt := make([]float64, len(price))
	normalized := make([]float64, len(price))
	for i := range price {
		perSqFt[i] = price[i] / sqFt[i]
		normalized[i] = perSqFt[i] / hpiTrue[i]
	}
	if err := p.frame.AddFloat(PricePerSqFtColumn, perSqFt); err != nil {
		return 0, err
	}
	return 0, p.frame.AddFloat(TimeNormalizedPricePerSqFtColumn, normalized)
}

func (p *pipeline) logPrice() (int, error) {
	price, err := p.frame.Float(PriceColumn)
	if err != nil {
		return 0, err
	}
	var dropped int
	p.frame, dropped = p.frame.DropRows(func(i int) bool {
		return math.IsNaN(price[i]) || price[i] <= 0
	})
	price, err = p.frame.Float(PriceColumn)
	if err != nil {
		return 0, err
	}
	logs := make([]float64, len(price))
	for i, v := range price {
		logs[i] = math.Log(v)
	}
	return dropped, p.frame.AddFloat(LogPriceColumn, logs)
}
