// Package hpi loads the S&P Cotality Case-Shiller U.S. National Home Price
// Index (FRED series CSUSHPINSA) and indexes it by month.
//
// The index is published about three months after the fact, so alongside the
// true value of a month the Index can carry the value that was publicly
// available at that time.
package hpi

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/hopus-ml/hopus/frame"
	"github.com/hopus-ml/hopus/pkg/errors"
)

// Raw and renamed column names.
const (
	ObservationDateColumn = "observation_date"
	SeriesColumn          = "CSUSHPINSA"

	DateColumn           = "date"
	TrueValueColumn      = "trueValue"
	AvailableValueColumn = "availableValue"
)

// DefaultLag is the publication delay of the index in months.
const DefaultLag = 3

// Observation is one raw row of the FRED CSV.
type Observation struct {
	Date  string
	Value float64
}

// Load reads the FRED CSV at path.
func Load(path string) ([]Observation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open home price index %s", path)
	}
	defer file.Close()
	return Read(file)
}

// Read parses a FRED CSV with observation_date and CSUSHPINSA columns.
// FRED writes "." for months without a value; those rows are skipped.
func Read(r io.Reader) ([]Observation, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read home price index csv")
	}
	if len(records) == 0 {
		return nil, errors.NewValueError("hpi.Read", "missing header row")
	}

	dateCol, valueCol := -1, -1
	for j, name := range records[0] {
		switch strings.TrimSpace(name) {
		case ObservationDateColumn:
			dateCol = j
		case SeriesColumn:
			valueCol = j
		}
	}
	if dateCol < 0 {
		return nil, errors.NewColumnError("hpi.Read", ObservationDateColumn, "not found")
	}
	if valueCol < 0 {
		return nil, errors.NewColumnError("hpi.Read", SeriesColumn, "not found")
	}

	obs := make([]Observation, 0, len(records)-1)
	for i, rec := range records[1:] {
		raw := strings.TrimSpace(rec[valueCol])
		if raw == "" || raw == "." {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s on line %d", SeriesColumn, i+2)
		}
		obs = append(obs, Observation{Date: strings.TrimSpace(rec[dateCol]), Value: v})
	}
	return obs, nil
}

// Index maps a month to the true and, once lagged, available index values.
// Months are kept in chronological order.
type Index struct {
	months     []Month
	trueValues []float64
	available  []float64
	lag        int
	pos        map[Month]int
}

// Preprocess truncates observation dates to months and indexes the values by
// month. Duplicate months are an error.
func Preprocess(obs []Observation) (*Index, error) {
	if len(obs) == 0 {
		return nil, errors.NewModelError("hpi.Preprocess", "empty data", errors.ErrEmptyData)
	}
	type row struct {
		m Month
		v float64
	}
	rows := make([]row, len(obs))
	for i, o := range obs {
		m, err := ParseMonth(o.Date)
		if err != nil {
			return nil, errors.Wrapf(err, "observation %d", i)
		}
		rows[i] = row{m, o.Value}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].m.Before(rows[j].m) })

	idx := &Index{pos: make(map[Month]int, len(rows))}
	for _, r := range rows {
		if _, dup := idx.pos[r.m]; dup {
			return nil, errors.NewValueError("hpi.Preprocess", "duplicate month "+r.m.String())
		}
		idx.pos[r.m] = len(idx.months)
		idx.months = append(idx.months, r.m)
		idx.trueValues = append(idx.trueValues, r.v)
		idx.available = append(idx.available, math.NaN())
	}
	return idx, nil
}

// AddLaggedValue sets availableValue(M) to the true value lag rows earlier,
// then drops the first lag months, for which no value was available yet.
func (idx *Index) AddLaggedValue(lag int) error {
	if lag < 0 {
		return errors.NewValidationError("lag", "must be non-negative", lag)
	}
	if lag >= len(idx.months) {
		return errors.NewValueError("Index.AddLaggedValue", "lag leaves no months")
	}
	months := idx.months[lag:]
	trueValues := idx.trueValues[lag:]
	available := make([]float64, len(months))
	copy(available, idx.trueValues[:len(idx.trueValues)-lag])

	idx.months = append([]Month(nil), months...)
	idx.trueValues = append([]float64(nil), trueValues...)
	idx.available = available
	idx.lag = lag
	idx.pos = make(map[Month]int, len(idx.months))
	for i, m := range idx.months {
		idx.pos[m] = i
	}
	return nil
}

// Lookup returns the true and available values for month m. available is NaN
// until AddLaggedValue has been called.
func (idx *Index) Lookup(m Month) (trueValue, available float64, ok bool) {
	i, ok := idx.pos[m]
	if !ok {
		return math.NaN(), math.NaN(), false
	}
	return idx.trueValues[i], idx.available[i], true
}

// Len returns the number of indexed months.
func (idx *Index) Len() int { return len(idx.months) }

// Lag returns the lag applied by AddLaggedValue, or 0.
func (idx *Index) Lag() int { return idx.lag }

// Months returns the indexed months in chronological order.
func (idx *Index) Months() []Month {
	return append([]Month(nil), idx.months...)
}

// Frame returns the index as a table with date, trueValue and availableValue
// columns.
func (idx *Index) Frame() *frame.Frame {
	dates := make([]string, len(idx.months))
	for i, m := range idx.months {
		dates[i] = m.String()
	}
	f := frame.New()
	_ = f.AddString(DateColumn, dates)
	_ = f.AddFloat(TrueValueColumn, append([]float64(nil), idx.trueValues...))
	_ = f.AddFloat(AvailableValueColumn, append([]float64(nil), idx.available...))
	return f
}

// LoadIndex loads, indexes and lags the CSV at path in one call.
func LoadIndex(path string, lag int) (*Index, error) {
	obs, err := Load(path)
	if err != nil {
		return nil, err
	}
	idx, err := Preprocess(obs)
	if err != nil {
		return nil, err
	}
	if err := idx.AddLaggedValue(lag); err != nil {
		return nil, err
	}
	return idx, nil
}
