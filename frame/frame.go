// Package frame implements the small columnar table the listing pipeline
// operates on.
//
// A Frame holds ordered, named columns of equal length. A column is either
// numeric ([]float64, NaN marks a missing value) or text ([]string, the empty
// string marks a missing value). Row operations always return a frame whose
// rows are numbered 0..n-1, so there is no separate index to reset.
package frame

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/hopus-ml/hopus/pkg/errors"
)

// Kind is the storage type of a column.
type Kind int

const (
	// Float columns store float64 values, NaN is missing.
	Float Kind = iota
	// String columns store text, "" is missing.
	String
)

func (k Kind) String() string {
	if k == Float {
		return "float64"
	}
	return "string"
}

type column struct {
	name    string
	kind    Kind
	floats  []float64
	strings []string
}

func (c *column) clone() *column {
	out := &column{name: c.name, kind: c.kind}
	if c.kind == Float {
		out.floats = append([]float64(nil), c.floats...)
	} else {
		out.strings = append([]string(nil), c.strings...)
	}
	return out
}

func (c *column) take(indices []int) *column {
	out := &column{name: c.name, kind: c.kind}
	if c.kind == Float {
		out.floats = make([]float64, len(indices))
		for i, idx := range indices {
			out.floats[i] = c.floats[idx]
		}
	} else {
		out.strings = make([]string, len(indices))
		for i, idx := range indices {
			out.strings[i] = c.strings[idx]
		}
	}
	return out
}

func (c *column) missing(i int) bool {
	if c.kind == Float {
		return math.IsNaN(c.floats[i])
	}
	return c.strings[i] == ""
}

// Frame is an ordered set of equal-length named columns.
type Frame struct {
	cols  []*column
	index map[string]int
	rows  int
}

// New returns an empty frame with no columns and no rows.
func New() *Frame {
	return &Frame{index: make(map[string]int)}
}

// Len returns the number of rows.
func (f *Frame) Len() int { return f.rows }

// Width returns the number of columns.
func (f *Frame) Width() int { return len(f.cols) }

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.name
	}
	return names
}

// Has reports whether the frame has a column called name.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Kind returns the storage kind of the named column.
func (f *Frame) Kind(name string) (Kind, bool) {
	i, ok := f.index[name]
	if !ok {
		return 0, false
	}
	return f.cols[i].kind, true
}

func (f *Frame) put(c *column, n int) error {
	if len(f.cols) > 0 && n != f.rows {
		return errors.NewDimensionError("Frame.Add("+c.name+")", f.rows, n, 0)
	}
	if f.index == nil {
		f.index = make(map[string]int)
	}
	f.rows = n
	if i, ok := f.index[c.name]; ok {
		f.cols[i] = c
		return nil
	}
	f.index[c.name] = len(f.cols)
	f.cols = append(f.cols, c)
	return nil
}

// AddFloat adds a numeric column, or replaces an existing column of the same
// name in place. The frame keeps the slice without copying it.
func (f *Frame) AddFloat(name string, values []float64) error {
	return f.put(&column{name: name, kind: Float, floats: values}, len(values))
}

// AddString adds a text column, or replaces an existing column of the same
// name in place. The frame keeps the slice without copying it.
func (f *Frame) AddString(name string, values []string) error {
	return f.put(&column{name: name, kind: String, strings: values}, len(values))
}

func (f *Frame) col(op, name string) (*column, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, errors.NewColumnError(op, name, "not found")
	}
	return f.cols[i], nil
}

// Float returns the backing slice of a numeric column. Writes through the
// slice are visible in the frame.
func (f *Frame) Float(name string) ([]float64, error) {
	c, err := f.col("Frame.Float", name)
	if err != nil {
		return nil, err
	}
	if c.kind != Float {
		return nil, errors.NewColumnError("Frame.Float", name, "is a string column")
	}
	return c.floats, nil
}

// String returns the backing slice of a text column.
func (f *Frame) String(name string) ([]string, error) {
	c, err := f.col("Frame.String", name)
	if err != nil {
		return nil, err
	}
	if c.kind != String {
		return nil, errors.NewColumnError("Frame.String", name, "is a numeric column")
	}
	return c.strings, nil
}

// Drop removes the named columns. Every name must exist.
func (f *Frame) Drop(names ...string) error {
	for _, name := range names {
		if !f.Has(name) {
			return errors.NewColumnError("Frame.Drop", name, "not found")
		}
	}
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		drop[name] = true
	}
	kept := f.cols[:0]
	for _, c := range f.cols {
		if !drop[c.name] {
			kept = append(kept, c)
		}
	}
	f.cols = kept
	f.reindex()
	if len(f.cols) == 0 {
		f.rows = 0
	}
	return nil
}

// Rename renames columns according to mapping old → new. Names absent from
// the frame are ignored; a rename onto an existing column is an error.
func (f *Frame) Rename(mapping map[string]string) error {
	for from, to := range mapping {
		if from == to || !f.Has(from) {
			continue
		}
		if _, renamedAway := mapping[to]; f.Has(to) && !renamedAway {
			return errors.NewColumnError("Frame.Rename", to, "already exists")
		}
	}
	for _, c := range f.cols {
		if to, ok := mapping[c.name]; ok {
			c.name = to
		}
	}
	f.reindex()
	return nil
}

func (f *Frame) reindex() {
	f.index = make(map[string]int, len(f.cols))
	for i, c := range f.cols {
		f.index[c.name] = i
	}
}

// Take returns a new frame made of the given rows, in the given order.
// Indices must be in range.
func (f *Frame) Take(indices []int) *Frame {
	out := &Frame{
		cols:  make([]*column, len(f.cols)),
		index: make(map[string]int, len(f.cols)),
		rows:  len(indices),
	}
	for i, c := range f.cols {
		out.cols[i] = c.take(indices)
		out.index[c.name] = i
	}
	return out
}

// Filter returns the rows where keep is true.
func (f *Frame) Filter(keep []bool) (*Frame, error) {
	if len(keep) != f.rows {
		return nil, errors.NewDimensionError("Frame.Filter", f.rows, len(keep), 0)
	}
	indices := make([]int, 0, len(keep))
	for i, k := range keep {
		if k {
			indices = append(indices, i)
		}
	}
	return f.Take(indices), nil
}

// DropRows returns the rows for which drop returns false, and the number of
// rows removed.
func (f *Frame) DropRows(drop func(row int) bool) (*Frame, int) {
	indices := make([]int, 0, f.rows)
	for i := 0; i < f.rows; i++ {
		if !drop(i) {
			indices = append(indices, i)
		}
	}
	return f.Take(indices), f.rows - len(indices)
}

// Select returns a new frame holding copies of the named columns in order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := New()
	for _, name := range names {
		c, err := f.col("Frame.Select", name)
		if err != nil {
			return nil, err
		}
		if err := out.put(c.clone(), f.rows); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		cols:  make([]*column, len(f.cols)),
		index: make(map[string]int, len(f.cols)),
		rows:  f.rows,
	}
	for i, c := range f.cols {
		out.cols[i] = c.clone()
		out.index[c.name] = i
	}
	return out
}

// Matrix copies the named numeric columns into a (rows × len(names)) matrix.
func (f *Frame) Matrix(names ...string) (*mat.Dense, error) {
	if f.rows == 0 {
		return nil, errors.NewValueError("Frame.Matrix", "frame has no rows")
	}
	if len(names) == 0 {
		return nil, errors.NewValueError("Frame.Matrix", "no columns requested")
	}
	m := mat.NewDense(f.rows, len(names), nil)
	for j, name := range names {
		values, err := f.Float(name)
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			m.Set(i, j, v)
		}
	}
	return m, nil
}

// Vector copies a numeric column into a vector.
func (f *Frame) Vector(name string) (*mat.VecDense, error) {
	values, err := f.Float(name)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, errors.NewValueError("Frame.Vector", "frame has no rows")
	}
	return mat.NewVecDense(len(values), append([]float64(nil), values...)), nil
}

// Median returns the median of the non-missing values of a numeric column,
// averaging the two middle values when their count is even. It returns NaN
// when every value is missing.
func (f *Frame) Median(name string) (float64, error) {
	values, err := f.Float(name)
	if err != nil {
		return 0, err
	}
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return math.NaN(), nil
	}
	sort.Float64s(present)
	mid := len(present) / 2
	if len(present)%2 == 1 {
		return present[mid], nil
	}
	return (present[mid-1] + present[mid]) / 2, nil
}

// IsNaN returns a 0/1 indicator that is 1 where the named column is missing.
func (f *Frame) IsNaN(name string) ([]float64, error) {
	c, err := f.col("Frame.IsNaN", name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, f.rows)
	for i := range out {
		if c.missing(i) {
			out[i] = 1
		}
	}
	return out, nil
}

// FillNaN replaces missing values of a numeric column with v and returns how
// many were replaced.
func (f *Frame) FillNaN(name string, v float64) (int, error) {
	values, err := f.Float(name)
	if err != nil {
		return 0, err
	}
	filled := 0
	for i, x := range values {
		if math.IsNaN(x) {
			values[i] = v
			filled++
		}
	}
	return filled, nil
}
