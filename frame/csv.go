package frame

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hopus-ml/hopus/pkg/errors"
)

// ReadCSV reads a header-first CSV table. A column becomes numeric when every
// non-empty cell parses as a float; empty cells are then NaN. Otherwise the
// column is kept as text.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	if len(records) == 0 {
		return nil, errors.NewValueError("frame.ReadCSV", "missing header row")
	}

	header := records[0]
	body := records[1:]
	f := New()
	for j, name := range header {
		name = strings.TrimSpace(name)
		if f.Has(name) {
			return nil, errors.NewColumnError("frame.ReadCSV", name, "duplicate header")
		}
		cells := make([]string, len(body))
		for i, rec := range body {
			cells[i] = strings.TrimSpace(rec[j])
		}
		if floats, ok := parseFloats(cells); ok {
			err = f.AddFloat(name, floats)
		} else {
			err = f.AddString(name, cells)
		}
		if err != nil {
			return nil, err
		}
	}
	if len(header) > 0 {
		f.rows = len(body)
	}
	return f, nil
}

func parseFloats(cells []string) ([]float64, bool) {
	out := make([]float64, len(cells))
	for i, cell := range cells {
		if cell == "" {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()
	return ReadCSV(file)
}

// WriteCSV writes the frame with a header row. Missing numeric values are
// written as empty cells.
func (f *Frame) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.Names()); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	record := make([]string, len(f.cols))
	for i := 0; i < f.rows; i++ {
		for j, c := range f.cols {
			if c.kind == String {
				record[j] = c.strings[i]
				continue
			}
			v := c.floats[i]
			if math.IsNaN(v) {
				record[j] = ""
			} else {
				record[j] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrapf(err, "write csv row %d", i)
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "flush csv")
}

// WriteCSVFile writes the frame to path, creating or truncating it.
func (f *Frame) WriteCSVFile(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	return f.WriteCSV(file)
}
