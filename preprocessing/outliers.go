package preprocessing

import (
	"github.com/hopus-ml/hopus/frame"
	"github.com/hopus-ml/hopus/pkg/errors"
)

// Default outlier cutoffs on timeNormalizedPricePerSqFt. On the preliminary
// data each removes about a dozen of some 1,700 listings.
const (
	DefaultLowCutoff  = 0.2
	DefaultHighCutoff = 2.0
)

// DropOutliers removes listings whose time-normalised price per square foot
// lies outside [low, high]. These are sales whose price is explained by
// something the data does not capture.
func DropOutliers(f *frame.Frame, low, high float64) (*frame.Frame, error) {
	if low > high {
		return nil, errors.NewValidationError("cutoff", "low cutoff exceeds high cutoff", [2]float64{low, high})
	}
	values, err := f.Float(TimeNormalizedPricePerSqFtColumn)
	if err != nil {
		return nil, err
	}
	out, dropped := f.DropRows(func(i int) bool {
		return values[i] < low || values[i] > high
	})
	stepLogger("drop_outliers").Debug("Dropped outliers",
		append(droppedRows(dropped, out.Len()), "low", low, "high", high)...)
	return out, nil
}
