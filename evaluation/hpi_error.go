// Package evaluation measures models by k-fold cross-validation, runs
// repeated experiments over random fold seeds, and computes the error
// baseline of the lagged home price index.
package evaluation

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hopus-ml/hopus/frame"
	"github.com/hopus-ml/hopus/metrics"
	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/preprocessing"
)

// HPIMSE is the mean squared error of estimating each sale price as
//
//	price · availableValueHomePriceIndex / trueValueHomePriceIndex
//
// which is the error introduced by having only the lagged index at the time
// of sale. target is preprocessing.PriceColumn or
// preprocessing.LogPriceColumn; for the latter, logs of both the price and the
// estimate are compared.
func HPIMSE(f *frame.Frame, target string) (float64, error) {
	if target != preprocessing.PriceColumn && target != preprocessing.LogPriceColumn {
		return 0, errors.NewValidationError("target", "must be price or logPrice", target)
	}
	price, err := f.Float(preprocessing.PriceColumn)
	if err != nil {
		return 0, err
	}
	available, err := f.Float(preprocessing.AvailableHPIColumn)
	if err != nil {
		return 0, err
	}
	trueValue, err := f.Float(preprocessing.TrueHPIColumn)
	if err != nil {
		return 0, err
	}
	if len(price) == 0 {
		return 0, errors.NewValueError("HPIMSE", "no listings")
	}

	truth := mat.NewVecDense(len(price), nil)
	estimate := mat.NewVecDense(len(price), nil)
	for i, p := range price {
		t, e := p, p*available[i]/trueValue[i]
		if target == preprocessing.LogPriceColumn {
			t, e = math.Log(t), math.Log(e)
		}
		truth.SetVec(i, t)
		estimate.SetVec(i, e)
	}
	return metrics.MSE(truth, estimate)
}

// HPIRMSE is the square root of HPIMSE.
func HPIRMSE(f *frame.Frame, target string) (float64, error) {
	mse, err := HPIMSE(f, target)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}
