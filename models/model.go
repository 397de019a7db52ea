// Package models gives the regressors a uniform Fit/Predict/Evaluate surface
// and builds them by name from a hyperparameter map.
//
//	m, err := models.New("ridge", map[string]any{"alpha": 10.0})
//	if err != nil {
//	    return err
//	}
//	if err := m.Fit(X, y); err != nil {
//	    return err
//	}
//	mse, err := m.Evaluate(XTest, yTest, models.InPriceSpace())
package models

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hopus-ml/hopus/core/model"
	"github.com/hopus-ml/hopus/metrics"
	"github.com/hopus-ml/hopus/pkg/errors"
)

// Model is a trainable regressor with a mean squared error evaluation.
type Model interface {
	model.Fitter
	model.Predictor

	// Evaluate returns the mean squared error between y and the prediction
	// for X.
	Evaluate(X, y mat.Matrix, opts ...EvaluateOption) (float64, error)

	// Name is the registry name the model was built under.
	Name() string

	// Params are the hyperparameters after defaults were applied.
	Params() map[string]any
}

type evaluateConfig struct {
	priceSpace bool
}

// EvaluateOption changes how Evaluate compares predictions with targets.
type EvaluateOption func(*evaluateConfig)

// InPriceSpace exponentiates both target and prediction before the error is
// computed, for models trained on logPrice.
func InPriceSpace() EvaluateOption {
	return func(c *evaluateConfig) { c.priceSpace = true }
}

// regressor is what every wrapped estimator provides.
type regressor interface {
	model.Fitter
	model.Predictor
	model.ParameterGetter
}

// estimator adapts a regressor to Model.
type estimator struct {
	name   string
	params map[string]any
	reg    regressor
}

func (e *estimator) Fit(X, y mat.Matrix) error {
	if err := e.reg.Fit(X, y); err != nil {
		return errors.Wrapf(err, "fit %s", e.name)
	}
	return nil
}

func (e *estimator) Predict(X mat.Matrix) (mat.Matrix, error) {
	return e.reg.Predict(X)
}

func (e *estimator) Evaluate(X, y mat.Matrix, opts ...EvaluateOption) (float64, error) {
	var cfg evaluateConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	pred, err := e.reg.Predict(X)
	if err != nil {
		return 0, err
	}
	if cfg.priceSpace {
		return MSEInPriceSpace(y, pred)
	}
	return metrics.MSEMatrix(y, pred)
}

func (e *estimator) Name() string { return e.name }

func (e *estimator) Params() map[string]any {
	out := make(map[string]any, len(e.params))
	for k, v := range e.params {
		out[k] = v
	}
	return out
}

// Unwrap returns the underlying estimator, e.g. a *linear.Ridge.
func (e *estimator) Unwrap() any { return e.reg }

// MSEInPriceSpace is the mean squared error between exp(yLog) and
// exp(predLog).
func MSEInPriceSpace(yLog, predLog mat.Matrix) (float64, error) {
	var yExp, pExp mat.Dense
	yExp.Apply(func(_, _ int, v float64) float64 { return math.Exp(v) }, yLog)
	pExp.Apply(func(_, _ int, v float64) float64 { return math.Exp(v) }, predLog)
	return metrics.MSEMatrix(&yExp, &pExp)
}
