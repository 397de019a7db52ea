package linear

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/hopus-ml/hopus/core/model"
	"github.com/hopus-ml/hopus/pkg/errors"
)

// Ridge is least squares with an L2 penalty alpha·‖w‖² on the coefficients.
// The intercept is not penalised: X and y are centred, the penalised normal
// equations (XᵀX + αI)w = Xᵀy are solved by Cholesky factorisation, and the
// intercept is recovered from the means.
type Ridge struct {
	linearModel

	alpha        float64
	fitIntercept bool
}

var (
	_ model.Regressor      = (*Ridge)(nil)
	_ model.WeightExporter = (*Ridge)(nil)
	_ model.Regressor      = (*LinearRegression)(nil)
	_ model.WeightExporter = (*LinearRegression)(nil)
)

// NewRidge returns a Ridge with alpha 1 unless WithAlpha says otherwise.
func NewRidge(opts ...Option) *Ridge {
	cfg := defaults()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Ridge{
		linearModel:  newLinearModel("Ridge"),
		alpha:        cfg.alpha,
		fitIntercept: cfg.fitIntercept,
	}
}

// Fit solves the penalised least squares problem.
func (r *Ridge) Fit(X, y mat.Matrix) error {
	if r.alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", r.alpha)
	}
	rows, cols, err := checkFitInput("Ridge.Fit", X, y)
	if err != nil {
		return err
	}

	Xc := mat.DenseCopyOf(X)
	yc := mat.DenseCopyOf(y)
	xMean := make([]float64, cols)
	yMean := 0.0
	if r.fitIntercept {
		col := make([]float64, rows)
		for j := 0; j < cols; j++ {
			mat.Col(col, j, Xc)
			xMean[j] = stat.Mean(col, nil)
		}
		yMean = stat.Mean(mat.Col(nil, 0, yc), nil)
		Xc.Apply(func(i, j int, v float64) float64 { return v - xMean[j] }, Xc)
		yc.Apply(func(i, j int, v float64) float64 { return v - yMean }, yc)
	}

	var gram mat.SymDense
	gram.SymOuterK(1, Xc.T())
	for j := 0; j < cols; j++ {
		gram.SetSym(j, j, gram.At(j, j)+r.alpha)
	}

	var rhs mat.Dense
	rhs.Mul(Xc.T(), yc)

	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return errors.NewModelError("Ridge.Fit", "penalised gram matrix is not positive definite", errors.ErrSingularMatrix)
	}
	var w mat.Dense
	if err := chol.SolveTo(&w, &rhs); err != nil {
		return errors.NewModelError("Ridge.Fit", "cholesky solve failed", err)
	}

	r.coef = mat.Col(nil, 0, &w)
	r.intercept = 0
	if r.fitIntercept {
		r.intercept = yMean
		for j, c := range r.coef {
			r.intercept -= c * xMean[j]
		}
	}
	if err := errors.CheckNumericalStability("Ridge.Fit", r.coef, 0); err != nil {
		return err
	}

	r.state.SetDimensions(cols, rows)
	r.state.SetFitted()
	return nil
}

// Alpha returns the penalty strength.
func (r *Ridge) Alpha() float64 { return r.alpha }

// GetParams returns the model's hyperparameters
func (r *Ridge) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":         r.alpha,
		"fit_intercept": r.fitIntercept,
	}
}

// ExportWeights はモデルの重みをエクスポート
func (r *Ridge) ExportWeights() (*model.ModelWeights, error) {
	return r.exportWeights(r.GetParams())
}

// ImportWeights はモデルの重みをインポート
func (r *Ridge) ImportWeights(w *model.ModelWeights) error {
	if r.name == "" {
		r.name = "Ridge"
	}
	if err := r.importWeights(w); err != nil {
		return err
	}
	if v, ok := w.Hyperparameters["alpha"].(float64); ok {
		r.alpha = v
	}
	if v, ok := w.Hyperparameters["fit_intercept"].(bool); ok {
		r.fitIntercept = v
	}
	return nil
}

// GobEncode implements gob.GobEncoder.
func (r *Ridge) GobEncode() ([]byte, error) { return gobEncode(r) }

// GobDecode implements gob.GobDecoder.
func (r *Ridge) GobDecode(data []byte) error { return gobDecode(r, data) }
