package linear

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/hopus-ml/hopus/core/model"
	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/pkg/log"
)

// conditionLimit is the QR condition number above which the system is
// treated as rank deficient and solved by SVD instead.
const conditionLimit = 1e10

// rcond is the relative singular value cutoff used to determine the rank.
const rcond = 1e-12

// LinearRegression is ordinary least squares regression.
//
// The system is solved by QR decomposition. When the design matrix is rank
// deficient, as it is with a full set of one-hot columns plus an intercept,
// the minimum-norm solution from an SVD is used instead.
type LinearRegression struct {
	linearModel

	fitIntercept bool
	positive     bool
	rank         int
}

// NewLinearRegression は新しいLinearRegressionモデルを作成
//
//	reg := linear.NewLinearRegression()
//	if err := reg.Fit(X, y); err != nil {
//	    return err
//	}
//	pred, err := reg.Predict(XTest)
func NewLinearRegression(opts ...Option) *LinearRegression {
	cfg := defaults()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &LinearRegression{
		linearModel:  newLinearModel("LinearRegression"),
		fitIntercept: cfg.fitIntercept,
		positive:     cfg.positive,
	}
}

// Fit はモデルを訓練データで学習
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	rows, cols, err := checkFitInput("LinearRegression.Fit", X, y)
	if err != nil {
		return err
	}

	var XFit mat.Matrix = X
	if lr.fitIntercept {
		XFit = withInterceptColumn(X)
	}
	_, n := XFit.Dims()

	solution, rank, err := leastSquares(XFit, y)
	if err != nil {
		return errors.NewModelError("LinearRegression.Fit", "least squares solve failed", err)
	}
	lr.rank = rank
	if lr.rank < n {
		log.GetLoggerWithName("linear").Debug("Design matrix is rank deficient, using minimum-norm solution",
			log.ErrorCodeKey, log.ErrorSingularMatrix,
			"rank", lr.rank,
			log.FeaturesKey, n,
		)
	}

	support := make([]int, cols)
	for j := range support {
		support[j] = j
	}
	lr.assign(solution, support, cols)

	if lr.positive {
		if err := lr.refitNonNegative(X, y, support); err != nil {
			return errors.NewModelError("LinearRegression.Fit", "non-negative refit failed", err)
		}
	}

	if err := errors.CheckNumericalStability("LinearRegression.Fit", lr.coef, 0); err != nil {
		return err
	}

	lr.state.SetDimensions(cols, rows)
	lr.state.SetFitted()
	return nil
}

// leastSquares solves A x = b by QR, falling back to SVD for wide or
// ill-conditioned systems, and returns x with the numerical rank of A.
func leastSquares(A, b mat.Matrix) (*mat.Dense, int, error) {
	rows, n := A.Dims()
	solution := mat.NewDense(n, 1, nil)
	if rows < n {
		rank, err := solveSVD(solution, A, b)
		return solution, rank, err
	}
	var qr mat.QR
	qr.Factorize(A)
	if qr.Cond() > conditionLimit {
		rank, err := solveSVD(solution, A, b)
		return solution, rank, err
	}
	if err := qr.SolveTo(solution, false, b); err != nil {
		return nil, 0, err
	}
	return solution, n, nil
}

// assign は解ベクトルをsupportの列の係数と切片に展開する
func (lr *LinearRegression) assign(solution *mat.Dense, support []int, cols int) {
	lr.coef = make([]float64, cols)
	lr.intercept = 0
	offset := 0
	if lr.fitIntercept {
		lr.intercept = solution.At(0, 0)
		offset = 1
	}
	for k, j := range support {
		lr.coef[j] = solution.At(k+offset, 0)
	}
}

// refitNonNegative drops columns whose coefficient is negative and refits
// the intercept and the remaining columns, until no coefficient is negative.
// Every pass removes at least one column. The result is an active-set
// approximation of non-negative least squares, not an exact NNLS solve.
func (lr *LinearRegression) refitNonNegative(X, y mat.Matrix, support []int) error {
	rows, cols := X.Dims()
	for {
		kept := make([]int, 0, len(support))
		for _, j := range support {
			if lr.coef[j] >= 0 {
				kept = append(kept, j)
			}
		}
		if len(kept) == len(support) {
			return nil
		}
		support = kept

		if len(support) == 0 {
			lr.coef = make([]float64, cols)
			lr.intercept = 0
			if lr.fitIntercept {
				lr.intercept = stat.Mean(mat.Col(nil, 0, y), nil)
			}
			return nil
		}

		sub := mat.NewDense(rows, len(support), nil)
		for k, j := range support {
			for i := 0; i < rows; i++ {
				sub.Set(i, k, X.At(i, j))
			}
		}
		var A mat.Matrix = sub
		if lr.fitIntercept {
			A = withInterceptColumn(sub)
		}
		solution, _, err := leastSquares(A, y)
		if err != nil {
			return err
		}
		lr.assign(solution, support, cols)
	}
}

// solveSVD writes the minimum-norm least squares solution of A x = b into
// dst and returns the numerical rank of A.
func solveSVD(dst *mat.Dense, A, b mat.Matrix) (int, error) {
	var svd mat.SVD
	if ok := svd.Factorize(A, mat.SVDThin); !ok {
		return 0, errors.ErrSingularMatrix
	}
	rank := svd.Rank(rcond)
	if rank == 0 {
		return 0, errors.ErrSingularMatrix
	}
	svd.SolveTo(dst, b, rank)
	return rank, nil
}

// Rank returns the numerical rank of the design matrix seen by Fit,
// including the intercept column.
func (lr *LinearRegression) Rank() int { return lr.rank }

// GetParams returns the model's hyperparameters
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.fitIntercept,
		"positive":      lr.positive,
	}
}

// ExportWeights はモデルの重みをエクスポート
func (lr *LinearRegression) ExportWeights() (*model.ModelWeights, error) {
	return lr.exportWeights(lr.GetParams())
}

// ImportWeights はモデルの重みをインポート
func (lr *LinearRegression) ImportWeights(w *model.ModelWeights) error {
	if lr.name == "" {
		lr.name = "LinearRegression"
	}
	if err := lr.importWeights(w); err != nil {
		return err
	}
	if v, ok := w.Hyperparameters["fit_intercept"].(bool); ok {
		lr.fitIntercept = v
	}
	if v, ok := w.Hyperparameters["positive"].(bool); ok {
		lr.positive = v
	}
	return nil
}

// GobEncode implements gob.GobEncoder.
func (lr *LinearRegression) GobEncode() ([]byte, error) { return gobEncode(lr) }

// GobDecode implements gob.GobDecoder.
func (lr *LinearRegression) GobDecode(data []byte) error { return gobDecode(lr, data) }
