// Package neighbors implements k-nearest-neighbour regression over a k-d
// tree.
package neighbors

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/hopus-ml/hopus/core/model"
	"github.com/hopus-ml/hopus/core/parallel"
	"github.com/hopus-ml/hopus/metrics"
	"github.com/hopus-ml/hopus/pkg/errors"
)

// Weights selects how neighbour targets are averaged.
type Weights string

const (
	// Uniform gives every neighbour the same weight.
	Uniform Weights = "uniform"
	// Distance weights neighbours by the inverse of their distance. Exact
	// matches, when present, take all the weight.
	Distance Weights = "distance"
)

// DefaultNeighbors is the k used when none is given.
const DefaultNeighbors = 5

// KNeighborsRegressor predicts the (weighted) mean target of the k nearest
// training rows in Euclidean distance.
type KNeighborsRegressor struct {
	state *model.StateManager

	nNeighbors int
	weights    Weights
	tree       *kdtree.Tree
}

var _ model.Regressor = (*KNeighborsRegressor)(nil)

// Option configures a KNeighborsRegressor.
type Option func(*KNeighborsRegressor)

// WithNeighbors sets k.
func WithNeighbors(k int) Option {
	return func(r *KNeighborsRegressor) { r.nNeighbors = k }
}

// WithWeights sets the averaging scheme.
func WithWeights(w Weights) Option {
	return func(r *KNeighborsRegressor) { r.weights = w }
}

// NewKNeighborsRegressor は新しいKNeighborsRegressorを作成
func NewKNeighborsRegressor(opts ...Option) *KNeighborsRegressor {
	r := &KNeighborsRegressor{
		state:      model.NewStateManager(),
		nNeighbors: DefaultNeighbors,
		weights:    Uniform,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fit はk-d木を訓練データから構築する
func (r *KNeighborsRegressor) Fit(X, y mat.Matrix) error {
	if r.nNeighbors < 1 {
		return errors.NewValidationError("n_neighbors", "must be at least 1", r.nNeighbors)
	}
	if r.weights != Uniform && r.weights != Distance {
		return errors.NewValidationError("weights", "must be uniform or distance", string(r.weights))
	}

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("KNeighborsRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if rows != yRows {
		return errors.NewDimensionError("KNeighborsRegressor.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("KNeighborsRegressor.Fit", 1, yCols, 1)
	}
	if rows < r.nNeighbors {
		return errors.NewValueError("KNeighborsRegressor.Fit",
			fmt.Sprintf("n_neighbors=%d exceeds n_samples=%d", r.nNeighbors, rows))
	}
	if err := errors.CheckMatrix("KNeighborsRegressor.Fit", X, rows, cols); err != nil {
		return err
	}
	if err := errors.CheckMatrix("KNeighborsRegressor.Fit", y, rows, 1); err != nil {
		return err
	}

	pts := make(samples, rows)
	for i := range pts {
		pts[i] = sample{x: mat.Row(nil, i, X), y: y.At(i, 0)}
	}
	r.tree = kdtree.New(pts, false)

	r.state.SetDimensions(cols, rows)
	r.state.SetFitted()
	return nil
}

// Predict は各行について近傍の目的変数の平均を返す
func (r *KNeighborsRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := r.state.RequireFitted("KNeighborsRegressor", "Predict"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if err := r.state.RequireFeatures("KNeighborsRegressor.Predict", cols); err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, errors.NewModelError("KNeighborsRegressor.Predict", "empty data", errors.ErrEmptyData)
	}

	out := mat.NewDense(rows, 1, nil)
	parallel.ParallelizeWithThreshold(rows, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			out.Set(i, 0, r.predictOne(mat.Row(nil, i, X)))
		}
	})
	return out, nil
}

func (r *KNeighborsRegressor) predictOne(x []float64) float64 {
	keep := kdtree.NewNKeeper(r.nNeighbors)
	r.tree.NearestSet(keep, sample{x: x})

	var sum, weight float64
	exact := false
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		y := c.Comparable.(sample).y
		switch {
		case r.weights == Uniform:
			sum += y
			weight++
		case c.Dist == 0:
			if !exact {
				exact = true
				sum, weight = 0, 0
			}
			sum += y
			weight++
		case !exact:
			w := 1 / math.Sqrt(c.Dist)
			sum += w * y
			weight += w
		}
	}
	return sum / weight
}

// Score はモデルの決定係数（R²）を計算
func (r *KNeighborsRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}

// IsFitted returns whether the model has been fitted
func (r *KNeighborsRegressor) IsFitted() bool { return r.state.IsFitted() }

// GetParams returns the model's hyperparameters
func (r *KNeighborsRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_neighbors": r.nNeighbors,
		"weights":     string(r.weights),
	}
}
