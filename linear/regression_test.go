package linear

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hopus-ml/hopus/core/model"
	"github.com/hopus-ml/hopus/pkg/errors"
)

func TestLinearRegressionRecoversWeights(t *testing.T) {
	X, y := createBenchmarkData(500, 4)

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	assert.InDelta(t, 1.0, lr.Intercept(), 0.01)
	for j, c := range lr.Coef() {
		assert.InDelta(t, float64(j+1)*0.5, c, 0.01, "coef %d", j)
	}
	assert.Equal(t, 5, lr.Rank())

	score, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.99)
}

func TestLinearRegressionExactFit(t *testing.T) {
	// y = 2x + 3
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))
	assert.InDelta(t, 3.0, lr.Intercept(), 1e-10)
	assert.InDeltaSlice(t, []float64{2.0}, lr.Coef(), 1e-10)

	pred, err := lr.Predict(mat.NewDense(2, 1, []float64{10, -1}))
	require.NoError(t, err)
	assert.InDelta(t, 23.0, pred.At(0, 0), 1e-9)
	assert.InDelta(t, 1.0, pred.At(1, 0), 1e-9)
}

func TestLinearRegressionWithoutIntercept(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{2, 4, 6})

	lr := NewLinearRegression(WithFitIntercept(false))
	require.NoError(t, lr.Fit(X, y))
	assert.Equal(t, 0.0, lr.Intercept())
	assert.InDeltaSlice(t, []float64{2.0}, lr.Coef(), 1e-10)
	assert.Equal(t, false, lr.GetParams()["fit_intercept"])
}

func TestLinearRegressionRankDeficient(t *testing.T) {
	// the two dummy columns sum to the intercept column
	X := mat.NewDense(4, 3, []float64{
		1, 0, 1,
		0, 1, 2,
		1, 0, 3,
		0, 1, 4,
	})
	y := mat.NewDense(4, 1, []float64{11, 21, 13, 23})

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))
	assert.Equal(t, 3, lr.Rank())

	pred, err := lr.Predict(X)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		assert.InDelta(t, y.At(i, 0), pred.At(i, 0), 1e-8)
	}
}

func TestLinearRegressionPositive(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 4,
		2, 3,
		3, 2,
		4, 1,
	})
	y := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	lr := NewLinearRegression(WithPositive(true), WithFitIntercept(false))
	require.NoError(t, lr.Fit(X, y))
	for _, c := range lr.Coef() {
		assert.GreaterOrEqual(t, c, 0.0)
	}
}

func TestLinearRegressionPositiveRefitsIntercept(t *testing.T) {
	// y = 2*x0 - x1 + 5 exactly, so the unconstrained fit puts -1 on x1
	X := mat.NewDense(5, 2, []float64{
		1, 2,
		2, 1,
		3, 4,
		4, 3,
		5, 6,
	})
	y := mat.NewDense(5, 1, []float64{5, 8, 7, 10, 9})

	free := NewLinearRegression()
	require.NoError(t, free.Fit(X, y))
	assert.InDelta(t, -1.0, free.Coef()[1], 1e-9)

	lr := NewLinearRegression(WithPositive(true))
	require.NoError(t, lr.Fit(X, y))
	// least squares of y on x0 alone: slope 10/10, intercept 7.8 - 3
	assert.InDeltaSlice(t, []float64{1, 0}, lr.Coef(), 1e-9)
	assert.InDelta(t, 4.8, lr.Intercept(), 1e-9)
}

func TestLinearRegressionPositiveAllNegative(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{9, 8, 7})

	lr := NewLinearRegression(WithPositive(true))
	require.NoError(t, lr.Fit(X, y))
	assert.Equal(t, []float64{0}, lr.Coef())
	assert.InDelta(t, 8.0, lr.Intercept(), 1e-12)

	pred, err := lr.Predict(mat.NewDense(1, 1, []float64{10}))
	require.NoError(t, err)
	assert.InDelta(t, 8.0, pred.At(0, 0), 1e-12)
}

func TestLinearRegressionErrors(t *testing.T) {
	lr := NewLinearRegression()

	_, err := lr.Predict(mat.NewDense(1, 1, []float64{1}))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	err = lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(2, 1, []float64{1, 2}))
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))

	err = lr.Fit(mat.NewDense(2, 1, []float64{1, math.NaN()}), mat.NewDense(2, 1, []float64{1, 2}))
	var ni *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &ni))

	require.NoError(t, lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(3, 1, []float64{1, 2, 3})))
	_, err = lr.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	assert.True(t, errors.As(err, &de))
}

func TestRidgeShrinksTowardZero(t *testing.T) {
	X, y := createBenchmarkData(200, 3)

	ols := NewRidge(WithAlpha(0))
	require.NoError(t, ols.Fit(X, y))
	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))
	assert.InDeltaSlice(t, lr.Coef(), ols.Coef(), 1e-8)
	assert.InDelta(t, lr.Intercept(), ols.Intercept(), 1e-8)

	heavy := NewRidge(WithAlpha(1000))
	require.NoError(t, heavy.Fit(X, y))
	for j := range heavy.Coef() {
		assert.Less(t, math.Abs(heavy.Coef()[j]), math.Abs(ols.Coef()[j]))
	}
}

func TestRidgeKnownSolution(t *testing.T) {
	// centred x = [-1, 1], y = [-1, 1]: w = Σxy / (Σx² + α) = 2/3
	X := mat.NewDense(2, 1, []float64{0, 2})
	y := mat.NewDense(2, 1, []float64{4, 6})

	r := NewRidge(WithAlpha(1))
	require.NoError(t, r.Fit(X, y))
	assert.InDeltaSlice(t, []float64{2.0 / 3}, r.Coef(), 1e-12)
	assert.InDelta(t, 5-2.0/3, r.Intercept(), 1e-12)
	assert.Equal(t, 1.0, r.Alpha())
}

func TestRidgeValidation(t *testing.T) {
	err := NewRidge(WithAlpha(-1)).Fit(mat.NewDense(1, 1, []float64{1}), mat.NewDense(1, 1, []float64{1}))
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))

	// constant column without penalty
	err = NewRidge(WithAlpha(0)).Fit(mat.NewDense(3, 1, []float64{2, 2, 2}), mat.NewDense(3, 1, []float64{1, 2, 3}))
	assert.True(t, errors.Is(err, errors.ErrSingularMatrix))
}

func TestWeightsRoundTrip(t *testing.T) {
	X, y := createBenchmarkData(50, 3)
	r := NewRidge(WithAlpha(0.3))
	require.NoError(t, r.Fit(X, y))

	w, err := r.ExportWeights()
	require.NoError(t, err)
	data, err := w.ToJSON()
	require.NoError(t, err)

	restored := &model.ModelWeights{}
	require.NoError(t, restored.FromJSON(data))
	r2 := NewRidge()
	require.NoError(t, r2.ImportWeights(restored))
	assert.Equal(t, 0.3, r2.Alpha())

	p1, err := r.Predict(X)
	require.NoError(t, err)
	p2, err := r2.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(p1, p2, 1e-12))

	restored.Coefficients[0] += 1
	assert.Error(t, NewRidge().ImportWeights(restored))

	lr := NewLinearRegression()
	var ve *errors.ValidationError
	assert.True(t, errors.As(lr.ImportWeights(w), &ve), "ridge weights are not linear regression weights")
}

func TestSaveLoadModel(t *testing.T) {
	X, y := createBenchmarkData(50, 2)
	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	var buf bytes.Buffer
	require.NoError(t, model.SaveModelToWriter(lr, &buf))

	loaded := &LinearRegression{}
	require.NoError(t, model.LoadModelFromReader(loaded, &buf))
	assert.True(t, loaded.IsFitted())
	assert.InDeltaSlice(t, lr.Coef(), loaded.Coef(), 0)

	_, err := loaded.Predict(X)
	assert.NoError(t, err)

	unfitted := NewRidge()
	assert.Error(t, model.SaveModelToWriter(unfitted, &bytes.Buffer{}))
}
