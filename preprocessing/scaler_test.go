package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hopus-ml/hopus/pkg/errors"
)

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 10,
		3, 10,
		4, 10,
	})
	s := NewStandardScalerDefault()

	_, err := s.Transform(X)
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))

	Xs, err := s.FitTransform(X)
	require.NoError(t, err)

	assert.InDelta(t, 2.5, s.Mean[0], 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), s.Scale[0], 1e-12)
	assert.Equal(t, 1.0, s.Scale[1], "constant column keeps unit scale")
	assert.InDelta(t, (1-2.5)/math.Sqrt(1.25), Xs.At(0, 0), 1e-12)
	assert.Equal(t, 0.0, Xs.At(2, 1))

	back, err := s.InverseTransform(Xs)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, back, 1e-12))

	_, err = s.Transform(mat.NewDense(1, 3, nil))
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))

	assert.Contains(t, s.String(), "n_features=2")
}

func TestStandardScalerOptions(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{2, 4})
	s := NewStandardScaler(false, false)
	Xs, err := s.FitTransform(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(X, Xs))
	assert.Equal(t, map[string]interface{}{"with_mean": false, "with_std": false}, s.GetParams())
}

func TestMinMaxScaler(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		0, 5,
		5, 5,
		10, 5,
	})
	m := NewMinMaxScaler([2]float64{-1, 1})
	Xs, err := m.FitTransform(X)
	require.NoError(t, err)
	assert.InDelta(t, -1, Xs.At(0, 0), 1e-12)
	assert.InDelta(t, 0, Xs.At(1, 0), 1e-12)
	assert.InDelta(t, 1, Xs.At(2, 0), 1e-12)
	assert.InDelta(t, -1, Xs.At(1, 1), 1e-12)

	back, err := m.InverseTransform(Xs)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, back, 1e-12))

	bad := NewMinMaxScaler([2]float64{1, 1})
	assert.Error(t, bad.Fit(X))
}
