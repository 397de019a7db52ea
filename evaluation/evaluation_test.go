package evaluation

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gonum.org/v1/gonum/mat"

	"github.com/hopus-ml/hopus/frame"
	"github.com/hopus-ml/hopus/models"
	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/preprocessing"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func linearData(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		a, b := float64(i), float64((i*7)%5)
		X.Set(i, 0, a)
		X.Set(i, 1, b)
		// small deterministic wiggle keeps the fit from being exact
		y.Set(i, 0, 3+2*a-b+0.1*math.Sin(float64(i)))
	}
	return X, y
}

func TestKFoldSizes(t *testing.T) {
	folds, err := KFold{NSplits: 3}.Split(10)
	require.NoError(t, err)
	require.Len(t, folds, 3)
	assert.Equal(t, []int{0, 1, 2, 3}, folds[0].Test)
	assert.Equal(t, []int{4, 5, 6}, folds[1].Test)
	assert.Equal(t, []int{7, 8, 9}, folds[2].Test)
	assert.Equal(t, []int{0, 1, 2, 3, 7, 8, 9}, folds[1].Train)
}

func TestKFoldShuffleIsDeterministicPartition(t *testing.T) {
	kf := KFold{NSplits: 4, Shuffle: true, Seed: 99}
	a, err := kf.Split(23)
	require.NoError(t, err)
	b, err := kf.Split(23)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(a, b))

	seen := make(map[int]int)
	for i, f := range a {
		if i < 23%4 {
			assert.Len(t, f.Test, 6)
		} else {
			assert.Len(t, f.Test, 5)
		}
		assert.Len(t, f.Train, 23-len(f.Test))
		for _, idx := range f.Test {
			seen[idx]++
		}
	}
	assert.Len(t, seen, 23)
	for idx, count := range seen {
		assert.Equal(t, 1, count, "row %d", idx)
	}

	c, err := KFold{NSplits: 4, Shuffle: true, Seed: 100}.Split(23)
	require.NoError(t, err)
	assert.NotEmpty(t, cmp.Diff(a, c))
}

func TestKFoldValidation(t *testing.T) {
	_, err := KFold{NSplits: 1}.Split(10)
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = KFold{NSplits: 5}.Split(3)
	assert.Error(t, err)
}

func TestHPIMSE(t *testing.T) {
	f := frame.New()
	require.NoError(t, f.AddFloat(preprocessing.PriceColumn, []float64{100, 200}))
	require.NoError(t, f.AddFloat(preprocessing.TrueHPIColumn, []float64{110, 100}))
	require.NoError(t, f.AddFloat(preprocessing.AvailableHPIColumn, []float64{100, 100}))

	// estimates 100·100/110 and 200
	diff := 100 - 100*100.0/110
	mse, err := HPIMSE(f, preprocessing.PriceColumn)
	require.NoError(t, err)
	assert.InDelta(t, diff*diff/2, mse, 1e-9)

	rmse, err := HPIRMSE(f, preprocessing.PriceColumn)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(diff*diff/2), rmse, 1e-9)

	logDiff := math.Log(110.0 / 100)
	logMSE, err := HPIMSE(f, preprocessing.LogPriceColumn)
	require.NoError(t, err)
	assert.InDelta(t, logDiff*logDiff/2, logMSE, 1e-12)

	_, err = HPIMSE(f, "pricePerSqFt")
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = HPIMSE(frame.New(), preprocessing.PriceColumn)
	var ce *errors.ColumnError
	assert.True(t, errors.As(err, &ce))
}

func TestCVEvaluation(t *testing.T) {
	X, y := linearData(40)
	factory, err := models.NewFactory(models.LinearRegression, nil)
	require.NoError(t, err)

	res, err := CVEvaluation(context.Background(), factory, X, y, CVOptions{})
	require.NoError(t, err)
	require.Len(t, res.Models, DefaultSplits)
	require.Len(t, res.FoldTest, DefaultSplits)
	assert.Less(t, res.TrainMSE, 0.01)
	assert.Less(t, res.TestMSE, 0.02)
	assert.InDelta(t, (res.FoldTest[0]+res.FoldTest[1]+res.FoldTest[2]+res.FoldTest[3]+res.FoldTest[4])/5, res.TestMSE, 1e-15)

	again, err := CVEvaluation(context.Background(), factory, X, y, CVOptions{})
	require.NoError(t, err)
	assert.Equal(t, res.FoldTest, again.FoldTest)

	other, err := CVEvaluation(context.Background(), factory, X, y, CVOptions{NSplits: 4, Seed: 7})
	require.NoError(t, err)
	assert.Len(t, other.Models, 4)
}

type panicky struct{ models.Model }

func (panicky) Fit(X, y mat.Matrix) error { panic("boom") }
func (panicky) Name() string              { return "panicky" }

func TestCVEvaluationRecoversPanics(t *testing.T) {
	X, y := linearData(10)
	_, err := CVEvaluation(context.Background(), func() models.Model { return panicky{} }, X, y, CVOptions{})
	var pe *errors.PanicError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), "boom")
}

func TestCVEvaluationHonoursContext(t *testing.T) {
	X, y := linearData(10)
	factory, err := models.NewFactory(models.Ridge, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = CVEvaluation(ctx, factory, X, y, CVOptions{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func fixedSeeds(seeds ...uint32) func() uint32 {
	i := 0
	return func() uint32 {
		s := seeds[i%len(seeds)]
		i++
		return s
	}
}

func TestRunExperiment(t *testing.T) {
	X, y := linearData(30)
	spec := ExperimentSpec{
		Model:           models.Ridge,
		Hyperparameters: map[string]any{"alpha": 0.1},
		NExperiments:    3,
		NSplits:         3,
		Seeds:           fixedSeeds(11, 0, 12, 11),
	}
	records, err := RunExperiment(context.Background(), X, y, spec)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []uint32{11, 12, 11}, []uint32{records[0].Seed, records[1].Seed, records[2].Seed})
	assert.Equal(t, records[0].TestCVMSE, records[2].TestCVMSE, "same seed, same folds")
	assert.NotEqual(t, records[0].ID, records[2].ID)
	for _, r := range records {
		assert.Equal(t, 3, r.NSplits)
		assert.Equal(t, models.Ridge, r.Model)
		assert.False(t, r.FinishedAt.Before(r.StartedAt))
	}

	_, err = RunExperiment(context.Background(), X, y, ExperimentSpec{Model: models.Ridge})
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = RunExperiment(context.Background(), X, y, ExperimentSpec{Model: "svr", NExperiments: 1})
	assert.True(t, errors.As(err, &ve))
}

func TestRunExperimentDrawsFreshSeeds(t *testing.T) {
	X, y := linearData(30)
	records, err := RunExperiment(context.Background(), X, y, ExperimentSpec{
		Model:        models.LinearRegression,
		NExperiments: 3,
		NSplits:      3,
	})
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, r := range records {
		assert.NotZero(t, r.Seed)
	}
}

func TestRunExperimentsConcurrently(t *testing.T) {
	X, y := linearData(30)
	specs := []ExperimentSpec{
		{Model: models.LinearRegression, NExperiments: 2, Seeds: fixedSeeds(1, 2)},
		{Model: models.KNN, Hyperparameters: map[string]any{"n_neighbors": 3}, NExperiments: 2, Seeds: fixedSeeds(3, 4)},
		{Model: models.Ridge, NExperiments: 1, Seeds: fixedSeeds(5)},
	}
	records, err := RunExperiments(context.Background(), X, y, specs, 2)
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, models.LinearRegression, records[0].Model)
	assert.Equal(t, models.KNN, records[2].Model)
	assert.Equal(t, models.Ridge, records[4].Model)

	specs = append(specs, ExperimentSpec{Model: models.KNN, Hyperparameters: map[string]any{"n_neighbors": 100}, NExperiments: 1})
	_, err = RunExperiments(context.Background(), X, y, specs, 0)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	records := []Record{
		{Model: "ridge", Hyperparameters: map[string]any{"alpha": 1.0}, TrainCVMSE: 1, TestCVMSE: 2},
		{Model: "knn", TrainCVMSE: 0.5, TestCVMSE: 1},
		{Model: "ridge", Hyperparameters: map[string]any{"alpha": 1.0}, TrainCVMSE: 3, TestCVMSE: 4},
	}
	got := Summarize(records)
	require.Len(t, got, 2)

	assert.Equal(t, "knn()", got[0].Label())
	assert.Equal(t, 1, got[0].Runs)
	assert.Equal(t, 0.0, got[0].TestStd)

	assert.Equal(t, "ridge(alpha=1)", got[1].Label())
	assert.Equal(t, 2, got[1].Runs)
	assert.Equal(t, 2.0, got[1].TrainMean)
	assert.Equal(t, 3.0, got[1].TestMean)
	assert.InDelta(t, math.Sqrt2, got[1].TestStd, 1e-12)
}
