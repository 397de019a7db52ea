package evaluation

import (
	"context"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/hopus-ml/hopus/models"
	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/pkg/log"
)

// Cross-validation defaults.
const (
	DefaultSplits = 5
	DefaultSeed   = 2026
)

// CVOptions configures CVEvaluation. Zero values take the defaults.
type CVOptions struct {
	NSplits int
	Seed    uint64

	// Evaluate is passed to every Model.Evaluate call, e.g.
	// models.InPriceSpace().
	Evaluate []models.EvaluateOption
}

func (o CVOptions) withDefaults() CVOptions {
	if o.NSplits == 0 {
		o.NSplits = DefaultSplits
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	return o
}

// CVResult holds the per-fold and averaged errors of a cross-validation run.
type CVResult struct {
	TrainMSE  float64
	TestMSE   float64
	FoldTrain []float64
	FoldTest  []float64
	// Models are the fitted models, one per fold.
	Models []models.Model
}

// CVEvaluation trains a fresh model from factory on each shuffled k-fold
// training split and records its mean squared error on both the training
// and the held-out rows. A panic inside a model is returned as an
// errors.PanicError.
func CVEvaluation(ctx context.Context, factory models.Factory, X, y mat.Matrix, opts CVOptions) (*CVResult, error) {
	opts = opts.withDefaults()
	rows, _ := X.Dims()
	if yRows, _ := y.Dims(); yRows != rows {
		return nil, errors.NewDimensionError("CVEvaluation", rows, yRows, 0)
	}
	folds, err := KFold{NSplits: opts.NSplits, Shuffle: true, Seed: opts.Seed}.Split(rows)
	if err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("evaluation").With(
		log.PhaseKey, log.PhaseValidation,
		log.SplitsKey, opts.NSplits,
		log.RandomSeedKey, opts.Seed,
	)
	start := time.Now()
	res := &CVResult{
		FoldTrain: make([]float64, len(folds)),
		FoldTest:  make([]float64, len(folds)),
		Models:    make([]models.Model, len(folds)),
	}
	for i, fold := range folds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m := factory()
		err := errors.SafeExecute("CVEvaluation.fold"+strconv.Itoa(i), func() error {
			XTrain, yTrain := takeRows(X, fold.Train), takeRows(y, fold.Train)
			if err := m.Fit(XTrain, yTrain); err != nil {
				return err
			}
			train, err := m.Evaluate(XTrain, yTrain, opts.Evaluate...)
			if err != nil {
				return err
			}
			test, err := m.Evaluate(takeRows(X, fold.Test), takeRows(y, fold.Test), opts.Evaluate...)
			if err != nil {
				return err
			}
			res.FoldTrain[i], res.FoldTest[i] = train, test
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", i)
		}
		res.Models[i] = m
		logger.Debug("Fold evaluated",
			log.ModelNameKey, m.Name(),
			log.FoldKey, i,
			log.TrainLossKey, res.FoldTrain[i],
			log.TestLossKey, res.FoldTest[i],
		)
	}

	res.TrainMSE = stat.Mean(res.FoldTrain, nil)
	res.TestMSE = stat.Mean(res.FoldTest, nil)
	logger.Info("Cross-validation completed",
		log.ModelNameKey, res.Models[0].Name(),
		log.SamplesKey, rows,
		log.TrainLossKey, res.TrainMSE,
		log.TestLossKey, res.TestMSE,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// takeRows copies the given rows of m.
func takeRows(m mat.Matrix, rows []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for i, r := range rows {
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(r, j))
		}
	}
	return out
}
