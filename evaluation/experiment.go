package evaluation

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/hopus-ml/hopus/models"
	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/pkg/log"
)

// ExperimentSpec describes a repeated cross-validation of one model
// configuration.
type ExperimentSpec struct {
	Model           string
	Hyperparameters map[string]any
	NExperiments    int
	NSplits         int
	// PriceSpace evaluates log-price models on exponentiated values.
	PriceSpace bool
	// Seeds draws the fold seed of each run. Nil draws uniformly random
	// 32-bit seeds.
	Seeds func() uint32
}

// Record is the outcome of one cross-validation run.
type Record struct {
	ID              string
	Model           string
	Hyperparameters map[string]any
	NSplits         int
	Seed            uint32
	TrainCVMSE      float64
	TestCVMSE       float64
	StartedAt       time.Time
	FinishedAt      time.Time
}

// RunExperiment performs spec.NExperiments cross-validations of the model on
// (X, y), each with its own random fold seed, and returns one record per run
// in run order.
func RunExperiment(ctx context.Context, X, y mat.Matrix, spec ExperimentSpec) ([]Record, error) {
	if spec.NExperiments < 1 {
		return nil, errors.NewValidationError("n_experiments", "must be at least 1", spec.NExperiments)
	}
	if spec.NSplits == 0 {
		spec.NSplits = DefaultSplits
	}
	factory, err := models.NewFactory(spec.Model, spec.Hyperparameters)
	if err != nil {
		return nil, err
	}
	seeds := spec.Seeds
	if seeds == nil {
		seeds = rand.Uint32
	}
	opts := CVOptions{NSplits: spec.NSplits}
	if spec.PriceSpace {
		opts.Evaluate = []models.EvaluateOption{models.InPriceSpace()}
	}

	logger := log.GetLoggerWithName("evaluation")
	records := make([]Record, 0, spec.NExperiments)
	for i := 0; i < spec.NExperiments; i++ {
		seed := seeds()
		// a zero seed would be replaced by the default
		for seed == 0 {
			seed = seeds()
		}
		opts.Seed = uint64(seed)

		rec := Record{
			ID:              uuid.NewString(),
			Model:           spec.Model,
			Hyperparameters: spec.Hyperparameters,
			NSplits:         spec.NSplits,
			Seed:            seed,
			StartedAt:       time.Now().UTC(),
		}
		res, err := CVEvaluation(ctx, factory, X, y, opts)
		if err != nil {
			return records, errors.Wrapf(err, "experiment %s", rec.ID)
		}
		rec.TrainCVMSE, rec.TestCVMSE = res.TrainMSE, res.TestMSE
		rec.FinishedAt = time.Now().UTC()
		records = append(records, rec)

		logger.Info("Experiment completed",
			log.ExperimentIDKey, rec.ID,
			log.ModelNameKey, rec.Model,
			log.HyperParamsKey, rec.Hyperparameters,
			log.RandomSeedKey, rec.Seed,
			log.TrainLossKey, rec.TrainCVMSE,
			log.TestLossKey, rec.TestCVMSE,
		)
	}
	return records, nil
}

// RunExperiments runs the specs concurrently, at most workers at a time
// (workers < 1 means one per spec). Records are returned grouped by spec in
// the order of specs. The first failure cancels the remaining work.
func RunExperiments(ctx context.Context, X, y mat.Matrix, specs []ExperimentSpec, workers int) ([]Record, error) {
	results := make([][]Record, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, spec := range specs {
		g.Go(func() error {
			records, err := RunExperiment(ctx, X, y, spec)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Record
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}
