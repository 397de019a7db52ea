package log

// Field keys. Related keys share a dotted prefix so records from different
// stages can be filtered together.
const (
	ModelNameKey   = "model.name"
	HyperParamsKey = "model.hyperparams"
	OperationKey   = "ml.operation"
	ComponentKey   = "ml.component"
	PhaseKey       = "ml.phase"

	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	ColumnKey   = "data.column"
	PathKey     = "data.path"

	// PipelineStepKey names a cleaning step such as "single_family" or "merge_hpi".
	PipelineStepKey = "pipeline.step"
	DroppedRowsKey  = "listing.dropped"
	FilledValuesKey = "listing.filled"

	DurationMsKey = "perf.duration_ms"

	// LossKey is a mean squared error unless the message says otherwise.
	LossKey      = "metrics.loss"
	TrainLossKey = "metrics.train_mse"
	TestLossKey  = "metrics.test_mse"
	FoldKey      = "cv.fold"
	SplitsKey    = "cv.splits"

	ExperimentIDKey = "experiment.id"
	RandomSeedKey   = "config.random_seed"

	ErrorCodeKey = "error.code"
)

// Values for OperationKey.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
)

// Values for PhaseKey.
const (
	PhaseValidation    = "validation"
	PhasePreprocessing = "preprocessing"
	PhaseVisualization = "visualization"
)

// Values for ErrorCodeKey.
const (
	ErrorEmptyData      = "EMPTY_DATA"
	ErrorSingularMatrix = "SINGULAR_MATRIX"
)
