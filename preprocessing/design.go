package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/hopus-ml/hopus/frame"
	"github.com/hopus-ml/hopus/pkg/errors"
)

// FeatureMatrix builds the (n_samples, len(names)) design matrix. Missing
// values are an error, since no model accepts them.
func FeatureMatrix(f *frame.Frame, names []string) (*mat.Dense, error) {
	X, err := f.Matrix(names...)
	if err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := errors.CheckMatrix("FeatureMatrix", X, r, c); err != nil {
		return nil, err
	}
	return X, nil
}

// TargetVector returns the named column as an (n_samples, 1) matrix.
func TargetVector(f *frame.Frame, name string) (*mat.Dense, error) {
	values, err := f.Float(name)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, errors.NewModelError("TargetVector", "empty data", errors.ErrEmptyData)
	}
	y := mat.NewDense(len(values), 1, append([]float64(nil), values...))
	if err := errors.CheckMatrix("TargetVector", y, len(values), 1); err != nil {
		return nil, err
	}
	return y, nil
}

// Dataset is a design matrix with its target and column names.
type Dataset struct {
	X        *mat.Dense
	Y        *mat.Dense
	Features []string
	Target   string
}

// NewDataset groups f with groups and builds the design matrix from its
// prediction features and the target column.
func NewDataset(f *frame.Frame, groups *ColumnGroups, target string) (*Dataset, error) {
	grouped, err := GroupColumns(f, groups)
	if err != nil {
		return nil, err
	}
	features := grouped.PredictionFeatures()
	X, err := FeatureMatrix(f, features)
	if err != nil {
		return nil, err
	}
	y, err := TargetVector(f, target)
	if err != nil {
		return nil, err
	}
	return &Dataset{X: X, Y: y, Features: features, Target: target}, nil
}
