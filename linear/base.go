// Package linear provides least squares and ridge regression on gonum
// matrices.
package linear

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/go-json-experiment/json"
	"gonum.org/v1/gonum/mat"

	"github.com/hopus-ml/hopus/core/model"
	"github.com/hopus-ml/hopus/core/parallel"
	"github.com/hopus-ml/hopus/metrics"
	"github.com/hopus-ml/hopus/pkg/errors"
)

// linearModel holds what LinearRegression and Ridge share: learned weights
// and prediction from them.
type linearModel struct {
	name  string
	state *model.StateManager

	coef      []float64
	intercept float64
}

func newLinearModel(name string) linearModel {
	return linearModel{name: name, state: model.NewStateManager()}
}

func checkFitInput(op string, X, y mat.Matrix) (rows, cols int, err error) {
	rows, cols = X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 || cols == 0 {
		return 0, 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if rows != yRows {
		return 0, 0, errors.NewDimensionError(op, rows, yRows, 0)
	}
	if yCols != 1 {
		return 0, 0, errors.NewDimensionError(op, 1, yCols, 1)
	}
	if err := errors.CheckMatrix(op, X, rows, cols); err != nil {
		return 0, 0, err
	}
	if err := errors.CheckMatrix(op, y, rows, 1); err != nil {
		return 0, 0, err
	}
	return rows, cols, nil
}

// withInterceptColumn returns [1 | X].
func withInterceptColumn(X mat.Matrix) *mat.Dense {
	r, c := X.Dims()
	out := mat.NewDense(r, c+1, nil)
	parallel.ParallelizeWithThreshold(r, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			out.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				out.Set(i, j+1, X.At(i, j))
			}
		}
	})
	return out
}

// Predict は入力データに対する予測を行う
func (m *linearModel) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted(m.name, "Predict"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if err := m.state.RequireFeatures(m.name+".Predict", cols); err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, errors.NewModelError(m.name+".Predict", "empty data", errors.ErrEmptyData)
	}

	w := mat.NewVecDense(cols, m.Coef())
	var pred mat.VecDense
	pred.MulVec(X, w)
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		out.Set(i, 0, pred.AtVec(i)+m.intercept)
	}
	return out, nil
}

// Score はモデルの決定係数（R²）を計算
func (m *linearModel) Score(X, y mat.Matrix) (float64, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}

// Coef は学習された重み係数のコピーを返す
func (m *linearModel) Coef() []float64 {
	if m.coef == nil {
		return nil
	}
	return append([]float64(nil), m.coef...)
}

// Intercept は学習された切片を返す
func (m *linearModel) Intercept() float64 {
	return m.intercept
}

// IsFitted returns whether the model has been fitted
func (m *linearModel) IsFitted() bool {
	return m.state.IsFitted()
}

func checksum(coef []float64, intercept float64) string {
	data, _ := json.Marshal(append(append([]float64(nil), coef...), intercept))
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func (m *linearModel) exportWeights(params map[string]interface{}) (*model.ModelWeights, error) {
	if !m.state.IsFitted() {
		return nil, errors.NewNotFittedError(m.name, "ExportWeights")
	}
	nFeatures, nSamples := m.state.GetDimensions()
	return &model.ModelWeights{
		ModelType:       m.name,
		Version:         model.WeightsVersion,
		Coefficients:    m.Coef(),
		Intercept:       m.intercept,
		IsFitted:        true,
		Hyperparameters: params,
		Metadata: map[string]interface{}{
			"n_features": nFeatures,
			"n_samples":  nSamples,
			"checksum":   checksum(m.coef, m.intercept),
		},
	}, nil
}

func (m *linearModel) importWeights(w *model.ModelWeights) error {
	if m.state == nil {
		m.state = model.NewStateManager()
	}
	if w == nil {
		return errors.NewValueError(m.name+".ImportWeights", "weights cannot be nil")
	}
	if w.ModelType != m.name {
		return errors.NewValidationError("model_type", "must be "+m.name, w.ModelType)
	}
	if err := w.Validate(); err != nil {
		return err
	}
	if sum, ok := w.Metadata["checksum"].(string); ok && sum != checksum(w.Coefficients, w.Intercept) {
		return errors.NewValueError(m.name+".ImportWeights", "checksum mismatch: weights may be corrupted")
	}

	m.coef = append([]float64(nil), w.Coefficients...)
	m.intercept = w.Intercept
	m.state.SetDimensions(len(m.coef), toInt(w.Metadata["n_samples"]))
	m.state.SetFitted()
	return nil
}

// gobEncode と gobDecode は ModelWeights の JSON を gob のペイロードとして使う
func gobEncode(e model.WeightExporter) ([]byte, error) {
	w, err := e.ExportWeights()
	if err != nil {
		return nil, err
	}
	return w.ToJSON()
}

func gobDecode(e model.WeightExporter, data []byte) error {
	w := &model.ModelWeights{}
	if err := w.FromJSON(data); err != nil {
		return err
	}
	return e.ImportWeights(w)
}

// toInt accepts both the int stored by ExportWeights and the float64 a JSON
// round trip turns it into.
func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
