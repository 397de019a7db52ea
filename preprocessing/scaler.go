package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/hopus-ml/hopus/core/model"
	"github.com/hopus-ml/hopus/pkg/errors"
)

// constantTol 以下の幅の列は定数列とみなし、スケール1のまま扱う
const constantTol = 1e-8

// Scaler は KNN の前段で特徴量の単位を揃える変換。学習データの統計だけを使う
type Scaler interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X mat.Matrix) (mat.Matrix, error)
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}

// fitColumns は X の各列を fn に渡し、状態を学習済みにする
func fitColumns(state *model.StateManager, op string, X mat.Matrix, fn func(j int, col []float64)) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		fn(j, mat.Col(col, j, X))
	}
	state.SetDimensions(c, r)
	state.SetFitted()
	return nil
}

// mapColumns は学習時と同じ列数であることを確認してから fn を要素ごとに適用する
func mapColumns(state *model.StateManager, name, method string, X mat.Matrix, fn func(j int, v float64) float64) (mat.Matrix, error) {
	if err := state.RequireFitted(name, method); err != nil {
		return nil, err
	}
	op := name + "." + method
	r, c := X.Dims()
	if err := state.RequireFeatures(op, c); err != nil {
		return nil, err
	}
	if r == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 { return fn(j, v) }, X)
	return out, nil
}

// StandardScaler は各列を平均0、母標準偏差1へ変換する
//
//	s := preprocessing.NewStandardScalerDefault()
//	Xs, err := s.FitTransform(XTrain)
type StandardScaler struct {
	state *model.StateManager

	Mean  []float64
	Scale []float64

	WithMean bool
	WithStd  bool
}

func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{state: model.NewStateManager(), WithMean: withMean, WithStd: withStd}
}

func NewStandardScalerDefault() *StandardScaler { return NewStandardScaler(true, true) }

func (s *StandardScaler) IsFitted() bool { return s.state.IsFitted() }

func (s *StandardScaler) Fit(X mat.Matrix) error {
	_, c := X.Dims()
	s.Mean, s.Scale = make([]float64, c), make([]float64, c)
	return fitColumns(s.state, "StandardScaler.Fit", X, func(j int, col []float64) {
		mean, std := stat.PopMeanStdDev(col, nil)
		if !s.WithMean {
			mean = 0
		}
		if !s.WithStd || math.IsNaN(std) || std < constantTol {
			std = 1
		}
		s.Mean[j], s.Scale[j] = mean, std
	})
}

func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	return mapColumns(s.state, "StandardScaler", "Transform", X, func(j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	})
}

func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	return mapColumns(s.state, "StandardScaler", "InverseTransform", X, func(j int, v float64) float64 {
		return v*s.Scale[j] + s.Mean[j]
	})
}

func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{"with_mean": s.WithMean, "with_std": s.WithStd}
}

func (s *StandardScaler) String() string {
	desc := fmt.Sprintf("with_mean=%t, with_std=%t", s.WithMean, s.WithStd)
	if s.IsFitted() {
		n, _ := s.state.GetDimensions()
		desc += fmt.Sprintf(", n_features=%d", n)
	}
	return "StandardScaler(" + desc + ")"
}

// MinMaxScaler は各列を学習データの最小値・最大値から FeatureRange へ線形に写す
type MinMaxScaler struct {
	state *model.StateManager

	DataMin []float64
	Scale   []float64 // max - min

	FeatureRange [2]float64
}

func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{state: model.NewStateManager(), FeatureRange: featureRange}
}

func NewMinMaxScalerDefault() *MinMaxScaler { return NewMinMaxScaler([2]float64{0, 1}) }

func (m *MinMaxScaler) IsFitted() bool { return m.state.IsFitted() }

func (m *MinMaxScaler) width() float64 { return m.FeatureRange[1] - m.FeatureRange[0] }

func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	if m.width() <= 0 {
		return errors.NewValidationError("feature_range", "minimum must be smaller than maximum", m.FeatureRange)
	}
	_, c := X.Dims()
	m.DataMin, m.Scale = make([]float64, c), make([]float64, c)
	return fitColumns(m.state, "MinMaxScaler.Fit", X, func(j int, col []float64) {
		lo, hi := floats.Min(col), floats.Max(col)
		m.DataMin[j] = lo
		m.Scale[j] = hi - lo
		if m.Scale[j] < constantTol {
			m.Scale[j] = 1
		}
	})
}

func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	w, lo := m.width(), m.FeatureRange[0]
	return mapColumns(m.state, "MinMaxScaler", "Transform", X, func(j int, v float64) float64 {
		return (v-m.DataMin[j])/m.Scale[j]*w + lo
	})
}

func (m *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	w, lo := m.width(), m.FeatureRange[0]
	return mapColumns(m.state, "MinMaxScaler", "InverseTransform", X, func(j int, v float64) float64 {
		return (v-lo)/w*m.Scale[j] + m.DataMin[j]
	})
}

func (m *MinMaxScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{"feature_range": m.FeatureRange}
}

func (m *MinMaxScaler) String() string {
	return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f])", m.FeatureRange[0], m.FeatureRange[1])
}
