package models

import (
	"gonum.org/v1/gonum/mat"

	"github.com/hopus-ml/hopus/preprocessing"
)

// scaled fits a scaler on the training features and feeds the scaled
// features to the wrapped regressor.
type scaled struct {
	scaler preprocessing.Scaler
	reg    regressor
}

func (s *scaled) Fit(X, y mat.Matrix) error {
	Xs, err := s.scaler.FitTransform(X)
	if err != nil {
		return err
	}
	return s.reg.Fit(Xs, y)
}

func (s *scaled) Predict(X mat.Matrix) (mat.Matrix, error) {
	Xs, err := s.scaler.Transform(X)
	if err != nil {
		return nil, err
	}
	return s.reg.Predict(Xs)
}

func (s *scaled) GetParams() map[string]interface{} {
	return s.reg.GetParams()
}
