package model

import (
	"sync"

	"github.com/hopus-ml/hopus/pkg/errors"
)

// StateManager records whether an estimator has been fitted and on what shape.
// Estimators hold one and consult it at the top of Predict and Transform.
// The fields are exported so gob can encode them.
type StateManager struct {
	mu sync.RWMutex

	Fitted    bool
	NFeatures int
	NSamples  int
}

func NewStateManager() *StateManager {
	return &StateManager{}
}

func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// SetFitted は Fit の最後、係数を書き終えた後に呼ぶ
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	s.Fitted = true
	s.mu.Unlock()
}

// SetDimensions は学習に使った特徴量数と物件数を記録する
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.mu.Lock()
	s.NFeatures, s.NSamples = nFeatures, nSamples
	s.mu.Unlock()
}

func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NFeatures, s.NSamples
}

// RequireFitted は未学習なら NotFittedError を返す
func (s *StateManager) RequireFitted(modelName, method string) error {
	if s.IsFitted() {
		return nil
	}
	return errors.NewNotFittedError(modelName, method)
}

// RequireFeatures は予測時の列数が学習時と同じかを確認する
func (s *StateManager) RequireFeatures(op string, nFeatures int) error {
	s.mu.RLock()
	want := s.NFeatures
	s.mu.RUnlock()
	if nFeatures != want {
		return errors.NewDimensionError(op, want, nFeatures, 1)
	}
	return nil
}
