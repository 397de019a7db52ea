// Package model holds what the hopus regressors share: the Fit/Predict
// contracts, fitted-state bookkeeping and weight snapshots for persistence.
//
// X is always (n_listings, n_features) and y is (n_listings, 1).
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter は設計行列と目的変数 (price または logPrice) から学習する
type Fitter interface {
	Fit(X, y mat.Matrix) error
}

// Predictor は学習済みの状態から (n_listings, 1) の予測を返す
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer は R² を返す
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Regressor は linear と neighbors の全モデルが満たす
type Regressor interface {
	Fitter
	Predictor
	Scorer
}

// ParameterGetter は構築後のハイパーパラメータを返す。実験記録のラベルに使われる
type ParameterGetter interface {
	GetParams() map[string]interface{}
}

// WeightExporter is a model whose learned state fits in ModelWeights.
// The linear models implement it; KNN keeps its training set instead.
type WeightExporter interface {
	ExportWeights() (*ModelWeights, error)
	ImportWeights(weights *ModelWeights) error
}
