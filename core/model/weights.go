package model

import (
	"maps"
	"slices"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/hopus-ml/hopus/pkg/errors"
)

// WeightsVersion は ModelWeights の JSON 形式のバージョン
const WeightsVersion = "1"

// ModelWeights は線形モデルの学習結果のスナップショット。
// Coefficients は設計行列の列順、Features があればその列名と同じ長さになる。
// Metadata には n_samples など学習時の情報を入れる
type ModelWeights struct {
	ModelType       string                 `json:"model_type"`
	Version         string                 `json:"version"`
	Coefficients    []float64              `json:"coefficients"`
	Intercept       float64                `json:"intercept"`
	Features        []string               `json:"features,omitempty"`
	Hyperparameters map[string]interface{} `json:"hyperparameters"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	IsFitted        bool                   `json:"is_fitted"`
}

// ToJSON は2スペースでインデントした JSON を返す
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	data, err := json.Marshal(mw, jsontext.WithIndent("  "))
	if err != nil {
		return nil, errors.Wrap(err, "marshal model weights")
	}
	return data, nil
}

func (mw *ModelWeights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, mw); err != nil {
		return errors.Wrap(err, "unmarshal model weights")
	}
	return nil
}

// Validate は ImportWeights の前に呼ばれ、係数と学習済みフラグの整合性を確認する
func (mw *ModelWeights) Validate() error {
	switch {
	case mw.ModelType == "":
		return errors.NewValidationError("model_type", "is required", mw.ModelType)
	case mw.Version == "":
		return errors.NewValidationError("version", "is required", mw.Version)
	case mw.IsFitted && len(mw.Coefficients) == 0:
		return errors.NewValidationError("coefficients", "fitted model must have coefficients", 0)
	case !mw.IsFitted && len(mw.Coefficients) > 0:
		return errors.NewValidationError("coefficients", "unfitted model should not have coefficients", len(mw.Coefficients))
	case len(mw.Features) > 0 && len(mw.Features) != len(mw.Coefficients):
		return errors.NewDimensionError("ModelWeights.Validate", len(mw.Coefficients), len(mw.Features), 1)
	}
	return nil
}

// Clone returns a deep copy; the maps are copied one level deep.
func (mw *ModelWeights) Clone() *ModelWeights {
	c := *mw
	c.Coefficients = slices.Clone(mw.Coefficients)
	c.Features = slices.Clone(mw.Features)
	c.Hyperparameters = maps.Clone(mw.Hyperparameters)
	c.Metadata = maps.Clone(mw.Metadata)
	return &c
}
