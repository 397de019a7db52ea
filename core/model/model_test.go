package model

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopus-ml/hopus/pkg/errors"
)

func TestStateManager(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())

	err := s.RequireFitted("Ridge", "Predict")
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Ridge", nf.ModelName)
	assert.Equal(t, "Predict", nf.Method)

	s.SetDimensions(3, 100)
	s.SetFitted()
	require.NoError(t, s.RequireFitted("Ridge", "Predict"))
	require.NoError(t, s.RequireFeatures("Ridge.Predict", 3))

	err = s.RequireFeatures("Ridge.Predict", 4)
	var de *errors.DimensionError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 3, de.Expected)
	assert.Equal(t, 4, de.Got)

	nFeatures, nSamples := s.GetDimensions()
	assert.Equal(t, 3, nFeatures)
	assert.Equal(t, 100, nSamples)
}

func sampleWeights() *ModelWeights {
	return &ModelWeights{
		ModelType:       "ridge",
		Version:         WeightsVersion,
		Coefficients:    []float64{1.5, -2.0},
		Intercept:       0.25,
		Features:        []string{"sqFt", "bedrooms"},
		Hyperparameters: map[string]interface{}{"alpha": 1.0},
		Metadata:        map[string]interface{}{"n_samples": 10.0},
		IsFitted:        true,
	}
}

func TestModelWeightsJSONRoundTrip(t *testing.T) {
	w := sampleWeights()
	data, err := w.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"model_type": "ridge"`)

	var got ModelWeights
	require.NoError(t, got.FromJSON(data))
	assert.Equal(t, w, &got)
}

func TestModelWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(w *ModelWeights)
		wantErr bool
	}{
		{"valid", func(w *ModelWeights) {}, false},
		{"missing type", func(w *ModelWeights) { w.ModelType = "" }, true},
		{"missing version", func(w *ModelWeights) { w.Version = "" }, true},
		{"fitted without coefficients", func(w *ModelWeights) { w.Coefficients = nil; w.Features = nil }, true},
		{"unfitted with coefficients", func(w *ModelWeights) { w.IsFitted = false }, true},
		{"feature count mismatch", func(w *ModelWeights) { w.Features = []string{"sqFt"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := sampleWeights()
			tt.mutate(w)
			err := w.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestModelWeightsCloneIsDeep(t *testing.T) {
	w := sampleWeights()
	c := w.Clone()
	c.Coefficients[0] = 99
	c.Features[0] = "lotSize"
	c.Hyperparameters["alpha"] = 5.0

	assert.Equal(t, 1.5, w.Coefficients[0])
	assert.Equal(t, "sqFt", w.Features[0])
	assert.Equal(t, 1.0, w.Hyperparameters["alpha"])
}

func TestSaveLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.gob")
	w := sampleWeights()
	require.NoError(t, SaveModel(w, path))

	var got ModelWeights
	require.NoError(t, LoadModel(&got, path))
	assert.Equal(t, w.Coefficients, got.Coefficients)
	assert.Equal(t, w.Intercept, got.Intercept)

	var buf bytes.Buffer
	require.NoError(t, SaveModelToWriter(w, &buf))
	var fromReader ModelWeights
	require.NoError(t, LoadModelFromReader(&fromReader, &buf))
	assert.Equal(t, "ridge", fromReader.ModelType)

	assert.Error(t, LoadModel(&got, filepath.Join(t.TempDir(), "missing.gob")))
}
