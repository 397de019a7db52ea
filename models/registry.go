package models

import (
	"math"
	"sort"
	"strings"

	"github.com/hopus-ml/hopus/linear"
	"github.com/hopus-ml/hopus/neighbors"
	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/preprocessing"
)

// Registry names.
const (
	LinearRegression = "linear_regression"
	Ridge            = "ridge"
	KNN              = "knn"
	ScaledKNN        = "scaled_knn"
)

// Factory builds a fresh, unfitted model. Cross-validation calls it once per
// fold.
type Factory func() Model

type builder struct {
	defaults map[string]any
	build    func(p params) (func() regressor, error)
}

var registry = map[string]builder{
	LinearRegression: {
		defaults: map[string]any{"fit_intercept": true, "positive": false},
		build: func(p params) (func() regressor, error) {
			fit, err := p.getBool("fit_intercept")
			if err != nil {
				return nil, err
			}
			positive, err := p.getBool("positive")
			if err != nil {
				return nil, err
			}
			return func() regressor {
				return linear.NewLinearRegression(linear.WithFitIntercept(fit), linear.WithPositive(positive))
			}, nil
		},
	},
	Ridge: {
		defaults: map[string]any{"alpha": 1.0, "fit_intercept": true},
		build: func(p params) (func() regressor, error) {
			alpha, err := p.getFloat("alpha")
			if err != nil {
				return nil, err
			}
			if alpha < 0 {
				return nil, errors.NewValidationError("alpha", "must be non-negative", alpha)
			}
			fit, err := p.getBool("fit_intercept")
			if err != nil {
				return nil, err
			}
			return func() regressor {
				return linear.NewRidge(linear.WithAlpha(alpha), linear.WithFitIntercept(fit))
			}, nil
		},
	},
	KNN: {
		defaults: map[string]any{"n_neighbors": neighbors.DefaultNeighbors, "weights": string(neighbors.Uniform)},
		build:    buildKNN,
	},
	ScaledKNN: {
		defaults: map[string]any{
			"n_neighbors": neighbors.DefaultNeighbors,
			"weights":     string(neighbors.Uniform),
			"scaler":      "standard",
		},
		build: func(p params) (func() regressor, error) {
			knn, err := buildKNN(p)
			if err != nil {
				return nil, err
			}
			kind, err := p.getString("scaler")
			if err != nil {
				return nil, err
			}
			var newScaler func() preprocessing.Scaler
			switch kind {
			case "standard":
				newScaler = func() preprocessing.Scaler { return preprocessing.NewStandardScalerDefault() }
			case "minmax":
				newScaler = func() preprocessing.Scaler { return preprocessing.NewMinMaxScalerDefault() }
			default:
				return nil, errors.NewValidationError("scaler", "must be standard or minmax", kind)
			}
			return func() regressor {
				return &scaled{scaler: newScaler(), reg: knn()}
			}, nil
		},
	},
}

func buildKNN(p params) (func() regressor, error) {
	k, err := p.getInt("n_neighbors")
	if err != nil {
		return nil, err
	}
	if k < 1 {
		return nil, errors.NewValidationError("n_neighbors", "must be at least 1", k)
	}
	w, err := p.getString("weights")
	if err != nil {
		return nil, err
	}
	weights := neighbors.Weights(w)
	if weights != neighbors.Uniform && weights != neighbors.Distance {
		return nil, errors.NewValidationError("weights", "must be uniform or distance", w)
	}
	return func() regressor {
		return neighbors.NewKNeighborsRegressor(neighbors.WithNeighbors(k), neighbors.WithWeights(weights))
	}, nil
}

// Names returns the registered model names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewFactory validates hyperparameters for the named model and returns a
// factory producing fresh instances. Keys the model does not know are
// rejected.
func NewFactory(name string, hyperparameters map[string]any) (Factory, error) {
	b, ok := registry[name]
	if !ok {
		return nil, errors.NewValidationError("model", "unknown model, expected one of "+strings.Join(Names(), ", "), name)
	}
	p := params{values: make(map[string]any, len(b.defaults))}
	for k, v := range b.defaults {
		p.values[k] = v
	}
	for k, v := range hyperparameters {
		if _, known := b.defaults[k]; !known {
			return nil, errors.NewValidationError(k, "unknown hyperparameter for "+name, v)
		}
		p.values[k] = v
	}
	build, err := b.build(p)
	if err != nil {
		return nil, err
	}
	return func() Model {
		return &estimator{name: name, params: p.values, reg: build()}
	}, nil
}

// New builds a single model.
func New(name string, hyperparameters map[string]any) (Model, error) {
	f, err := NewFactory(name, hyperparameters)
	if err != nil {
		return nil, err
	}
	return f(), nil
}

// params holds merged hyperparameters. Numbers may arrive as any Go numeric
// type since they come from YAML, JSON or code.
type params struct {
	values map[string]any
}

func (p params) getFloat(key string) (float64, error) {
	switch v := p.values[key].(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	default:
		return 0, errors.NewValidationError(key, "must be a number", v)
	}
}

func (p params) getInt(key string) (int, error) {
	f, err := p.getFloat(key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, errors.NewValidationError(key, "must be an integer", f)
	}
	return int(f), nil
}

func (p params) getBool(key string) (bool, error) {
	v, ok := p.values[key].(bool)
	if !ok {
		return false, errors.NewValidationError(key, "must be a boolean", p.values[key])
	}
	return v, nil
}

func (p params) getString(key string) (string, error) {
	v, ok := p.values[key].(string)
	if !ok {
		return "", errors.NewValidationError(key, "must be a string", p.values[key])
	}
	return v, nil
}
