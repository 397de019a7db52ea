package main

import (
	"bytes"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/hopus-ml/hopus/config"
	"github.com/hopus-ml/hopus/demo"
	"github.com/hopus-ml/hopus/frame"
	"github.com/hopus-ml/hopus/hpi"
	"github.com/hopus-ml/hopus/listing"
	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/pkg/log"
	"github.com/hopus-ml/hopus/preprocessing"
)

// loadProcessed reads the configured inputs, or the demo sample, and runs the
// cleaning pipeline with the configured filters.
func loadProcessed(cfg *config.Config) (*frame.Frame, error) {
	var (
		props []listing.Property
		idx   *hpi.Index
		err   error
	)
	if cfg.Data.UseDemo() {
		log.GetLoggerWithName("cli").Info("No input files configured, using the demo sample")
		if props, err = demo.LoadListings(); err != nil {
			return nil, err
		}
		obs, err := hpi.Read(bytes.NewReader(demo.HomePriceIndexCSV()))
		if err != nil {
			return nil, err
		}
		if idx, err = lagged(obs, cfg.Preprocess.HPILag); err != nil {
			return nil, err
		}
	} else {
		if props, err = listing.Load(cfg.Data.Listings); err != nil {
			return nil, err
		}
		if idx, err = hpi.LoadIndex(cfg.Data.HomePriceIndex, cfg.Preprocess.HPILag); err != nil {
			return nil, err
		}
	}

	processed, err := preprocessing.Preprocess(listing.ToFrame(props), idx)
	if err != nil {
		return nil, err
	}
	processed, err = preprocessing.DropOutliers(processed, cfg.Preprocess.LowCutoff, cfg.Preprocess.HighCutoff)
	if err != nil {
		return nil, err
	}
	if cfg.Preprocess.DropMissingKeyFeatures {
		groups, err := preprocessing.LoadColumnGroups(cfg.Data.ColumnGroups)
		if err != nil {
			return nil, err
		}
		if processed, err = preprocessing.DropMissingKeyFeatures(processed, groups); err != nil {
			return nil, err
		}
	}
	if processed.Len() == 0 {
		return nil, errors.Wrap(errors.ErrNoRows, "filter processed listings")
	}
	return processed, nil
}

func lagged(obs []hpi.Observation, lag int) (*hpi.Index, error) {
	idx, err := hpi.Preprocess(obs)
	if err != nil {
		return nil, err
	}
	if err := idx.AddLaggedValue(lag); err != nil {
		return nil, err
	}
	return idx, nil
}

// splits holds the processed train and test frames with their datasets.
type splits struct {
	trainFrame, testFrame *frame.Frame
	train, test           *preprocessing.Dataset
}

func loadSplits(cfg *config.Config) (*splits, error) {
	processed, err := loadProcessed(cfg)
	if err != nil {
		return nil, err
	}
	groups, err := preprocessing.LoadColumnGroups(cfg.Data.ColumnGroups)
	if err != nil {
		return nil, err
	}
	trainFrame, testFrame := demo.Split(processed, cfg.Preprocess.TestFraction, cfg.Preprocess.SplitSeed)
	if trainFrame.Len() == 0 || testFrame.Len() == 0 {
		return nil, errors.NewValueError("loadSplits", "too few listings to split into train and test")
	}

	train, err := preprocessing.NewDataset(trainFrame, groups, cfg.Experiment.Target)
	if err != nil {
		return nil, errors.Wrap(err, "build training set")
	}
	test, err := preprocessing.NewDataset(testFrame, groups, cfg.Experiment.Target)
	if err != nil {
		return nil, errors.Wrap(err, "build test set")
	}
	return &splits{trainFrame: trainFrame, testFrame: testFrame, train: train, test: test}, nil
}

// parseParams turns key=value flags into hyperparameters. Values are read as
// an integer, a float, a boolean or else a string, in that order.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.NewValidationError("param", "expected key=value", pair)
		}
		value = strings.TrimSpace(value)
		if i, err := strconv.Atoi(value); err == nil {
			out[key] = i
		} else if f, err := strconv.ParseFloat(value, 64); err == nil {
			out[key] = f
		} else if b, err := strconv.ParseBool(value); err == nil {
			out[key] = b
		} else {
			out[key] = value
		}
	}
	return out, nil
}

func column(m mat.Matrix) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = m.At(i, 0)
	}
	return out
}
