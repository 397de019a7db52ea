// Package demo ships a small synthetic sample of San Antonio single family
// sales and a matching home price index series, so the whole workflow can
// run without a RentCast account or a FRED download.
//
//	train, err := demo.LoadTrainingData()
//	if err != nil {
//		return err
//	}
//	ds, err := preprocessing.NewDataset(train, preprocessing.DefaultColumnGroups(), preprocessing.LogPriceColumn)
package demo

import (
	"bytes"
	_ "embed"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/hopus-ml/hopus/frame"
	"github.com/hopus-ml/hopus/hpi"
	"github.com/hopus-ml/hopus/listing"
	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/preprocessing"
)

//go:embed data/listings.json
var listingsJSON []byte

//go:embed data/CSUSHPINSA.csv
var hpiCSV []byte

// TestFraction is the share of processed listings held out as test data.
const TestFraction = 0.2

// SplitSeed fixes the train/test assignment of the sample.
const SplitSeed uint64 = 2026

// LoadListings decodes the embedded RentCast sample.
func LoadListings() ([]listing.Property, error) {
	props, err := listing.Decode(bytes.NewReader(listingsJSON))
	if err != nil {
		return nil, errors.Wrap(err, "decode demo listings")
	}
	return props, nil
}

// LoadHomePriceIndex returns the embedded index lagged by hpi.DefaultLag.
func LoadHomePriceIndex() (*hpi.Index, error) {
	obs, err := hpi.Read(bytes.NewReader(hpiCSV))
	if err != nil {
		return nil, errors.Wrap(err, "read demo home price index")
	}
	idx, err := hpi.Preprocess(obs)
	if err != nil {
		return nil, err
	}
	if err := idx.AddLaggedValue(hpi.DefaultLag); err != nil {
		return nil, err
	}
	return idx, nil
}

// ListingsJSON returns a copy of the raw embedded listings file.
func ListingsJSON() []byte { return append([]byte(nil), listingsJSON...) }

// HomePriceIndexCSV returns a copy of the raw embedded index file.
func HomePriceIndexCSV() []byte { return append([]byte(nil), hpiCSV...) }

type split struct {
	train, test *frame.Frame
}

var (
	splitOnce sync.Once
	splitData split
	splitErr  error
)

// LoadProcessed runs Preprocess and DropOutliers over the embedded sample.
func LoadProcessed() (*frame.Frame, error) {
	props, err := LoadListings()
	if err != nil {
		return nil, err
	}
	idx, err := LoadHomePriceIndex()
	if err != nil {
		return nil, err
	}
	processed, err := preprocessing.Preprocess(listing.ToFrame(props), idx)
	if err != nil {
		return nil, err
	}
	return preprocessing.DropOutliers(processed, preprocessing.DefaultLowCutoff, preprocessing.DefaultHighCutoff)
}

func loadSplit() (split, error) {
	splitOnce.Do(func() {
		processed, err := LoadProcessed()
		if err != nil {
			splitErr = err
			return
		}
		train, test := Split(processed, TestFraction, SplitSeed)
		splitData = split{train: train, test: test}
	})
	return splitData, splitErr
}

// Split shuffles the rows of f with seed and returns the train and test
// frames. The test frame holds round(n*testFraction) rows, and both keep the
// original row order.
func Split(f *frame.Frame, testFraction float64, seed uint64) (train, test *frame.Frame) {
	n := f.Len()
	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	nTest := int(float64(n)*testFraction + 0.5)

	testRows := append([]int(nil), perm[:nTest]...)
	trainRows := append([]int(nil), perm[nTest:]...)
	sort.Ints(testRows)
	sort.Ints(trainRows)
	return f.Take(trainRows), f.Take(testRows)
}

// LoadTrainingData returns the processed training split. Every call returns
// a fresh copy.
func LoadTrainingData() (*frame.Frame, error) {
	s, err := loadSplit()
	if err != nil {
		return nil, err
	}
	return s.train.Clone(), nil
}

// LoadTestData returns the processed test split.
func LoadTestData() (*frame.Frame, error) {
	s, err := loadSplit()
	if err != nil {
		return nil, err
	}
	return s.test.Clone(), nil
}
