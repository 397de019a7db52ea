package demo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopus-ml/hopus/frame"
	"github.com/hopus-ml/hopus/listing"
	"github.com/hopus-ml/hopus/preprocessing"
)

func TestLoadListings(t *testing.T) {
	props, err := LoadListings()
	require.NoError(t, err)
	assert.Len(t, props, 220)

	var singleFamily, missingBedrooms int
	for _, p := range props {
		if p.PropertyType == listing.SingleFamily {
			singleFamily++
		}
		if p.Bedrooms == nil {
			missingBedrooms++
		}
	}
	assert.Greater(t, singleFamily, 150)
	assert.Greater(t, missingBedrooms, 0, "sample exercises imputation")
}

func TestLoadHomePriceIndex(t *testing.T) {
	idx, err := LoadHomePriceIndex()
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Lag())

	months := idx.Months()
	require.NotEmpty(t, months)
	assert.Equal(t, "2018-04", months[0].String())
	assert.Equal(t, "2025-06", months[len(months)-1].String())
}

func TestTrainTestSplit(t *testing.T) {
	processed, err := LoadProcessed()
	require.NoError(t, err)
	train, err := LoadTrainingData()
	require.NoError(t, err)
	test, err := LoadTestData()
	require.NoError(t, err)

	assert.Equal(t, processed.Len(), train.Len()+test.Len())
	assert.Equal(t, int(float64(processed.Len())*TestFraction+0.5), test.Len())
	assert.Greater(t, train.Len(), 100)

	trainIDs, err := train.String(listing.IDColumn)
	require.NoError(t, err)
	testIDs, err := test.String(listing.IDColumn)
	require.NoError(t, err)
	seen := make(map[string]bool, len(trainIDs))
	for _, id := range trainIDs {
		seen[id] = true
	}
	for _, id := range testIDs {
		assert.False(t, seen[id], "listing %s in both splits", id)
	}

	again, err := LoadTestData()
	require.NoError(t, err)
	againIDs, _ := again.String(listing.IDColumn)
	assert.Equal(t, testIDs, againIDs)
}

func TestSplitsAreModelReady(t *testing.T) {
	train, err := LoadTrainingData()
	require.NoError(t, err)

	ds, err := preprocessing.NewDataset(train, preprocessing.DefaultColumnGroups(), preprocessing.LogPriceColumn)
	require.NoError(t, err)
	r, c := ds.X.Dims()
	assert.Equal(t, train.Len(), r)
	assert.Greater(t, c, 10)

	norm, err := train.Float(preprocessing.TimeNormalizedPricePerSqFtColumn)
	require.NoError(t, err)
	for _, v := range norm {
		assert.True(t, v >= preprocessing.DefaultLowCutoff && v <= preprocessing.DefaultHighCutoff)
	}
	logs, err := train.Float(preprocessing.LogPriceColumn)
	require.NoError(t, err)
	for _, v := range logs {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestLoadTrainingDataReturnsCopy(t *testing.T) {
	a, err := LoadTrainingData()
	require.NoError(t, err)
	prices, err := a.Float(preprocessing.PriceColumn)
	require.NoError(t, err)
	prices[0] = -1

	b, err := LoadTrainingData()
	require.NoError(t, err)
	fresh, err := b.Float(preprocessing.PriceColumn)
	require.NoError(t, err)
	assert.NotEqual(t, -1.0, fresh[0])
}

func TestSplit(t *testing.T) {
	f := frame.New()
	values := make([]float64, 10)
	for i := range values {
		values[i] = float64(i)
	}
	require.NoError(t, f.AddFloat("x", values))

	train, test := Split(f, 0.3, 7)
	assert.Equal(t, 7, train.Len())
	assert.Equal(t, 3, test.Len())

	tx, _ := test.Float("x")
	for i := 1; i < len(tx); i++ {
		assert.Less(t, tx[i-1], tx[i], "rows keep their order")
	}

	_, test2 := Split(f, 0.3, 7)
	tx2, _ := test2.Float("x")
	assert.Equal(t, tx, tx2)
}

func TestRawDataCopies(t *testing.T) {
	raw := ListingsJSON()
	raw[0] = 'x'
	assert.Equal(t, byte('['), ListingsJSON()[0])
	assert.Contains(t, string(HomePriceIndexCSV()), "observation_date,CSUSHPINSA")
}
