package listing

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `[
  {
    "id": "5500-Grand-Lake-Dr,-San-Antonio,-TX-78244",
    "formattedAddress": "5500 Grand Lake Dr, San Antonio, TX 78244",
    "addressLine1": "5500 Grand Lake Dr",
    "addressLine2": null,
    "city": "San Antonio",
    "state": "TX",
    "zipCode": "78244",
    "county": "Bexar",
    "latitude": 29.475962,
    "longitude": -98.351442,
    "propertyType": "Single Family",
    "bedrooms": 3,
    "bathrooms": 2,
    "squareFootage": 1878,
    "lotSize": 8850,
    "yearBuilt": 1973,
    "lastSaleDate": "2024-11-18T00:00:00.000Z",
    "lastSalePrice": 270000,
    "ownerOccupied": true,
    "features": {
      "architectureType": "Contemporary",
      "cooling": true,
      "floorCount": 1,
      "garageSpaces": 2,
      "unitCount": 1
    },
    "taxAssessments": {"2023": {"year": 2023, "value": 225790}},
    "history": {}
  },
  {
    "id": "b",
    "propertyType": "Condo",
    "squareFootage": null
  }
]`

func TestDecode(t *testing.T) {
	props, err := Decode(strings.NewReader(sampleJSON))
	require.NoError(t, err)
	require.Len(t, props, 2)

	p := props[0]
	assert.Equal(t, "San Antonio", p.City)
	require.NotNil(t, p.SquareFootage)
	assert.Equal(t, 1878.0, *p.SquareFootage)
	require.NotNil(t, p.OwnerOccupied)
	assert.True(t, *p.OwnerOccupied)
	assert.Equal(t, "Contemporary", p.Features["architectureType"])
	assert.Equal(t, 2.0, p.Features["garageSpaces"])
	assert.Equal(t, true, p.Features["cooling"])

	assert.Nil(t, props[1].SquareFootage)
	assert.Nil(t, props[1].Features)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"id": "not an array"}`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	props, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, props, 2)

	_, err = Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestToFrame(t *testing.T) {
	props, err := Decode(strings.NewReader(sampleJSON))
	require.NoError(t, err)

	table := ToFrame(props)
	assert.Equal(t, 2, table.Len())
	require.Len(t, table.Features, 2)

	sqFt, err := table.Frame.Float(SquareFootageColumn)
	require.NoError(t, err)
	assert.Equal(t, 1878.0, sqFt[0])
	assert.True(t, math.IsNaN(sqFt[1]))

	types, err := table.Frame.String(PropertyTypeColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{SingleFamily, "Condo"}, types)

	occupied, _ := table.Frame.Float(OwnerOccupiedColumn)
	assert.Equal(t, 1.0, occupied[0])
	assert.True(t, math.IsNaN(occupied[1]))

	kept, dropped := table.DropRows(func(i int) bool { return types[i] != SingleFamily })
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 1, kept.Len())
	assert.Equal(t, 1.0, kept.Features[0]["unitCount"])
}
