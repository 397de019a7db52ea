// Package geoviz renders predicted against true sale prices: a standalone
// Leaflet map, static scatter plots, and a headless-browser snapshot of the
// map.
package geoviz

import (
	"image/color"
	"math"

	"github.com/hopus-ml/hopus/frame"
	"github.com/hopus-ml/hopus/listing"
	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/preprocessing"
)

// Point is one listing placed on the map.
type Point struct {
	Lat            float64
	Lon            float64
	Address        string
	TruePrice      float64
	PredictedPrice float64
	// RelativeError is (PredictedPrice - TruePrice) / TruePrice.
	RelativeError float64
}

// Points pairs each row of f with its predicted price. f needs latitude,
// longitude and price columns; formattedAddress is used when present. Rows
// without coordinates are skipped.
func Points(f *frame.Frame, predictions []float64) ([]Point, error) {
	if len(predictions) != f.Len() {
		return nil, errors.NewDimensionError("geoviz.Points", f.Len(), len(predictions), 0)
	}
	lat, err := f.Float(listing.LatitudeColumn)
	if err != nil {
		return nil, err
	}
	lon, err := f.Float(listing.LongitudeColumn)
	if err != nil {
		return nil, err
	}
	price, err := f.Float(preprocessing.PriceColumn)
	if err != nil {
		return nil, err
	}
	var address []string
	if f.Has(listing.FormattedAddressColumn) {
		if address, err = f.String(listing.FormattedAddressColumn); err != nil {
			return nil, err
		}
	}

	points := make([]Point, 0, len(predictions))
	for i, pred := range predictions {
		if math.IsNaN(lat[i]) || math.IsNaN(lon[i]) {
			continue
		}
		p := Point{
			Lat:            lat[i],
			Lon:            lon[i],
			TruePrice:      price[i],
			PredictedPrice: pred,
			RelativeError:  (pred - price[i]) / price[i],
		}
		if address != nil {
			p.Address = address[i]
		}
		points = append(points, p)
	}
	return points, nil
}

// saturation is the relative error at which the marker colour stops
// deepening.
const saturation = 0.5

var (
	neutral = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	under   = color.RGBA{R: 0x1a, G: 0x98, B: 0x50, A: 0xff}
	over    = color.RGBA{R: 0xd7, G: 0x30, B: 0x27, A: 0xff}
)

// ErrorColor maps a relative error to a colour: green for under-estimates,
// red for over-estimates, fading to grey near zero.
func ErrorColor(relErr float64) color.RGBA {
	target := over
	if relErr < 0 {
		target = under
	}
	t := math.Min(math.Abs(relErr)/saturation, 1)
	if math.IsNaN(t) {
		t = 0
	}
	mix := func(a, b uint8) uint8 { return uint8(math.Round(float64(a) + t*(float64(b)-float64(a)))) }
	return color.RGBA{R: mix(neutral.R, target.R), G: mix(neutral.G, target.G), B: mix(neutral.B, target.B), A: 0xff}
}

// center is the mean position of the points.
func center(points []Point) (float64, float64) {
	var lat, lon float64
	for _, p := range points {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(points))
	return lat / n, lon / n
}
