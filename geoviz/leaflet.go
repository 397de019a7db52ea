package geoviz

import (
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/pkg/log"
)

// Default tile layer.
const (
	DefaultTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = "&copy; OpenStreetMap contributors"
	DefaultZoom        = 11
)

// MapOptions configures RenderMap. Zero values take the defaults.
type MapOptions struct {
	Title       string
	TileURL     string
	Attribution string
	Zoom        int
}

func (o MapOptions) withDefaults() MapOptions {
	if o.Title == "" {
		o.Title = "Predicted vs. true sale prices"
	}
	if o.TileURL == "" {
		o.TileURL = DefaultTileURL
	}
	if o.Attribution == "" {
		o.Attribution = DefaultAttribution
	}
	if o.Zoom == 0 {
		o.Zoom = DefaultZoom
	}
	return o
}

type marker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Color string  `json:"color"`
	Popup string  `json:"popup"`
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map("map").setView([{{.Lat}}, {{.Lon}}], {{.Zoom}});
L.tileLayer({{.TileURL}}, {attribution: {{.Attribution}}, maxZoom: 19}).addTo(map);
var markers = {{.Markers}};
markers.forEach(function (m) {
	L.circleMarker([m.lat, m.lon], {radius: 6, color: m.color, fillColor: m.color, fillOpacity: 0.8, weight: 1})
		.bindPopup(m.popup)
		.addTo(map);
});
</script>
</body>
</html>
`))

func popup(p Point) string {
	return fmt.Sprintf("<b>%s</b><br>True price: $%s<br>Predicted price: $%s<br>Error: %+.1f%%",
		template.HTMLEscapeString(p.Address),
		thousands(p.TruePrice), thousands(p.PredictedPrice),
		100*p.RelativeError)
}

// thousands formats a price rounded to dollars with comma separators.
func thousands(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := s[0] == '-'
	if neg {
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

func hex(p Point) string {
	c := ErrorColor(p.RelativeError)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RenderMap writes a standalone HTML page with one circle marker per point,
// coloured by relative error, each with a popup of the address and both
// prices.
func RenderMap(w io.Writer, points []Point, opts MapOptions) error {
	if len(points) == 0 {
		return errors.NewValueError("geoviz.RenderMap", "no points to draw")
	}
	opts = opts.withDefaults()
	markers := make([]marker, len(points))
	for i, p := range points {
		markers[i] = marker{Lat: p.Lat, Lon: p.Lon, Color: hex(p), Popup: popup(p)}
	}
	lat, lon := center(points)
	if err := mapTemplate.Execute(w, struct {
		MapOptions
		Lat, Lon float64
		Markers  []marker
	}{opts, lat, lon, markers}); err != nil {
		return errors.Wrap(err, "render map")
	}
	return nil
}

// WriteMapFile renders the map into path.
func WriteMapFile(path string, points []Point, opts MapOptions) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	if err := RenderMap(file, points, opts); err != nil {
		return err
	}
	log.GetLoggerWithName("geoviz").Info("Wrote map",
		log.PathKey, path,
		log.SamplesKey, len(points),
		log.PhaseKey, log.PhaseVisualization,
	)
	return nil
}
