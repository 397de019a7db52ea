package geoviz

import (
	"bytes"
	"context"
	"image/color"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopus-ml/hopus/frame"
	"github.com/hopus-ml/hopus/listing"
	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/preprocessing"
)

func testFrame(t *testing.T) *frame.Frame {
	t.Helper()
	f := frame.New()
	require.NoError(t, f.AddFloat(listing.LatitudeColumn, []float64{29.40, math.NaN(), 29.50}))
	require.NoError(t, f.AddFloat(listing.LongitudeColumn, []float64{-98.50, -98.40, -98.60}))
	require.NoError(t, f.AddFloat(preprocessing.PriceColumn, []float64{200000, 300000, 400000}))
	require.NoError(t, f.AddString(listing.FormattedAddressColumn, []string{"1 <Main> St", "2 Oak", "3 Elm"}))
	return f
}

func TestPoints(t *testing.T) {
	points, err := Points(testFrame(t), []float64{220000, 1, 300000})
	require.NoError(t, err)
	require.Len(t, points, 2, "row without latitude is skipped")

	assert.Equal(t, "1 <Main> St", points[0].Address)
	assert.InDelta(t, 0.1, points[0].RelativeError, 1e-12)
	assert.InDelta(t, -0.25, points[1].RelativeError, 1e-12)

	_, err = Points(testFrame(t), []float64{1})
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))
}

func TestErrorColor(t *testing.T) {
	assert.Equal(t, neutral, ErrorColor(0))
	assert.Equal(t, over, ErrorColor(0.5))
	assert.Equal(t, over, ErrorColor(3))
	assert.Equal(t, under, ErrorColor(-0.9))

	half := ErrorColor(-0.25)
	assert.Equal(t, color.RGBA{R: 0x84, G: 0xc3, B: 0x9f, A: 0xff}, half)
}

func TestThousands(t *testing.T) {
	assert.Equal(t, "950", thousands(950))
	assert.Equal(t, "1,000", thousands(999.6))
	assert.Equal(t, "12,345,678", thousands(12345678))
	assert.Equal(t, "-4,200", thousands(-4200))
}

func TestRenderMap(t *testing.T) {
	points, err := Points(testFrame(t), []float64{220000, 1, 300000})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderMap(&buf, points, MapOptions{Title: "San Antonio"}))
	html := buf.String()

	assert.Contains(t, html, "<title>San Antonio</title>")
	assert.Contains(t, html, "leaflet.js")
	assert.Contains(t, html, "L.circleMarker")
	assert.Contains(t, html, `"lat":29.4`)
	assert.Contains(t, html, `"color":"#e9c8c6"`, "+10% is a light red")
	assert.Contains(t, html, `"color":"#84c39f"`)
	assert.Equal(t, 2, strings.Count(html, `"popup":`))
	// the address is escaped before it reaches the popup HTML
	assert.NotContains(t, html, "<Main>")
	assert.Contains(t, html, "tile.openstreetmap.org")

	assert.Error(t, RenderMap(&buf, nil, MapOptions{}))
}

func TestWriteMapAndPlots(t *testing.T) {
	points, err := Points(testFrame(t), []float64{220000, 1, 300000})
	require.NoError(t, err)
	dir := t.TempDir()

	htmlPath := filepath.Join(dir, "map.html")
	require.NoError(t, WriteMapFile(htmlPath, points, MapOptions{}))

	for _, name := range []string{"predictions.png", "predictions.svg", "geo.png"} {
		path := filepath.Join(dir, name)
		if strings.HasPrefix(name, "geo") {
			require.NoError(t, PlotGeo(points, path))
		} else {
			require.NoError(t, PlotPredictions(points, path))
		}
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), name)
	}

	assert.Error(t, PlotPredictions(nil, filepath.Join(dir, "x.png")))
	assert.Error(t, PlotGeo(nil, filepath.Join(dir, "x.png")))
}

func TestSnapshot(t *testing.T) {
	if testing.Short() {
		t.Skip("needs a browser")
	}
	found := false
	for _, bin := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(bin); err == nil {
			found = true
			break
		}
	}
	if !found {
		t.Skip("no Chrome binary on PATH")
	}

	points, err := Points(testFrame(t), []float64{220000, 1, 300000})
	require.NoError(t, err)
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "map.html")
	require.NoError(t, WriteMapFile(htmlPath, points, MapOptions{}))

	pngPath := filepath.Join(dir, "map.png")
	require.NoError(t, Snapshot(context.Background(), htmlPath, pngPath, SnapshotOptions{NoSandbox: true}))
	data, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestSnapshotMissingFile(t *testing.T) {
	err := Snapshot(context.Background(), filepath.Join(t.TempDir(), "absent.html"), "out.png", SnapshotOptions{})
	assert.Error(t, err)
}
