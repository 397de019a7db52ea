package geoviz

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/pkg/log"
)

// PlotSize is the width and height of saved plots.
const PlotSize = 6 * vg.Inch

// PlotPredictions saves a scatter of predicted against true price with the
// identity line. The image format follows the extension of path (.png,
// .svg, .pdf, ...).
func PlotPredictions(points []Point, path string) error {
	if len(points) == 0 {
		return errors.NewValueError("geoviz.PlotPredictions", "no points to draw")
	}
	p := plot.New()
	p.Title.Text = "Predicted vs. true sale price"
	p.X.Label.Text = "True price ($)"
	p.Y.Label.Text = "Predicted price ($)"
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(points))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, pt := range points {
		xys[i].X, xys[i].Y = pt.TruePrice, pt.PredictedPrice
		lo = math.Min(lo, math.Min(pt.TruePrice, pt.PredictedPrice))
		hi = math.Max(hi, math.Max(pt.TruePrice, pt.PredictedPrice))
	}
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return errors.Wrap(err, "build scatter")
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: ErrorColor(points[i].RelativeError), Radius: vg.Points(3), Shape: draw.CircleGlyph{}}
	}

	identity, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return errors.Wrap(err, "build identity line")
	}
	identity.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(scatter, identity)
	p.Legend.Add("y = x", identity)
	return save(p, path)
}

// PlotGeo saves a longitude/latitude scatter of the points coloured by
// relative error.
func PlotGeo(points []Point, path string) error {
	if len(points) == 0 {
		return errors.NewValueError("geoviz.PlotGeo", "no points to draw")
	}
	p := plot.New()
	p.Title.Text = "Relative error by location"
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X, xys[i].Y = pt.Lon, pt.Lat
	}
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return errors.Wrap(err, "build scatter")
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: ErrorColor(points[i].RelativeError), Radius: vg.Points(4), Shape: draw.CircleGlyph{}}
	}
	p.Add(scatter)
	return save(p, path)
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(PlotSize, PlotSize, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	log.GetLoggerWithName("geoviz").Info("Wrote plot", log.PathKey, path, log.PhaseKey, log.PhaseVisualization)
	return nil
}
