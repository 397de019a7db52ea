package main

import (
	"math"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/hopus-ml/hopus/geoviz"
	"github.com/hopus-ml/hopus/metrics"
	"github.com/hopus-ml/hopus/models"
	"github.com/hopus-ml/hopus/pkg/log"
	"github.com/hopus-ml/hopus/preprocessing"
)

func (a *app) mapCmd() *cobra.Command {
	var (
		model  string
		params []string
	)
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Fit a model, predict the test split and render the prediction map",
		Long: `Fits the map model on the training split, predicts the held-out listings
and writes a Leaflet HTML map with one marker per listing coloured by its
relative error, plus a true vs. predicted scatter and a geographic scatter.
When map.screenshot is set a PNG of the map is taken with headless Chrome.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mc := a.cfg.Map
			if model != "" {
				mc.Model.Name = model
				mc.Model.Hyperparameters = nil
			}
			if len(params) > 0 {
				hyper, err := parseParams(params)
				if err != nil {
					return err
				}
				mc.Model.Hyperparameters = hyper
			}
			m, err := models.New(mc.Model.Name, mc.Model.Hyperparameters)
			if err != nil {
				return err
			}

			data, err := loadSplits(a.cfg)
			if err != nil {
				return err
			}
			if err := m.Fit(data.train.X, data.train.Y); err != nil {
				return err
			}
			pred, err := m.Predict(data.test.X)
			if err != nil {
				return err
			}

			predicted := column(pred)
			if a.cfg.Experiment.Target == preprocessing.LogPriceColumn {
				for i, v := range predicted {
					predicted[i] = math.Exp(v)
				}
			}
			points, err := geoviz.Points(data.testFrame, predicted)
			if err != nil {
				return err
			}

			logger := log.GetLoggerWithName("cli")
			if err := geoviz.WriteMapFile(mc.HTML, points, geoviz.MapOptions{
				Title:   mc.Title,
				TileURL: mc.TileURL,
				Zoom:    mc.Zoom,
			}); err != nil {
				return err
			}
			logger.Info("Wrote prediction map", log.PathKey, mc.HTML, log.SamplesKey, len(points))

			if mc.Plot != "" {
				if err := geoviz.PlotPredictions(points, mc.Plot); err != nil {
					return err
				}
			}
			if mc.GeoPlot != "" {
				if err := geoviz.PlotGeo(points, mc.GeoPlot); err != nil {
					return err
				}
			}
			if mc.Screenshot != "" {
				if err := geoviz.Snapshot(cmd.Context(), mc.HTML, mc.Screenshot, geoviz.SnapshotOptions{}); err != nil {
					return err
				}
				logger.Info("Wrote map screenshot", log.PathKey, mc.Screenshot)
			}

			truth := mat.NewVecDense(len(points), nil)
			estimate := mat.NewVecDense(len(points), nil)
			for i, p := range points {
				truth.SetVec(i, p.TruePrice)
				estimate.SetVec(i, p.PredictedPrice)
			}
			mape, err := metrics.MAPE(truth, estimate)
			if err != nil {
				return err
			}
			a.printf("%s: %d test listings, MAPE %.2f%% -> %s\n", m.Name(), len(points), mape, mc.HTML)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&model, "model", "m", "", "model name (default from config)")
	flags.StringArrayVarP(&params, "param", "p", nil, "hyperparameter as key=value, repeatable")
	return cmd
}
