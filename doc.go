// Package hopus holds the housing pricing utilities: cleaning RentCast
// property listings, training regression models on them, evaluating the
// models and drawing maps of predicted against true sale prices.
//
// # Workflow
//
// Raw listings and the Case-Shiller home price index are loaded, cleaned and
// joined into a frame, turned into a design matrix and handed to a model:
//
//	props, _ := listing.Load("listings.json")
//	idx, _ := hpi.LoadIndex("CSUSHPINSA.csv", hpi.DefaultLag)
//	processed, _ := preprocessing.Preprocess(listing.ToFrame(props), idx)
//	processed, _ = preprocessing.DropOutliers(processed, preprocessing.DefaultLowCutoff, preprocessing.DefaultHighCutoff)
//
//	ds, _ := preprocessing.NewDataset(processed, preprocessing.DefaultColumnGroups(), preprocessing.LogPriceColumn)
//	factory, _ := models.NewFactory(models.Ridge, map[string]any{"alpha": 0.5})
//	res, _ := evaluation.CVEvaluation(ctx, factory, ds.X, ds.Y, evaluation.CVOptions{})
//
// The demo package embeds a small sample so the workflow runs without
// downloads, and cmd/hopus exposes every step on the command line.
//
// # Packages
//
//   - frame: columnar table with numeric and text columns
//   - listing: RentCast property records
//   - hpi: the lagged home price index
//   - preprocessing: the cleaning pipeline, column groups and scalers
//   - linear, neighbors: LinearRegression, Ridge and KNeighborsRegressor
//   - models: the Model interface and the model registry
//   - metrics: regression metrics
//   - evaluation: k-fold cross-validation, experiments, index baseline
//   - store: experiment records in SQLite or PostgreSQL
//   - geoviz: Leaflet maps, scatter plots and map screenshots
//   - config: YAML and environment configuration
//   - core/model, core/parallel: estimator state, weights and parallel helpers
//   - pkg/errors, pkg/log: structured errors and zerolog logging
package hopus

// Version is the release of the module.
const Version = "0.3.0"
