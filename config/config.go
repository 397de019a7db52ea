// Package config loads the hopus run configuration.
//
// Values are resolved in three layers: the defaults of Default, then a YAML
// file, then HOPUS_* environment variables (optionally read from a .env
// file). Validate reports every invalid field at once.
package config

import (
	"bytes"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hopus-ml/hopus/evaluation"
	"github.com/hopus-ml/hopus/hpi"
	"github.com/hopus-ml/hopus/models"
	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/pkg/log"
	"github.com/hopus-ml/hopus/preprocessing"
	"github.com/hopus-ml/hopus/store"
)

// Config is the complete run configuration.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Data       DataConfig       `yaml:"data"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Experiment ExperimentConfig `yaml:"experiment"`
	Store      StoreConfig      `yaml:"store"`
	Map        MapConfig        `yaml:"map"`
}

// LoggingConfig configures pkg/log.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// DataConfig locates the raw inputs. With Listings and HomePriceIndex both
// empty the embedded demo sample is used.
type DataConfig struct {
	Listings       string `yaml:"listings"`
	HomePriceIndex string `yaml:"home_price_index"`
	// ColumnGroups is a Key,Value CSV; empty selects the built-in map.
	ColumnGroups string `yaml:"column_groups"`
}

// UseDemo reports whether no input files are configured.
func (d DataConfig) UseDemo() bool {
	return d.Listings == "" && d.HomePriceIndex == ""
}

// PreprocessConfig holds the cleaning and splitting parameters.
type PreprocessConfig struct {
	LowCutoff              float64 `yaml:"low_cutoff"`
	HighCutoff             float64 `yaml:"high_cutoff"`
	HPILag                 int     `yaml:"hpi_lag"`
	DropMissingKeyFeatures bool    `yaml:"drop_missing_key_features"`
	TestFraction           float64 `yaml:"test_fraction"`
	SplitSeed              uint64  `yaml:"split_seed"`
}

// ModelConfig names a model and its hyperparameters.
type ModelConfig struct {
	Name            string         `yaml:"name"`
	Hyperparameters map[string]any `yaml:"hyperparameters,omitempty"`
}

// ExperimentConfig drives cross-validation and experiments.
type ExperimentConfig struct {
	Models       []ModelConfig `yaml:"models"`
	NExperiments int           `yaml:"n_experiments"`
	NSplits      int           `yaml:"n_splits"`
	// Seed fixes the folds of a single cross-validation.
	Seed    uint64 `yaml:"seed"`
	Workers int    `yaml:"workers"`
	// Target is price or logPrice.
	Target string `yaml:"target"`
	// PriceSpace compares exponentiated log-price predictions.
	PriceSpace bool `yaml:"price_space"`
}

// Specs returns one experiment spec per configured model.
func (e ExperimentConfig) Specs() []evaluation.ExperimentSpec {
	specs := make([]evaluation.ExperimentSpec, len(e.Models))
	for i, m := range e.Models {
		specs[i] = evaluation.ExperimentSpec{
			Model:           m.Name,
			Hyperparameters: m.Hyperparameters,
			NExperiments:    e.NExperiments,
			NSplits:         e.NSplits,
			PriceSpace:      e.PriceSpace && e.Target == preprocessing.LogPriceColumn,
		}
	}
	return specs
}

// StoreConfig selects where experiment records are persisted.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// CSV, when set, additionally exports every saved record.
	CSV string `yaml:"csv"`
}

// MapConfig configures the map command.
type MapConfig struct {
	Model      ModelConfig `yaml:"model"`
	HTML       string      `yaml:"html"`
	Plot       string      `yaml:"plot"`
	GeoPlot    string      `yaml:"geo_plot"`
	Screenshot string      `yaml:"screenshot"`
	Title      string      `yaml:"title"`
	TileURL    string      `yaml:"tile_url"`
	Zoom       int         `yaml:"zoom"`
}

// Default returns the configuration used when nothing else is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Preprocess: PreprocessConfig{
			LowCutoff:    preprocessing.DefaultLowCutoff,
			HighCutoff:   preprocessing.DefaultHighCutoff,
			HPILag:       hpi.DefaultLag,
			TestFraction: 0.2,
			SplitSeed:    2026,
		},
		Experiment: ExperimentConfig{
			Models: []ModelConfig{
				{Name: models.LinearRegression},
				{Name: models.Ridge, Hyperparameters: map[string]any{"alpha": 1.0}},
				{Name: models.ScaledKNN, Hyperparameters: map[string]any{"n_neighbors": 5}},
			},
			NExperiments: 10,
			NSplits:      evaluation.DefaultSplits,
			Seed:         evaluation.DefaultSeed,
			Workers:      4,
			Target:       preprocessing.LogPriceColumn,
			PriceSpace:   true,
		},
		Store: StoreConfig{
			Driver: store.SQLite,
			DSN:    "hopus.db",
		},
		Map: MapConfig{
			Model:   ModelConfig{Name: models.Ridge},
			HTML:    "predictions.html",
			Plot:    "predictions.png",
			GeoPlot: "predictions_geo.png",
		},
	}
}

// Load resolves the configuration from the YAML file at path (skipped when
// path is empty) and the environment. envFiles are read into the process
// environment first without overriding variables already set; with no
// envFiles a .env file in the working directory is tried. Missing env files
// are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := cfg.decode(bytes.NewReader(data)); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	log.GetLoggerWithName("config").Debug("Configuration loaded",
		log.PathKey, path,
		"models", len(cfg.Experiment.Models),
	)
	return cfg, nil
}

// Read decodes YAML from r over the defaults. The environment is not
// consulted.
func Read(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(r); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return errors.Wrap(err, "decode yaml")
	}
	return nil
}

// Write encodes c as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "encode yaml")
	}
	return enc.Close()
}

// ValidationErrors collects every invalid field found by Validate.
type ValidationErrors []error

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, err := range v {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (v ValidationErrors) Unwrap() []error { return v }

// Validate checks every section and returns a ValidationErrors listing each
// problem, or nil.
func (c *Config) Validate() error {
	var errs ValidationErrors
	fail := func(param, reason string, value any) {
		errs = append(errs, errors.NewValidationError(param, reason, value))
	}

	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		fail("logging.level", "unknown level", c.Logging.Level)
	}

	if (c.Data.Listings == "") != (c.Data.HomePriceIndex == "") {
		fail("data", "listings and home_price_index must be set together", c.Data)
	}

	p := c.Preprocess
	if p.LowCutoff < 0 || p.LowCutoff > p.HighCutoff {
		fail("preprocess.low_cutoff", "must lie in [0, high_cutoff]", p.LowCutoff)
	}
	if p.HPILag < 0 {
		fail("preprocess.hpi_lag", "must not be negative", p.HPILag)
	}
	if p.TestFraction <= 0 || p.TestFraction >= 1 {
		fail("preprocess.test_fraction", "must lie in (0, 1)", p.TestFraction)
	}

	e := c.Experiment
	if len(e.Models) == 0 {
		fail("experiment.models", "at least one model is required", nil)
	}
	for _, m := range e.Models {
		if _, err := models.NewFactory(m.Name, m.Hyperparameters); err != nil {
			errs = append(errs, err)
		}
	}
	if e.NExperiments < 1 {
		fail("experiment.n_experiments", "must be at least 1", e.NExperiments)
	}
	if e.NSplits < 2 {
		fail("experiment.n_splits", "must be at least 2", e.NSplits)
	}
	if e.Workers < 1 {
		fail("experiment.workers", "must be at least 1", e.Workers)
	}
	if e.Target != preprocessing.PriceColumn && e.Target != preprocessing.LogPriceColumn {
		fail("experiment.target", "must be price or logPrice", e.Target)
	}

	switch c.Store.Driver {
	case store.SQLite, store.Postgres:
	default:
		fail("store.driver", "must be sqlite or postgres", c.Store.Driver)
	}
	if c.Store.DSN == "" {
		fail("store.dsn", "must not be empty", c.Store.DSN)
	}

	if _, err := models.NewFactory(c.Map.Model.Name, c.Map.Model.Hyperparameters); err != nil {
		errs = append(errs, err)
	}
	if c.Map.HTML == "" {
		fail("map.html", "must not be empty", c.Map.HTML)
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 19 {
		fail("map.zoom", "must lie in [0, 19]", c.Map.Zoom)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
