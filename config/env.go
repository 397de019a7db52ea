package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/hopus-ml/hopus/pkg/errors"
)

// Environment variables read by Load.
const (
	EnvLogLevel       = "HOPUS_LOG_LEVEL"
	EnvListings       = "HOPUS_LISTINGS"
	EnvHomePriceIndex = "HOPUS_HPI"
	EnvNExperiments   = "HOPUS_N_EXPERIMENTS"
	EnvWorkers        = "HOPUS_WORKERS"
	EnvStoreDriver    = "HOPUS_STORE_DRIVER"
	EnvStoreDSN       = "HOPUS_STORE_DSN"
	EnvMapHTML        = "HOPUS_MAP_HTML"
)

// DefaultEnvFile is tried when Load is given no env files.
const DefaultEnvFile = ".env"

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrapf(err, "load env file %s", f)
		}
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	strs := map[string]*string{
		EnvLogLevel:       &c.Logging.Level,
		EnvListings:       &c.Data.Listings,
		EnvHomePriceIndex: &c.Data.HomePriceIndex,
		EnvStoreDriver:    &c.Store.Driver,
		EnvStoreDSN:       &c.Store.DSN,
		EnvMapHTML:        &c.Map.HTML,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		EnvNExperiments: &c.Experiment.NExperiments,
		EnvWorkers:      &c.Experiment.Workers,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewValidationError(key, "not an integer", v)
		}
		*dst = n
	}
	return nil
}
