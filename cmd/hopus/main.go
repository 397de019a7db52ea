// Command hopus cleans RentCast listings, cross-validates price models,
// records experiments and renders prediction maps.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hopus-ml/hopus/config"
	"github.com/hopus-ml/hopus/pkg/log"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	console    bool

	cfg *config.Config
	out io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:   "hopus",
		Short: "Housing pricing utilities",
		Long: `hopus predicts residential sale prices from RentCast listing data.

Without a config file the embedded San Antonio demo sample is used, so every
command can be tried directly:

  hopus preprocess --out processed.csv
  hopus cv --model ridge --param alpha=0.5
  hopus experiment
  hopus map`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVar(&a.console, "console", false, "human readable logs instead of JSON")

	root.AddCommand(
		a.preprocessCmd(),
		a.cvCmd(),
		a.experimentCmd(),
		a.recordsCmd(),
		a.mapCmd(),
		a.hpiErrorCmd(),
		a.configCmd(),
		versionCmd(),
	)
	return root
}

// setup loads and validates the configuration and configures logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.console {
		cfg.Logging.Console = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := log.SetupLogger(cfg.Logging.Level, cfg.Logging.Console); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		log.GetLoggerWithName("cli").Error("Command failed", err)
		stop()
		os.Exit(1)
	}
}
