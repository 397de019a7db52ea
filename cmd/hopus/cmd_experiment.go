package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hopus-ml/hopus/config"
	"github.com/hopus-ml/hopus/evaluation"
	"github.com/hopus-ml/hopus/pkg/log"
	"github.com/hopus-ml/hopus/store"
)

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	return store.Open(ctx, cfg.Driver, cfg.DSN)
}

func (a *app) experimentCmd() *cobra.Command {
	var noStore bool
	cmd := &cobra.Command{
		Use:   "experiment",
		Short: "Run the configured experiments and record every run",
		Long: `Repeats the cross-validation of every configured model n_experiments times,
each time with a fresh random fold seed. Every run is saved to the configured
store (and CSV file, when set) and a summary per model is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			data, err := loadSplits(a.cfg)
			if err != nil {
				return err
			}

			records, err := evaluation.RunExperiments(ctx, data.train.X, data.train.Y,
				a.cfg.Experiment.Specs(), a.cfg.Experiment.Workers)
			if err != nil {
				return err
			}

			if !noStore {
				st, err := openStore(ctx, a.cfg.Store)
				if err != nil {
					return err
				}
				defer st.Close()
				if err := st.SaveRecords(ctx, records); err != nil {
					return err
				}
				log.GetLoggerWithName("cli").Info("Saved experiment records",
					"store.driver", a.cfg.Store.Driver,
					"records", len(records),
				)
			}
			if a.cfg.Store.CSV != "" {
				if err := store.ExportCSV(a.cfg.Store.CSV, records); err != nil {
					return err
				}
			}
			return writeSummary(a.out, evaluation.Summarize(records))
		},
	}
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not persist records to the store")
	return cmd
}

func (a *app) recordsCmd() *cobra.Command {
	var (
		filter store.Filter
		asCSV  bool
	)
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List stored experiment records, best test error first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, a.cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.ListRecords(ctx, filter)
			if err != nil {
				return err
			}
			if asCSV {
				return store.WriteCSV(a.out, records)
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tMODEL\tSEED\tTRAIN_CV_MSE\tTEST_CV_MSE")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%.6g\t%.6g\n",
					r.ID, r.Label(),
					r.Seed, r.TrainCVMSE, r.TestCVMSE)
			}
			return tw.Flush()
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&filter.Model, "model", "m", "", "only records of this model")
	flags.IntVarP(&filter.Limit, "limit", "n", 0, "maximum number of records")
	flags.BoolVar(&asCSV, "csv", false, "write CSV instead of a table")
	return cmd
}

func writeSummary(w io.Writer, summaries []evaluation.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tRUNS\tTRAIN_MSE\tTRAIN_STD\tTEST_MSE\tTEST_STD")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%.6g\t%.3g\t%.6g\t%.3g\n",
			s.Label(), s.Runs, s.TrainMean, s.TrainStd, s.TestMean, s.TestStd)
	}
	return tw.Flush()
}
