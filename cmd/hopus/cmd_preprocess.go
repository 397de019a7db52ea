package main

import (
	"github.com/spf13/cobra"

	"github.com/hopus-ml/hopus/pkg/log"
)

func (a *app) preprocessCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Clean the raw listings and write the processed table as CSV",
		Long: `Runs the cleaning pipeline over the configured listings and home price
index (or the demo sample), drops outliers and writes the result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			processed, err := loadProcessed(a.cfg)
			if err != nil {
				return err
			}
			if err := processed.WriteCSVFile(out); err != nil {
				return err
			}
			log.GetLoggerWithName("cli").Info("Wrote processed listings",
				log.PathKey, out,
				log.SamplesKey, processed.Len(),
				log.FeaturesKey, processed.Width(),
			)
			a.printf("%d listings, %d columns -> %s\n", processed.Len(), processed.Width(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "processed.csv", "output CSV path")
	return cmd
}
