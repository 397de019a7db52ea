package main

import (
	"github.com/spf13/cobra"

	"github.com/hopus-ml/hopus/evaluation"
	"github.com/hopus-ml/hopus/preprocessing"
)

func (a *app) hpiErrorCmd() *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "hpi-error",
		Short: "Report the error of the lagged home price index baseline",
		Long: `Estimates every sale price as price * available / true home price index,
the adjustment that was possible with the index published at the time of
sale, and reports its MSE and RMSE over the processed listings. This is the
lower bound any model using the available index inherits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if target == "" {
				target = a.cfg.Experiment.Target
			}
			processed, err := loadProcessed(a.cfg)
			if err != nil {
				return err
			}
			mse, err := evaluation.HPIMSE(processed, target)
			if err != nil {
				return err
			}
			rmse, err := evaluation.HPIRMSE(processed, target)
			if err != nil {
				return err
			}
			a.printf("target %s\tlistings %d\tmse %.6g\trmse %.6g\n", target, processed.Len(), mse, rmse)
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "",
		"price or "+preprocessing.LogPriceColumn+" (default from config)")
	return cmd
}
