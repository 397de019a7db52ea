package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/hopus-ml/hopus/evaluation"
	"github.com/hopus-ml/hopus/models"
	"github.com/hopus-ml/hopus/preprocessing"
)

func (a *app) cvCmd() *cobra.Command {
	var (
		model  string
		params []string
		splits int
		seed   uint64
	)
	cmd := &cobra.Command{
		Use:   "cv",
		Short: "Cross-validate one model on the training split",
		Example: `  hopus cv --model knn --param n_neighbors=8 --param weights=distance
  hopus cv --model ridge --param alpha=2 --splits 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hyper, err := parseParams(params)
			if err != nil {
				return err
			}
			factory, err := models.NewFactory(model, hyper)
			if err != nil {
				return err
			}
			data, err := loadSplits(a.cfg)
			if err != nil {
				return err
			}

			opts := evaluation.CVOptions{NSplits: splits, Seed: seed}
			if splits == 0 {
				opts.NSplits = a.cfg.Experiment.NSplits
			}
			if seed == 0 {
				opts.Seed = a.cfg.Experiment.Seed
			}
			if a.cfg.Experiment.PriceSpace && a.cfg.Experiment.Target == preprocessing.LogPriceColumn {
				opts.Evaluate = append(opts.Evaluate, models.InPriceSpace())
			}

			res, err := evaluation.CVEvaluation(cmd.Context(), factory, data.train.X, data.train.Y, opts)
			if err != nil {
				return err
			}
			for i := range res.FoldTest {
				a.printf("fold %d\ttrain %.6g\ttest %.6g\n", i+1, res.FoldTrain[i], res.FoldTest[i])
			}
			a.printf("%s\ttrain_cv_mse %.6g\ttest_cv_mse %.6g\n", model, res.TrainMSE, res.TestMSE)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&model, "model", "m", models.Ridge, "model name: "+joinNames())
	flags.StringArrayVarP(&params, "param", "p", nil, "hyperparameter as key=value, repeatable")
	flags.IntVar(&splits, "splits", 0, "number of folds (default from config)")
	flags.Uint64Var(&seed, "seed", 0, "fold seed (default from config)")
	return cmd
}

func joinNames() string {
	return strings.Join(models.Names(), ", ")
}
