package evaluation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/hopus-ml/hopus/pkg/errors"
)

// Summary aggregates the records of one model configuration.
type Summary struct {
	Model           string
	Hyperparameters map[string]any
	Runs            int
	TrainMean       float64
	TrainStd        float64
	TestMean        float64
	TestStd         float64
}

// Label renders the configuration as model(key=value, ...) with sorted keys.
func (s Summary) Label() string {
	return label(s.Model, s.Hyperparameters)
}

// Label renders the record's configuration like Summary.Label.
func (r Record) Label() string {
	return label(r.Model, r.Hyperparameters)
}

func label(model string, hyper map[string]any) string {
	keys := make([]string, 0, len(hyper))
	for k := range hyper {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, hyper[k])
	}
	return model + "(" + strings.Join(parts, ", ") + ")"
}

// Summarize groups records by model and hyperparameters and reports the mean
// and sample standard deviation of their train and test errors. Groups are
// ordered by ascending mean test error.
func Summarize(records []Record) []Summary {
	type group struct {
		s           Summary
		train, test []float64
	}
	groups := map[string]*group{}
	var order []string
	for _, r := range records {
		key := label(r.Model, r.Hyperparameters)
		g, ok := groups[key]
		if !ok {
			g = &group{s: Summary{Model: r.Model, Hyperparameters: r.Hyperparameters}}
			groups[key] = g
			order = append(order, key)
		}
		g.train = append(g.train, r.TrainCVMSE)
		g.test = append(g.test, r.TestCVMSE)
	}

	out := make([]Summary, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.s.Runs = len(g.test)
		g.s.TrainMean, g.s.TrainStd = meanStd(g.train)
		g.s.TestMean, g.s.TestStd = meanStd(g.test)
		if g.s.Runs == 1 {
			errors.Warn(errors.NewUndefinedMetricWarning("std", "a single run of "+key, 0))
		}
		out = append(out, g.s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TestMean < out[j].TestMean })
	return out
}

func meanStd(x []float64) (float64, float64) {
	if len(x) == 1 {
		return x[0], 0
	}
	mean, std := stat.MeanStdDev(x, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}
