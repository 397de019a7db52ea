package store

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/hopus-ml/hopus/evaluation"
	"github.com/hopus-ml/hopus/pkg/errors"
)

var csvHeader = []string{
	"id", "model", "hyperparameters", "n_splits", "seed",
	"train_cv_mse", "test_cv_mse", "started_at", "finished_at",
}

// WriteCSV writes the records with a header row. Hyperparameters are a JSON
// object in a single column.
func WriteCSV(w io.Writer, records []evaluation.Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, r := range records {
		hyper, err := encodeHyperparameters(r.Hyperparameters)
		if err != nil {
			return err
		}
		if err := writer.Write([]string{
			r.ID,
			r.Model,
			hyper,
			strconv.Itoa(r.NSplits),
			strconv.FormatUint(uint64(r.Seed), 10),
			strconv.FormatFloat(r.TrainCVMSE, 'g', -1, 64),
			strconv.FormatFloat(r.TestCVMSE, 'g', -1, 64),
			formatTime(r.StartedAt),
			formatTime(r.FinishedAt),
		}); err != nil {
			return errors.Wrapf(err, "write record %s", r.ID)
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "flush csv")
}

// ExportCSV writes the records to a file at path.
func ExportCSV(path string, records []evaluation.Record) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	return WriteCSV(file, records)
}
