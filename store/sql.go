package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/hopus-ml/hopus/evaluation"
	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/pkg/log"
)

// Supported drivers.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// migrations are applied in order; the index plus one is the schema version.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS experiment_records (
		id TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		hyperparameters TEXT NOT NULL,
		n_splits INTEGER NOT NULL,
		seed BIGINT NOT NULL,
		train_cv_mse DOUBLE PRECISION NOT NULL,
		test_cv_mse DOUBLE PRECISION NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS experiment_records_model ON experiment_records (model, test_cv_mse)`,
}

// SQLStore keeps records in a database/sql database.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and brings its schema up to date. driver is
// SQLite (dsn is a file path, or ":memory:") or Postgres (dsn is a lib/pq
// connection string).
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if driver != SQLite && driver != Postgres {
		return nil, errors.NewValidationError("store.driver", "must be sqlite or postgres", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s store", driver)
	}
	if driver == SQLite {
		// one writer; also keeps ":memory:" databases on a single connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "ping %s store", driver)
	}
	s := &SQLStore{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// bind rewrites ? placeholders to $n for PostgreSQL.
func (s *SQLStore) bind(query string) string {
	if s.driver != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return errors.Wrap(err, "create schema_migrations")
	}
	var current int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return errors.Wrap(err, "read schema version")
	}

	for i := current; i < len(migrations); i++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return errors.Wrap(err, "begin migration")
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "apply migration %d", i+1)
		}
		if _, err := tx.ExecContext(ctx, s.bind(`INSERT INTO schema_migrations (version) VALUES (?)`), i+1); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "record migration %d", i+1)
		}
		if err := tx.Commit(); err != nil {
			return errors.Wrapf(err, "commit migration %d", i+1)
		}
		log.GetLoggerWithName("store").Debug("Applied migration", "version", i+1, "driver", s.driver)
	}
	return nil
}

// SaveRecords inserts the records in one transaction. A record whose ID is
// already stored is replaced.
func (s *SQLStore) SaveRecords(ctx context.Context, records []evaluation.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin save")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.bind(`
	INSERT INTO experiment_records
		(id, model, hyperparameters, n_splits, seed, train_cv_mse, test_cv_mse, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		model = excluded.model,
		hyperparameters = excluded.hyperparameters,
		n_splits = excluded.n_splits,
		seed = excluded.seed,
		train_cv_mse = excluded.train_cv_mse,
		test_cv_mse = excluded.test_cv_mse,
		started_at = excluded.started_at,
		finished_at = excluded.finished_at`))
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for _, r := range records {
		hyper, err := encodeHyperparameters(r.Hyperparameters)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Model, hyper, r.NSplits, int64(r.Seed),
			r.TrainCVMSE, r.TestCVMSE,
			formatTime(r.StartedAt), formatTime(r.FinishedAt),
		); err != nil {
			return errors.Wrapf(err, "insert record %s", r.ID)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit save")
	}
	log.GetLoggerWithName("store").Info("Saved experiment records", log.SamplesKey, len(records), "driver", s.driver)
	return nil
}

// ListRecords returns stored records ordered by ascending test error.
func (s *SQLStore) ListRecords(ctx context.Context, filter Filter) ([]evaluation.Record, error) {
	query := `SELECT id, model, hyperparameters, n_splits, seed, train_cv_mse, test_cv_mse, started_at, finished_at
	FROM experiment_records`
	var args []any
	if filter.Model != "" {
		query += ` WHERE model = ?`
		args = append(args, filter.Model)
	}
	query += ` ORDER BY test_cv_mse ASC, id ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.bind(query), args...)
	if err != nil {
		return nil, errors.Wrap(err, "query records")
	}
	defer rows.Close()

	var out []evaluation.Record
	for rows.Next() {
		var (
			r                 evaluation.Record
			hyper             string
			seed              int64
			started, finished string
		)
		if err := rows.Scan(&r.ID, &r.Model, &hyper, &r.NSplits, &seed,
			&r.TrainCVMSE, &r.TestCVMSE, &started, &finished); err != nil {
			return nil, errors.Wrap(err, "scan record")
		}
		r.Seed = uint32(seed)
		if r.Hyperparameters, err = decodeHyperparameters(hyper); err != nil {
			return nil, errors.Wrapf(err, "record %s", r.ID)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, errors.Wrapf(err, "record %s started_at", r.ID)
		}
		if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, errors.Wrapf(err, "record %s finished_at", r.ID)
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterate records")
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func encodeHyperparameters(h map[string]any) (string, error) {
	if h == nil {
		h = map[string]any{}
	}
	data, err := json.Marshal(h, json.Deterministic(true))
	if err != nil {
		return "", errors.Wrap(err, "encode hyperparameters")
	}
	return string(data), nil
}

func decodeHyperparameters(s string) (map[string]any, error) {
	var h map[string]any
	if err := json.Unmarshal([]byte(s), &h); err != nil {
		return nil, errors.Wrap(err, "decode hyperparameters")
	}
	if len(h) == 0 {
		return nil, nil
	}
	return h, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
