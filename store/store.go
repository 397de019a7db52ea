// Package store persists experiment records in SQLite or PostgreSQL and
// exports them as CSV.
package store

import (
	"context"

	"github.com/hopus-ml/hopus/evaluation"
)

// Filter narrows ListRecords. The zero value lists everything.
type Filter struct {
	// Model keeps only records of this registry name.
	Model string
	// Limit caps the number of records, 0 means no cap.
	Limit int
}

// Store is where experiment records are kept.
type Store interface {
	SaveRecords(ctx context.Context, records []evaluation.Record) error
	ListRecords(ctx context.Context, filter Filter) ([]evaluation.Record, error)
	Close() error
}
