package log

import (
	"github.com/cockroachdb/errors"
)

// marshalStack is installed as zerolog's ErrorStackMarshaler so errors built
// with cockroachdb/errors carry their recorded stack into the log record.
func marshalStack(err error) interface{} {
	if st := extractStacktrace(err); st != "" {
		return st
	}
	return nil
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
