package hpi

import (
	"fmt"
	"strings"
	"time"

	"github.com/hopus-ml/hopus/pkg/errors"
)

// Month is a calendar month, without day or timezone.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month of t in t's own location, so a timestamp keeps
// the month it was written with regardless of its offset.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

var monthLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
}

// ParseMonth parses "YYYY-MM", "YYYY-MM-DD" or an RFC 3339 timestamp.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthOf(t), nil
		}
	}
	return Month{}, errors.NewValidationError("month", "expected YYYY-MM, YYYY-MM-DD or RFC 3339", s)
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// AddMonths returns the month n months later (earlier when n < 0).
func (m Month) AddMonths(n int) Month {
	return MonthOf(time.Date(m.Year, m.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC))
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}
