package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// TimestampLayout is how instants are stored in TEXT columns.
const TimestampLayout = time.RFC3339Nano

// dateLayout is how calendar dates are stored in TEXT columns.
const dateLayout = "2006-01-02"

// BoolToInt stores a bool in an INTEGER column.
func BoolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// NullDate stores an optional calendar date; the zero time becomes NULL.
func NullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}

// ParseNullDate reads an optional calendar date column.
func ParseNullDate(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s.String, err)
	}
	return t, nil
}

// NullTimestamp stores an optional instant; the zero time becomes NULL.
func NullTimestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp reads an instant written by NullTimestamp or FormatTimestamp.
func ParseTimestamp(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s.String); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s.String)
}

// FormatTimestamp stores a required instant.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// NullInt64 stores an optional id; nil becomes NULL.
func NullInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

// Int64Ptr reads an optional id column.
func Int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
