// Package pgtypes converts common Go values into the canonical
// PostgreSQL text representation sqldbal's Statement.BindText expects,
// with the same nil-safe-pointer convention used throughout this
// codebase: a *T variant that reports invalid (so the caller binds
// NULL) instead of panicking on a nil pointer.
//
// This differs from a pgx typed-binary-value helper in destination
// only: the conversions below target the wire sqldbal's PostgreSQL
// adapter actually speaks (text-format parameters of its prepared
// statements), not pgx's own binary codec path.
package pgtypes

import (
	"time"

	"github.com/google/uuid"
)

// UUIDText renders id in the canonical hyphenated form Postgres'
// uuid_in accepts. The zero UUID is treated as invalid, matching how
// a nil foreign key is typically represented in Go call sites.
func UUIDText(id uuid.UUID) (value string, valid bool) {
	if id == uuid.Nil {
		return "", false
	}
	return id.String(), true
}

// UUIDPtrText is UUIDText for a possibly-nil pointer.
func UUIDPtrText(id *uuid.UUID) (string, bool) {
	if id == nil {
		return "", false
	}
	return UUIDText(*id)
}

// TimestampText renders t without a time zone, the format Postgres'
// timestamp_in expects.
func TimestampText(t time.Time) (string, bool) {
	if t.IsZero() {
		return "", false
	}
	return t.Format("2006-01-02 15:04:05.999999"), true
}

// TimestampPtrText is TimestampText for a possibly-nil pointer.
func TimestampPtrText(t *time.Time) (string, bool) {
	if t == nil {
		return "", false
	}
	return TimestampText(*t)
}

// TimestamptzText renders t with a time zone offset, the format
// Postgres' timestamptz_in expects.
func TimestamptzText(t time.Time) (string, bool) {
	if t.IsZero() {
		return "", false
	}
	return t.Format("2006-01-02 15:04:05.999999Z07:00"), true
}

// TimestamptzPtrText is TimestamptzText for a possibly-nil pointer.
func TimestamptzPtrText(t *time.Time) (string, bool) {
	if t == nil {
		return "", false
	}
	return TimestamptzText(*t)
}

// DateText renders t as a date, the format Postgres' date_in expects.
func DateText(t time.Time) (string, bool) {
	if t.IsZero() {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// DatePtrText is DateText for a possibly-nil pointer.
func DatePtrText(t *time.Time) (string, bool) {
	if t == nil {
		return "", false
	}
	return DateText(*t)
}

// BoolText renders b as Postgres' boolean text literal.
func BoolText(b bool) string {
	if b {
		return "t"
	}
	return "f"
}

// BoolPtrText is BoolText for a possibly-nil pointer.
func BoolPtrText(b *bool) (string, bool) {
	if b == nil {
		return "", false
	}
	return BoolText(*b), true
}
