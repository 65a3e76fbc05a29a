package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the canonical text form of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day.
// The zero value is the invalid date: it never matches any date filter.
type Date struct {
	t time.Time
}

// NewDate creates a Date from its components. Out of range values are normalized
// the way time.Date normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a strict YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	if len(s) != len(DateLayout) {
		return Date{}, fmt.Errorf("invalid date %q: expected %s", s, DateLayout)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate that panics on error. Intended for tests and constants.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero returns true for the invalid date
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Valid returns true if the date is a real calendar date
func (d Date) Valid() bool {
	return !d.t.IsZero()
}

// Time returns midnight UTC of the date
func (d Date) Time() time.Time {
	return d.t
}

// Compare returns -1, 0 or +1. The invalid date orders before every valid date.
func (d Date) Compare(other Date) int {
	return d.t.Compare(other.t)
}

// Before reports whether both dates are valid and d is strictly before other
func (d Date) Before(other Date) bool {
	return d.Valid() && other.Valid() && d.t.Before(other.t)
}

// After reports whether both dates are valid and d is strictly after other
func (d Date) After(other Date) bool {
	return d.Valid() && other.Valid() && d.t.After(other.t)
}

// Equal reports whether both dates denote the same calendar day
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// OnOrBefore reports whether both dates are valid and d <= other
func (d Date) OnOrBefore(other Date) bool {
	return d.Valid() && other.Valid() && !d.t.After(other.t)
}

// Within reports whether d lies in the closed range [from, to]
func (d Date) Within(from, to Date) bool {
	return d.Valid() && from.Valid() && to.Valid() && !d.t.Before(from.t) && !d.t.After(to.t)
}

// AddDays returns the date n days later (or earlier for negative n).
// The invalid date stays invalid.
func (d Date) AddDays(n int) Date {
	if d.IsZero() {
		return d
	}
	return Date{t: d.t.AddDate(0, 0, n)}
}

// String returns the canonical YYYY-MM-DD form, or "" for the invalid date
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler. An empty string yields the invalid date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer for database storage
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.t, nil
}

// Scan implements sql.Scanner for database retrieval
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = DateOf(v)
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
	return nil
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
