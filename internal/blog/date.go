package blog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	displayLayout = "Monday, January 2, 2006"
	isoLayout     = "2006-01-02"
)

// Date is a calendar date without time or zone. The literal form is
// "YYYY.M.D"; Display, Timestamp and ISO are presentations derived from it.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a "YYYY.M.D" literal. Month and day may be zero padded;
// any other separator or an impossible calendar date is rejected.
func ParseDate(literal string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(literal), ".")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("expected YYYY.M.D, got %q", literal)
	}

	values := make([]int, 3)
	for i, part := range parts {
		if part == "" || strings.TrimLeft(part, "0123456789") != "" {
			return Date{}, fmt.Errorf("expected YYYY.M.D, got %q", literal)
		}
		value, err := strconv.Atoi(part)
		if err != nil {
			return Date{}, fmt.Errorf("expected YYYY.M.D, got %q: %w", literal, err)
		}
		values[i] = value
	}

	date := Date{Year: values[0], Month: time.Month(values[1]), Day: values[2]}
	if len(parts[0]) != 4 {
		return Date{}, fmt.Errorf("year must have four digits, got %q", literal)
	}
	if date.Month < time.January || date.Month > time.December {
		return Date{}, fmt.Errorf("month out of range in %q", literal)
	}
	if t := date.Time(); t.Day() != date.Day || t.Month() != date.Month {
		return Date{}, fmt.Errorf("day out of range in %q", literal)
	}
	return date, nil
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// String returns the literal form, e.g. "2023.8.29".
func (d Date) String() string {
	return fmt.Sprintf("%d.%d.%d", d.Year, int(d.Month), d.Day)
}

// Display returns the human readable form, e.g. "Tuesday, August 29, 2023".
func (d Date) Display() string {
	return d.Time().Format(displayLayout)
}

// Timestamp returns the RFC 3339 form used by feeds and sitemaps.
func (d Date) Timestamp() string {
	return d.Time().Format(time.RFC3339)
}

// ISO returns the YYYY-MM-DD form.
func (d Date) ISO() string {
	return d.Time().Format(isoLayout)
}

// MarshalJSON encodes the display form.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Display())
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
