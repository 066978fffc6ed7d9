package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateKey buckets journal entries by calendar day.
type DateKey struct {
	Year  int
	Month int
	Day   int
}

// DateKeyOf returns the bucket key for a timestamp.
func DateKeyOf(t time.Time) DateKey {
	return DateKey{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

func (k DateKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, k.Month, k.Day)
}

// PartialDate is a date descriptor with optional month and day (0 = absent).
// A bare year matches every bucket in that year, and so on.
type PartialDate struct {
	Year  int
	Month int
	Day   int
}

// PartialDateOf narrows a timestamp to a fully-specified PartialDate.
func PartialDateOf(t time.Time) PartialDate {
	return PartialDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Valid reports whether the fields present form a plausible calendar date.
// Day requires month; a zero year is never valid.
func (p PartialDate) Valid() bool {
	if p.Year <= 0 {
		return false
	}
	if p.Month == 0 {
		return p.Day == 0
	}
	if p.Month < 1 || p.Month > 12 {
		return false
	}
	return p.Day >= 0 && p.Day <= 31
}

// Matches reports whether a bucket key agrees on every field present in
// the descriptor.
func (p PartialDate) Matches(k DateKey) bool {
	if p.Year != 0 && p.Year != k.Year {
		return false
	}
	if p.Month != 0 && p.Month != k.Month {
		return false
	}
	if p.Day != 0 && p.Day != k.Day {
		return false
	}
	return true
}

// CompareLower reports whether the bucket key is >= the descriptor,
// comparing field-wise on the fields present.
func (p PartialDate) CompareLower(k DateKey) bool {
	return !p.after(k)
}

// CompareUpper reports whether the bucket key is <= the descriptor,
// comparing field-wise on the fields present.
func (p PartialDate) CompareUpper(k DateKey) bool {
	return !p.before(k)
}

// after reports whether the descriptor is strictly after the key on the
// fields present.
func (p PartialDate) after(k DateKey) bool {
	if p.Year != k.Year {
		return p.Year > k.Year
	}
	if p.Month == 0 || p.Month == k.Month {
		return p.Day != 0 && p.Day > k.Day
	}
	return p.Month > k.Month
}

// before reports whether the descriptor is strictly before the key on the
// fields present.
func (p PartialDate) before(k DateKey) bool {
	if p.Year != k.Year {
		return p.Year < k.Year
	}
	if p.Month == 0 || p.Month == k.Month {
		return p.Day != 0 && p.Day < k.Day
	}
	return p.Month < k.Month
}

// ParsePartialDate parses "2021", "2021-10", or "2021-10-10".
func ParsePartialDate(s string) (PartialDate, error) {
	parts := strings.Split(s, "-")
	if len(parts) == 0 || len(parts) > 3 {
		return PartialDate{}, fmt.Errorf("%w: %q", ErrInvalidTransactionDate, s)
	}

	var p PartialDate
	fields := []*int{&p.Year, &p.Month, &p.Day}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return PartialDate{}, fmt.Errorf("%w: %q", ErrInvalidTransactionDate, s)
		}
		*fields[i] = n
	}

	if !p.Valid() {
		return PartialDate{}, fmt.Errorf("%w: %q", ErrInvalidTransactionDate, s)
	}
	return p, nil
}
