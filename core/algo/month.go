// Package algo has the calendar algorithms of the report: gap filling and row sequencing.
package algo

import (
	"fmt"
	"time"

	"github.com/elomagic/dtreport/internal/contract"
	"github.com/elomagic/dtreport/schema"
)

const monthKeyLayout = "2006-01"

// ParseMonthKey returns the first instant (UTC) of the month named by key.
func ParseMonthKey(key schema.MonthKey) (time.Time, error) {
	t, err := time.Parse(monthKeyLayout, string(key))
	if err != nil || len(key) != len(monthKeyLayout) {
		return time.Time{}, fmt.Errorf("%w: malformed month key %q", contract.ErrDataAssumption, key)
	}
	return t, nil
}

// NextMonth returns the month key that follows key.
func NextMonth(key schema.MonthKey) (schema.MonthKey, error) {
	t, err := ParseMonthKey(key)
	if err != nil {
		return "", err
	}
	return schema.MonthKey(t.AddDate(0, 1, 0).Format(monthKeyLayout)), nil
}

// MonthsBetween returns the number of months from a to b, both inclusive.
// It is zero when b is before a.
func MonthsBetween(a, b schema.MonthKey) (int, error) {
	ta, err := ParseMonthKey(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseMonthKey(b)
	if err != nil {
		return 0, err
	}
	n := (tb.Year()-ta.Year())*12 + int(tb.Month()) - int(ta.Month()) + 1
	return max(n, 0), nil
}
