package library

import (
	"fmt"
	"time"
)

// DateLayout is the on-disk and on-screen format for calendar dates.
const DateLayout = "2006-01-02"

const (
	// LoanPeriodDays is the number of days a member may keep a book before
	// fines accrue.
	LoanPeriodDays = 14

	// FinePerDay is the fine, in currency units, for each day past the loan
	// period.
	FinePerDay = 10
)

// FinePolicy describes the grace period and daily rate used on return.
type FinePolicy struct {
	AllowedDays int
	RatePerDay  int
}

// DefaultFinePolicy is 14 days free, then 10 units per day.
var DefaultFinePolicy = FinePolicy{AllowedDays: LoanPeriodDays, RatePerDay: FinePerDay}

// Assess returns the days past the grace period and the fine owed for a loan
// issued on issue and returned on ret. Both are zero for on-time returns.
func (p FinePolicy) Assess(issue, ret time.Time) (lateDays, fine int) {
	lateDays = max(0, CalendarDays(issue, ret)-p.AllowedDays)
	return lateDays, lateDays * p.RatePerDay
}

// CalendarDays returns to - from in whole days, truncated toward zero. It
// works in Unix seconds since time.Duration saturates after about 292 years.
func CalendarDays(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// CalendarDate strips the clock from t, keeping its local calendar day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string. The empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
