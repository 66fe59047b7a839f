// Package clock provides calendar-date arithmetic and an injectable
// source of "today" so that date-dependent logic stays deterministic
// in tests.
package clock

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day component. Normalizing to
// a pure date avoids timezone-induced duplicate or missing days when
// check-ins are compared.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf normalizes a time.Time to its calendar date in the time's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// NewDate constructs a date. Out-of-range values are normalized the same
// way time.Date normalizes them (e.g. Feb 30 becomes Mar 1 or 2).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.time().Format(DateLayout)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// time converts to a time.Time at midnight UTC. All arithmetic goes
// through UTC so DST transitions cannot shift day boundaries.
func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.time().AddDate(0, 0, n))
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.time().Before(other.time())
}

// After reports whether d is later than other.
func (d Date) After(other Date) bool {
	return d.time().After(other.time())
}

// DaysBetween returns the number of calendar days from a to b.
// Positive when b is after a, negative when b is before a.
func DaysBetween(a, b Date) int {
	return int(b.time().Sub(a.time()) / (24 * time.Hour))
}

// IsConsecutive reports whether next is exactly one day after prev.
func IsConsecutive(prev, next Date) bool {
	return DaysBetween(prev, next) == 1
}

// Clock supplies the current date. It is the single point of
// non-determinism in date handling; everything downstream takes a Clock
// so tests can pin "today".
type Clock interface {
	Today() Date
}

// SystemClock reads the current date from the local system time.
type SystemClock struct{}

// Today returns the current calendar date in local time.
func (SystemClock) Today() Date {
	return DateOf(time.Now())
}

// Fixed is a Clock that always reports the same date. Useful in tests.
type Fixed struct {
	Date Date
}

// Today returns the pinned date.
func (f Fixed) Today() Date {
	return f.Date
}

// UpcomingDays returns n dates starting from today, in order. It backs
// the short-horizon schedule view.
func UpcomingDays(c Clock, n int) []Date {
	today := c.Today()
	days := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, today.AddDays(i))
	}
	return days
}
