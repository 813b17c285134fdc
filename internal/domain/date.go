package domain

import (
	"math"
	"time"
)

// DayLayout is the wire format for calendar days.
const DayLayout = "2006-01-02"

// NewDay returns the UTC midnight time for the given calendar date.
func NewDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DayOf truncates t to its UTC calendar day. All PriceRecord.Day and
// UserQuote.Day values must pass through here so days compare with ==
// and work as map keys.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DayOf(t), nil
}

// FormatDay renders a day as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// DaysBetween returns the number of calendar days from `from` to `to`,
// rounded to the nearest whole day. Negative when `to` precedes `from`.
func DaysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}
