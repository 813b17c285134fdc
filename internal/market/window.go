package market

import (
	"sort"
	"time"

	"fuelmarket/internal/domain"
)

const (
	// WindowTargetSize is how many days a trend chart aims to show.
	WindowTargetSize = 21

	// windowMaxDaysAhead caps how far past the reference date the window
	// may reach, even when the reference lags far behind today.
	windowMaxDaysAhead = 10
)

// SelectWindow picks a contiguous slice of days, ascending and distinct,
// out of the days that actually have data for a base. The window targets
// WindowTargetSize entries and is biased toward history: it ends at or
// shortly after ref, showing future-of-ref days only when ref itself lags
// behind today, and at most windowMaxDaysAhead of them.
//
// When the initial placement falls short of the target near either edge
// of the available range, the window expands greedily, first to the left
// and then to the right, rather than silently truncating. Fewer than
// WindowTargetSize available days yields the whole set.
func SelectWindow(days []time.Time, ref, today time.Time) domain.DateWindow {
	n := len(days)
	if n == 0 {
		return domain.DateWindow{}
	}

	daysAhead := domain.DaysBetween(ref, today)
	if daysAhead < 0 {
		daysAhead = 0
	}
	if daysAhead > windowMaxDaysAhead {
		daysAhead = windowMaxDaysAhead
	}

	// Rightmost day <= ref; when every day is after ref, anchor at the
	// earliest one.
	i := sort.Search(n, func(k int) bool { return days[k].After(ref) }) - 1
	if i < 0 {
		i = 0
	}

	left := i - (WindowTargetSize - 1 - daysAhead)
	if left < 0 {
		left = 0
	}
	right := i + daysAhead
	if right > n-1 {
		right = n - 1
	}

	// Expand toward the target size: pull the shortfall from the left
	// first, then from the right.
	if shortfall := WindowTargetSize - (right - left + 1); shortfall > 0 {
		take := shortfall
		if take > left {
			take = left
		}
		left -= take
		shortfall -= take

		if shortfall > 0 {
			take = shortfall
			if take > n-1-right {
				take = n - 1 - right
			}
			right += take
		}
	}

	window := make([]time.Time, right-left+1)
	copy(window, days[left:right+1])
	return domain.DateWindow{Days: window}
}
