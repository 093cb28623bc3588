package dashboard

import (
	"math"
	"time"

	"github.com/brasa-analytics/brasa/internal/filters"
)

// Window is the time interval an aggregate query is scoped to.
type Window struct {
	Start time.Time
	End   time.Time
}

// PreviousWindow computes the equal-length window immediately preceding an
// explicit inclusive [startDate, endDate] selection. For N inclusive days the
// previous window also spans N days and ends at 23:59:59.999 on the day
// before startDate. The day count is taken from the calendar dates, so a
// selection of 2024-03-10..2024-03-19 compares against 2024-02-29..2024-03-09.
func PreviousWindow(startDate, endDate string) (Window, int, error) {
	start, end, err := filters.DayBounds(startDate, endDate)
	if err != nil {
		return Window{}, 0, err
	}
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
	durationDays := int(math.Round(endDay.Sub(start).Hours()/24)) + 1
	if durationDays < 1 {
		durationDays = 1
	}
	prevStart := start.AddDate(0, 0, -durationDays)
	prevEnd := start.Add(-time.Millisecond)
	return Window{Start: prevStart, End: prevEnd}, durationDays, nil
}

// Growth returns the percentage change from previous to current, rounded to
// one decimal place. A zero or missing previous value yields zero rather
// than a division blow-up.
func Growth(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return math.Round((current-previous)/previous*1000) / 10
}
