package alarm

import (
	"time"
	"waterreminder/internal/core/domain/reminder"

	"github.com/golang-module/carbon/v2"
)

// NextOccurrence returns the first instant strictly after ref whose wall clock
// in loc equals t: today when it is still ahead, tomorrow otherwise.
//
// A wall clock that does not exist on a day (spring-forward gap) is shifted
// forward by the size of the gap, so 02:30 becomes 03:30. A wall clock that
// occurs twice (fall-back) resolves to the earlier instant.
func NextOccurrence(ref time.Time, t reminder.TimeOfDay, loc *time.Location) time.Time {
	local := ref.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, loc)
	for {
		at := onDay(day, t, loc)
		if at.After(ref) {
			return at
		}
		day = nextDay(day, loc)
	}
}

func nextDay(noon time.Time, loc *time.Location) time.Time {
	next := carbon.Time2Carbon(noon).AddDay().Carbon2Time().In(loc)
	return time.Date(next.Year(), next.Month(), next.Day(), 12, 0, 0, 0, loc)
}

func onDay(day time.Time, t reminder.TimeOfDay, loc *time.Location) time.Time {
	at := time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, loc)

	want := time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, time.UTC)
	if gap := want.Sub(wallClock(at)); gap > 0 {
		return at.Add(gap)
	}

	_, offset := at.Zone()
	_, before := at.Add(-3 * time.Hour).Zone()
	if before > offset {
		earlier := at.Add(-time.Duration(before-offset) * time.Second)
		if wallClock(earlier).Equal(wallClock(at)) {
			return earlier
		}
	}
	return at
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
