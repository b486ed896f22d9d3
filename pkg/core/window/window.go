// Package window implements the bidding window controller's time queries.
// Everything here is a pure function of the supplied wall-clock instant and
// the configured schedule, so boundary behavior is unit-testable without
// background timers.
package window

import (
	"fmt"
	"time"
)

// Event names returned by NextEvent for UI display.
const (
	EventWindowOpens  = "window_opens"
	EventWindowCloses = "window_closes"
	EventCutoff       = "cutoff"
)

// TimeOfDay is minutes since local midnight.
type TimeOfDay int

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// At anchors the time of day onto the calendar date of ref, in ref's
// location.
func (t TimeOfDay) At(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), int(t)/60, int(t)%60, 0, 0, ref.Location())
}

func minutesOf(now time.Time) TimeOfDay {
	return TimeOfDay(now.Hour()*60 + now.Minute())
}

// Schedule is the daily bidding timetable. The window spans midnight: it
// opens in the evening and closes the following morning.
type Schedule struct {
	Opens           TimeOfDay // 17:30 default
	Closes          TimeOfDay // 07:00 default
	Cutoff          TimeOfDay // 15:00 default, employer request deadline
	CheckInDeadline TimeOfDay // 15:00 default, dispatch check-in deadline
}

// Default returns the standard referral-hall timetable.
func Default() Schedule {
	return Schedule{
		Opens:           TimeOfDay(17*60 + 30),
		Closes:          TimeOfDay(7 * 60),
		Cutoff:          TimeOfDay(15 * 60),
		CheckInDeadline: TimeOfDay(15 * 60),
	}
}

// IsBiddingOpen reports whether online bidding is accepting submissions at
// the given instant. The open interval is [Opens, midnight) ∪ [midnight,
// Closes): true at 17:30:00 and 06:59:59, false at 07:00:00 and 17:29:59.
func (s Schedule) IsBiddingOpen(now time.Time) bool {
	m := minutesOf(now)
	return m >= s.Opens || m < s.Closes
}

// IsPastCutoff reports whether the employer request cutoff has passed for
// the current day.
func (s Schedule) IsPastCutoff(now time.Time) bool {
	return minutesOf(now) >= s.Cutoff
}

// Event is an upcoming schedule boundary.
type Event struct {
	Name string
	At   time.Time
}

// NextEvent returns the nearest upcoming schedule boundary after now.
func (s Schedule) NextEvent(now time.Time) Event {
	candidates := []Event{
		{EventWindowOpens, s.Opens.At(now)},
		{EventWindowCloses, s.Closes.At(now)},
		{EventCutoff, s.Cutoff.At(now)},
		{EventWindowOpens, s.Opens.At(now).AddDate(0, 0, 1)},
		{EventWindowCloses, s.Closes.At(now).AddDate(0, 0, 1)},
		{EventCutoff, s.Cutoff.At(now).AddDate(0, 0, 1)},
	}

	var next Event
	for _, c := range candidates {
		if !c.At.After(now) {
			continue
		}
		if next.At.IsZero() || c.At.Before(next.At) {
			next = c
		}
	}
	return next
}

// CloseFor returns the instant the current or next bidding window closes:
// today's close if now is in the after-midnight half of the window,
// otherwise tomorrow morning's close.
func (s Schedule) CloseFor(now time.Time) time.Time {
	if minutesOf(now) < s.Closes {
		return s.Closes.At(now)
	}
	return s.Closes.At(now).AddDate(0, 0, 1)
}

// OpenFor returns the instant the current or next bidding window opens.
func (s Schedule) OpenFor(now time.Time) time.Time {
	if minutesOf(now) < s.Closes {
		// Inside the after-midnight half; the window opened yesterday evening.
		return s.Opens.At(now).AddDate(0, 0, -1)
	}
	return s.Opens.At(now)
}
