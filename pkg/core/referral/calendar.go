// Package referral holds calendar arithmetic for the dispatch scheduler:
// business-day counting for short-call classification and the recurrence
// schedules that drive morning referral runs.
package referral

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/unioncore/dispatch/pkg/core/model"
)

const (
	// ShortCallMaxBusinessDays is the longest job, in business days
	// excluding the referral day and holidays, still counted as a short call.
	ShortCallMaxBusinessDays = 10

	// ShortCallExemptBusinessDays is the length at or under which a call
	// does not count against the per-cycle short-call limit.
	ShortCallExemptBusinessDays = 3

	// ShortCallLimitPerCycle is the number of counted short calls a member
	// may take before re-registration is required.
	ShortCallLimitPerCycle = 2
)

// Calendar answers business-day questions. The working week is a
// recurrence rule (Monday through Friday); holidays are configured dates
// excluded on top of it.
type Calendar struct {
	workweek *rrule.RRule
	holidays map[string]struct{}
}

// NewCalendar builds a calendar from configured holiday dates
// (yyyy-mm-dd). An invalid holiday date is a configuration error.
func NewCalendar(holidays []string) (*Calendar, error) {
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		if _, err := time.Parse(model.DateFormat, h); err != nil {
			return nil, fmt.Errorf("invalid holiday date %q: %w", h, err)
		}
		set[h] = struct{}{}
	}

	workweek, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.DAILY,
		Byweekday: []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR},
		Dtstart:   time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build workweek rule: %w", err)
	}

	return &Calendar{workweek: workweek, holidays: set}, nil
}

func (c *Calendar) isHoliday(t time.Time) bool {
	_, ok := c.holidays[t.Format(model.DateFormat)]
	return ok
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsBusinessDay reports whether the date is a working day.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !c.isHoliday(t)
}

// NextBusinessDay returns the first business day strictly after the given
// date. A short call ending on a Friday reports here: the following Monday
// (or the next working day past a holiday).
func (c *Calendar) NextBusinessDay(after time.Time) time.Time {
	cur := midnightUTC(after)
	for {
		cur = c.workweek.After(cur, false)
		if !c.isHoliday(cur) {
			return cur
		}
	}
}

// AddBusinessDays returns the date n business days after from.
func (c *Calendar) AddBusinessDays(from time.Time, n int) time.Time {
	cur := midnightUTC(from)
	for i := 0; i < n; i++ {
		cur = c.NextBusinessDay(cur)
	}
	return cur
}

// BusinessDays counts business days in (referralDay, end]. The referral
// day itself is excluded per the short-call definition.
func (c *Calendar) BusinessDays(referralDay, end time.Time) int {
	cur := midnightUTC(referralDay)
	stop := midnightUTC(end)
	count := 0
	for {
		cur = c.NextBusinessDay(cur)
		if cur.After(stop) {
			return count
		}
		count++
	}
}

// IsShortCall reports whether a job running from the referral day to end
// qualifies as a short call.
func (c *Calendar) IsShortCall(referralDay, end time.Time) bool {
	return c.BusinessDays(referralDay, end) <= ShortCallMaxBusinessDays
}

// CountsAgainstShortCallLimit reports whether a short call of the given
// span consumes one of the member's per-cycle short calls.
func (c *Calendar) CountsAgainstShortCallLimit(referralDay, end time.Time) bool {
	return c.BusinessDays(referralDay, end) > ShortCallExemptBusinessDays
}

// NextRun returns the next morning-referral run after now for a book's
// configured recurrence rule (e.g. "FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR").
func NextRun(schedule string, now time.Time) (time.Time, error) {
	rule, err := rrule.StrToRRule(schedule)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid referral schedule %q: %w", schedule, err)
	}
	rule.DTStart(midnightUTC(now).AddDate(0, -1, 0))

	next := rule.After(now, false)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("referral schedule %q has no future occurrence", schedule)
	}
	return next, nil
}
