// Package priority implements the composite APN ordering key used by the
// registration ledger. The key orders registrations by calendar day first
// and by an intra-day sequence second. It is a sort key, not an identifier:
// ties are legal and are broken by row insertion order.
package priority

import (
	"fmt"
	"time"

	"github.com/unioncore/dispatch/pkg/core/model"
)

// epoch anchors the day encoding. Day 0 is 2000-01-01 UTC; every
// registration in the system postdates it.
var epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// seqScale bounds the intra-day sequence to four decimal digits, matching
// the legacy APN display format (e.g. 9528.0042).
const seqScale = 10000

// Number is the APN: Day counts days since the epoch, Seq is the arrival
// position among same-day registrations on the same book.
type Number struct {
	Day int
	Seq int
}

// Encode converts a date to its day count. Time of day is ignored.
func Encode(t time.Time) int {
	u := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(u.Sub(epoch).Hours() / 24)
}

// Date returns the calendar date a day count encodes.
func Date(day int) time.Time {
	return epoch.AddDate(0, 0, day)
}

// DateString returns the encoded date in the canonical date format.
func DateString(day int) string {
	return Date(day).Format(model.DateFormat)
}

// Less orders numbers by day, then sequence. Equal numbers compare false
// both ways; callers break the remaining ties by insertion order.
func Less(a, b Number) bool {
	if a.Day != b.Day {
		return a.Day < b.Day
	}
	return a.Seq < b.Seq
}

// Decimal renders the number in the legacy composite-decimal form for
// display and reports. It is never used for ordering or identity.
func (n Number) Decimal() float64 {
	return float64(n.Day) + float64(n.Seq)/seqScale
}

// String formats the number as the staff-facing APN.
func (n Number) String() string {
	return fmt.Sprintf("%d.%04d", n.Day, n.Seq)
}

// Of extracts the ordering key from a registration.
func Of(reg *model.Registration) Number {
	return Number{Day: reg.PriorityDay, Seq: reg.PrioritySeq}
}
