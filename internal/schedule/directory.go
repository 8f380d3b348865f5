// Package schedule negotiates one confirmed interview slot, or records the
// candidate's preference for manual follow-up. The Timeslot Directory is a
// shared resource: a proposed slot is provisional until its booking call
// succeeds, and a conflict means somebody else got there first.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrConflict is returned by Book when the slot was taken between proposal
// and confirmation.
var ErrConflict = errors.New("schedule: slot already booked")

// Slot is one proposable interview appointment.
type Slot struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Time   string `json:"time"` // HH:MM
	Spoken string `json:"spoken"`
}

// Key identifies the slot for booking bookkeeping.
func (s Slot) Key() string { return s.Date + " " + s.Time }

// DayHint narrows a slot query to the candidate's preferred days.
// Raw keeps the candidate's own wording.
type DayHint struct {
	Days []time.Weekday
	Raw  string
}

// Directory is the external timeslot service boundary.
type Directory interface {
	// ListSlots returns up to limit bookable candidates, nearest first,
	// honouring the hint when it names any days.
	ListSlots(ctx context.Context, hint DayHint, limit int) ([]Slot, error)

	// Book claims the slot for a session. Returns ErrConflict when the
	// slot is no longer free.
	Book(ctx context.Context, s Slot, sessionID string) error
}

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ParsePreferredDays extracts weekday names from a free-text preference.
// Order follows first mention; duplicates are dropped.
func ParsePreferredDays(text string) []time.Weekday {
	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:")
		if d, ok := weekdayNames[w]; ok && !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	return days
}

// SpokenSlot formats a date and time for reading out, e.g.
// "Tuesday 1 September at 10:00".
func SpokenSlot(day time.Time, hhmm string) string {
	return fmt.Sprintf("%s %d %s at %s", day.Weekday(), day.Day(), day.Month(), hhmm)
}
