package schedule

import (
	"context"
	"sync"
	"time"
)

// offsetDays keeps the earliest proposal at least this many days out, so a
// same-day interview is never offered.
const offsetDays = 1

// horizonDays bounds how far ahead the directory looks for free slots.
const horizonDays = 21

// defaultGrid is the per-weekday interview start times. Weekends are not
// offered.
var defaultGrid = map[time.Weekday][]string{
	time.Monday:    {"10:00", "15:00"},
	time.Tuesday:   {"09:00", "14:00"},
	time.Wednesday: {"11:00", "16:00"},
	time.Thursday:  {"10:00", "14:30"},
	time.Friday:    {"09:30", "13:00"},
}

// WeekdayDirectory is the in-process Directory: a fixed per-weekday time grid
// with booking state. Multiple concurrent sessions may list and book; the
// mutex is the external synchronization the contract promises.
type WeekdayDirectory struct {
	// Clock is swapped in tests; defaults to time.Now.
	Clock func() time.Time
	// Grid overrides defaultGrid when non-nil.
	Grid map[time.Weekday][]string

	mu     sync.Mutex
	booked map[string]string // slot key -> session ID
}

// NewWeekdayDirectory returns an empty directory on the default grid.
func NewWeekdayDirectory() *WeekdayDirectory {
	return &WeekdayDirectory{booked: make(map[string]string)}
}

func (d *WeekdayDirectory) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}

func (d *WeekdayDirectory) grid() map[time.Weekday][]string {
	if d.Grid != nil {
		return d.Grid
	}
	return defaultGrid
}

func (d *WeekdayDirectory) wantDay(hint DayHint, day time.Weekday) bool {
	if len(hint.Days) == 0 {
		return true
	}
	for _, w := range hint.Days {
		if w == day {
			return true
		}
	}
	return false
}

// ListSlots walks forward from tomorrow, taking the first free time of each
// acceptable weekday until limit slots are found.
func (d *WeekdayDirectory) ListSlots(_ context.Context, hint DayHint, limit int) ([]Slot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var slots []Slot
	day := d.now().AddDate(0, 0, offsetDays)
	for i := 0; i < horizonDays && len(slots) < limit; i++ {
		times := d.grid()[day.Weekday()]
		if len(times) > 0 && d.wantDay(hint, day.Weekday()) {
			for _, hhmm := range times {
				s := Slot{
					Date:   day.Format("2006-01-02"),
					Time:   hhmm,
					Spoken: SpokenSlot(day, hhmm),
				}
				if _, taken := d.booked[s.Key()]; !taken {
					slots = append(slots, s)
					break // one slot per day keeps proposals spread out
				}
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return slots, nil
}

// Book claims the slot; ErrConflict when another session holds it.
func (d *WeekdayDirectory) Book(_ context.Context, s Slot, sessionID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.booked == nil {
		d.booked = make(map[string]string)
	}
	if holder, taken := d.booked[s.Key()]; taken && holder != sessionID {
		return ErrConflict
	}
	d.booked[s.Key()] = sessionID
	return nil
}
