package layout

import (
	"errors"
	"fmt"
)

// MinutesPerDay is the length of the wall-clock day timeline.
const MinutesPerDay = 24 * 60

// Sentinel errors raised at the interval boundary. Callers match them with errors.Is.
var (
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrInvalidDuration   = errors.New("invalid duration")
	ErrInvalidDate       = errors.New("invalid date")
)

// Interval is a half-open minute range [Start, End) on the day timeline.
// End may exceed MinutesPerDay; there is no rollover into the next day.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Duration returns the interval length in minutes.
func (i Interval) Duration() int {
	return i.End - i.Start
}

// Overlaps reports whether the two intervals intersect. Back-to-back
// intervals sharing a boundary instant do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// ToInterval converts an "HH:MM" start time and a duration into an Interval.
func ToInterval(clock string, durationMinutes int) (Interval, error) {
	start, err := ParseClock(clock)
	if err != nil {
		return Interval{}, err
	}
	if durationMinutes <= 0 {
		return Interval{}, fmt.Errorf("%w: %d minutes", ErrInvalidDuration, durationMinutes)
	}
	return Interval{Start: start, End: start + durationMinutes}, nil
}

// ParseClock parses a strict 24h "HH:MM" string into minutes since midnight.
func ParseClock(clock string) (int, error) {
	if len(clock) != 5 || clock[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, clock)
	}
	hours, ok := twoDigits(clock[0], clock[1])
	if !ok || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, clock)
	}
	minutes, ok := twoDigits(clock[3], clock[4])
	if !ok || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, clock)
	}
	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as "HH:MM". Values past the end
// of the day keep counting hours (e.g. 1500 -> "25:00").
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}
