// Package layout computes side-by-side placement for calendar events that
// overlap in time. It is pure: no I/O, no shared state, inputs are never
// mutated, and the same input always yields the same output.
package layout

import (
	"errors"
	"sort"
	"time"
)

// Status is the display tag of a scheduled event. It does not affect placement.
type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusPending   Status = "PENDING"
	StatusAttended  Status = "ATTENDED"
	StatusCancelled Status = "CANCELLED"
	StatusNoShow    Status = "NO_SHOW"
)

// Reason codes reported for rejected events.
const (
	ReasonInvalidTimeFormat = "INVALID_TIME_FORMAT"
	ReasonInvalidDuration   = "INVALID_DURATION"
	ReasonInvalidDate       = "INVALID_DATE"
)

// DateLayout is the calendar date key format.
const DateLayout = "2006-01-02"

// Event is one scheduled appointment as seen by the layout engine.
type Event struct {
	ID                string `json:"id"`
	Date              string `json:"date"`
	Time              string `json:"time"`
	DurationMinutes   int    `json:"duration_minutes"`
	PatientName       string `json:"patient_name"`
	ServiceLabel      string `json:"service_label"`
	ProfessionalLabel string `json:"professional_label"`
	Status            Status `json:"status"`
}

// Layout is an event plus its lane and geometry.
type Layout struct {
	Event
	StartMinutes int `json:"start_minutes"`
	EndMinutes   int `json:"end_minutes"`
	Group        int `json:"group"`
	Lane         int `json:"lane"`
	LaneCount    int `json:"lane_count"`
	Geometry
}

// Rejection reports an event that could not be laid out.
type Rejection struct {
	Index  int    `json:"index"`
	Event  Event  `json:"event"`
	Reason string `json:"reason"`
	Detail string `json:"detail"`
	Err    error  `json:"-"`
}

// Result holds the laid-out events and the ones rejected at the interval boundary.
type Result struct {
	Layouts  []Layout    `json:"layouts"`
	Rejected []Rejection `json:"rejected"`
}

// DayLayout is the Result for a single calendar date.
type DayLayout struct {
	Date string `json:"date"`
	Result
}

// Compute runs the full pipeline for one day's events: interval conversion,
// overlap grouping, lane assignment and projection. Malformed events are
// rejected individually and the rest are still laid out.
func Compute(events []Event, opts Options) Result {
	opts = opts.normalized()
	result := Result{Layouts: []Layout{}, Rejected: []Rejection{}}
	if len(events) == 0 {
		return result
	}

	accepted := make([]int, 0, len(events))
	intervals := make([]Interval, 0, len(events))
	for i, ev := range events {
		iv, err := ToInterval(ev.Time, ev.DurationMinutes)
		if err != nil {
			result.Rejected = append(result.Rejected, reject(i, ev, err))
			continue
		}
		accepted = append(accepted, i)
		intervals = append(intervals, iv)
	}

	for groupID, group := range GroupOverlapping(intervals) {
		for _, la := range AssignLanes(group, intervals) {
			iv := intervals[la.Index]
			result.Layouts = append(result.Layouts, Layout{
				Event:        events[accepted[la.Index]],
				StartMinutes: iv.Start,
				EndMinutes:   iv.End,
				Group:        groupID,
				Lane:         la.Lane,
				LaneCount:    la.LaneCount,
				Geometry:     Project(iv, la.Lane, la.LaneCount, opts),
			})
		}
	}
	return result
}

// ComputeDays partitions events by Date and runs Compute for each day.
// Days are returned in ascending order. Events whose date is not a valid
// YYYY-MM-DD are rejected under the empty date key.
func ComputeDays(events []Event, opts Options) []DayLayout {
	byDate := make(map[string][]Event)
	origin := make(map[string][]int)
	var invalid []Rejection

	for i, ev := range events {
		if _, err := time.Parse(DateLayout, ev.Date); err != nil {
			invalid = append(invalid, Rejection{
				Index:  i,
				Event:  ev,
				Reason: ReasonInvalidDate,
				Detail: ErrInvalidDate.Error() + ": " + ev.Date,
				Err:    ErrInvalidDate,
			})
			continue
		}
		byDate[ev.Date] = append(byDate[ev.Date], ev)
		origin[ev.Date] = append(origin[ev.Date], i)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	days := make([]DayLayout, 0, len(dates)+1)
	if len(invalid) > 0 {
		days = append(days, DayLayout{Result: Result{Layouts: []Layout{}, Rejected: invalid}})
	}
	for _, date := range dates {
		res := Compute(byDate[date], opts)
		// Report rejections against the caller's indices, not the per-day slice.
		for i := range res.Rejected {
			res.Rejected[i].Index = origin[date][res.Rejected[i].Index]
		}
		days = append(days, DayLayout{Date: date, Result: res})
	}
	return days
}

func reject(index int, ev Event, err error) Rejection {
	reason := ReasonInvalidTimeFormat
	if errors.Is(err, ErrInvalidDuration) {
		reason = ReasonInvalidDuration
	}
	return Rejection{Index: index, Event: ev, Reason: reason, Detail: err.Error(), Err: err}
}
