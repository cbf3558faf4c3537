package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-agenda-api/internal/models"
	"github.com/noah-isme/clinic-agenda-api/pkg/layout"
)

// maxOccurrencesPerSeries caps how many instances one series can contribute to a range.
const maxOccurrencesPerSeries = 500

// occurrence is one dated instance of an appointment.
type occurrence struct {
	AppointmentID string
	Recurring     bool
	Event         layout.Event
}

// expandOccurrences turns appointments into dated events inside [from, to]
// (both dates inclusive). Recurring series are expanded with their RRULE
// anchored at the appointment date and start time; a series whose rule does
// not parse contributes only its anchor date. Output is ordered by date, then
// by the order of appointments.
func expandOccurrences(appointments []models.Appointment, from, to time.Time, logger *zap.Logger) []occurrence {
	from = dateOnly(from)
	to = dateOnly(to)
	out := make([]occurrence, 0, len(appointments))

	for _, appt := range appointments {
		if !appt.IsRecurring() {
			if d := dateOnly(appt.Date); !d.Before(from) && !d.After(to) {
				out = append(out, newOccurrence(appt, d, false))
			}
			continue
		}

		dates, err := seriesDates(appt, from, to)
		if err != nil {
			logger.Warn("invalid recurrence, using anchor date only",
				zap.String("appointment_id", appt.ID),
				zap.String("recurrence", *appt.Recurrence),
				zap.Error(err))
			if d := dateOnly(appt.Date); !d.Before(from) && !d.After(to) {
				out = append(out, newOccurrence(appt, d, false))
			}
			continue
		}
		if len(dates) > maxOccurrencesPerSeries {
			logger.Warn("recurrence truncated",
				zap.String("appointment_id", appt.ID),
				zap.Int("occurrences", len(dates)))
			dates = dates[:maxOccurrencesPerSeries]
		}
		for _, d := range dates {
			out = append(out, newOccurrence(appt, d, true))
		}
	}

	sortOccurrencesByDate(out)
	return out
}

// seriesDates returns the dates in [from, to] on which the series occurs.
func seriesDates(appt models.Appointment, from, to time.Time) ([]time.Time, error) {
	rule, err := parseRRule(*appt.Recurrence)
	if err != nil {
		return nil, fmt.Errorf("parse rrule: %w", err)
	}

	anchor := dateOnly(appt.Date)
	// A malformed clock still expands by date; the layout engine rejects it per day.
	if minutes, err := layout.ParseClock(appt.StartTime); err == nil {
		anchor = anchor.Add(time.Duration(minutes) * time.Minute)
	}
	rule.DTStart(anchor)

	end := to.Add(24*time.Hour - time.Second)
	instants := rule.Between(from, end, true)
	dates := make([]time.Time, 0, len(instants))
	for _, t := range instants {
		d := dateOnly(t)
		if n := len(dates); n > 0 && dates[n-1].Equal(d) {
			// Sub-daily rules collapse to one occurrence per date.
			continue
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// ValidRRule reports whether raw parses as a recurrence rule.
func ValidRRule(raw string) bool {
	_, err := parseRRule(raw)
	return err == nil
}

func parseRRule(raw string) (*rrule.RRule, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "RRULE:")
	if raw == "" {
		return nil, fmt.Errorf("empty rule")
	}
	return rrule.StrToRRule(raw)
}

func newOccurrence(appt models.Appointment, date time.Time, recurring bool) occurrence {
	id := appt.ID
	if recurring {
		id = fmt.Sprintf("%s@%s", appt.ID, date.Format("20060102"))
	}
	return occurrence{
		AppointmentID: appt.ID,
		Recurring:     recurring,
		Event: layout.Event{
			ID:                id,
			Date:              date.Format(layout.DateLayout),
			Time:              appt.StartTime,
			DurationMinutes:   appt.DurationMinutes,
			PatientName:       appt.PatientName,
			ServiceLabel:      appt.ServiceLabel,
			ProfessionalLabel: appt.ProfessionalLabel,
			Status:            layout.Status(appt.Status),
		},
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// sortOccurrencesByDate is a stable sort on the date key; input order breaks ties.
func sortOccurrencesByDate(items []occurrence) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Event.Date < items[j].Event.Date
	})
}
