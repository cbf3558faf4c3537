package export

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

// floatingLayout writes DTSTART/DTEND without a zone; agenda times are wall clock.
const floatingLayout = "20060102T150405"

// CalendarEntry is one event written to an iCalendar feed.
type CalendarEntry struct {
	UID         string
	Start       time.Time
	End         time.Time
	Summary     string
	Description string
	Location    string
	Status      string
}

// ICSExporter renders calendar entries as an RFC 5545 VCALENDAR.
type ICSExporter struct {
	productID string
	now       func() time.Time
}

// NewICSExporter builds an exporter stamping events with productID.
func NewICSExporter(productID string) *ICSExporter {
	if productID == "" {
		productID = "-//clinic-agenda-api//agenda//EN"
	}
	return &ICSExporter{productID: productID, now: time.Now}
}

// ContentType reports the MIME type of rendered output.
func (e *ICSExporter) ContentType() string { return "text/calendar; charset=utf-8" }

// Render serializes the entries. Each entry needs a UID and a positive span.
func (e *ICSExporter) Render(entries []CalendarEntry) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(e.productID)

	stamp := e.now().UTC()
	for _, entry := range entries {
		if entry.UID == "" {
			return nil, fmt.Errorf("ics entry without uid")
		}
		if !entry.End.After(entry.Start) {
			return nil, fmt.Errorf("ics entry %s ends before it starts", entry.UID)
		}

		event := cal.AddEvent(entry.UID)
		event.SetDtStampTime(stamp)
		event.SetProperty(ical.ComponentPropertyDtStart, entry.Start.Format(floatingLayout))
		event.SetProperty(ical.ComponentPropertyDtEnd, entry.End.Format(floatingLayout))
		event.SetSummary(entry.Summary)
		if entry.Description != "" {
			event.SetDescription(entry.Description)
		}
		if entry.Location != "" {
			event.SetLocation(entry.Location)
		}
		if status := icsStatus(entry.Status); status != "" {
			event.SetProperty(ical.ComponentPropertyStatus, status)
		}
	}

	return []byte(cal.Serialize()), nil
}

// icsStatus maps appointment statuses onto the three VEVENT statuses.
func icsStatus(status string) string {
	switch status {
	case "CONFIRMED", "ATTENDED":
		return "CONFIRMED"
	case "PENDING":
		return "TENTATIVE"
	case "CANCELLED", "NO_SHOW":
		return "CANCELLED"
	default:
		return ""
	}
}
