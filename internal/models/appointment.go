package models

import "time"

// AppointmentStatus is the lifecycle state shown on the agenda.
type AppointmentStatus string

const (
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentPending   AppointmentStatus = "PENDING"
	AppointmentAttended  AppointmentStatus = "ATTENDED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
	AppointmentNoShow    AppointmentStatus = "NO_SHOW"
)

// AppointmentStatuses lists every valid status in display order.
var AppointmentStatuses = []AppointmentStatus{
	AppointmentConfirmed,
	AppointmentPending,
	AppointmentAttended,
	AppointmentCancelled,
	AppointmentNoShow,
}

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	for _, known := range AppointmentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Appointment is a booked slot. StartTime is wall clock "HH:MM"; Recurrence,
// when set, is an RFC 5545 RRULE anchored at Date+StartTime.
type Appointment struct {
	ID                string            `db:"id" json:"id"`
	UnitID            string            `db:"unit_id" json:"unit_id"`
	ProfessionalID    string            `db:"professional_id" json:"professional_id"`
	PatientName       string            `db:"patient_name" json:"patient_name"`
	ServiceLabel      string            `db:"service_label" json:"service_label"`
	ProfessionalLabel string            `db:"professional_label" json:"professional_label"`
	Date              time.Time         `db:"appointment_date" json:"date"`
	StartTime         string            `db:"start_time" json:"start_time"`
	DurationMinutes   int               `db:"duration_minutes" json:"duration_minutes"`
	Status            AppointmentStatus `db:"status" json:"status"`
	Recurrence        *string           `db:"recurrence" json:"recurrence,omitempty"`
	Notes             *string           `db:"notes" json:"notes,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// IsRecurring reports whether the appointment repeats.
func (a Appointment) IsRecurring() bool {
	return a.Recurrence != nil && *a.Recurrence != ""
}

// AppointmentFilter narrows appointment listings and agenda loads.
type AppointmentFilter struct {
	UnitID         string
	ProfessionalID string
	Statuses       []AppointmentStatus
	DateFrom       *time.Time
	DateTo         *time.Time
	Search         string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
