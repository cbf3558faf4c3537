package dto

// AppointmentListQuery holds list filters bound from the query string.
type AppointmentListQuery struct {
	UnitID         string   `form:"unit_id"`
	ProfessionalID string   `form:"professional_id"`
	Statuses       []string `form:"status"`
	DateFrom       string   `form:"date_from"`
	DateTo         string   `form:"date_to"`
	Search         string   `form:"search"`
	Page           int      `form:"page"`
	PageSize       int      `form:"page_size"`
	SortBy         string   `form:"sort_by"`
	SortOrder      string   `form:"sort_order"`
}

// AppointmentRequest is the create and update payload.
type AppointmentRequest struct {
	UnitID            string  `json:"unit_id" validate:"required"`
	ProfessionalID    string  `json:"professional_id" validate:"required"`
	PatientName       string  `json:"patient_name" validate:"required,max=200"`
	ServiceLabel      string  `json:"service_label" validate:"max=200"`
	ProfessionalLabel string  `json:"professional_label" validate:"max=200"`
	Date              string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime         string  `json:"start_time" validate:"required,clock"`
	DurationMinutes   int     `json:"duration_minutes" validate:"required,min=1,max=1440"`
	Status            string  `json:"status" validate:"omitempty,appointment_status"`
	Recurrence        *string `json:"recurrence" validate:"omitempty,rrule"`
	Notes             *string `json:"notes" validate:"omitempty,max=2000"`
}

// AppointmentStatusRequest changes only the status.
type AppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,appointment_status"`
}
