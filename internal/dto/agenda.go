package dto

import "github.com/noah-isme/clinic-agenda-api/pkg/layout"

// AgendaQuery selects the appointments and layout profile of an agenda view.
type AgendaQuery struct {
	Date           string   `form:"date" json:"date"`
	UnitID         string   `form:"unit_id" json:"unit_id,omitempty"`
	ProfessionalID string   `form:"professional_id" json:"professional_id,omitempty"`
	Statuses       []string `form:"status" json:"status,omitempty"`
	Profile        string   `form:"profile" json:"profile,omitempty"`
}

// AgendaItem is one placed appointment occurrence.
type AgendaItem struct {
	layout.Layout
	AppointmentID string `json:"appointment_id"`
	Recurring     bool   `json:"recurring"`
	StartLabel    string `json:"start_label"`
	EndLabel      string `json:"end_label"`
}

// AgendaWindow describes the visible window of a view.
type AgendaWindow struct {
	layout.Window
	StartLabel string `json:"start_label"`
	EndLabel   string `json:"end_label"`
}

// DayAgenda is the laid-out agenda of one calendar date.
type DayAgenda struct {
	Date            string             `json:"date"`
	Weekday         string             `json:"weekday"`
	Profile         string             `json:"profile"`
	Projection      layout.Projection  `json:"projection"`
	Window          AgendaWindow       `json:"window"`
	PixelsPerMinute float64            `json:"pixels_per_minute,omitempty"`
	CanvasHeight    float64            `json:"canvas_height"`
	Groups          int                `json:"groups"`
	Items           []AgendaItem       `json:"items"`
	Rejected        []layout.Rejection `json:"rejected"`
}

// WeekAgenda is seven consecutive DayAgenda values starting at the week start.
type WeekAgenda struct {
	Start   string      `json:"start"`
	End     string      `json:"end"`
	Profile string      `json:"profile"`
	Days    []DayAgenda `json:"days"`
}

// FeedLinkRequest asks for a signed calendar subscription URL.
type FeedLinkRequest struct {
	UnitID         string `json:"unit_id"`
	ProfessionalID string `json:"professional_id"`
}

// FeedLinkResponse carries the signed URL of a calendar subscription.
type FeedLinkResponse struct {
	URL       string `json:"url"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}
