package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/clinic-agenda-api/internal/dto"
	"github.com/noah-isme/clinic-agenda-api/internal/models"
	appErrors "github.com/noah-isme/clinic-agenda-api/pkg/errors"
	"github.com/noah-isme/clinic-agenda-api/pkg/export"
	"github.com/noah-isme/clinic-agenda-api/pkg/layout"
	"github.com/noah-isme/clinic-agenda-api/pkg/signing"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
	FormatICS = "ics"
)

var agendaExportHeaders = []string{"date", "start", "end", "patient", "service", "professional", "status", "lane"}

type agendaSource interface {
	Day(ctx context.Context, q dto.AgendaQuery) (*dto.DayAgenda, bool, error)
	Week(ctx context.Context, q dto.AgendaQuery) (*dto.WeekAgenda, bool, error)
	Occurrences(ctx context.Context, from, to time.Time, filter models.AppointmentFilter) ([]layout.Event, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

type icsRenderer interface {
	Render(entries []export.CalendarEntry) ([]byte, error)
	ContentType() string
}

// ExportConfig tunes exports and calendar feeds.
type ExportConfig struct {
	APIPrefix      string
	FeedPastDays   int
	FeedFutureDays int
	UIDDomain      string
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders agenda views as CSV, PDF or iCalendar and serves signed calendar feeds.
type ExportService struct {
	agenda agendaSource
	csv    csvRenderer
	pdf    pdfRenderer
	ics    icsRenderer
	signer *signing.FeedSigner
	logger *zap.Logger
	cfg    ExportConfig
	now    func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers get the defaults.
func NewExportService(agenda agendaSource, signer *signing.FeedSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer, ics icsRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter(',')
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if ics == nil {
		ics = export.NewICSExporter("")
	}
	if cfg.FeedPastDays < 0 {
		cfg.FeedPastDays = 0
	}
	if cfg.FeedFutureDays <= 0 {
		cfg.FeedFutureDays = 60
	}
	if cfg.UIDDomain == "" {
		cfg.UIDDomain = "clinic-agenda"
	}
	return &ExportService{
		agenda: agenda,
		csv:    csv,
		pdf:    pdf,
		ics:    ics,
		signer: signer,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Day renders the day agenda selected by q in the requested format.
func (s *ExportService) Day(ctx context.Context, q dto.AgendaQuery, format string) (*ExportFile, error) {
	format, err := normalizeFormat(format)
	if err != nil {
		return nil, err
	}
	day, _, err := s.agenda.Day(ctx, q)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Agenda %s (%s)", day.Date, day.Weekday)
	return s.render([]dto.DayAgenda{*day}, title, subtitle(q), "agenda_"+day.Date, format)
}

// Week renders the week agenda selected by q in the requested format.
func (s *ExportService) Week(ctx context.Context, q dto.AgendaQuery, format string) (*ExportFile, error) {
	format, err := normalizeFormat(format)
	if err != nil {
		return nil, err
	}
	week, _, err := s.agenda.Week(ctx, q)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Agenda %s to %s", week.Start, week.End)
	return s.render(week.Days, title, subtitle(q), fmt.Sprintf("agenda_%s_%s", week.Start, week.End), format)
}

// FeedLink issues a signed subscription URL for the scope.
func (s *ExportService) FeedLink(scope signing.FeedScope) (*dto.FeedLinkResponse, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "calendar feeds are not configured")
	}
	token, expiresAt, err := s.signer.Generate(scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cannot sign feed")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	return &dto.FeedLinkResponse{
		URL:       fmt.Sprintf("%s/agenda/feed/%s.ics", prefix, token),
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// Feed renders the iCalendar feed behind a signed token.
func (s *ExportService) Feed(ctx context.Context, token string) (*ExportFile, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "calendar feeds are not configured")
	}
	scope, _, err := s.signer.Parse(strings.TrimSuffix(token, ".ics"))
	if err != nil {
		if errors.Is(err, signing.ErrExpiredToken) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "feed link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid feed link")
	}

	today := dateOnly(s.now())
	from := today.AddDate(0, 0, -s.cfg.FeedPastDays)
	to := today.AddDate(0, 0, s.cfg.FeedFutureDays)
	events, err := s.agenda.Occurrences(ctx, from, to, models.AppointmentFilter{
		UnitID:         scope.UnitID,
		ProfessionalID: scope.ProfessionalID,
	})
	if err != nil {
		return nil, err
	}

	data, err := s.ics.Render(s.calendarEntries(events))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render feed")
	}
	return &ExportFile{Filename: "agenda.ics", ContentType: s.ics.ContentType(), Data: data}, nil
}

func (s *ExportService) render(days []dto.DayAgenda, title, sub, basename, format string) (*ExportFile, error) {
	var (
		data        []byte
		contentType string
		err         error
	)
	switch format {
	case FormatCSV:
		data, err = s.csv.Render(agendaDataset(days, title, sub))
		contentType = s.csv.ContentType()
	case FormatPDF:
		data, err = s.pdf.Render(agendaDataset(days, title, sub))
		contentType = s.pdf.ContentType()
	case FormatICS:
		events := make([]layout.Event, 0)
		for _, day := range days {
			for _, item := range day.Items {
				events = append(events, item.Event)
			}
		}
		data, err = s.ics.Render(s.calendarEntries(events))
		contentType = s.ics.ContentType()
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("%s.%s", sanitizeFilename(basename), format),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// calendarEntries converts events to ICS entries, skipping ones with unusable times.
func (s *ExportService) calendarEntries(events []layout.Event) []export.CalendarEntry {
	entries := make([]export.CalendarEntry, 0, len(events))
	for _, ev := range events {
		date, err := time.Parse(layout.DateLayout, ev.Date)
		if err != nil {
			s.logger.Warn("skipping event with invalid date in calendar export", zap.String("event_id", ev.ID), zap.String("date", ev.Date))
			continue
		}
		iv, err := layout.ToInterval(ev.Time, ev.DurationMinutes)
		if err != nil {
			s.logger.Warn("skipping event in calendar export", zap.String("event_id", ev.ID), zap.Error(err))
			continue
		}
		summary := ev.PatientName
		if ev.ServiceLabel != "" {
			summary = fmt.Sprintf("%s - %s", ev.PatientName, ev.ServiceLabel)
		}
		entries = append(entries, export.CalendarEntry{
			UID:         fmt.Sprintf("%s@%s", ev.ID, s.cfg.UIDDomain),
			Start:       date.Add(time.Duration(iv.Start) * time.Minute),
			End:         date.Add(time.Duration(iv.End) * time.Minute),
			Summary:     summary,
			Description: ev.ProfessionalLabel,
			Status:      string(ev.Status),
		})
	}
	return entries
}

func agendaDataset(days []dto.DayAgenda, title, sub string) export.Dataset {
	rows := make([]map[string]string, 0)
	for _, day := range days {
		items := append([]dto.AgendaItem(nil), day.Items...)
		// Exports read top to bottom, so rows follow start time rather than lane order.
		sortItemsByStart(items)
		for _, item := range items {
			rows = append(rows, map[string]string{
				"date":         day.Date,
				"start":        item.StartLabel,
				"end":          item.EndLabel,
				"patient":      item.PatientName,
				"service":      item.ServiceLabel,
				"professional": item.ProfessionalLabel,
				"status":       string(item.Status),
				"lane":         fmt.Sprintf("%d/%d", item.Lane+1, item.LaneCount),
			})
		}
	}
	return export.Dataset{Title: title, Subtitle: sub, Headers: agendaExportHeaders, Rows: rows}
}

func sortItemsByStart(items []dto.AgendaItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartMinutes < items[j].StartMinutes
	})
}

func subtitle(q dto.AgendaQuery) string {
	parts := make([]string, 0, 3)
	if q.UnitID != "" {
		parts = append(parts, "unit "+q.UnitID)
	}
	if q.ProfessionalID != "" {
		parts = append(parts, "professional "+q.ProfessionalID)
	}
	if len(q.Statuses) > 0 {
		parts = append(parts, "status "+strings.Join(q.Statuses, ","))
	}
	return strings.Join(parts, " / ")
}

func normalizeFormat(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	switch format {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatPDF, FormatICS:
		return format, nil
	default:
		return "", appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", raw))
	}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "agenda"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
