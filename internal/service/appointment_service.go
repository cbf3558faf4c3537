package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-agenda-api/internal/dto"
	"github.com/noah-isme/clinic-agenda-api/internal/models"
	appErrors "github.com/noah-isme/clinic-agenda-api/pkg/errors"
	"github.com/noah-isme/clinic-agenda-api/pkg/jobs"
	"github.com/noah-isme/clinic-agenda-api/pkg/layout"
)

type appointmentRepository interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error)
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, appointment *models.Appointment) error
	Update(ctx context.Context, appointment *models.Appointment) error
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (bool, error)
	Delete(ctx context.Context, id string) error
}

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// AppointmentService manages appointments. Overlapping bookings are accepted;
// the agenda renders them side by side. Every mutation schedules an agenda
// cache invalidation for the affected dates.
type AppointmentService struct {
	repo        appointmentRepository
	invalidator jobEnqueuer
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAppointmentService constructs the service. invalidator may be nil when caching is off.
func NewAppointmentService(repo appointmentRepository, invalidator jobEnqueuer, validate *validator.Validate, logger *zap.Logger) *AppointmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// List returns appointments matching the query.
func (s *AppointmentService) List(ctx context.Context, q dto.AppointmentListQuery) ([]models.Appointment, *models.Pagination, error) {
	statuses, err := parseStatuses(q.Statuses)
	if err != nil {
		return nil, nil, err
	}
	filter := models.AppointmentFilter{
		UnitID:         strings.TrimSpace(q.UnitID),
		ProfessionalID: strings.TrimSpace(q.ProfessionalID),
		Statuses:       statuses,
		Search:         q.Search,
		Page:           q.Page,
		PageSize:       q.PageSize,
		SortBy:         q.SortBy,
		SortOrder:      q.SortOrder,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 200 {
		filter.PageSize = 50
	}
	if q.DateFrom != "" {
		d, err := parseAgendaDate(q.DateFrom, "date_from")
		if err != nil {
			return nil, nil, err
		}
		filter.DateFrom = &d
	}
	if q.DateTo != "" {
		d, err := parseAgendaDate(q.DateTo, "date_to")
		if err != nil {
			return nil, nil, err
		}
		filter.DateTo = &d
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "date_to must not be before date_from")
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns an appointment by id.
func (s *AppointmentService) Get(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	return appt, nil
}

// Create books an appointment. Status defaults to PENDING.
func (s *AppointmentService) Create(ctx context.Context, req dto.AppointmentRequest) (*models.Appointment, error) {
	appt, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create appointment")
	}
	s.logger.Info("appointment created", zap.String("appointment_id", appt.ID), zap.String("date", appt.Date.Format(layout.DateLayout)))
	s.invalidate(*appt)
	return appt, nil
}

// Update replaces the editable fields of an appointment.
func (s *AppointmentService) Update(ctx context.Context, id string, req dto.AppointmentRequest) (*models.Appointment, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	appt, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	appt.ID = existing.ID
	appt.CreatedAt = existing.CreatedAt
	if req.Status == "" {
		appt.Status = existing.Status
	}
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update appointment")
	}
	s.invalidate(*existing, *appt)
	return appt, nil
}

// UpdateStatus changes an appointment's status.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id string, req dto.AppointmentStatusRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	status := models.AppointmentStatus(strings.ToUpper(req.Status))
	ok, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update appointment status")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
	}
	appt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(*appt)
	return appt, nil
}

// Delete removes an appointment.
func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete appointment")
	}
	s.logger.Info("appointment deleted", zap.String("appointment_id", id))
	s.invalidate(*existing)
	return nil
}

func (s *AppointmentService) fromRequest(req dto.AppointmentRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appointment payload")
	}
	date, err := parseAgendaDate(req.Date, "date")
	if err != nil {
		return nil, err
	}
	status := models.AppointmentPending
	if req.Status != "" {
		status = models.AppointmentStatus(strings.ToUpper(req.Status))
	}
	var recurrence *string
	if req.Recurrence != nil {
		if rule := strings.TrimPrefix(strings.TrimSpace(*req.Recurrence), "RRULE:"); rule != "" {
			recurrence = &rule
		}
	}
	return &models.Appointment{
		UnitID:            strings.TrimSpace(req.UnitID),
		ProfessionalID:    strings.TrimSpace(req.ProfessionalID),
		PatientName:       strings.TrimSpace(req.PatientName),
		ServiceLabel:      strings.TrimSpace(req.ServiceLabel),
		ProfessionalLabel: strings.TrimSpace(req.ProfessionalLabel),
		Date:              date,
		StartTime:         req.StartTime,
		DurationMinutes:   req.DurationMinutes,
		Status:            status,
		Recurrence:        recurrence,
		Notes:             req.Notes,
	}, nil
}

// invalidate enqueues a cache invalidation covering every version of the appointment.
// A recurring version touches unbounded dates, so it clears the whole agenda cache.
func (s *AppointmentService) invalidate(versions ...models.Appointment) {
	if s.invalidator == nil {
		return
	}
	payload := InvalidationPayload{}
	for _, v := range versions {
		if v.IsRecurring() {
			payload = InvalidationPayload{All: true}
			break
		}
		payload.Dates = append(payload.Dates, dateOnly(v.Date))
	}
	job := jobs.Job{Type: InvalidationJobType, Payload: payload, Enqueued: time.Now().UTC()}
	if err := s.invalidator.TryEnqueue(job); err != nil {
		s.logger.Warn("failed to enqueue agenda invalidation", zap.Error(err))
	}
}
