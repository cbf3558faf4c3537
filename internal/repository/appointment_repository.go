package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/clinic-agenda-api/internal/models"
)

const appointmentColumns = `id, unit_id, professional_id, patient_name, service_label, professional_label, appointment_date, start_time, duration_minutes, status, recurrence, notes, created_at, updated_at`

var appointmentSortColumns = map[string]string{
	"date":         "appointment_date",
	"start_time":   "start_time",
	"patient_name": "patient_name",
	"status":       "status",
	"created_at":   "created_at",
}

// AppointmentRepository persists appointments.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository constructs an appointment repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// List returns a page of appointments matching filters plus the total count.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	where, args := appointmentWhere(filter)
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("appointment_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("appointment_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	sortColumn, ok := appointmentSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "appointment_date"
	}
	sortOrder := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		sortOrder = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE %s ORDER BY %s %s, start_time ASC, id ASC LIMIT %d OFFSET %d`,
		appointmentColumns, whereClause, sortColumn, sortOrder, size, offset)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM appointments WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}
	return appointments, total, nil
}

// ListRange returns every appointment that can occur between from and to
// inclusive: single appointments dated inside the range and recurring series
// anchored on or before to. Pagination fields of filter are ignored.
func (r *AppointmentRepository) ListRange(ctx context.Context, from, to time.Time, filter models.AppointmentFilter) ([]models.Appointment, error) {
	where, args := appointmentWhere(filter)
	fromIdx, toIdx := len(args)+1, len(args)+2
	where = append(where, fmt.Sprintf("(appointment_date BETWEEN $%d AND $%d OR (recurrence IS NOT NULL AND appointment_date <= $%d))", fromIdx, toIdx, toIdx))
	args = append(args, from, to)

	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE %s ORDER BY appointment_date ASC, start_time ASC, id ASC`,
		appointmentColumns, strings.Join(where, " AND "))
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("list appointments in range: %w", err)
	}
	return appointments, nil
}

// FindByID fetches an appointment.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1`, appointmentColumns)
	var appointment models.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, err
	}
	return &appointment, nil
}

// Create inserts an appointment.
func (r *AppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if appointment.CreatedAt.IsZero() {
		appointment.CreatedAt = now
	}
	appointment.UpdatedAt = now
	query := `INSERT INTO appointments (id, unit_id, professional_id, patient_name, service_label, professional_label, appointment_date, start_time, duration_minutes, status, recurrence, notes, created_at, updated_at)
VALUES (:id, :unit_id, :professional_id, :patient_name, :service_label, :professional_label, :appointment_date, :start_time, :duration_minutes, :status, :recurrence, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, appointment); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// Update modifies an appointment.
func (r *AppointmentRepository) Update(ctx context.Context, appointment *models.Appointment) error {
	appointment.UpdatedAt = time.Now().UTC()
	query := `UPDATE appointments SET unit_id = :unit_id, professional_id = :professional_id, patient_name = :patient_name, service_label = :service_label,
professional_label = :professional_label, appointment_date = :appointment_date, start_time = :start_time, duration_minutes = :duration_minutes,
status = :status, recurrence = :recurrence, notes = :notes, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, appointment); err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	return nil
}

// UpdateStatus changes only the status column and reports whether a row matched.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("update appointment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update appointment status rows: %w", err)
	}
	return affected > 0, nil
}

// Delete removes an appointment.
func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM appointments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

func appointmentWhere(filter models.AppointmentFilter) ([]string, []interface{}) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.UnitID != "" {
		where = append(where, fmt.Sprintf("unit_id = $%d", len(args)+1))
		args = append(args, filter.UnitID)
	}
	if filter.ProfessionalID != "" {
		where = append(where, fmt.Sprintf("professional_id = $%d", len(args)+1))
		args = append(args, filter.ProfessionalID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(statuses))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, fmt.Sprintf("patient_name ILIKE $%d", len(args)+1))
		args = append(args, "%"+search+"%")
	}
	return where, args
}
