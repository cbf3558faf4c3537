package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-agenda-api/internal/dto"
	"github.com/noah-isme/clinic-agenda-api/internal/models"
	appErrors "github.com/noah-isme/clinic-agenda-api/pkg/errors"
	"github.com/noah-isme/clinic-agenda-api/pkg/layout"
)

type fakeAgendaRepo struct {
	appointments []models.Appointment
	err          error
	calls        int
	lastFrom     time.Time
	lastTo       time.Time
	lastFilter   models.AppointmentFilter
}

func (f *fakeAgendaRepo) ListRange(_ context.Context, from, to time.Time, filter models.AppointmentFilter) ([]models.Appointment, error) {
	f.calls++
	f.lastFrom, f.lastTo, f.lastFilter = from, to, filter
	return f.appointments, f.err
}

type memoryCache struct {
	entries     map[string][]byte
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) bool {
	raw, ok := m.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) Invalidate(_ context.Context, patterns ...string) error {
	m.invalidated = append(m.invalidated, patterns...)
	for _, p := range patterns {
		for key := range m.entries {
			if ok, _ := path.Match(p, key); ok {
				delete(m.entries, key)
			}
		}
	}
	return nil
}

func day(raw string) time.Time {
	d, _ := time.Parse(layout.DateLayout, raw)
	return d
}

func appointment(id, date, clock string, minutes int) models.Appointment {
	return models.Appointment{
		ID: id, UnitID: "unit-1", ProfessionalID: "pro-1", PatientName: "Patient " + id,
		Date: day(date), StartTime: clock, DurationMinutes: minutes, Status: models.AppointmentConfirmed,
	}
}

func newTestAgenda(repo *fakeAgendaRepo, cache agendaCache) *AgendaService {
	return NewAgendaService(repo, cache, NewMetricsService(), AgendaConfig{WeekStart: time.Monday, CacheTTL: time.Minute}, zap.NewNop())
}

func TestAgendaServiceDayLaysOutOverlaps(t *testing.T) {
	repo := &fakeAgendaRepo{appointments: []models.Appointment{
		appointment("A", "2025-03-10", "09:00", 60),
		appointment("B", "2025-03-10", "09:30", 60),
		appointment("C", "2025-03-10", "10:45", 30),
	}}
	svc := newTestAgenda(repo, nil)

	res, hit, err := svc.Day(context.Background(), dto.AgendaQuery{Date: "2025-03-10", UnitID: "unit-1"})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "monday", res.Weekday)
	assert.Equal(t, "day", res.Profile)
	assert.Equal(t, layout.ProjectionPixel, res.Projection)
	assert.Equal(t, 2, res.Groups)
	require.Len(t, res.Items, 3)
	assert.Empty(t, res.Rejected)
	assert.Equal(t, "unit-1", repo.lastFilter.UnitID)

	byID := map[string]dto.AgendaItem{}
	for _, item := range res.Items {
		byID[item.AppointmentID] = item
	}
	assert.Equal(t, 2, byID["A"].LaneCount)
	assert.Equal(t, 1, byID["B"].Lane)
	assert.Equal(t, 1, byID["C"].LaneCount)
	assert.Equal(t, "10:30", byID["B"].EndLabel)
	assert.InDelta(t, float64(res.Window.Span())*res.PixelsPerMinute, res.CanvasHeight, 1e-9)
}

func TestAgendaServiceDayReportsRejections(t *testing.T) {
	repo := &fakeAgendaRepo{appointments: []models.Appointment{
		appointment("ok", "2025-03-10", "09:00", 30),
		appointment("bad", "2025-03-10", "9am", 30),
	}}
	svc := newTestAgenda(repo, nil)

	res, _, err := svc.Day(context.Background(), dto.AgendaQuery{Date: "2025-03-10"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, layout.ReasonInvalidTimeFormat, res.Rejected[0].Reason)
	assert.Equal(t, uint64(1), svc.metrics.Snapshot().LayoutRejections[layout.ReasonInvalidTimeFormat])
}

func TestAgendaServiceDayValidation(t *testing.T) {
	svc := newTestAgenda(&fakeAgendaRepo{}, nil)

	_, _, err := svc.Day(context.Background(), dto.AgendaQuery{Date: "10/03/2025"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, layout.ReasonInvalidDate, appErr.Details["reason"])

	_, _, err = svc.Day(context.Background(), dto.AgendaQuery{Date: "2025-03-10", Statuses: []string{"LATE"}})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, _, err = svc.Day(context.Background(), dto.AgendaQuery{Date: "2025-03-10", Profile: "month"})
	appErr = appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, []string{"day", "week"}, appErr.Details["profiles"])
}

func TestAgendaServiceDayRepositoryError(t *testing.T) {
	svc := newTestAgenda(&fakeAgendaRepo{err: errors.New("db down")}, nil)

	_, _, err := svc.Day(context.Background(), dto.AgendaQuery{Date: "2025-03-10"})
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAgendaServiceDayCachesAndInvalidates(t *testing.T) {
	repo := &fakeAgendaRepo{appointments: []models.Appointment{appointment("A", "2025-03-10", "09:00", 30)}}
	cache := newMemoryCache()
	svc := newTestAgenda(repo, cache)
	q := dto.AgendaQuery{Date: "2025-03-10", Statuses: []string{"pending,confirmed"}}

	first, hit, err := svc.Day(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := svc.Day(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, first.Items[0].ID, second.Items[0].ID)
	assert.Contains(t, cache.entries, "agenda:day:2025-03-10:*:*:CONFIRMED,PENDING:day")

	require.NoError(t, svc.InvalidateDates(context.Background(), day("2025-03-10"), day("2025-03-10")))
	assert.Equal(t, []string{"agenda:day:2025-03-10:*", "agenda:week:2025-03-10:*"}, cache.invalidated)

	_, hit, err = svc.Day(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, repo.calls)
}

func TestAgendaServiceWeek(t *testing.T) {
	rule := "FREQ=DAILY;COUNT=3"
	recurring := appointment("R", "2025-03-12", "14:00", 45)
	recurring.Recurrence = &rule
	repo := &fakeAgendaRepo{appointments: []models.Appointment{
		appointment("A", "2025-03-10", "09:00", 30),
		appointment("B", "2025-03-10", "09:15", 30),
		recurring,
	}}
	svc := newTestAgenda(repo, nil)

	week, _, err := svc.Week(context.Background(), dto.AgendaQuery{Date: "2025-03-13"})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", week.Start)
	assert.Equal(t, "2025-03-16", week.End)
	assert.Equal(t, "week", week.Profile)
	assert.Equal(t, day("2025-03-10"), repo.lastFrom)
	assert.Equal(t, day("2025-03-16"), repo.lastTo)
	require.Len(t, week.Days, 7)

	assert.Len(t, week.Days[0].Items, 2)
	assert.Equal(t, 2, week.Days[0].Items[0].LaneCount)
	for i, date := range []string{"2025-03-12", "2025-03-13", "2025-03-14"} {
		d := week.Days[2+i]
		require.Len(t, d.Items, 1, date)
		assert.Equal(t, date, d.Date)
		assert.True(t, d.Items[0].Recurring)
		assert.Equal(t, "R", d.Items[0].AppointmentID)
	}
	assert.Empty(t, week.Days[6].Items)
	assert.Equal(t, layout.ProjectionFraction, week.Days[0].Projection)
	assert.InDelta(t, 1.0, week.Days[0].CanvasHeight, 1e-9)
}

func TestAgendaServiceWeekStartSunday(t *testing.T) {
	svc := NewAgendaService(&fakeAgendaRepo{}, nil, nil, AgendaConfig{WeekStart: time.Sunday}, nil)
	assert.Equal(t, day("2025-03-09"), svc.WeekStartOf(day("2025-03-13")))
	assert.Equal(t, day("2025-03-09"), svc.WeekStartOf(day("2025-03-09")))
}

func TestAgendaServiceCustomProfile(t *testing.T) {
	compact := layout.DefaultOptions()
	compact.Window = layout.Window{Start: 8 * 60, End: 12 * 60}
	svc := NewAgendaService(&fakeAgendaRepo{appointments: []models.Appointment{appointment("A", "2025-03-10", "07:30", 60)}}, nil, nil,
		AgendaConfig{Profiles: map[string]layout.Options{"Compact": compact}}, nil)

	assert.Equal(t, []string{"compact", "day", "week"}, svc.Profiles())
	res, _, err := svc.Day(context.Background(), dto.AgendaQuery{Date: "2025-03-10", Profile: "COMPACT"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].Clipped)
	assert.Equal(t, "08:00", res.Window.StartLabel)
}

func TestAgendaServiceOccurrences(t *testing.T) {
	svc := newTestAgenda(&fakeAgendaRepo{appointments: []models.Appointment{appointment("A", "2025-03-10", "09:00", 30)}}, nil)

	events, err := svc.Occurrences(context.Background(), day("2025-03-01"), day("2025-03-31"), models.AppointmentFilter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "A", events[0].ID)

	_, err = svc.Occurrences(context.Background(), day("2025-03-31"), day("2025-03-01"), models.AppointmentFilter{})
	assert.Error(t, err)
}

func TestAgendaServicePrewarmFillsCache(t *testing.T) {
	cache := newMemoryCache()
	svc := newTestAgenda(&fakeAgendaRepo{}, cache)

	require.NoError(t, svc.Prewarm(context.Background(), day("2025-03-12")))
	assert.Contains(t, cache.entries, "agenda:day:2025-03-12:*:*:all:day")
	assert.Contains(t, cache.entries, "agenda:week:2025-03-10:*:*:all:week")

	require.NoError(t, svc.InvalidateAll(context.Background()))
	assert.Empty(t, cache.entries)
}
