package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/clinic-agenda-api/internal/dto"
	"github.com/noah-isme/clinic-agenda-api/internal/models"
	appErrors "github.com/noah-isme/clinic-agenda-api/pkg/errors"
	"github.com/noah-isme/clinic-agenda-api/pkg/layout"
)

const (
	agendaDayKeyPrefix  = "agenda:day"
	agendaWeekKeyPrefix = "agenda:week"

	defaultDayProfile  = "day"
	defaultWeekProfile = "week"
)

type agendaRepository interface {
	ListRange(ctx context.Context, from, to time.Time, filter models.AppointmentFilter) ([]models.Appointment, error)
}

type agendaCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, patterns ...string) error
}

// AgendaConfig tunes agenda views.
type AgendaConfig struct {
	Profiles  map[string]layout.Options
	WeekStart time.Weekday
	CacheTTL  time.Duration
}

// AgendaService loads appointments, expands recurring series and lays out
// day and week views. Results are cached per filter and profile.
type AgendaService struct {
	repo      agendaRepository
	cache     agendaCache
	metrics   *MetricsService
	logger    *zap.Logger
	profiles  map[string]layout.Options
	weekStart time.Weekday
	cacheTTL  time.Duration
}

// NewAgendaService constructs the agenda service. Missing day/week profiles fall back to layout defaults.
func NewAgendaService(repo agendaRepository, cache agendaCache, metrics *MetricsService, cfg AgendaConfig, logger *zap.Logger) *AgendaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	profiles := make(map[string]layout.Options, len(cfg.Profiles)+2)
	for name, opts := range cfg.Profiles {
		profiles[strings.ToLower(name)] = opts
	}
	if _, ok := profiles[defaultDayProfile]; !ok {
		day := layout.DefaultOptions()
		day.Projection = layout.ProjectionPixel
		profiles[defaultDayProfile] = day
	}
	if _, ok := profiles[defaultWeekProfile]; !ok {
		profiles[defaultWeekProfile] = layout.DefaultOptions()
	}
	return &AgendaService{
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		profiles:  profiles,
		weekStart: cfg.WeekStart,
		cacheTTL:  cfg.CacheTTL,
	}
}

// Profiles returns the names of the configured layout profiles, sorted.
func (s *AgendaService) Profiles() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Day lays out the agenda of one date. The bool reports a cache hit.
func (s *AgendaService) Day(ctx context.Context, q dto.AgendaQuery) (*dto.DayAgenda, bool, error) {
	date, err := parseAgendaDate(q.Date, "date")
	if err != nil {
		return nil, false, err
	}
	filter, err := agendaFilter(q)
	if err != nil {
		return nil, false, err
	}
	profile, opts, err := s.profile(q.Profile, defaultDayProfile)
	if err != nil {
		return nil, false, err
	}

	key := s.cacheKey(agendaDayKeyPrefix, date, filter, profile)
	var cached dto.DayAgenda
	if s.cacheGet(ctx, key, &cached) {
		return &cached, true, nil
	}

	occurrences, err := s.load(ctx, date, date, filter)
	if err != nil {
		return nil, false, err
	}

	day := s.layoutDay(date, occurrences, profile, opts, "day")
	s.cacheSet(ctx, key, day)
	return &day, false, nil
}

// Week lays out seven days starting at the configured week start on or before q.Date.
func (s *AgendaService) Week(ctx context.Context, q dto.AgendaQuery) (*dto.WeekAgenda, bool, error) {
	anchor, err := parseAgendaDate(q.Date, "date")
	if err != nil {
		return nil, false, err
	}
	filter, err := agendaFilter(q)
	if err != nil {
		return nil, false, err
	}
	profile, opts, err := s.profile(q.Profile, defaultWeekProfile)
	if err != nil {
		return nil, false, err
	}

	start := s.WeekStartOf(anchor)
	end := start.AddDate(0, 0, 6)
	key := s.cacheKey(agendaWeekKeyPrefix, start, filter, profile)
	var cached dto.WeekAgenda
	if s.cacheGet(ctx, key, &cached) {
		return &cached, true, nil
	}

	occurrences, err := s.load(ctx, start, end, filter)
	if err != nil {
		return nil, false, err
	}

	byDate := make(map[string][]occurrence, 7)
	for _, occ := range occurrences {
		byDate[occ.Event.Date] = append(byDate[occ.Event.Date], occ)
	}

	week := dto.WeekAgenda{
		Start:   start.Format(layout.DateLayout),
		End:     end.Format(layout.DateLayout),
		Profile: profile,
		Days:    make([]dto.DayAgenda, 0, 7),
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		week.Days = append(week.Days, s.layoutDay(d, byDate[d.Format(layout.DateLayout)], profile, opts, "week"))
	}

	s.cacheSet(ctx, key, week)
	return &week, false, nil
}

// Occurrences returns the dated appointment instances in [from, to] without layout.
func (s *AgendaService) Occurrences(ctx context.Context, from, to time.Time, filter models.AppointmentFilter) ([]layout.Event, error) {
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "range end before start")
	}
	occurrences, err := s.load(ctx, from, to, filter)
	if err != nil {
		return nil, err
	}
	events := make([]layout.Event, len(occurrences))
	for i, occ := range occurrences {
		events[i] = occ.Event
	}
	return events, nil
}

// Prewarm computes and caches the unfiltered day view of date and the week containing it.
func (s *AgendaService) Prewarm(ctx context.Context, date time.Time) error {
	q := dto.AgendaQuery{Date: date.Format(layout.DateLayout)}
	if _, _, err := s.Day(ctx, q); err != nil {
		return fmt.Errorf("prewarm day %s: %w", q.Date, err)
	}
	if _, _, err := s.Week(ctx, q); err != nil {
		return fmt.Errorf("prewarm week %s: %w", q.Date, err)
	}
	s.logger.Info("agenda prewarmed", zap.String("date", q.Date))
	return nil
}

// InvalidateDates drops cached day views of the given dates and the weeks containing them.
func (s *AgendaService) InvalidateDates(ctx context.Context, dates ...time.Time) error {
	if s.cache == nil || len(dates) == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	patterns := make([]string, 0, len(dates)*2)
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			patterns = append(patterns, p)
		}
	}
	for _, d := range dates {
		add(fmt.Sprintf("%s:%s:*", agendaDayKeyPrefix, dateOnly(d).Format(layout.DateLayout)))
		add(fmt.Sprintf("%s:%s:*", agendaWeekKeyPrefix, s.WeekStartOf(d).Format(layout.DateLayout)))
	}
	return s.cache.Invalidate(ctx, patterns...)
}

// InvalidateAll drops every cached agenda view.
func (s *AgendaService) InvalidateAll(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, agendaDayKeyPrefix+":*", agendaWeekKeyPrefix+":*")
}

// WeekStartOf returns the configured week start on or before d.
func (s *AgendaService) WeekStartOf(d time.Time) time.Time {
	d = dateOnly(d)
	offset := (int(d.Weekday()) - int(s.weekStart) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

func (s *AgendaService) load(ctx context.Context, from, to time.Time, filter models.AppointmentFilter) ([]occurrence, error) {
	start := time.Now()
	appointments, err := s.repo.ListRange(ctx, from, to, filter)
	s.metrics.ObserveDBQuery("appointments_range", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointments")
	}
	return expandOccurrences(appointments, from, to, s.logger), nil
}

func (s *AgendaService) layoutDay(date time.Time, occurrences []occurrence, profile string, opts layout.Options, view string) dto.DayAgenda {
	events := make([]layout.Event, len(occurrences))
	for i, occ := range occurrences {
		events[i] = occ.Event
	}

	started := time.Now()
	result := layout.Compute(events, opts)
	elapsed := time.Since(started)

	byEventID := make(map[string]occurrence, len(occurrences))
	for _, occ := range occurrences {
		byEventID[occ.Event.ID] = occ
	}

	items := make([]dto.AgendaItem, len(result.Layouts))
	groupLanes := map[int]int{}
	for i, l := range result.Layouts {
		occ := byEventID[l.ID]
		items[i] = dto.AgendaItem{
			Layout:        l,
			AppointmentID: occ.AppointmentID,
			Recurring:     occ.Recurring,
			StartLabel:    layout.FormatClock(l.StartMinutes),
			EndLabel:      layout.FormatClock(l.EndMinutes),
		}
		groupLanes[l.Group] = l.LaneCount
	}

	reasons := make([]string, len(result.Rejected))
	for i, r := range result.Rejected {
		reasons[i] = r.Reason
		s.logger.Warn("appointment skipped by layout",
			zap.String("event_id", r.Event.ID),
			zap.String("date", r.Event.Date),
			zap.String("reason", r.Reason),
			zap.String("detail", r.Detail))
	}
	lanes := make([]int, 0, len(groupLanes))
	for _, n := range groupLanes {
		lanes = append(lanes, n)
	}
	s.metrics.ObserveLayout(view, elapsed, len(result.Layouts), lanes, reasons)

	canvas := 1.0
	ppm := 0.0
	if opts.Projection == layout.ProjectionPixel {
		ppm = opts.PixelsPerMinute
		canvas = float64(opts.Window.Span()) * ppm
	}

	return dto.DayAgenda{
		Date:       date.Format(layout.DateLayout),
		Weekday:    strings.ToLower(date.Weekday().String()),
		Profile:    profile,
		Projection: opts.Projection,
		Window: dto.AgendaWindow{
			Window:     opts.Window,
			StartLabel: layout.FormatClock(opts.Window.Start),
			EndLabel:   layout.FormatClock(opts.Window.End),
		},
		PixelsPerMinute: ppm,
		CanvasHeight:    canvas,
		Groups:          len(groupLanes),
		Items:           items,
		Rejected:        result.Rejected,
	}
}

func (s *AgendaService) profile(name, fallback string) (string, layout.Options, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = fallback
	}
	opts, ok := s.profiles[name]
	if !ok {
		return "", layout.Options{}, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown layout profile %q", name)),
			map[string]any{"profiles": s.Profiles()},
		)
	}
	return name, opts, nil
}

func (s *AgendaService) cacheKey(prefix string, date time.Time, filter models.AppointmentFilter, profile string) string {
	statuses := "all"
	if len(filter.Statuses) > 0 {
		parts := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			parts[i] = string(st)
		}
		sort.Strings(parts)
		statuses = strings.Join(parts, ",")
	}
	return strings.Join([]string{
		prefix,
		date.Format(layout.DateLayout),
		orAny(filter.UnitID),
		orAny(filter.ProfessionalID),
		statuses,
		profile,
	}, ":")
}

func (s *AgendaService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	return s.cache.Get(ctx, key, dest)
}

func (s *AgendaService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	// Errors are logged by the cache layer; a failed write only costs a recompute.
	_ = s.cache.Set(ctx, key, value, s.cacheTTL)
}

func agendaFilter(q dto.AgendaQuery) (models.AppointmentFilter, error) {
	statuses, err := parseStatuses(q.Statuses)
	if err != nil {
		return models.AppointmentFilter{}, err
	}
	return models.AppointmentFilter{
		UnitID:         strings.TrimSpace(q.UnitID),
		ProfessionalID: strings.TrimSpace(q.ProfessionalID),
		Statuses:       statuses,
	}, nil
}

// parseStatuses accepts repeated or comma separated values, case-insensitive, deduplicated.
func parseStatuses(raw []string) ([]models.AppointmentStatus, error) {
	var out []models.AppointmentStatus
	seen := map[models.AppointmentStatus]struct{}{}
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			part = strings.ToUpper(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			status := models.AppointmentStatus(part)
			if !status.Valid() {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid status %q", part))
			}
			if _, dup := seen[status]; dup {
				continue
			}
			seen[status] = struct{}{}
			out = append(out, status)
		}
	}
	return out, nil
}

func parseAgendaDate(raw, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, field+" is required")
	}
	d, err := time.Parse(layout.DateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be YYYY-MM-DD", field)),
			map[string]any{"reason": layout.ReasonInvalidDate},
		)
	}
	return d, nil
}

func orAny(v string) string {
	if v == "" {
		return "*"
	}
	return v
}
