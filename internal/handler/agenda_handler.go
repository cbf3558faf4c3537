package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-agenda-api/internal/dto"
	"github.com/noah-isme/clinic-agenda-api/internal/middleware"
	"github.com/noah-isme/clinic-agenda-api/internal/service"
	appErrors "github.com/noah-isme/clinic-agenda-api/pkg/errors"
	"github.com/noah-isme/clinic-agenda-api/pkg/response"
	"github.com/noah-isme/clinic-agenda-api/pkg/signing"
)

type agendaService interface {
	Day(ctx context.Context, q dto.AgendaQuery) (*dto.DayAgenda, bool, error)
	Week(ctx context.Context, q dto.AgendaQuery) (*dto.WeekAgenda, bool, error)
	Profiles() []string
}

type agendaExporter interface {
	Day(ctx context.Context, q dto.AgendaQuery, format string) (*service.ExportFile, error)
	Week(ctx context.Context, q dto.AgendaQuery, format string) (*service.ExportFile, error)
	FeedLink(scope signing.FeedScope) (*dto.FeedLinkResponse, error)
	Feed(ctx context.Context, token string) (*service.ExportFile, error)
}

// AgendaHandler serves laid-out agenda views, exports and calendar feeds.
type AgendaHandler struct {
	agenda   agendaService
	exporter agendaExporter
}

// NewAgendaHandler constructs the handler.
func NewAgendaHandler(agenda agendaService, exporter agendaExporter) *AgendaHandler {
	return &AgendaHandler{agenda: agenda, exporter: exporter}
}

// Day godoc
// @Summary Day agenda layout
// @Tags Agenda
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param unit_id query string false "Unit ID"
// @Param professional_id query string false "Professional ID"
// @Param status query []string false "Status filter" collectionFormat(multi)
// @Param profile query string false "Layout profile"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /agenda/day [get]
func (h *AgendaHandler) Day(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	start := time.Now()
	day, cacheHit, err := h.agenda.Day(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, day, responseMeta(c, cacheHit, start))
}

// Week godoc
// @Summary Week agenda layout
// @Tags Agenda
// @Produce json
// @Param date query string true "Any date inside the week (YYYY-MM-DD)"
// @Param unit_id query string false "Unit ID"
// @Param professional_id query string false "Professional ID"
// @Param status query []string false "Status filter" collectionFormat(multi)
// @Param profile query string false "Layout profile"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /agenda/week [get]
func (h *AgendaHandler) Week(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	start := time.Now()
	week, cacheHit, err := h.agenda.Week(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, week, responseMeta(c, cacheHit, start))
}

// Profiles godoc
// @Summary List layout profiles
// @Tags Agenda
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /agenda/profiles [get]
func (h *AgendaHandler) Profiles(c *gin.Context) {
	response.OK(c, gin.H{"profiles": h.agenda.Profiles()})
}

// ExportDay godoc
// @Summary Export day agenda
// @Tags Agenda
// @Produce octet-stream
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param format query string false "csv, pdf or ics"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /agenda/day/export [get]
func (h *AgendaHandler) ExportDay(c *gin.Context) {
	h.export(c, h.exporter.Day)
}

// ExportWeek godoc
// @Summary Export week agenda
// @Tags Agenda
// @Produce octet-stream
// @Param date query string true "Any date inside the week (YYYY-MM-DD)"
// @Param format query string false "csv, pdf or ics"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /agenda/week/export [get]
func (h *AgendaHandler) ExportWeek(c *gin.Context) {
	h.export(c, h.exporter.Week)
}

// FeedLink godoc
// @Summary Issue a signed calendar subscription link
// @Tags Agenda
// @Accept json
// @Produce json
// @Param payload body dto.FeedLinkRequest true "Feed scope"
// @Success 201 {object} response.Envelope
// @Router /agenda/feed-link [post]
func (h *AgendaHandler) FeedLink(c *gin.Context) {
	var req dto.FeedLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feed link payload"))
		return
	}
	professionalID, err := scopedProfessional(c, req.ProfessionalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	link, err := h.exporter.FeedLink(signing.FeedScope{
		UnitID:         strings.TrimSpace(req.UnitID),
		ProfessionalID: professionalID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Feed godoc
// @Summary Calendar subscription feed
// @Description Public iCalendar feed authorised by the signed token in the path.
// @Tags Agenda
// @Produce text/calendar
// @Param token path string true "Signed feed token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /agenda/feed/{token} [get]
func (h *AgendaHandler) Feed(c *gin.Context) {
	file, err := h.exporter.Feed(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename=\""+file.Filename+"\"")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

type exportFunc func(ctx context.Context, q dto.AgendaQuery, format string) (*service.ExportFile, error)

func (h *AgendaHandler) export(c *gin.Context, fn exportFunc) {
	if h.exporter == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	file, err := fn(c.Request.Context(), q, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

func (h *AgendaHandler) bindQuery(c *gin.Context) (dto.AgendaQuery, bool) {
	var q dto.AgendaQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid agenda query"))
		return q, false
	}
	if strings.TrimSpace(q.Date) == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return q, false
	}
	professionalID, err := scopedProfessional(c, q.ProfessionalID)
	if err != nil {
		response.Error(c, err)
		return q, false
	}
	q.ProfessionalID = professionalID
	return q, true
}

func responseMeta(c *gin.Context, cacheHit bool, start time.Time) map[string]interface{} {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	return meta
}
