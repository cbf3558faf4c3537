package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-agenda-api/internal/dto"
	internalmiddleware "github.com/noah-isme/clinic-agenda-api/internal/middleware"
	"github.com/noah-isme/clinic-agenda-api/internal/models"
	"github.com/noah-isme/clinic-agenda-api/internal/service"
	appErrors "github.com/noah-isme/clinic-agenda-api/pkg/errors"
)

type fakeAuthSrv struct{}

func (fakeAuthSrv) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Password != "secret" {
		return nil, appErrors.ErrInvalidCredentials
	}
	return &models.LoginResponse{AccessToken: "tok", TokenType: "Bearer"}, nil
}

func (fakeAuthSrv) Me(_ context.Context, userID string) (*models.UserInfo, error) {
	return &models.UserInfo{ID: userID}, nil
}

// testAuthenticate stands in for the JWT middleware, trusting X-Test-Role.
func testAuthenticate(c *gin.Context) {
	role := c.GetHeader("X-Test-Role")
	if role == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{
		UserID:         "test-user",
		Role:           models.UserRole(role),
		ProfessionalID: c.GetHeader("X-Test-Professional"),
	})
	c.Next()
}

func buildTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	routes := Routes{
		Auth: NewAuthHandler(fakeAuthSrv{}),
		Agenda: NewAgendaHandler(
			&fakeAgendaSrv{day: &dto.DayAgenda{Date: "2025-03-10"}, week: &dto.WeekAgenda{Start: "2025-03-10"}},
			&fakeExporter{file: &service.ExportFile{Filename: "agenda.ics", ContentType: "text/calendar", Data: []byte("BEGIN:VCALENDAR")}},
		),
		Appointments: NewAppointmentHandler(&fakeAppointmentSrv{appt: &models.Appointment{ID: "a-1"}}),
		Metrics:      NewMetricsHandler(service.NewMetricsService(), nil),
	}
	routes.Register(router.Group("/api/v1"), testAuthenticate)
	return router
}

func perform(router *gin.Engine, method, path, role, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("X-Test-Role", role)
		req.Header.Set("X-Test-Professional", "pro-1")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRoutesIntegration(t *testing.T) {
	router := buildTestRouter()

	t.Run("login is public", func(t *testing.T) {
		resp := perform(router, http.MethodPost, "/api/v1/auth/login", "", `{"email":"a@b.c","password":"secret"}`)
		require.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("agenda requires authentication", func(t *testing.T) {
		resp := perform(router, http.MethodGet, "/api/v1/agenda/day?date=2025-03-10", "", "")
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("professional reads agenda", func(t *testing.T) {
		resp := perform(router, http.MethodGet, "/api/v1/agenda/week?date=2025-03-10", string(models.RoleProfessional), "")
		require.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("feed is public", func(t *testing.T) {
		resp := perform(router, http.MethodGet, "/api/v1/agenda/feed/tok.ics", "", "")
		require.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("professional cannot book", func(t *testing.T) {
		resp := perform(router, http.MethodDelete, "/api/v1/appointments/a-1", string(models.RoleProfessional), "")
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("receptionist deletes", func(t *testing.T) {
		resp := perform(router, http.MethodDelete, "/api/v1/appointments/a-1", string(models.RoleReceptionist), "")
		require.Equal(t, http.StatusNoContent, resp.Code)
	})

	t.Run("metrics summary is admin only", func(t *testing.T) {
		resp := perform(router, http.MethodGet, "/api/v1/metrics/summary", string(models.RoleReceptionist), "")
		require.Equal(t, http.StatusForbidden, resp.Code)
		resp = perform(router, http.MethodGet, "/api/v1/metrics/summary", string(models.RoleAdmin), "")
		require.Equal(t, http.StatusOK, resp.Code)
	})
}

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return appErrors.ErrInternal },
	})
	c, rec := newTestContext(http.MethodGet, "/ready", nil)

	h.Ready(c)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), `"database":"ok"`)
	require.Contains(t, rec.Body.String(), `"degraded"`)
}
