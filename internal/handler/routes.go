package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-agenda-api/internal/middleware"
	"github.com/noah-isme/clinic-agenda-api/internal/models"
)

// Routes groups the handlers mounted under the API prefix.
type Routes struct {
	Auth         *AuthHandler
	Agenda       *AgendaHandler
	Appointments *AppointmentHandler
	Metrics      *MetricsHandler
	Logger       *zap.Logger
}

// Register mounts every route on group. authenticate guards all but login
// and the signed calendar feed.
func (r Routes) Register(group *gin.RouterGroup, authenticate gin.HandlerFunc) {
	staff := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleReceptionist)
	viewers := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleReceptionist, models.RoleProfessional)
	admins := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	if r.Auth != nil {
		group.POST("/auth/login", r.Auth.Login)
		group.GET("/auth/me", authenticate, r.Auth.Me)
	}

	if r.Agenda != nil {
		group.GET("/agenda/feed/:token", r.Agenda.Feed)

		agenda := group.Group("/agenda", authenticate, viewers)
		agenda.GET("/day", r.Agenda.Day)
		agenda.GET("/week", r.Agenda.Week)
		agenda.GET("/profiles", r.Agenda.Profiles)
		agenda.GET("/day/export", r.Agenda.ExportDay)
		agenda.GET("/week/export", r.Agenda.ExportWeek)
		agenda.POST("/feed-link", r.Agenda.FeedLink)
	}

	if r.Appointments != nil {
		appointments := group.Group("/appointments", authenticate)
		appointments.GET("", viewers, r.Appointments.List)
		appointments.GET("/:id", viewers, r.Appointments.Get)
		appointments.POST("", staff, middleware.Audit(r.Logger, "create", "appointment"), r.Appointments.Create)
		appointments.PUT("/:id", staff, middleware.Audit(r.Logger, "update", "appointment"), r.Appointments.Update)
		appointments.PATCH("/:id/status", staff, middleware.Audit(r.Logger, "update_status", "appointment"), r.Appointments.UpdateStatus)
		appointments.DELETE("/:id", staff, middleware.Audit(r.Logger, "delete", "appointment"), r.Appointments.Delete)
	}

	if r.Metrics != nil {
		group.GET("/metrics/summary", authenticate, admins, r.Metrics.Summary)
	}
}
