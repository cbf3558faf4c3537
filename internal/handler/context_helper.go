package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-agenda-api/internal/middleware"
	"github.com/noah-isme/clinic-agenda-api/internal/models"
	appErrors "github.com/noah-isme/clinic-agenda-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// scopedProfessional pins PROFESSIONAL accounts to their own agenda.
// Other roles may view any professional, or all of them when requested is empty.
func scopedProfessional(c *gin.Context, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	claims := claimsFromContext(c)
	if claims == nil || claims.Role != models.RoleProfessional {
		return requested, nil
	}
	if claims.ProfessionalID == "" {
		return "", appErrors.Clone(appErrors.ErrForbidden, "account is not linked to a professional")
	}
	if requested != "" && requested != claims.ProfessionalID {
		return "", appErrors.Clone(appErrors.ErrForbidden, "professionals may only view their own agenda")
	}
	return claims.ProfessionalID, nil
}
