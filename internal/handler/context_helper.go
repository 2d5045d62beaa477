package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursedesk-api/internal/middleware"
	"github.com/noah-isme/coursedesk-api/internal/models"
	"github.com/noah-isme/coursedesk-api/internal/service"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

func auditMeta(c *gin.Context) service.AuditMeta {
	meta := service.AuditMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
	if claims := claimsFromContext(c); claims != nil {
		meta.ActorID = claims.GoogleID
	}
	return meta
}

// confirmerFromRequest reads an up-front confirmation from ?confirm=true or X-Confirm: true.
func confirmerFromRequest(c *gin.Context) service.Confirmer {
	confirmed := strings.EqualFold(c.Query("confirm"), "true") ||
		strings.EqualFold(c.GetHeader("X-Confirm"), "true")
	return service.Preconfirmed(confirmed)
}
