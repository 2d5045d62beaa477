package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursedesk-api/internal/dto"
	"github.com/noah-isme/coursedesk-api/internal/models"
	appErrors "github.com/noah-isme/coursedesk-api/pkg/errors"
	"github.com/noah-isme/coursedesk-api/pkg/response"
)

type sessionService interface {
	Search(ctx context.Context, params models.SessionSearchParams) (*dto.SessionSearchResult, error)
}

// SessionHandler exposes feedback session search.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler builds a new handler.
func NewSessionHandler(service sessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Search godoc
// @Summary Search feedback sessions by name or course id
// @Tags Sessions
// @Produce json
// @Param searchKey query string true "Search key"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /sessions/search [get]
func (h *SessionHandler) Search(c *gin.Context) {
	var params models.SessionSearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	result, err := h.service.Search(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := result.Pagination
	response.JSON(c, http.StatusOK, result.Sessions, &pagination)
}
