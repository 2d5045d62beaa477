package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursedesk-api/internal/dto"
	"github.com/noah-isme/coursedesk-api/internal/models"
	"github.com/noah-isme/coursedesk-api/internal/service"
	appErrors "github.com/noah-isme/coursedesk-api/pkg/errors"
	"github.com/noah-isme/coursedesk-api/pkg/response"
)

type rosterExportService interface {
	CreateJob(ctx context.Context, courseID string, req dto.RosterExportRequest, actorID string) (*dto.RosterExportResponse, error)
	GetStatus(ctx context.Context, id, actorID string, role models.UserRole) (*dto.RosterExportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.RosterDownload, error)
}

// ExportHandler exposes roster export endpoints.
type ExportHandler struct {
	service rosterExportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(service rosterExportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Create godoc
// @Summary Queue a course roster export
// @Tags Exports
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param payload body dto.RosterExportRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Router /courses/{courseId}/students/export [post]
func (h *ExportHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RosterExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	result, err := h.service.CreateJob(c.Request.Context(), c.Param("courseId"), req, claims.GoogleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, result)
}

// Status godoc
// @Summary Get roster export status
// @Tags Exports
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.service.GetStatus(c.Request.Context(), c.Param("id"), claims.GoogleID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download a finished roster export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if strings.TrimSpace(token) == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.service.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck

	info, err := result.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType(result.Format), result.File, nil)
}

func contentType(format models.ExportFormat) string {
	switch format {
	case models.ExportFormatPDF:
		return "application/pdf"
	case models.ExportFormatCSV:
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
