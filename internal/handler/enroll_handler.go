package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursedesk-api/internal/dto"
	"github.com/noah-isme/coursedesk-api/internal/middleware"
	appErrors "github.com/noah-isme/coursedesk-api/pkg/errors"
	"github.com/noah-isme/coursedesk-api/pkg/response"
)

type enrollService interface {
	GetCourseEnrollPageData(ctx context.Context, courseID string) (*dto.EnrollPageData, bool, error)
	Preview(ctx context.Context, courseID string, req dto.EnrollRequest) (*dto.EnrollPreviewResponse, error)
	Enroll(ctx context.Context, courseID string, req dto.EnrollRequest) (*dto.EnrollResponse, error)
}

// EnrollHandler exposes the course enroll page endpoints.
type EnrollHandler struct {
	service enrollService
}

// NewEnrollHandler builds a new handler.
func NewEnrollHandler(service enrollService) *EnrollHandler {
	return &EnrollHandler{service: service}
}

// Page godoc
// @Summary Load course enroll page data
// @Tags Enroll
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/enroll [get]
func (h *EnrollHandler) Page(c *gin.Context) {
	data, hit, err := h.service.GetCourseEnrollPageData(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, data, nil, middleware.ExtractMeta(c))
}

// Preview godoc
// @Summary Classify pending enroll rows without saving
// @Tags Enroll
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param payload body dto.EnrollRequest true "Pending rows"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/enroll/preview [post]
func (h *EnrollHandler) Preview(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	result, err := h.service.Preview(c.Request.Context(), c.Param("courseId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Enroll godoc
// @Summary Enroll or update students in a course
// @Tags Enroll
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param payload body dto.EnrollRequest true "Pending rows"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /courses/{courseId}/enroll [put]
func (h *EnrollHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	result, err := h.service.Enroll(c.Request.Context(), c.Param("courseId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
