package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursedesk-api/internal/models"
	"github.com/noah-isme/coursedesk-api/internal/service"
	appErrors "github.com/noah-isme/coursedesk-api/pkg/errors"
	"github.com/noah-isme/coursedesk-api/pkg/response"
)

type accountService interface {
	LoadAccountInfo(ctx context.Context, googleID string) (*models.AccountInfo, error)
	DeleteAccount(ctx context.Context, googleID string, meta service.AuditMeta) (string, error)
	RemoveStudentFromCourse(ctx context.Context, googleID, courseID string, meta service.AuditMeta) (string, error)
	RemoveInstructorFromCourse(ctx context.Context, googleID, courseID string, confirmer service.Confirmer, meta service.AuditMeta) (string, error)
}

// AccountHandler exposes the admin accounts endpoints.
type AccountHandler struct {
	service accountService
}

// NewAccountHandler builds a new handler.
func NewAccountHandler(service accountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Get godoc
// @Summary Get account with its student and instructor courses
// @Tags Accounts
// @Produce json
// @Param googleId path string true "Google ID"
// @Success 200 {object} response.Envelope
// @Router /admin/accounts/{googleId} [get]
func (h *AccountHandler) Get(c *gin.Context) {
	info, err := h.service.LoadAccountInfo(c.Request.Context(), c.Param("googleId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}

// Delete godoc
// @Summary Delete an account
// @Tags Accounts
// @Produce json
// @Param googleId path string true "Google ID"
// @Success 200 {object} response.Envelope
// @Router /admin/accounts/{googleId} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	msg, err := h.service.DeleteAccount(c.Request.Context(), c.Param("googleId"), auditMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, msg)
}

// RemoveStudent godoc
// @Summary Remove the account's student from a course
// @Tags Accounts
// @Produce json
// @Param googleId path string true "Google ID"
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /admin/accounts/{googleId}/students/{courseId} [delete]
func (h *AccountHandler) RemoveStudent(c *gin.Context) {
	msg, err := h.service.RemoveStudentFromCourse(c.Request.Context(), c.Param("googleId"), c.Param("courseId"), auditMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, msg)
}

// RemoveInstructor godoc
// @Summary Remove the account's instructor from a course
// @Description Requires confirm=true or X-Confirm: true; otherwise responds 428 with the prompt in meta.
// @Tags Accounts
// @Produce json
// @Param googleId path string true "Google ID"
// @Param courseId path string true "Course ID"
// @Param confirm query bool false "Confirm the removal"
// @Success 200 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /admin/accounts/{googleId}/instructors/{courseId} [delete]
func (h *AccountHandler) RemoveInstructor(c *gin.Context) {
	msg, err := h.service.RemoveInstructorFromCourse(c.Request.Context(), c.Param("googleId"), c.Param("courseId"), confirmerFromRequest(c), auditMeta(c))
	if err != nil {
		if errors.Is(err, appErrors.ErrConfirmationRequired) {
			appErr := appErrors.FromError(err)
			c.Header("Cache-Control", "no-store")
			c.JSON(appErr.Status, response.Envelope{
				Error: appErr,
				Meta:  map[string]interface{}{"prompt": service.InstructorRemovalPrompt},
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.OK(c, msg)
}
