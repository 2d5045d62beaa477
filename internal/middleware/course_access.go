package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursedesk-api/internal/models"
	appErrors "github.com/noah-isme/coursedesk-api/pkg/errors"
	"github.com/noah-isme/coursedesk-api/pkg/response"
)

// CourseMembership answers whether an account instructs a course.
type CourseMembership interface {
	IsInstructorOf(ctx context.Context, courseID, googleID string) (bool, error)
}

// CourseInstructor restricts course routes to admins and instructors of the course named by
// the courseParam route parameter.
func CourseInstructor(membership CourseMembership, courseParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if claims.Role == models.RoleAdmin {
			c.Next()
			return
		}

		courseID := c.Param(courseParam)
		if claims.Role != models.RoleInstructor || courseID == "" || claims.GoogleID == "" {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		ok, err := membership.IsInstructorOf(c.Request.Context(), courseID, claims.GoogleID)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course access"))
			c.Abort()
			return
		}
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "you are not an instructor of this course"))
			c.Abort()
			return
		}
		c.Next()
	}
}
