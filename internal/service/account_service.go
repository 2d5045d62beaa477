package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/coursedesk-api/internal/models"
	"github.com/noah-isme/coursedesk-api/pkg/cache"
	appErrors "github.com/noah-isme/coursedesk-api/pkg/errors"
)

// InstructorRemovalPrompt is shown before an instructor is removed from a course.
var InstructorRemovalPrompt = ConfirmationPrompt{
	Header:  "Warning: This instructor will be permanently deleted from this course.",
	Kind:    PromptWarning,
	Message: "Are you sure you want to continue?",
}

type accountStore interface {
	FindByGoogleID(ctx context.Context, googleID string) (*models.Account, error)
	Delete(ctx context.Context, googleID string) error
}

type accountCourseReader interface {
	ListByStudent(ctx context.Context, googleID string) ([]models.Course, error)
	ListByInstructor(ctx context.Context, googleID string) ([]models.Course, error)
}

type courseStudentRemover interface {
	DeleteByGoogleID(ctx context.Context, courseID, googleID string) (bool, error)
}

type courseInstructorRemover interface {
	CountJoined(ctx context.Context, courseID string) (int, error)
	DeleteByGoogleID(ctx context.Context, courseID, googleID string) (bool, error)
}

type auditLogger interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditMeta describes who performed an action and from where.
type AuditMeta struct {
	ActorID   string
	IPAddress string
	UserAgent string
}

// AccountService backs the admin accounts page.
type AccountService struct {
	accounts    accountStore
	courses     accountCourseReader
	students    courseStudentRemover
	instructors courseInstructorRemover
	audit       auditLogger
	cache       *CacheService
	logger      *zap.Logger
}

// NewAccountService constructs an AccountService.
func NewAccountService(accounts accountStore, courses accountCourseReader, students courseStudentRemover, instructors courseInstructorRemover, audit auditLogger, cacheSvc *CacheService, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		accounts:    accounts,
		courses:     courses,
		students:    students,
		instructors: instructors,
		audit:       audit,
		cache:       cacheSvc,
		logger:      logger,
	}
}

// LoadAccountInfo fetches the account and the courses it studies and teaches in concurrently.
// A course list the caller may not see comes back empty instead of failing the call.
func (s *AccountService) LoadAccountInfo(ctx context.Context, googleID string) (*models.AccountInfo, error) {
	if googleID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "googleId is required")
	}

	var (
		account           *models.Account
		studentCourses    []models.Course
		instructorCourses []models.Course
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.accounts.FindByGoogleID(gctx, googleID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("account %q not found", googleID))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
		}
		account = found
		return nil
	})
	g.Go(func() error {
		courses, err := s.courses.ListByStudent(gctx, googleID)
		studentCourses, err = s.visibleCourses(courses, err, "student")
		return err
	})
	g.Go(func() error {
		courses, err := s.courses.ListByInstructor(gctx, googleID)
		instructorCourses, err = s.visibleCourses(courses, err, "instructor")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.AccountInfo{
		Account:           *account,
		StudentCourses:    studentCourses,
		InstructorCourses: instructorCourses,
	}, nil
}

func (s *AccountService) visibleCourses(courses []models.Course, err error, kind string) ([]models.Course, error) {
	if err != nil {
		if appErrors.StatusOf(err) == http.StatusForbidden {
			s.logger.Debug("course list hidden from caller", zap.String("kind", kind))
			return []models.Course{}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to load %s courses", kind))
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// DeleteAccount removes the account and every course membership linked to it.
func (s *AccountService) DeleteAccount(ctx context.Context, googleID string, meta AuditMeta) (string, error) {
	if googleID == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "googleId is required")
	}
	if err := s.accounts.Delete(ctx, googleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("account %q not found", googleID))
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete account")
	}
	_ = s.cache.InvalidatePattern(ctx, cache.Key("enroll", "*"))
	s.recordAudit(ctx, meta, models.AuditActionAccountDelete, "account", googleID, nil)
	return fmt.Sprintf("Account %q is successfully deleted.", googleID), nil
}

// RemoveStudentFromCourse removes the student linked to googleID from courseID.
func (s *AccountService) RemoveStudentFromCourse(ctx context.Context, googleID, courseID string, meta AuditMeta) (string, error) {
	if googleID == "" || courseID == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "googleId and courseId are required")
	}
	removed, err := s.students.DeleteByGoogleID(ctx, courseID, googleID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove student")
	}
	if !removed {
		return "", appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student not found in course %q", courseID))
	}
	_ = s.cache.Invalidate(ctx, EnrollPageCacheKey(courseID))
	s.recordAudit(ctx, meta, models.AuditActionStudentRemove, "student", googleID, map[string]string{"courseId": courseID})
	return fmt.Sprintf("Student is successfully deleted from course %q", courseID), nil
}

// RemoveInstructorFromCourse asks confirmer before removing the instructor linked to googleID
// from courseID. Nothing is deleted unless the confirmation is accepted.
func (s *AccountService) RemoveInstructorFromCourse(ctx context.Context, googleID, courseID string, confirmer Confirmer, meta AuditMeta) (string, error) {
	if googleID == "" || courseID == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "googleId and courseId are required")
	}
	if confirmer == nil {
		return "", appErrors.Clone(appErrors.ErrConfirmationRequired, InstructorRemovalPrompt.Header)
	}
	ok, err := confirmer.Confirm(ctx, InstructorRemovalPrompt)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", appErrors.Clone(appErrors.ErrConfirmationRequired, InstructorRemovalPrompt.Header)
	}

	joined, err := s.instructors.CountJoined(ctx, courseID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count instructors")
	}
	if joined <= 1 {
		return "", appErrors.Clone(appErrors.ErrPreconditionFailed, "The instructor you are trying to delete is the last instructor in the course. Deleting the last instructor from the course is not allowed.")
	}

	removed, err := s.instructors.DeleteByGoogleID(ctx, courseID, googleID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove instructor")
	}
	if !removed {
		return "", appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("instructor not found in course %q", courseID))
	}
	s.recordAudit(ctx, meta, models.AuditActionInstructorRemove, "instructor", googleID, map[string]string{"courseId": courseID})
	return fmt.Sprintf("Instructor is successfully deleted from course %q", courseID), nil
}

func (s *AccountService) recordAudit(ctx context.Context, meta AuditMeta, action, resource, resourceID string, values interface{}) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
	if meta.ActorID != "" {
		actor := meta.ActorID
		entry.ActorID = &actor
	}
	if values != nil {
		if payload, err := json.Marshal(values); err == nil {
			entry.NewValues = payload
		}
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
