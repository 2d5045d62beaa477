package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursedesk-api/internal/dto"
	"github.com/noah-isme/coursedesk-api/internal/enroll"
	"github.com/noah-isme/coursedesk-api/internal/models"
	"github.com/noah-isme/coursedesk-api/pkg/cache"
	appErrors "github.com/noah-isme/coursedesk-api/pkg/errors"
)

const defaultEnrollMaxRows = 100

// TeamChangeWarning is attached to previews that move students between teams in a course
// that already has feedback responses.
const TeamChangeWarning = "Some students will change team while the course already has feedback responses. Existing responses from these students may no longer match their new team."

type enrollCourseReader interface {
	FindByID(ctx context.Context, courseID string) (*models.Course, error)
	ResponseCounts(ctx context.Context, courseID string) ([]models.SessionResponseCount, error)
}

type enrollStudentStore interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Student, error)
	Upsert(ctx context.Context, students []models.Student) error
}

// EnrollConfig tunes bulk enrollment.
type EnrollConfig struct {
	MaxRows  int
	CacheTTL time.Duration
}

// EnrollService backs the course enroll page.
type EnrollService struct {
	courses   enrollCourseReader
	students  enrollStudentStore
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       EnrollConfig
}

// NewEnrollService constructs an EnrollService.
func NewEnrollService(courses enrollCourseReader, students enrollStudentStore, cacheSvc *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg EnrollConfig) *EnrollService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = defaultEnrollMaxRows
	}
	return &EnrollService{
		courses:   courses,
		students:  students,
		cache:     cacheSvc,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// EnrollPageCacheKey returns the cache key holding a course's enroll page data.
func EnrollPageCacheKey(courseID string) string {
	return cache.Key("enroll", courseID)
}

// GetCourseEnrollPageData loads the data shown when the enroll page opens. A course that
// does not exist yields CoursePresent=false rather than an error. The boolean reports a cache hit.
func (s *EnrollService) GetCourseEnrollPageData(ctx context.Context, courseID string) (*dto.EnrollPageData, bool, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}

	key := EnrollPageCacheKey(courseID)
	var cached dto.EnrollPageData
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &dto.EnrollPageData{CoursePresent: false, CourseID: courseID, ExistingStudents: []models.Student{}}, false, nil
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	hasResponses, err := s.hasResponses(ctx, courseID)
	if err != nil {
		return nil, false, err
	}

	students, err := s.students.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	data := &dto.EnrollPageData{
		CoursePresent:             true,
		CourseID:                  courseID,
		HasResponses:              hasResponses.HasResponses,
		ExistingStudents:          students,
		NewStudentsPanelCollapsed: enroll.NewStudentsPanel{}.Collapsed,
	}
	_ = s.cache.Set(ctx, key, data, s.cfg.CacheTTL)
	return data, false, nil
}

// hasResponses reports whether the course, and each of its sessions, has feedback responses.
func (s *EnrollService) hasResponses(ctx context.Context, courseID string) (*models.HasResponses, error) {
	counts, err := s.courses.ResponseCounts(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course responses")
	}
	result := &models.HasResponses{HasResponsesBySession: make(map[string]bool, len(counts))}
	for _, c := range counts {
		has := c.Responses > 0
		result.HasResponsesBySession[c.SessionName] = has
		result.HasResponses = result.HasResponses || has
	}
	return result, nil
}

// Preview classifies pending rows against the course's existing students without writing anything.
func (s *EnrollService) Preview(ctx context.Context, courseID string, req dto.EnrollRequest) (*dto.EnrollPreviewResponse, error) {
	preview, _, err := s.preview(ctx, courseID, req)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordEnrollSummary(preview.Summary, false)
	return preview, nil
}

// Enroll writes NEW and CHANGED rows and skips UNCHANGED ones.
func (s *EnrollService) Enroll(ctx context.Context, courseID string, req dto.EnrollRequest) (*dto.EnrollResponse, error) {
	preview, rows, err := s.preview(ctx, courseID, req)
	if err != nil {
		return nil, err
	}

	byEmail := make(map[string]enroll.Row, len(rows))
	for _, row := range rows {
		byEmail[row.Email] = row
	}
	toWrite := make([]models.Student, 0, len(preview.Results))
	for _, result := range preview.Results {
		if result.Status == enroll.StatusUnchanged {
			continue
		}
		toWrite = append(toWrite, byEmail[result.Email].Student(preview.CourseID))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.students.Upsert(ctx, toWrite); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll students")
	}
	_ = s.cache.Invalidate(ctx, EnrollPageCacheKey(preview.CourseID))
	s.metrics.RecordEnrollSummary(preview.Summary, true)

	s.logger.Info("students enrolled",
		zap.String("course_id", preview.CourseID),
		zap.Int("new", preview.Summary.New),
		zap.Int("changed", preview.Summary.Changed),
		zap.Int("unchanged", preview.Summary.Unchanged),
	)

	return &dto.EnrollResponse{
		EnrollPreviewResponse: *preview,
		Enrolled:              nonNil(enroll.Emails(preview.Results, enroll.StatusNew, enroll.StatusChanged)),
		Skipped:               nonNil(enroll.Emails(preview.Results, enroll.StatusUnchanged)),
	}, nil
}

func (s *EnrollService) preview(ctx context.Context, courseID string, req dto.EnrollRequest) (*dto.EnrollPreviewResponse, []enroll.Row, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}
	rows, err := s.pendingRows(req)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	existing, err := s.students.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	results := enroll.Reconcile(enroll.Records(courseID, rows), enroll.FromStudents(existing))
	preview := &dto.EnrollPreviewResponse{
		CourseID: courseID,
		Results:  results,
		Summary:  enroll.Summarize(results),
	}
	if changesTeam(results) {
		responses, err := s.hasResponses(ctx, courseID)
		if err != nil {
			return nil, nil, err
		}
		if responses.HasResponses {
			preview.Warnings = append(preview.Warnings, TeamChangeWarning)
		}
	}
	return preview, rows, nil
}

func (s *EnrollService) pendingRows(req dto.EnrollRequest) ([]enroll.Row, error) {
	rows := req.Rows
	if len(rows) == 0 && strings.TrimSpace(req.CSV) != "" {
		parsed, err := enroll.ParseRowsString(req.CSV)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment text")
		}
		rows = parsed
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no students to enroll")
	}
	if len(rows) > s.cfg.MaxRows {
		return nil, appErrors.Clone(appErrors.ErrTooManyRows, fmt.Sprintf("at most %d students can be enrolled at once", s.cfg.MaxRows))
	}

	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		if err := s.validator.Struct(row); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("row %d: invalid enrollment data", i+1))
		}
		if first, ok := seen[row.Email]; ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("row %d: email %s duplicates row %d", i+1, row.Email, first))
		}
		seen[row.Email] = i + 1
	}
	return rows, nil
}

func changesTeam(results []enroll.Result) bool {
	for _, r := range results {
		for _, field := range r.Mismatch {
			if field == enroll.FieldTeam {
				return true
			}
		}
	}
	return false
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
