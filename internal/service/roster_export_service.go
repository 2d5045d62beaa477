package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursedesk-api/internal/dto"
	"github.com/noah-isme/coursedesk-api/internal/models"
	"github.com/noah-isme/coursedesk-api/internal/repository"
	appErrors "github.com/noah-isme/coursedesk-api/pkg/errors"
	"github.com/noah-isme/coursedesk-api/pkg/jobs"
)

// RosterExportJobKind tags roster export jobs on the worker queue.
const RosterExportJobKind = "roster_export"

type exportJobStore interface {
	Create(ctx context.Context, job *models.RosterExport) error
	GetByID(ctx context.Context, id string) (*models.RosterExport, error)
	Update(ctx context.Context, id string, params repository.UpdateExportParams) error
	ListQueued(ctx context.Context, limit int) ([]models.RosterExport, error)
	ListFinishedBefore(ctx context.Context, cursor repository.ExportCursor, limit int) ([]models.RosterExport, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.RosterExport) (*ExportResult, error)
}

// RosterExportConfig governs queue recovery and cleanup.
type RosterExportConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// RosterDownload aggregates resolved download data.
type RosterDownload struct {
	File      *os.File
	Filename  string
	Format    models.ExportFormat
	ExpiresAt time.Time
}

// RosterExportService manages the roster export job lifecycle.
type RosterExportService struct {
	repo      exportJobStore
	courses   rosterCourseReader
	queue     jobDispatcher
	exporter  *ExportService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       RosterExportConfig
}

// NewRosterExportService constructs the service.
func NewRosterExportService(repo exportJobStore, courses rosterCourseReader, queue jobDispatcher, exporter *ExportService, validate *validator.Validate, logger *zap.Logger, cfg RosterExportConfig) *RosterExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &RosterExportService{
		repo:      repo,
		courses:   courses,
		queue:     queue,
		exporter:  exporter,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// CreateJob validates the request, persists a job and enqueues it.
func (s *RosterExportService) CreateJob(ctx context.Context, courseID string, req dto.RosterExportRequest, actorID string) (*dto.RosterExportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	job := &models.RosterExport{
		CourseID:  courseID,
		Params:    models.ExportParams{Format: req.Format, Section: req.Section},
		Status:    models.ExportStatusQueued,
		CreatedBy: actorID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Kind: RosterExportJobKind}); err != nil {
		status := models.ExportStatusFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		_ = s.repo.Update(ctx, job.ID, repository.UpdateExportParams{
			Status:       &status,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return &dto.RosterExportResponse{ID: job.ID, Status: job.Status}, nil
}

// GetStatus exposes job metadata. Only admins and the job's creator may see it.
func (s *RosterExportService) GetStatus(ctx context.Context, id, actorID string, role models.UserRole) (*dto.RosterExportStatusResponse, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && job.CreatedBy != actorID {
		return nil, appErrors.ErrForbidden
	}
	resp := &dto.RosterExportStatusResponse{
		ID:        job.ID,
		CourseID:  job.CourseID,
		Status:    job.Status,
		ResultURL: job.ResultURL,
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp, nil
}

// ResolveDownload validates token and opens the stored export file.
func (s *RosterExportService) ResolveDownload(ctx context.Context, token string) (*RosterDownload, error) {
	claims, err := s.exporter.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.load(ctx, claims.ExportID)
	if err != nil {
		return nil, err
	}
	if job.ResultURL == nil || tokenFromURL(*job.ResultURL) != token {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	file, err := s.exporter.Open(claims.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &RosterDownload{
		File:      file,
		Filename:  filepath.Base(claims.Path),
		Format:    job.Params.Format,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (s *RosterExportService) load(ctx context.Context, id string) (*models.RosterExport, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	return job, nil
}

// RecoverPendingJobs replays queued jobs after a restart.
func (s *RosterExportService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover queued export jobs", "error", err)
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Kind: RosterExportJobKind}); err != nil {
			s.logger.Sugar().Warnw("failed to requeue pending export", "job_id", job.ID, "error", err)
		}
	}
}

// StartCleanup purges expired exports every CleanupInterval until ctx is done.
func (s *RosterExportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired(ctx)
			}
		}
	}()
}

// CleanupExpired deletes files of jobs that finished more than ResultTTL ago, then sweeps
// any stray files of the same age.
func (s *RosterExportService) CleanupExpired(ctx context.Context) {
	cursor := repository.ExportCursor{FinishedAt: time.Now().Add(-s.cfg.ResultTTL)}
	const batch = 100
	for {
		finished, err := s.repo.ListFinishedBefore(ctx, cursor, batch)
		if err != nil {
			s.logger.Sugar().Warnw("cleanup list failed", "error", err)
			return
		}
		for _, job := range finished {
			if job.ResultURL == nil {
				continue
			}
			claims, err := s.exporter.ParseToken(tokenFromURL(*job.ResultURL), true)
			if err != nil {
				continue
			}
			if err := s.exporter.Delete(claims.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				s.logger.Sugar().Warnw("cleanup delete failed", "job_id", job.ID, "error", err)
			}
		}
		if len(finished) < batch {
			break
		}
		last := finished[len(finished)-1]
		if last.FinishedAt == nil {
			break
		}
		cursor = repository.ExportCursor{FinishedAt: *last.FinishedAt, ID: last.ID}
	}
	if _, err := s.exporter.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
}

func tokenFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("token")
}

// RosterExportWorker bridges queue jobs to ExportService.
type RosterExportWorker struct {
	repo       exportJobStore
	exporter   exportGenerator
	logger     *zap.Logger
	maxRetries int
}

// NewRosterExportWorker constructs a worker.
func NewRosterExportWorker(repo exportJobStore, exporter exportGenerator, maxRetries int, logger *zap.Logger) *RosterExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &RosterExportWorker{repo: repo, exporter: exporter, logger: logger, maxRetries: maxRetries}
}

// Handle processes a queue job.
func (w *RosterExportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", job.ID, err)
	}
	processing := models.ExportStatusProcessing
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportParams{Status: &processing}); err != nil {
		return err
	}

	result, err := w.exporter.Generate(ctx, record)
	if err != nil {
		msg := err.Error()
		params := repository.UpdateExportParams{ErrorMessage: &msg}
		if job.Attempt >= w.maxRetries {
			failed := models.ExportStatusFailed
			now := time.Now().UTC()
			params.Status = &failed
			params.FinishedAt = &now
		} else {
			queued := models.ExportStatusQueued
			params.Status = &queued
		}
		if updateErr := w.repo.Update(ctx, job.ID, params); updateErr != nil {
			w.logger.Sugar().Warnw("failed to record export failure", "job_id", job.ID, "error", updateErr)
		}
		return err
	}

	finished := models.ExportStatusFinished
	now := time.Now().UTC()
	resultURL := result.URL
	clear := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportParams{
		Status:       &finished,
		ResultURL:    &resultURL,
		ErrorMessage: &clear,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark export finished", "job_id", job.ID, "error", err)
		return err
	}
	return nil
}
