package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coursedesk-api/internal/models"
)

const exportColumns = `id, course_id, params, status, result_url, created_by, created_at, finished_at, error_message`

// ExportRepository persists roster export job metadata.
type ExportRepository struct {
	db *sqlx.DB
}

// NewExportRepository constructs the repository.
func NewExportRepository(db *sqlx.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create inserts a new export job row with generated defaults.
func (r *ExportRepository) Create(ctx context.Context, job *models.RosterExport) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO roster_exports (id, course_id, params, status, result_url, created_by, created_at, finished_at, error_message)
VALUES (:id, :course_id, :params, :status, :result_url, :created_by, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create roster export: %w", err)
	}
	return nil
}

// GetByID returns a job row by its identifier.
func (r *ExportRepository) GetByID(ctx context.Context, id string) (*models.RosterExport, error) {
	query := `SELECT ` + exportColumns + ` FROM roster_exports WHERE id = $1`
	var job models.RosterExport
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get roster export: %w", err)
	}
	return &job, nil
}

// UpdateExportParams defines the mutable fields of an export job.
type UpdateExportParams struct {
	Status       *models.ExportStatus
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update persists the provided changes for a job row.
func (r *ExportRepository) Update(ctx context.Context, id string, params UpdateExportParams) error {
	set := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.ResultURL != nil {
		add("result_url", *params.ResultURL)
	}
	if params.ErrorMessage != nil {
		add("error_message", *params.ErrorMessage)
	}
	if params.FinishedAt != nil {
		add("finished_at", *params.FinishedAt)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE roster_exports SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update roster export: %w", err)
	}
	return nil
}

// ListQueued fetches queued jobs for recovery after a restart.
func (r *ExportRepository) ListQueued(ctx context.Context, limit int) ([]models.RosterExport, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + exportColumns + ` FROM roster_exports WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1`
	var jobs []models.RosterExport
	if err := r.db.SelectContext(ctx, &jobs, query, limit); err != nil {
		return nil, fmt.Errorf("list queued roster exports: %w", err)
	}
	return jobs, nil
}

// ExportCursor marks a position in the newest-first listing of finished jobs. Rows strictly
// before (FinishedAt, ID) come next; an empty ID starts at FinishedAt itself.
type ExportCursor struct {
	FinishedAt time.Time
	ID         string
}

// After reports whether a job finished at finishedAt with id sorts after the cursor.
func (c ExportCursor) After(finishedAt time.Time, id string) bool {
	if finishedAt.Before(c.FinishedAt) {
		return true
	}
	return finishedAt.Equal(c.FinishedAt) && c.ID != "" && id < c.ID
}

// ListFinishedBefore pages completed jobs newest first, starting after cursor.
func (r *ExportRepository) ListFinishedBefore(ctx context.Context, cursor ExportCursor, limit int) ([]models.RosterExport, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + exportColumns + ` FROM roster_exports
		WHERE status = 'FINISHED' AND finished_at IS NOT NULL
		AND (finished_at < $1 OR (finished_at = $1 AND $2 <> '' AND id::text < $2))
		ORDER BY finished_at DESC, id::text DESC LIMIT $3`
	var jobs []models.RosterExport
	if err := r.db.SelectContext(ctx, &jobs, query, cursor.FinishedAt, cursor.ID, limit); err != nil {
		return nil, fmt.Errorf("list finished roster exports: %w", err)
	}
	return jobs, nil
}
