package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursedesk-api/internal/models"
)

var exportRowColumns = []string{"id", "course_id", "params", "status", "result_url", "created_by", "created_at", "finished_at", "error_message"}

func TestExportRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewExportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roster_exports")).
		WithArgs(sqlmock.AnyArg(), "CS101", sqlmock.AnyArg(), models.ExportStatusQueued, nil, "instructor.google", sqlmock.AnyArg(), nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.RosterExport{
		CourseID:  "CS101",
		Params:    models.ExportParams{Format: models.ExportFormatCSV},
		CreatedBy: "instructor.google",
	}
	require.NoError(t, repo.Create(context.Background(), job))
	require.NotEmpty(t, job.ID)

	rows := sqlmock.NewRows(exportRowColumns).
		AddRow(job.ID, "CS101", `{"format":"csv"}`, "QUEUED", nil, "instructor.google", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM roster_exports WHERE id = $1")).
		WithArgs(job.ID).
		WillReturnRows(rows)

	fetched, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, models.ExportFormatCSV, fetched.Params.Format)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewExportRepository(db)

	now := time.Now()
	status := models.ExportStatusFinished
	result := "/api/v1/exports/download?token=abc"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE roster_exports SET status = $1, result_url = $2, finished_at = $3 WHERE id = $4")).
		WithArgs(status, result, now, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateExportParams{
		Status:     &status,
		ResultURL:  &result,
		FinishedAt: &now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportRepositoryUpdateNoop(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	require.NoError(t, NewExportRepository(db).Update(context.Background(), "job-1", UpdateExportParams{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportRepositoryListQueued(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewExportRepository(db)

	rows := sqlmock.NewRows(exportRowColumns).
		AddRow("job-1", "CS101", `{"format":"pdf"}`, "QUEUED", nil, "instructor.google", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1")).
		WithArgs(20).
		WillReturnRows(rows)

	jobs, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, models.ExportFormatPDF, jobs[0].Params.Format)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportRepositoryListFinishedBeforePagesNewestFirst(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewExportRepository(db)

	cutoff := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	finished := cutoff.Add(-time.Hour)
	rows := sqlmock.NewRows(exportRowColumns).
		AddRow("job-2", "CS101", `{"format":"csv"}`, "FINISHED", nil, "instructor.google", finished, finished, nil)
	mock.ExpectQuery(`finished_at < \$1 OR \(finished_at = \$1 AND \$2 <> '' AND id::text < \$2\)\)\s+ORDER BY finished_at DESC, id::text DESC LIMIT \$3`).
		WithArgs(cutoff, "job-9", 100).
		WillReturnRows(rows)

	jobs, err := repo.ListFinishedBefore(context.Background(), ExportCursor{FinishedAt: cutoff, ID: "job-9"}, 100)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, "job-2", jobs[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportCursorAfter(t *testing.T) {
	at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	start := ExportCursor{FinishedAt: at}
	require.True(t, start.After(at.Add(-time.Second), "job-1"))
	require.False(t, start.After(at, "job-1"))

	page := ExportCursor{FinishedAt: at, ID: "job-5"}
	require.True(t, page.After(at, "job-4"))
	require.False(t, page.After(at, "job-5"))
	require.False(t, page.After(at.Add(time.Second), "job-1"))
}
