package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursedesk-api/internal/dto"
	"github.com/noah-isme/coursedesk-api/internal/models"
	"github.com/noah-isme/coursedesk-api/internal/repository"
	appErrors "github.com/noah-isme/coursedesk-api/pkg/errors"
	"github.com/noah-isme/coursedesk-api/pkg/jobs"
)

type exportRepoStub struct {
	mu        sync.Mutex
	jobs      map[string]*models.RosterExport
	updates   []repository.UpdateExportParams
	finished  []models.RosterExport
	listed    map[string]int
	createErr error
}

func newExportRepoStub() *exportRepoStub {
	return &exportRepoStub{jobs: map[string]*models.RosterExport{}}
}

func (s *exportRepoStub) Create(ctx context.Context, job *models.RosterExport) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.ID == "" {
		job.ID = "job-" + job.CourseID
	}
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *exportRepoStub) GetByID(ctx context.Context, id string) (*models.RosterExport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (s *exportRepoStub) Update(ctx context.Context, id string, params repository.UpdateExportParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, params)
	job, ok := s.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (s *exportRepoStub) ListQueued(ctx context.Context, limit int) ([]models.RosterExport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RosterExport
	for _, job := range s.jobs {
		if job.Status == models.ExportStatusQueued {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (s *exportRepoStub) ListFinishedBefore(ctx context.Context, cursor repository.ExportCursor, limit int) ([]models.RosterExport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RosterExport
	for _, job := range s.finished {
		if job.FinishedAt == nil || !cursor.After(*job.FinishedAt, job.ID) {
			continue
		}
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FinishedAt.Equal(*out[j].FinishedAt) {
			return out[i].FinishedAt.After(*out[j].FinishedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	if s.listed == nil {
		s.listed = map[string]int{}
	}
	for _, job := range out {
		s.listed[job.ID]++
	}
	return out, nil
}

type dispatcherStub struct {
	jobs []jobs.Job
	err  error
}

func (d *dispatcherStub) Enqueue(job jobs.Job) error {
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

type generatorStub struct {
	result *ExportResult
	err    error
}

func (g generatorStub) Generate(ctx context.Context, job *models.RosterExport) (*ExportResult, error) {
	return g.result, g.err
}

func newRosterExportFixture(t *testing.T) (*RosterExportService, *exportRepoStub, *dispatcherStub) {
	exporter, _ := newTestExportService(t)
	repo := newExportRepoStub()
	queue := &dispatcherStub{}
	courses := &courseRepoStub{courses: map[string]*models.Course{"CS101": {CourseID: "CS101"}}}
	return NewRosterExportService(repo, courses, queue, exporter, nil, nil, RosterExportConfig{}), repo, queue
}

func TestRosterExportServiceCreateJob(t *testing.T) {
	svc, repo, queue := newRosterExportFixture(t)

	resp, err := svc.CreateJob(context.Background(), "CS101", dto.RosterExportRequest{Format: models.ExportFormatCSV}, "instructor.google")
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, resp.Status)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, resp.ID, queue.jobs[0].ID)
	assert.Equal(t, RosterExportJobKind, queue.jobs[0].Kind)
	assert.Equal(t, "instructor.google", repo.jobs[resp.ID].CreatedBy)
}

func TestRosterExportServiceCreateJobValidation(t *testing.T) {
	svc, _, queue := newRosterExportFixture(t)

	_, err := svc.CreateJob(context.Background(), "CS101", dto.RosterExportRequest{Format: "xlsx"}, "u")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.CreateJob(context.Background(), "NOPE", dto.RosterExportRequest{Format: models.ExportFormatPDF}, "u")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, queue.jobs)
}

func TestRosterExportServiceCreateJobEnqueueFailure(t *testing.T) {
	svc, repo, queue := newRosterExportFixture(t)
	queue.err = errors.New("queue stopped")

	_, err := svc.CreateJob(context.Background(), "CS101", dto.RosterExportRequest{Format: models.ExportFormatCSV}, "u")
	require.Error(t, err)
	job := repo.jobs["job-CS101"]
	require.NotNil(t, job)
	assert.Equal(t, models.ExportStatusFailed, job.Status)
}

func TestRosterExportServiceGetStatusOwnership(t *testing.T) {
	svc, repo, _ := newRosterExportFixture(t)
	repo.jobs["job-1"] = &models.RosterExport{ID: "job-1", CourseID: "CS101", Status: models.ExportStatusQueued, CreatedBy: "owner"}

	_, err := svc.GetStatus(context.Background(), "job-1", "someone-else", models.RoleInstructor)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	resp, err := svc.GetStatus(context.Background(), "job-1", "someone-else", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "CS101", resp.CourseID)

	_, err = svc.GetStatus(context.Background(), "missing", "owner", models.RoleAdmin)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRosterExportEndToEndDownload(t *testing.T) {
	svc, repo, _ := newRosterExportFixture(t)
	worker := NewRosterExportWorker(repo, svc.exporter, 3, nil)

	resp, err := svc.CreateJob(context.Background(), "CS101", dto.RosterExportRequest{Format: models.ExportFormatCSV}, "owner")
	require.NoError(t, err)
	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: resp.ID, Kind: RosterExportJobKind}))

	status, err := svc.GetStatus(context.Background(), resp.ID, "owner", models.RoleInstructor)
	require.NoError(t, err)
	require.Equal(t, models.ExportStatusFinished, status.Status)
	require.NotNil(t, status.ResultURL)

	token := tokenFromURL(*status.ResultURL)
	download, err := svc.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, models.ExportFormatCSV, download.Format)
	assert.Contains(t, download.Filename, "roster_CS101_")

	_, err = svc.ResolveDownload(context.Background(), token+"x")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestRosterExportWorkerRetriesThenFails(t *testing.T) {
	repo := newExportRepoStub()
	repo.jobs["job-1"] = &models.RosterExport{ID: "job-1", CourseID: "CS101", Status: models.ExportStatusQueued}
	worker := NewRosterExportWorker(repo, generatorStub{err: errors.New("render failed")}, 2, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 0})
	require.Error(t, err)
	assert.Equal(t, models.ExportStatusQueued, repo.jobs["job-1"].Status)

	err = worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 2})
	require.Error(t, err)
	assert.Equal(t, models.ExportStatusFailed, repo.jobs["job-1"].Status)
	require.NotNil(t, repo.jobs["job-1"].ErrorMessage)
	assert.Equal(t, "render failed", *repo.jobs["job-1"].ErrorMessage)
	assert.NotNil(t, repo.jobs["job-1"].FinishedAt)
}

func TestRosterExportServiceRecoverPendingJobs(t *testing.T) {
	svc, repo, queue := newRosterExportFixture(t)
	repo.jobs["job-1"] = &models.RosterExport{ID: "job-1", Status: models.ExportStatusQueued}
	repo.jobs["job-2"] = &models.RosterExport{ID: "job-2", Status: models.ExportStatusFinished}

	svc.RecoverPendingJobs(context.Background())
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "job-1", queue.jobs[0].ID)
}

func TestRosterExportServiceCleanupExpired(t *testing.T) {
	svc, repo, _ := newRosterExportFixture(t)
	result, err := svc.exporter.Generate(context.Background(), &models.RosterExport{ID: "job-1", CourseID: "CS101", Params: models.ExportParams{Format: models.ExportFormatCSV}})
	require.NoError(t, err)
	finished := time.Now().Add(-48 * time.Hour)
	repo.finished = []models.RosterExport{{ID: "job-1", Status: models.ExportStatusFinished, ResultURL: &result.URL, FinishedAt: &finished}}

	svc.CleanupExpired(context.Background())

	_, err = svc.exporter.Open(result.RelativePath)
	assert.Error(t, err)
}

func TestRosterExportServiceCleanupVisitsEveryExpiredJob(t *testing.T) {
	svc, repo, _ := newRosterExportFixture(t)
	base := time.Now().Add(-72 * time.Hour)
	for i := 0; i < 250; i++ {
		finished := base.Add(time.Duration(i%40) * time.Minute)
		repo.finished = append(repo.finished, models.RosterExport{
			ID:         fmt.Sprintf("job-%03d", i),
			Status:     models.ExportStatusFinished,
			FinishedAt: &finished,
		})
	}
	result, err := svc.exporter.Generate(context.Background(), &models.RosterExport{ID: "job-150", CourseID: "CS101", Params: models.ExportParams{Format: models.ExportFormatCSV}})
	require.NoError(t, err)
	repo.finished[150].ResultURL = &result.URL

	svc.CleanupExpired(context.Background())

	assert.Len(t, repo.listed, 250)
	for id, seen := range repo.listed {
		assert.Equal(t, 1, seen, id)
	}
	_, err = svc.exporter.Open(result.RelativePath)
	assert.Error(t, err)
}
