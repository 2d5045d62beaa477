package service

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coursedesk-api/internal/models"
	"github.com/noah-isme/coursedesk-api/pkg/export"
	"github.com/noah-isme/coursedesk-api/pkg/storage"
)

type rosterStudentReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Student, error)
}

type rosterCourseReader interface {
	FindByID(ctx context.Context, courseID string) (*models.Course, error)
}

type fileStorage interface {
	Save(relPath string, data []byte) (string, error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(rows []export.RosterRow) ([]byte, error)
}

type pdfRenderer interface {
	Render(title string, rows []export.RosterRow) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders course rosters and persists the rendered files.
type ExportService struct {
	students rosterStudentReader
	courses  rosterCourseReader
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig
	now      func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(students rosterStudentReader, courses rosterCourseReader, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		students: students,
		courses:  courses,
		storage:  files,
		csv:      csv,
		pdf:      pdf,
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Generate renders the roster described by job and stores it, returning a signed download URL.
func (s *ExportService) Generate(ctx context.Context, job *models.RosterExport) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("export job nil")
	}
	course, err := s.courses.FindByID(ctx, job.CourseID)
	if err != nil {
		return nil, fmt.Errorf("load course %s: %w", job.CourseID, err)
	}
	students, err := s.students.ListByCourse(ctx, job.CourseID)
	if err != nil {
		return nil, fmt.Errorf("load roster %s: %w", job.CourseID, err)
	}
	rows := rosterRows(students, job.Params.Section)

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(rows)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(rosterTitle(course, job.Params.Section), rows)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          s.DownloadURL(token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// DownloadURL builds the API path serving token.
func (s *ExportService) DownloadURL(token string) string {
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return prefix + "/exports/download?token=" + url.QueryEscape(token)
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (storage.Claims, error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, defaulting to the configured result TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.RosterExport) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	course := sanitizeFilename(job.CourseID)
	name := fmt.Sprintf("roster_%s", course)
	if job.Params.Section != "" {
		name += "_" + sanitizeFilename(job.Params.Section)
	}
	return path.Join(course, fmt.Sprintf("%s_%s.%s", name, timestamp, job.Params.Format))
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func rosterRows(students []models.Student, section string) []export.RosterRow {
	rows := make([]export.RosterRow, 0, len(students))
	for _, st := range students {
		if section != "" && st.SectionName != section {
			continue
		}
		rows = append(rows, export.RosterRow{
			Section:  st.SectionName,
			Team:     st.TeamName,
			Name:     st.Name,
			Email:    st.Email,
			Status:   joinStatusLabel(st.JoinState),
			Comments: st.Comments,
		})
	}
	return rows
}

func joinStatusLabel(state models.JoinState) string {
	if state == models.JoinStateJoined {
		return "Joined"
	}
	return "Yet to Join"
}

func rosterTitle(course *models.Course, section string) string {
	title := fmt.Sprintf("%s - %s", course.CourseID, course.CourseName)
	if section != "" {
		title += " (" + section + ")"
	}
	return title
}
