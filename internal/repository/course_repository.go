package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coursedesk-api/internal/models"
)

const courseColumns = `c.course_id, c.course_name, c.institute, c.time_zone, c.creation_timestamp, c.deletion_timestamp`

// CourseRepository handles course lookups.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, courseID string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses c WHERE c.course_id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// ListByStudent returns the courses in which googleID is a student.
func (r *CourseRepository) ListByStudent(ctx context.Context, googleID string) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses c
        JOIN students s ON s.course_id = c.course_id
        WHERE s.google_id = $1
        ORDER BY c.course_id`
	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, query, googleID); err != nil {
		return nil, fmt.Errorf("list student courses: %w", err)
	}
	return courses, nil
}

// ListByInstructor returns the courses in which googleID is an instructor.
func (r *CourseRepository) ListByInstructor(ctx context.Context, googleID string) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses c
        JOIN instructors i ON i.course_id = c.course_id
        WHERE i.google_id = $1
        ORDER BY c.course_id`
	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, query, googleID); err != nil {
		return nil, fmt.Errorf("list instructor courses: %w", err)
	}
	return courses, nil
}

// ResponseCounts returns the number of feedback responses per session of a course.
// Sessions without responses are included with a zero count.
func (r *CourseRepository) ResponseCounts(ctx context.Context, courseID string) ([]models.SessionResponseCount, error) {
	const query = `SELECT fs.session_name, COUNT(fr.id) AS responses
        FROM feedback_sessions fs
        LEFT JOIN feedback_responses fr ON fr.course_id = fs.course_id AND fr.session_name = fs.session_name
        WHERE fs.course_id = $1
        GROUP BY fs.session_name
        ORDER BY fs.session_name`
	var counts []models.SessionResponseCount
	if err := r.db.SelectContext(ctx, &counts, query, courseID); err != nil {
		return nil, fmt.Errorf("count course responses: %w", err)
	}
	return counts, nil
}
