package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coursedesk-api/internal/models"
)

// StudentRepository provides persistence for course students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListByCourse returns every student of a course ordered by section, team and name.
func (r *StudentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Student, error) {
	const query = `SELECT email, course_id, name, google_id, comments, join_state, team_name, section_name
        FROM students WHERE course_id = $1
        ORDER BY section_name, team_name, name`
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, courseID); err != nil {
		return nil, fmt.Errorf("list course students: %w", err)
	}
	return students, nil
}

// Upsert inserts or updates students keyed by (course_id, email) in one transaction.
// Join state and Google ID of existing rows are left untouched.
func (r *StudentRepository) Upsert(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert students: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO students (email, course_id, name, comments, join_state, team_name, section_name)
        VALUES (:email, :course_id, :name, :comments, :join_state, :team_name, :section_name)
        ON CONFLICT (course_id, email) DO UPDATE SET
            name = EXCLUDED.name,
            comments = EXCLUDED.comments,
            team_name = EXCLUDED.team_name,
            section_name = EXCLUDED.section_name`
	for i := range students {
		if _, err := tx.NamedExecContext(ctx, query, &students[i]); err != nil {
			return fmt.Errorf("upsert student %s: %w", students[i].Email, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert students: %w", err)
	}
	return nil
}

// DeleteByGoogleID removes the student linked to googleID from a course and reports whether a row existed.
func (r *StudentRepository) DeleteByGoogleID(ctx context.Context, courseID, googleID string) (bool, error) {
	const query = `DELETE FROM students WHERE course_id = $1 AND google_id = $2`
	res, err := r.db.ExecContext(ctx, query, courseID, googleID)
	if err != nil {
		return false, fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete student rows: %w", err)
	}
	return affected > 0, nil
}
