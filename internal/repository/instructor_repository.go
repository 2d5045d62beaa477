package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// InstructorRepository provides persistence for course instructors.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs the repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// CountJoined returns how many instructors of a course have a linked account.
func (r *InstructorRepository) CountJoined(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM instructors WHERE course_id = $1 AND google_id IS NOT NULL`
	var total int
	if err := r.db.GetContext(ctx, &total, query, courseID); err != nil {
		return 0, fmt.Errorf("count joined instructors: %w", err)
	}
	return total, nil
}

// IsInstructorOf reports whether googleID is a joined instructor of courseID.
func (r *InstructorRepository) IsInstructorOf(ctx context.Context, courseID, googleID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM instructors WHERE course_id = $1 AND google_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, courseID, googleID); err != nil {
		return false, fmt.Errorf("check course instructor: %w", err)
	}
	return exists, nil
}

// DeleteByGoogleID removes the instructor linked to googleID from a course and reports whether a row existed.
func (r *InstructorRepository) DeleteByGoogleID(ctx context.Context, courseID, googleID string) (bool, error) {
	const query = `DELETE FROM instructors WHERE course_id = $1 AND google_id = $2`
	res, err := r.db.ExecContext(ctx, query, courseID, googleID)
	if err != nil {
		return false, fmt.Errorf("delete instructor: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete instructor rows: %w", err)
	}
	return affected > 0, nil
}
