package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coursedesk-api/internal/models"
)

// SessionRepository handles feedback session lookups.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Search returns sessions whose name or course ID contains key, case-insensitively.
func (r *SessionRepository) Search(ctx context.Context, key string, page, size int) ([]models.FeedbackSession, int, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size
	pattern := "%" + escapeLike(strings.ToLower(key)) + "%"

	const where = ` FROM feedback_sessions WHERE LOWER(session_name) LIKE $1 ESCAPE '\' OR LOWER(course_id) LIKE $1 ESCAPE '\'`
	query := fmt.Sprintf(`SELECT course_id, session_name, instructions, start_time, end_time%s
        ORDER BY end_time DESC, session_name LIMIT %d OFFSET %d`, where, size, offset)

	sessions := []models.FeedbackSession{}
	if err := r.db.SelectContext(ctx, &sessions, query, pattern); err != nil {
		return nil, 0, fmt.Errorf("search sessions: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*)`+where, pattern); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}
	return sessions, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
