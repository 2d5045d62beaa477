package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coursedesk-api/internal/models"
)

// AccountRepository provides database access for accounts.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new instance of AccountRepository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByGoogleID returns the account registered under googleID.
func (r *AccountRepository) FindByGoogleID(ctx context.Context, googleID string) (*models.Account, error) {
	const query = `SELECT google_id, name, email, read_notifications, created_at FROM accounts WHERE google_id = $1 LIMIT 1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, googleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

// Delete removes the account together with every student and instructor row linked to it.
// It returns sql.ErrNoRows when no account exists.
func (r *AccountRepository) Delete(ctx context.Context, googleID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete account: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM students WHERE google_id = $1`, googleID); err != nil {
		return fmt.Errorf("delete account students: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM instructors WHERE google_id = $1`, googleID); err != nil {
		return fmt.Errorf("delete account instructors: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE google_id = $1`, googleID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete account: %w", err)
	}
	return nil
}
