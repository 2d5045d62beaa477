package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAccountRepositoryFindByGoogleID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	rows := sqlmock.NewRows([]string{"google_id", "name", "email", "read_notifications", "created_at"}).
		AddRow("alice.google", "Alice", "alice@example.com", `{"n-1":1700000000}`, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE google_id = $1")).
		WithArgs("alice.google").
		WillReturnRows(rows)

	account, err := repo.FindByGoogleID(context.Background(), "alice.google")
	require.NoError(t, err)
	assert.Equal(t, "Alice", account.Name)
	assert.Equal(t, int64(1700000000), account.ReadNotifications["n-1"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryFindByGoogleIDNotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE google_id = $1")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByGoogleID(context.Background(), "ghost")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryDeleteCascades(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE google_id = $1")).
		WithArgs("alice.google").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM instructors WHERE google_id = $1")).
		WithArgs("alice.google").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM accounts WHERE google_id = $1")).
		WithArgs("alice.google").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "alice.google"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryDeleteMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM students").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM instructors").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM accounts").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
