package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursedesk-api/internal/models"
)

func TestStudentRepositoryListByCourse(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"email", "course_id", "name", "google_id", "comments", "join_state", "team_name", "section_name"}).
		AddRow("alice@example.com", "CS101", "Alice", "alice.google", "", "JOINED", "Team 1", "Section 1").
		AddRow("bob@example.com", "CS101", "Bob", nil, "late joiner", "NOT_JOINED", "Team 2", "Section 1")
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE course_id = $1")).
		WithArgs("CS101").
		WillReturnRows(rows)

	students, err := repo.ListByCourse(context.Background(), "CS101")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, models.JoinStateJoined, students[0].JoinState)
	require.NotNil(t, students[0].GoogleID)
	assert.Nil(t, students[1].GoogleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	students := []models.Student{
		{Email: "alice@example.com", CourseID: "CS101", Name: "Alice", JoinState: models.JoinStateNotJoined, TeamName: "Team 3", SectionName: "Section 1"},
		{Email: "carol@example.com", CourseID: "CS101", Name: "Carol", JoinState: models.JoinStateNotJoined, TeamName: "Team 2", SectionName: "Section 2"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (course_id, email) DO UPDATE")).
		WithArgs("alice@example.com", "CS101", "Alice", "", models.JoinStateNotJoined, "Team 3", "Section 1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (course_id, email) DO UPDATE")).
		WithArgs("carol@example.com", "CS101", "Carol", "", models.JoinStateNotJoined, "Team 2", "Section 2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Upsert(context.Background(), students))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpsertRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.Upsert(context.Background(), []models.Student{{Email: "a@example.com", CourseID: "CS101"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert student a@example.com")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpsertEmpty(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	require.NoError(t, NewStudentRepository(db).Upsert(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteByGoogleID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE course_id = $1 AND google_id = $2")).
		WithArgs("CS101", "alice.google").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE course_id = $1 AND google_id = $2")).
		WithArgs("CS101", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.DeleteByGoogleID(context.Background(), "CS101", "alice.google")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.DeleteByGoogleID(context.Background(), "CS101", "ghost")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
