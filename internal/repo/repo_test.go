package repo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*PostgresUserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresUserDB(db), mock
}

func TestCreateCalculation(t *testing.T) {
	r, mock := newMock(t)
	created := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	in := []byte(`{"name":"x"}`)
	out := []byte(`{"heights":[0,1]}`)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO calculations")).
		WithArgs(7, "Run", "desc", in, out).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(42, created))

	c, err := r.CreateCalculation(context.Background(), Calculation{
		UserID: 7, Name: "Run", Description: "desc", InputJSON: in, ResultJSON: out,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, c.ID)
	assert.Equal(t, created, c.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCalculationNotFound(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM calculations WHERE id=$1 AND user_id=$2")).
		WithArgs(5, 7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "input_json", "result_json"}))

	_, err := r.GetCalculation(context.Background(), 7, 5)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCalculations(t *testing.T) {
	r, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $2")).
		WithArgs(7, 30).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at"}).
			AddRow(2, "b", "", now).
			AddRow(1, "a", "first", now.Add(-time.Hour)))

	list, err := r.ListCalculations(context.Background(), 7, 30)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].ID)
	assert.Equal(t, "first", list[1].Description)
	assert.Equal(t, 7, list[1].UserID)
}

func TestDeleteCalculation(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM calculations")).
		WithArgs(3, 7).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM calculations")).
		WithArgs(4, 7).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, r.DeleteCalculation(context.Background(), 7, 3))
	assert.ErrorIs(t, r.DeleteCalculation(context.Background(), 7, 4), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByloginMissingUser(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, password FROM users")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password"}))

	id, hash, err := r.GetBylogin(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Zero(t, id)
	assert.Empty(t, hash)
}

func TestWithSSLMode(t *testing.T) {
	assert.Equal(t, "postgres://h/db?sslmode=require", withSSLMode("postgres://h/db"))
	assert.Equal(t, "postgres://h/db?x=1&sslmode=require", withSSLMode("postgres://h/db?x=1"))
	assert.Equal(t, "user=a sslmode=require", withSSLMode("user=a"))
	assert.Equal(t, "user=a sslmode=disable", withSSLMode("user=a sslmode=disable"))
}
