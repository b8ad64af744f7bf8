package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	r := NewSessionRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO sessions (name, user_id) VALUES ($1, $2) RETURNING id`)).
		WithArgs("my prompt", int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := r.Create(context.Background(), "my prompt", 1)
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetOwned(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	r := NewSessionRepository(mock)

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, name, created_at FROM sessions WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(42), int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "created_at"}).
			AddRow(int64(42), int64(1), "stories", created))

	row, err := r.GetOwned(context.Background(), 42, 1)
	require.NoError(t, err)
	require.NotNil(t, row)
	require.Equal(t, int64(42), row.ID)
	require.Equal(t, "stories", row.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetOwned_Foreign(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	r := NewSessionRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, name, created_at FROM sessions WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(42), int64(2)).
		WillReturnError(pgx.ErrNoRows)

	row, err := r.GetOwned(context.Background(), 42, 2)
	require.NoError(t, err)
	require.Nil(t, row, "a foreign-owned session must look absent")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_Rename(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	r := NewSessionRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions SET name = $1 WHERE id = $2 AND user_id = $3`)).
		WithArgs("renamed", int64(42), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	rows, err := r.Rename(context.Background(), 42, 1, "renamed")
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_Rename_NotOwned(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	r := NewSessionRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions SET name = $1 WHERE id = $2 AND user_id = $3`)).
		WithArgs("renamed", int64(42), int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	rows, err := r.Rename(context.Background(), 42, 2, "renamed")
	require.NoError(t, err)
	require.Zero(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}
