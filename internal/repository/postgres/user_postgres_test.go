package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"filevault/internal/model"
	"filevault/internal/repository"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "email", "password", "full_name", "is_admin", "created_at"}

func TestUserPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	now := time.Now().UTC()
	u := &model.User{Email: "ana@example.com", PasswordHash: "$2a$10$hash", FullName: "Ana", CreatedAt: now}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(u.Email, u.PasswordHash, u.FullName, false, now).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(1, u.Email, u.PasswordHash, u.FullName, false, now))

	result, err := repo.Create(context.Background(), u)

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ID)
	assert.Equal(t, "$2a$10$hash", result.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_Create_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	u, err := repo.Create(context.Background(), &model.User{Email: "ana@example.com"})

	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.Nil(t, u)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ?").
			WithArgs("ana@example.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(1, "ana@example.com", "h", "Ana", true, time.Now()))

		u, err := repo.FindByEmail(ctx, "ana@example.com")

		require.NoError(t, err)
		assert.True(t, u.IsAdmin)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ?").
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		u, err := repo.FindByEmail(ctx, "nobody@example.com")

		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.Nil(t, u)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ?").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(9, "root@example.com", "h", "Root", true, time.Now()))

	u, err := repo.FindByID(context.Background(), 9)

	require.NoError(t, err)
	assert.Equal(t, "root@example.com", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}
