package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"filevault/internal/model"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFolderPostgres(db)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO folders").
		WithArgs("holiday", now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).AddRow(4, "holiday", now))

	f, err := repo.Create(context.Background(), &model.Folder{Name: "holiday", CreatedAt: now})

	require.NoError(t, err)
	assert.Equal(t, int64(4), f.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFolderPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFolderPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM folders WHERE id = ?").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	f, err := repo.FindByID(context.Background(), 99)

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Nil(t, f)
	assert.NoError(t, mock.ExpectationsWereMet())
}
