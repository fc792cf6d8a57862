package postgres

import (
	"context"
	"database/sql"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// FolderPostgres is a PostgreSQL implementation of repository.FolderRepository.
type FolderPostgres struct {
	db *sql.DB
}

// NewFolderPostgres creates a new FolderPostgres repository.
func NewFolderPostgres(db *sql.DB) *FolderPostgres {
	return &FolderPostgres{db: db}
}

var _ repository.FolderRepository = (*FolderPostgres)(nil)

// Create inserts a folder row.
func (r *FolderPostgres) Create(ctx context.Context, f *model.Folder) (*model.Folder, error) {
	const q = `INSERT INTO folders (name, created_at) VALUES ($1, $2) RETURNING id, name, created_at`
	var out model.Folder
	if err := r.db.QueryRowContext(ctx, q, f.Name, f.CreatedAt).Scan(&out.ID, &out.Name, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a folder by ID.
func (r *FolderPostgres) FindByID(ctx context.Context, id int64) (*model.Folder, error) {
	const q = `SELECT id, name, created_at FROM folders WHERE id = $1`
	var out model.Folder
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&out.ID, &out.Name, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}
