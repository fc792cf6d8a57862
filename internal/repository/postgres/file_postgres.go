package postgres

import (
	"context"
	"database/sql"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `id, key, original_name, mime_type, size, owner_id, folder_id, is_unsafe, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*model.File, error) {
	var (
		f        model.File
		folderID sql.NullInt64
	)
	if err := row.Scan(
		&f.ID,
		&f.Key,
		&f.OriginalName,
		&f.MimeType,
		&f.Size,
		&f.OwnerID,
		&folderID,
		&f.IsUnsafe,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	if folderID.Valid {
		id := folderID.Int64
		f.FolderID = &id
	}
	return &f, nil
}

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (key, original_name, mime_type, size, owner_id, folder_id, is_unsafe, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + fileColumns

	var folderID sql.NullInt64
	if f.FolderID != nil {
		folderID = sql.NullInt64{Int64: *f.FolderID, Valid: true}
	}
	row := r.db.QueryRowContext(ctx, q,
		f.Key,
		f.OriginalName,
		f.MimeType,
		f.Size,
		f.OwnerID,
		folderID,
		f.IsUnsafe,
		f.CreatedAt,
	)
	return scanFile(row)
}

// FindByKey fetches a single file by its object key.
func (r *FilePostgres) FindByKey(ctx context.Context, key string) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE key = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, key))
}

// FindByID fetches a single file by its ID.
func (r *FilePostgres) FindByID(ctx context.Context, id int64) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// ListByOwner returns the owner's files using LIMIT/OFFSET pagination and a total count.
func (r *FilePostgres) ListByOwner(ctx context.Context, ownerID int64, pq repository.PageQuery) (*repository.PageResult[model.File], error) {
	const qCount = `SELECT COUNT(*) FROM files WHERE owner_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, ownerID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `SELECT ` + fileColumns + ` FROM files
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, qList, ownerID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.File]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a file by ID. It does not return an error if the row does not exist.
func (r *FilePostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM files WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
