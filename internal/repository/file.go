package repository

import (
	"context"

	"filevault/internal/model"
)

// FileRepository defines data access for file metadata using SQL queries only.
// No business logic here, only persistence operations.
type FileRepository interface {
	// Create inserts a new file record and returns it with database-assigned fields.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByKey returns the file stored under the given object key.
	FindByKey(ctx context.Context, key string) (*model.File, error)

	// FindByID returns a file by its numeric ID.
	FindByID(ctx context.Context, id int64) (*model.File, error)

	// ListByOwner returns one page of the owner's files and the owner's total file count.
	ListByOwner(ctx context.Context, ownerID int64, pq PageQuery) (*PageResult[model.File], error)

	// Delete removes a file record by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id int64) error
}

// UserRepository defines data access for user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// FolderRepository defines data access for folders.
type FolderRepository interface {
	Create(ctx context.Context, f *model.Folder) (*model.Folder, error)
	FindByID(ctx context.Context, id int64) (*model.Folder, error)
}
