package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"filevault/internal/model"
	"filevault/internal/repository"
	"filevault/internal/storage"
)

// FileListResult is the service-level DTO for paginated files.
type FileListResult struct {
	Items []model.File `json:"data"`
	Total int          `json:"total"`
}

// UploadRequest describes one uploaded file.
type UploadRequest struct {
	Reader           io.Reader
	OriginalFilename string
	ContentType      string
	Size             int64
	FolderID         *int64
}

// FileService defines the file use cases outside the streaming path.
type FileService interface {
	// Upload stores the content under a generated key and records it for the owner.
	// The object is removed again if the record cannot be saved.
	Upload(ctx context.Context, owner model.Principal, req UploadRequest) (*model.File, error)

	// List returns the owner's files using limit/offset and a total count.
	List(ctx context.Context, owner model.Principal, limit, offset int) (*FileListResult, error)

	// MarkUnsafe deletes a file's object and record. Only admins may call it.
	MarkUnsafe(ctx context.Context, p model.Principal, key string) error
}

type fileService struct {
	store   storage.Storage
	files   repository.FileRepository
	users   repository.UserRepository
	folders repository.FolderRepository
	access  *AccessResolver
}

// NewFileService constructs a FileService. access may be nil; when set, its
// cache is invalidated for deleted files.
func NewFileService(store storage.Storage, files repository.FileRepository, users repository.UserRepository, folders repository.FolderRepository, access *AccessResolver) FileService {
	return &fileService{store: store, files: files, users: users, folders: folders, access: access}
}

func (s *fileService) Upload(ctx context.Context, owner model.Principal, req UploadRequest) (*model.File, error) {
	if req.Reader == nil {
		return nil, ErrReaderNil
	}

	if req.FolderID != nil {
		if _, err := s.folders.FindByID(ctx, *req.FolderID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrFolderNotFound
			}
			return nil, fmt.Errorf("find folder: %w", err)
		}
	}
	if _, err := s.users.FindByID(ctx, owner.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	// Object key is UUID + original extension
	key := uuid.New().String() + filepath.Ext(req.OriginalFilename)

	objInfo, err := s.store.Put(ctx, key, req.Reader, storage.PutObjectOptions{
		Size:        req.Size,
		ContentType: req.ContentType,
		Metadata: map[string]string{
			"original-filename": req.OriginalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	f := &model.File{
		Key:          key,
		OriginalName: req.OriginalFilename,
		MimeType:     req.ContentType,
		Size:         objInfo.Size,
		OwnerID:      owner.ID,
		FolderID:     req.FolderID,
		CreatedAt:    time.Now().UTC(),
	}
	stored, err := s.files.Create(ctx, f)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, errors.Join(
				fmt.Errorf("db save failed: %w", err),
				fmt.Errorf("rollback delete failed: %w", delErr),
			)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *fileService) List(ctx context.Context, owner model.Principal, limit, offset int) (*FileListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.files.ListByOwner(ctx, owner.ID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	if res.Total == 0 {
		return nil, ErrNoFiles
	}
	return &FileListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *fileService) MarkUnsafe(ctx context.Context, p model.Principal, key string) error {
	// Admin rights come from the user row, not from the token.
	u, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrForbidden
		}
		return fmt.Errorf("find user: %w", err)
	}
	if !u.IsAdmin {
		return ErrForbidden
	}

	f, err := s.files.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	// Delete from storage first; if this fails, keep the row so the object stays reachable
	if err := s.store.Delete(ctx, f.Key); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.files.Delete(ctx, f.ID); err != nil {
		return err
	}
	if s.access != nil {
		s.access.Invalidate(f)
	}
	return nil
}
