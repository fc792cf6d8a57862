package service

import (
	"context"
	"strings"
	"time"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// FolderService creates folders.
type FolderService interface {
	Create(ctx context.Context, name string) (*model.Folder, error)
}

type folderService struct {
	folders repository.FolderRepository
}

// NewFolderService constructs a FolderService.
func NewFolderService(folders repository.FolderRepository) FolderService {
	return &folderService{folders: folders}
}

func (s *folderService) Create(ctx context.Context, name string) (*model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	return s.folders.Create(ctx, &model.Folder{Name: name, CreatedAt: time.Now().UTC()})
}
