package model

import "time"

// File is the metadata record of an uploaded object.
// Key is the opaque object-store identifier and is unique across all files.
type File struct {
	ID           int64     `json:"id"`
	Key          string    `json:"key"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	OwnerID      int64     `json:"ownerId"`
	FolderID     *int64    `json:"folderId"`
	IsUnsafe     bool      `json:"isUnsafe"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Folder groups files. Folders are not owned by a user.
type Folder struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// FileRef identifies a file either by its object key or by its numeric id.
// Exactly one of the two is set.
type FileRef struct {
	Key string
	ID  int64
}

// RefByKey builds a key reference.
func RefByKey(key string) FileRef { return FileRef{Key: key} }

// RefByID builds an id reference.
func RefByID(id int64) FileRef { return FileRef{ID: id} }

// IsKey reports whether the reference is an object key.
func (r FileRef) IsKey() bool { return r.Key != "" }
