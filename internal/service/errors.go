package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("file not found")
	ErrForbidden           = errors.New("forbidden")
	ErrObjectNotFound      = errors.New("object not found")
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
	ErrTimeout             = errors.New("timed out opening object stream")
	ErrReaderNil           = errors.New("reader is nil")
	ErrFolderNotFound      = errors.New("folder not found")
	ErrNoFiles             = errors.New("no files found")
	ErrUserExists          = errors.New("user already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrInvalidInput        = errors.New("invalid input")
)

// RangeError reports an unsatisfiable range together with the object size,
// which the response needs for "Content-Range: bytes */size".
type RangeError struct {
	Total int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range not satisfiable for %d bytes", e.Total)
}

func (e *RangeError) Unwrap() error { return ErrRangeNotSatisfiable }
