package digest

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	ErrEmptyBuffer          = errors.New("read buffer must not be empty")
)

// ErrorKind classifies why a file could not be hashed.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindOther            ErrorKind = "other"
)

// FileError is returned by HashFile when a file cannot be opened or read.
type FileError struct {
	Path string
	Kind ErrorKind
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Classify maps an I/O error onto an ErrorKind.
func Classify(err error) ErrorKind {
	var fe *FileError
	switch {
	case errors.As(err, &fe):
		return fe.Kind
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied
	default:
		return KindOther
	}
}

func fileError(path string, err error) *FileError {
	return &FileError{Path: path, Kind: Classify(err), Err: err}
}
