package index

import (
	"fmt"
	"strings"
)

// FileRecord is one regular file discovered under the archive root. Path is
// relative to the root and slash separated.
type FileRecord struct {
	Path string
	Size int64
}

// SymlinkPolicy selects how the walker treats symbolic links.
type SymlinkPolicy string

const (
	// SymlinkSkip ignores every symbolic link.
	SymlinkSkip SymlinkPolicy = "skip"
	// SymlinkFollow yields links that resolve to regular files. Links to
	// directories are never descended.
	SymlinkFollow SymlinkPolicy = "follow"
)

// ParseSymlinkPolicy accepts "skip" or "follow" in any case.
func ParseSymlinkPolicy(s string) (SymlinkPolicy, error) {
	switch p := SymlinkPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", SymlinkSkip:
		return SymlinkSkip, nil
	case SymlinkFollow:
		return SymlinkFollow, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSymlinkPolicy, s)
	}
}

type Options struct {
	Symlinks SymlinkPolicy
	// Exclude drops matching files and directories.
	Exclude *Matcher
	// Skip holds exact relative paths that are never yielded, such as the
	// manifest being written into the archive itself.
	Skip map[string]struct{}
}

// WalkError reports a directory or entry that could not be read. The subtree
// below it is skipped.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("walk %s: %v", e.Path, e.Err)
}

func (e *WalkError) Unwrap() error { return e.Err }
