// Package media persists uploaded photos and generated code images and hands
// back root-relative paths (for example "/uploads/main_<token>.jpg") that the
// API layer later turns into absolute URLs.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"shop-inventory/internal/idgen"
)

// DefaultExtension is used when an uploaded file has no extension.
const DefaultExtension = ".jpg"

var (
	// ErrNotFound is returned by Open when no file exists at the path.
	ErrNotFound = errors.New("media: file not found")

	// ErrInvalidPath is returned for folders or paths that would leave the store root.
	ErrInvalidPath = errors.New("media: invalid path")
)

// Store defines the interface for media persistence.
type Store interface {
	// Save writes an uploaded file under folder using prefix, a random token
	// and the original extension, and returns "/folder/filename".
	Save(ctx context.Context, data []byte, originalFilename, folder, prefix string) (string, error)

	// Put writes data under folder with the exact filename and returns "/folder/filename".
	Put(ctx context.Context, data []byte, folder, filename string) (string, error)

	// Open returns a reader for the file at a root-relative path.
	Open(ctx context.Context, relPath string) (io.ReadCloser, error)

	// Remove deletes the file at a root-relative path. Missing files are not an error.
	Remove(ctx context.Context, relPath string) error
}

// UploadFilename builds prefix + token + extension for an uploaded file.
// Client filenames may carry either slash style, so only the last element
// contributes the extension.
func UploadFilename(originalFilename, prefix string) string {
	base := originalFilename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	ext := filepath.Ext(base)
	if ext == "" || ext == "." {
		ext = DefaultExtension
	}
	return prefix + idgen.NewFileToken() + ext
}

// RelativePath joins folder and filename into a root-relative path.
func RelativePath(folder, filename string) string {
	return "/" + folder + "/" + filename
}

// validateSegment rejects anything that is not a single, plain path element.
func validateSegment(kind, s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("%w: %s %q", ErrInvalidPath, kind, s)
	}
	return nil
}

// cleanRelative normalises a root-relative path and strips the leading slash.
// path.Clean on a rooted path drops any ".." that would climb above the root.
func cleanRelative(relPath string) (string, error) {
	cleaned := strings.TrimPrefix(path.Clean("/"+relPath), "/")
	if cleaned == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, relPath)
	}
	return cleaned, nil
}
