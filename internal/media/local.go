package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// localStore implements Store on the local file system.
type localStore struct {
	root   string
	logger zerolog.Logger
}

// NewLocalStore creates a file system store rooted at root. The folders are
// created up front so the first upload does not race on MkdirAll.
func NewLocalStore(root string, folders []string, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "local-media-store").Logger()

	for _, folder := range folders {
		if err := validateSegment("folder", folder); err != nil {
			return nil, err
		}
		dir := filepath.Join(root, folder)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error().Err(err).Str("dir", dir).Msg("failed to create media directory")
			return nil, fmt.Errorf("failed to create media directory %s: %w", dir, err)
		}
	}

	logger.Info().
		Str("root", root).
		Strs("folders", folders).
		Msg("local media store initialised")

	return &localStore{
		root:   root,
		logger: logger,
	}, nil
}

// Save writes an uploaded file with a generated name.
func (s *localStore) Save(ctx context.Context, data []byte, originalFilename, folder, prefix string) (string, error) {
	return s.Put(ctx, data, folder, UploadFilename(originalFilename, prefix))
}

// Put writes data to root/folder/filename.
func (s *localStore) Put(ctx context.Context, data []byte, folder, filename string) (string, error) {
	if err := validateSegment("folder", folder); err != nil {
		return "", err
	}
	if err := validateSegment("filename", filename); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory %s: %w", dir, err)
	}

	full := filepath.Join(dir, filename)
	if err := os.WriteFile(full, data, 0o644); err != nil {
		s.logger.Error().Err(err).Str("file", full).Msg("failed to write media file")
		return "", fmt.Errorf("failed to write media file %s: %w", full, err)
	}

	s.logger.Debug().
		Str("file", full).
		Int("bytes", len(data)).
		Msg("media file written")

	return RelativePath(folder, filename), nil
}

// Open opens the file behind a root-relative path.
func (s *localStore) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	full, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open media file %s: %w", full, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat media file %s: %w", full, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}

	return f, nil
}

// Remove deletes the file behind a root-relative path if it exists.
func (s *localStore) Remove(ctx context.Context, relPath string) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug().Str("file", full).Msg("media file already absent")
			return nil
		}
		s.logger.Error().Err(err).Str("file", full).Msg("failed to remove media file")
		return fmt.Errorf("failed to remove media file %s: %w", full, err)
	}

	s.logger.Debug().Str("file", full).Msg("media file removed")
	return nil
}

func (s *localStore) resolve(relPath string) (string, error) {
	cleaned, err := cleanRelative(relPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}
