package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/concernrise/concern-backend/internal/core/domain"
	"github.com/concernrise/concern-backend/internal/core/ports"
)

// LocalStore saves uploaded files on the local filesystem. Files are
// renamed to a random UUID so user-supplied names never touch the disk.
type LocalStore struct {
	dir string
}

var _ ports.FileStore = (*LocalStore)(nil)

// NewLocalStore creates the upload directory if needed and returns a store
// rooted at it.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Save(ctx context.Context, file ports.UploadedFile) (*domain.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := filepath.Ext(file.OriginalName)
	filename := uuid.NewString() + ext
	path := filepath.Join(s.dir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}

	written, err := io.Copy(dst, file.Content)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write upload file: %w", err)
	}

	return &domain.Attachment{
		Filename:     filename,
		OriginalName: file.OriginalName,
		Path:         "/uploads/" + filename,
		MimeType:     file.ContentType,
		Size:         written,
		UploadedAt:   time.Now().UTC(),
	}, nil
}

func (s *LocalStore) Remove(ctx context.Context, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Reject anything that resolves outside the upload directory.
	if filepath.Base(filename) != filename {
		return fmt.Errorf("invalid filename %q", filename)
	}

	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}

// Dir returns the root directory files are saved under.
func (s *LocalStore) Dir() string {
	return s.dir
}
