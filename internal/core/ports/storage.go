package ports

import (
	"context"
	"io"

	"github.com/concernrise/concern-backend/internal/core/domain"
)

// UploadedFile describes one incoming file before it is persisted.
type UploadedFile struct {
	OriginalName string
	ContentType  string
	Size         int64
	Content      io.Reader
}

// FileStore defines the port for persisting uploaded attachments.
type FileStore interface {
	Save(ctx context.Context, file UploadedFile) (*domain.Attachment, error)
	Remove(ctx context.Context, filename string) error
}
