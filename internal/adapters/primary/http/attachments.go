package http

import (
	"fmt"
	"net/http"

	"github.com/concernrise/concern-backend/internal/core/domain"
	apperrors "github.com/concernrise/concern-backend/internal/core/errors"
	"github.com/concernrise/concern-backend/internal/core/ports"
)

// maxMultipartMemory bounds how much of a multipart body is held in memory;
// larger files spill to temp files.
const maxMultipartMemory = 10 << 20

// parseAttachments saves the uploaded files from the named multipart field
// and returns their attachment metadata. The request's multipart form must
// already be parsed.
func parseAttachments(r *http.Request, store ports.FileStore, field string, maxCount int, maxFileSize int64) ([]domain.Attachment, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, nil
	}

	if len(files) > maxCount {
		errs := apperrors.NewValidationErrors()
		errs.Add(field, fmt.Sprintf("At most %d attachments are allowed", maxCount))
		return nil, errs
	}

	attachments := make([]domain.Attachment, 0, len(files))
	for _, header := range files {
		if header.Size > maxFileSize {
			errs := apperrors.NewValidationErrors()
			errs.Add(field, fmt.Sprintf("File %q exceeds the maximum size of %d bytes", header.Filename, maxFileSize))
			return nil, errs
		}

		file, err := header.Open()
		if err != nil {
			return nil, apperrors.NewBadRequestError(err, "Failed to read uploaded file")
		}

		attachment, err := store.Save(r.Context(), ports.UploadedFile{
			OriginalName: header.Filename,
			ContentType:  header.Header.Get("Content-Type"),
			Size:         header.Size,
			Content:      file,
		})
		_ = file.Close()
		if err != nil {
			return nil, err
		}

		attachments = append(attachments, *attachment)
	}

	return attachments, nil
}
