package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"leaddesk/internal/models"
)

// MaxAttachmentSize caps a single uploaded file.
const MaxAttachmentSize = 25 << 20

// URLPrefix is where the API serves stored attachments.
const URLPrefix = "/attachments/"

// SaveUploads stores each uploaded file and returns the attachment records to
// append to a lead or proposal.
func SaveUploads(ctx context.Context, store BlobStore, files []*multipart.FileHeader, uploadedBy string) ([]models.Attachment, error) {
	out := make([]models.Attachment, 0, len(files))
	for _, fh := range files {
		if fh.Size > MaxAttachmentSize {
			return nil, models.Invalid("files", "%s exceeds %d bytes", fh.Filename, MaxAttachmentSize)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, MaxAttachmentSize+1))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
		}
		if len(data) > MaxAttachmentSize {
			return nil, models.Invalid("files", "%s exceeds %d bytes", fh.Filename, MaxAttachmentSize)
		}

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}
		obj, err := store.Put(ctx, fh.Filename, contentType, data)
		if err != nil {
			return nil, fmt.Errorf("store upload %s: %w", fh.Filename, err)
		}
		out = append(out, models.Attachment{
			ID:         uuid.NewString(),
			Name:       fh.Filename,
			URL:        URLPrefix + obj.Key,
			Key:        obj.Key,
			SHA256:     obj.SHA256,
			Size:       obj.Size,
			Type:       obj.ContentType,
			UploadedAt: obj.UploadedAt,
			UploadedBy: uploadedBy,
		})
	}
	return out, nil
}
