package routes

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"leaddesk/internal/storage"
)

type AttachmentRoutes struct {
	server ServerInterface
}

func NewAttachmentRoutes(server ServerInterface) *AttachmentRoutes {
	return &AttachmentRoutes{server: server}
}

func (ar *AttachmentRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(ar.server)

	r.GET(strings.TrimSuffix(storage.URLPrefix, "/")+"/*key", middleware.AuthMiddleware(), ar.downloadHandler)
}

// downloadHandler serves a stored attachment after checking its content
// against the hash embedded in its key.
func (ar *AttachmentRoutes) downloadHandler(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" || strings.Contains(key, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attachment key"})
		return
	}

	res, err := ar.server.GetBlobStore().Get(c.Request.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		return
	}
	if err != nil {
		respondError(c, ar.server.Logger(), err)
		return
	}

	if parts := strings.SplitN(key, "/", 3); len(parts) == 3 {
		if err := storage.ValidateFileIntegrity(res.Data, parts[1]); err != nil {
			ar.server.Logger().ErrorContext(c.Request.Context(), "attachment integrity check failed", "key", key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Attachment is corrupted"})
			return
		}
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Content-Disposition", contentDisposition(contentType, path.Base(key)))
	c.Data(http.StatusOK, contentType, res.Data)
}

// inlineTypes may be shown in the browser; everything else is downloaded.
var inlineTypes = map[string]bool{
	"application/pdf": true,
	"image/gif":       true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"text/plain":      true,
}

func contentDisposition(contentType, name string) string {
	disposition := "attachment"
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && inlineTypes[mediaType] {
		disposition = "inline"
	}
	return mime.FormatMediaType(disposition, map[string]string{"filename": name})
}
