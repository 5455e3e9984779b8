package handlers

import (
	"crypto/subtle"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/DropShort/Short-File-Service/internal/services/query"
	"github.com/gin-gonic/gin"
)

// Download handles GET /<short-token>, streaming the blob back as an
// attachment under its original filename.
func (h *Handler) Download(c *gin.Context) {
	token := c.Param("token")

	// GET on the secret upload path shows the upload prompt. Same
	// constant-time compare as the upload gate; a plain compare would
	// leak the secret's prefix through response timing.
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.UploadToken)) == 1 {
		c.String(http.StatusOK, "upload file")
		return
	}

	rc, record, err := h.Retriever.Retrieve(token)
	if err != nil {
		if errors.Is(err, query.ErrLinkNotFound) {
			c.String(http.StatusNotFound, "link does not exist")
			return
		}
		// ErrBlobMissing and read failures are server faults; the
		// integrity case is already logged by the retriever.
		log.Printf("download failed for token %s: %v", token, err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	defer rc.Close()

	c.Header("Content-Description", "File Transfer")
	// Quoted so spaces, semicolons and quotes in the original name don't
	// malform the header.
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(record.Filename))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, rc); err != nil {
		log.Printf("warning: failed to stream blob %s: %v", record.MD5Sum, err)
	}
}
