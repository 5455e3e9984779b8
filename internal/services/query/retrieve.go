// Package query implements the retrieval pipeline.
package query

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/DropShort/Short-File-Service/internal/base62"
	"github.com/DropShort/Short-File-Service/internal/blob"
	"github.com/DropShort/Short-File-Service/internal/models"
	"github.com/DropShort/Short-File-Service/internal/services"
	"github.com/DropShort/Short-File-Service/internal/storage"
)

// ErrLinkNotFound covers malformed tokens and tokens with no record; the
// caller is told the same thing either way.
var ErrLinkNotFound = errors.New("link does not exist")

// ErrBlobMissing means a record exists but its blob does not. That is
// storage/metadata drift, not a user error, and gets its own log line.
var ErrBlobMissing = errors.New("blob missing for existing record")

// Retriever resolves a short token back to the stored bytes and the
// original filename. Events may be nil.
type Retriever struct {
	Storage storage.Storage
	Blobs   blob.Store
	Events  *services.EventPublisher
}

// Retrieve returns the blob stream and its record. The caller closes the
// stream.
func (q *Retriever) Retrieve(token string) (io.ReadCloser, models.UploadRecord, error) {
	id, err := base62.Decode(token)
	if err != nil {
		return nil, models.UploadRecord{}, ErrLinkNotFound
	}

	record, exists := q.Storage.GetFileByID(id)
	if !exists {
		return nil, models.UploadRecord{}, ErrLinkNotFound
	}

	rc, err := q.Blobs.Get(record.MD5Sum)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			log.Printf("[INTEGRITY] record %d references missing blob %s", record.ID, record.MD5Sum)
			return nil, models.UploadRecord{}, ErrBlobMissing
		}
		return nil, models.UploadRecord{}, fmt.Errorf("failed to read blob: %v", err)
	}

	if err := q.Events.PublishEvent("links.downloaded", map[string]interface{}{
		"id":     record.ID,
		"token":  token,
		"md5sum": record.MD5Sum,
	}); err != nil {
		log.Printf("warning: failed to publish links.downloaded event: %v", err)
	}

	return rc, record, nil
}
