// Package command implements the upload pipeline.
package command

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/DropShort/Short-File-Service/internal/base62"
	"github.com/DropShort/Short-File-Service/internal/blob"
	"github.com/DropShort/Short-File-Service/internal/services"
	"github.com/DropShort/Short-File-Service/internal/storage"
)

// ErrFileExists is returned when the uploaded content is already stored.
// Dedup is record-granular: known content gets no second record and no
// second link, even under a different filename or expiry.
var ErrFileExists = errors.New("file exists")

// DefaultExpireDays applies when the client sends no expiry.
const DefaultExpireDays = 1

// Uploader runs the upload pipeline: store the bytes, register a record,
// hand back a short link. Events and Scanner may be nil.
type Uploader struct {
	Storage storage.Storage
	Blobs   blob.Store
	Events  *services.EventPublisher
	Scanner *services.Scanner

	// Host is the public prefix the short token is appended to.
	Host string

	// mu serializes the known-content check against the insert, so of two
	// concurrent identical uploads exactly one gets a record.
	mu sync.Mutex
}

// Upload consumes r once and returns the full short link. expireDays <= 0
// falls back to DefaultExpireDays.
func (u *Uploader) Upload(r io.Reader, filename string, expireDays int) (string, error) {
	md5sum, created, err := u.Blobs.Put(r)
	if err != nil {
		return "", fmt.Errorf("failed to store upload: %v", err)
	}

	// The blob store already held this content.
	if !created {
		return "", ErrFileExists
	}

	if expireDays <= 0 {
		expireDays = DefaultExpireDays
	}
	expire := time.Now().Add(time.Duration(expireDays) * 24 * time.Hour).Unix()

	u.mu.Lock()
	if _, exists := u.Storage.GetFileByHash(md5sum); exists {
		// Lost a race against an identical upload: the blob publish is
		// last-writer-wins (same bytes), the record is not.
		u.mu.Unlock()
		return "", ErrFileExists
	}

	id, err := u.Storage.InsertFile(filename, md5sum, expire)
	u.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to save file record: %v", err)
	}

	token := base62.Encode(id)

	if err := u.Events.PublishEvent("links.created", map[string]interface{}{
		"id":       id,
		"token":    token,
		"filename": filename,
		"md5sum":   md5sum,
		"expire":   expire,
	}); err != nil {
		log.Printf("warning: failed to publish links.created event: %v", err)
	}

	if u.Scanner != nil {
		go u.Scanner.ScanBlob(md5sum, filename)
	}

	return u.Host + token, nil
}
