package storage

import "github.com/DropShort/Short-File-Service/internal/models"

// Storage is the metadata table behind short links. Implementations must
// assign strictly increasing ids and must be safe for concurrent use.
type Storage interface {
	// InsertFile appends a new record and returns its id. Ids start at 1
	// and are never reused.
	InsertFile(filename, md5sum string, expire int64) (int64, error)

	// GetFileByID returns the record for a decoded short token.
	GetFileByID(id int64) (models.UploadRecord, bool)

	// GetFileByHash returns any record already covering this content.
	// Uploads use it to refuse re-registering known content.
	GetFileByHash(md5sum string) (models.UploadRecord, bool)
}
