package models

// UploadRecord is one row of the `file` table: it ties a short-link id to
// the uploaded file's original name, its content hash and an advisory
// expiration. Records are written once and never mutated or deleted.
type UploadRecord struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	MD5Sum   string `json:"md5sum"`
	Expire   int64  `json:"expire"` // epoch seconds; stored, not enforced
}
