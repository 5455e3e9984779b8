// Package blob stores file contents keyed by their MD5 hex digest.
package blob

import (
	"errors"
	"io"
)

// ErrNotFound is returned by Get when no blob exists for the hash.
var ErrNotFound = errors.New("blob not found")

// Store holds one immutable blob per distinct content. Put must never
// expose a partially written blob: implementations stage the bytes while
// hashing and publish with an atomic step.
type Store interface {
	// Put consumes r once and returns the content's MD5 hex digest.
	// created is false when a blob with that digest already exists; the
	// staged copy is discarded in that case.
	Put(r io.Reader) (md5sum string, created bool, err error)

	// Get returns the blob's bytes. The caller closes the stream.
	Get(md5sum string) (io.ReadCloser, error)
}
