package blob

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStore keeps blobs as files named by their hash under dir. Writes
// are staged under dir/.staging and moved into place with os.Rename, so a
// concurrent reader never sees a truncated blob.
type LocalStore struct {
	dir        string
	stagingDir string
}

// NewLocalStore creates the storage and staging directories if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	stagingDir := filepath.Join(dir, ".staging")
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %v", err)
	}
	return &LocalStore{dir: dir, stagingDir: stagingDir}, nil
}

func (s *LocalStore) Put(r io.Reader) (string, bool, error) {
	stagingPath := filepath.Join(s.stagingDir, uuid.New().String())

	f, err := os.Create(stagingPath)
	if err != nil {
		return "", false, fmt.Errorf("failed to create staging file: %v", err)
	}

	// Hash while writing so the stream is consumed exactly once.
	h := md5.New()
	_, err = io.Copy(io.MultiWriter(f, h), r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(stagingPath)
		return "", false, fmt.Errorf("failed to write staging file: %v", err)
	}

	md5sum := hex.EncodeToString(h.Sum(nil))
	finalPath := filepath.Join(s.dir, md5sum)

	if _, err := os.Stat(finalPath); err == nil {
		// Known content; drop the staged copy. Two concurrent uploads of
		// new identical content can both miss this check and race on the
		// rename below; the content is byte-identical, so whichever copy
		// lands last is equivalent.
		os.Remove(stagingPath)
		return md5sum, false, nil
	}

	if err := os.Rename(stagingPath, finalPath); err != nil {
		os.Remove(stagingPath)
		return "", false, fmt.Errorf("failed to publish blob: %v", err)
	}

	return md5sum, true, nil
}

func (s *LocalStore) Get(md5sum string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, md5sum))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open blob: %v", err)
	}
	return f, nil
}
