package storage

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/DropShort/Short-File-Service/internal/models"
)

// LocalStorage implements Storage on an in-memory table persisted to a
// JSON file. Meant for development and tests; PostgresStorage is the
// production backend.
type LocalStorage struct {
	path string

	mu      sync.RWMutex
	records map[int64]localRecord
	nextID  int64
}

// localRecord mirrors the table row: the filename is kept base64-encoded
// on disk, same as the Postgres backend.
type localRecord struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	MD5Sum   string `json:"md5sum"`
	Expire   int64  `json:"expire"`
}

// NewLocalStorage loads existing metadata from path if present.
func NewLocalStorage(path string) (*LocalStorage, error) {
	l := &LocalStorage{
		path:    path,
		records: make(map[int64]localRecord),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("failed to read metadata file: %v", err)
	}

	stored := make(map[string]localRecord)
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse metadata file: %v", err)
	}

	for _, record := range stored {
		l.records[record.ID] = record
		if record.ID > l.nextID {
			l.nextID = record.ID
		}
	}

	return l, nil
}

func (l *LocalStorage) InsertFile(filename, md5sum string, expire int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID
	l.records[id] = localRecord{
		ID:       id,
		Filename: base64.StdEncoding.EncodeToString([]byte(filename)),
		MD5Sum:   md5sum,
		Expire:   expire,
	}

	if err := l.saveToFile(); err != nil {
		// Roll back the in-memory insert so memory and disk stay in sync.
		delete(l.records, id)
		l.nextID--
		return 0, fmt.Errorf("failed to persist metadata: %v", err)
	}

	return id, nil
}

func (l *LocalStorage) GetFileByID(id int64) (models.UploadRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	record, exists := l.records[id]
	if !exists {
		return models.UploadRecord{}, false
	}
	return decodeLocalRecord(record)
}

func (l *LocalStorage) GetFileByHash(md5sum string) (models.UploadRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, record := range l.records {
		if record.MD5Sum == md5sum {
			return decodeLocalRecord(record)
		}
	}
	return models.UploadRecord{}, false
}

func decodeLocalRecord(record localRecord) (models.UploadRecord, bool) {
	filename, err := base64.StdEncoding.DecodeString(record.Filename)
	if err != nil {
		return models.UploadRecord{}, false
	}
	return models.UploadRecord{
		ID:       record.ID,
		Filename: string(filename),
		MD5Sum:   record.MD5Sum,
		Expire:   record.Expire,
	}, true
}

// saveToFile writes the table to disk. Caller holds l.mu.
func (l *LocalStorage) saveToFile() error {
	stored := make(map[string]localRecord, len(l.records))
	for id, record := range l.records {
		stored[strconv.FormatInt(id, 10)] = record
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %v", err)
	}

	// Write to temporary file first for atomicity
	tempFile := l.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %v", err)
	}

	if err := os.Rename(tempFile, l.path); err != nil {
		return fmt.Errorf("failed to rename metadata file: %v", err)
	}

	return nil
}
