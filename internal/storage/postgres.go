package storage

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/DropShort/Short-File-Service/internal/models"
	_ "github.com/lib/pq"
)

// PostgresStorage implements Storage on a PostgreSQL `file` table.
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage connects, verifies the connection and ensures the
// schema exists.
func NewPostgresStorage(connectionString string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	p := &PostgresStorage{db: db}

	if err := p.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	log.Println("Connected to PostgreSQL successfully")
	return p, nil
}

// createTables is idempotent; an already-created table is fine on restart.
func (p *PostgresStorage) createTables() error {
	query := `
    CREATE TABLE IF NOT EXISTS file (
        id BIGSERIAL PRIMARY KEY,
        filename TEXT NOT NULL,
        md5sum TEXT NOT NULL,
        expire BIGINT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_file_md5sum ON file(md5sum);
    `

	_, err := p.db.Exec(query)
	return err
}

func (p *PostgresStorage) InsertFile(filename, md5sum string, expire int64) (int64, error) {
	// Filename is base64-encoded at rest so arbitrary bytes survive the
	// round trip through the table.
	encoded := base64.StdEncoding.EncodeToString([]byte(filename))

	var id int64
	err := p.db.QueryRow(
		`INSERT INTO file (filename, md5sum, expire) VALUES ($1, $2, $3) RETURNING id`,
		encoded, md5sum, expire,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert file record: %v", err)
	}

	return id, nil
}

func (p *PostgresStorage) GetFileByID(id int64) (models.UploadRecord, bool) {
	return p.getFile(`SELECT id, filename, md5sum, expire FROM file WHERE id = $1`, id)
}

func (p *PostgresStorage) GetFileByHash(md5sum string) (models.UploadRecord, bool) {
	return p.getFile(`SELECT id, filename, md5sum, expire FROM file WHERE md5sum = $1 LIMIT 1`, md5sum)
}

func (p *PostgresStorage) getFile(query string, arg interface{}) (models.UploadRecord, bool) {
	var record models.UploadRecord
	var encoded string

	err := p.db.QueryRow(query, arg).Scan(
		&record.ID,
		&encoded,
		&record.MD5Sum,
		&record.Expire,
	)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("Error getting file record: %v", err)
		}
		return models.UploadRecord{}, false
	}

	filename, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		log.Printf("Error decoding stored filename for id %d: %v", record.ID, err)
		return models.UploadRecord{}, false
	}
	record.Filename = string(filename)

	return record, true
}

// Close releases the connection pool.
func (p *PostgresStorage) Close() error {
	return p.db.Close()
}
