package configuration

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
)

type Config struct {
	// SecretKey is the shared token gating the upload endpoint; it is the
	// first path segment of upload requests.
	SecretKey string

	// Host is the public prefix prepended to short tokens in responses,
	// e.g. "https://s.example.com/".
	Host string

	// UploadFolder is where the local blob backend keeps its files.
	UploadFolder string

	// MaxContentMB caps the accepted request body size.
	MaxContentMB int64

	// MetadataBackend is "postgres" or "local"; BlobBackend is "local" or
	// "minio".
	MetadataBackend string
	BlobBackend     string

	// MetadataFile backs the local metadata store.
	MetadataFile string

	Database DatabaseConfig
	MinIO    MinIOConfig
	Server   ServerConfig

	NATSURL   string
	CLAMAVURL string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
}

type ServerConfig struct {
	Port string
}

// Load builds the configuration once at startup. Values come from
// secrets.json when present; an environment variable with the same key
// always wins. Missing keys fall back to the defaults below.
func Load() (*Config, error) {
	secretsFile := os.Getenv("SECRETS_FILE")
	if secretsFile == "" {
		secretsFile = "secrets.json"
	}
	secrets, err := loadSecrets(secretsFile)
	if err != nil {
		return nil, err
	}

	get := func(key, defaultValue string) string {
		if value := os.Getenv(key); value != "" {
			return value
		}
		if value, ok := secrets[key]; ok && value != "" {
			return value
		}
		return defaultValue
	}

	maxContentMB, err := strconv.ParseInt(get("MAX_CONTENT_MB", "16"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_CONTENT_MB: %v", err)
	}

	secretKey := get("SECRET_KEY", "")
	if secretKey == "" {
		return nil, fmt.Errorf("set the SECRET_KEY environment variable")
	}

	return &Config{
		SecretKey:       secretKey,
		Host:            get("HOST", "http://localhost:5000/"),
		UploadFolder:    get("UPLOAD_FOLDER", "uploads"),
		MaxContentMB:    maxContentMB,
		MetadataBackend: get("METADATA_BACKEND", "local"),
		BlobBackend:     get("BLOB_BACKEND", "local"),
		MetadataFile:    get("METADATA_FILE", "file_metadata.json"),
		Database: DatabaseConfig{
			Host:     get("DB_HOST", "localhost"),
			Port:     get("DB_PORT", "5432"),
			User:     get("DB_USER", "fileuser"),
			Password: get("DB_PASSWORD", "filepassword"),
			DBName:   get("DB_NAME", "shortfile"),
			SSLMode:  get("DB_SSL_MODE", "disable"),
		},
		MinIO: MinIOConfig{
			Endpoint:   get("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:  get("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:  get("MINIO_SECRET_KEY", "minioadmin"),
			BucketName: get("MINIO_BUCKET", "blobs"),
			UseSSL:     get("MINIO_USE_SSL", "false") == "true",
		},
		Server: ServerConfig{
			Port: get("SERVER_PORT", "5000"),
		},
		NATSURL:   get("NATS_URL", ""),
		CLAMAVURL: get("CLAMAV_URL", ""),
	}, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// loadSecrets reads the secrets file. A missing file is fine; everything
// can come from the environment.
func loadSecrets(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read secrets file: %v", err)
	}

	// Tolerate non-string values (the original file kept numbers unquoted).
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse secrets file: %v", err)
	}

	secrets := make(map[string]string, len(raw))
	for key, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			secrets[key] = s
			continue
		}
		secrets[key] = string(value)
	}

	log.Printf("Loaded %d settings from %s", len(secrets), path)
	return secrets, nil
}
