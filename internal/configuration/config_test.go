package configuration

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSecrets(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write secrets: %v", err)
	}
	t.Setenv("SECRETS_FILE", path)
}

func TestLoadFromSecretsFile(t *testing.T) {
	writeSecrets(t, `{
		"SECRET_KEY": "s3cr3t",
		"HOST": "https://s.example.com/",
		"UPLOAD_FOLDER": "/var/uploads",
		"MAX_CONTENT_MB": 32
	}`)
	t.Setenv("SECRET_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.SecretKey != "s3cr3t" {
		t.Errorf("SecretKey = %q", cfg.SecretKey)
	}
	if cfg.Host != "https://s.example.com/" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.UploadFolder != "/var/uploads" {
		t.Errorf("UploadFolder = %q", cfg.UploadFolder)
	}
	if cfg.MaxContentMB != 32 {
		t.Errorf("MaxContentMB = %d", cfg.MaxContentMB)
	}
}

func TestEnvironmentOverridesSecretsFile(t *testing.T) {
	writeSecrets(t, `{"SECRET_KEY": "from-file", "HOST": "http://file/"}`)
	t.Setenv("SECRET_KEY", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.SecretKey != "from-env" {
		t.Errorf("SecretKey = %q, want env value", cfg.SecretKey)
	}
	if cfg.Host != "http://file/" {
		t.Errorf("Host = %q, want file value", cfg.Host)
	}
}

func TestMissingSecretKeyFails(t *testing.T) {
	t.Setenv("SECRETS_FILE", filepath.Join(t.TempDir(), "absent.json"))
	t.Setenv("SECRET_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without SECRET_KEY")
	}
}

func TestDefaults(t *testing.T) {
	t.Setenv("SECRETS_FILE", filepath.Join(t.TempDir(), "absent.json"))
	t.Setenv("SECRET_KEY", "k")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MaxContentMB != 16 {
		t.Errorf("default MaxContentMB = %d", cfg.MaxContentMB)
	}
	if cfg.MetadataBackend != "local" || cfg.BlobBackend != "local" {
		t.Errorf("default backends = %q/%q", cfg.MetadataBackend, cfg.BlobBackend)
	}
	if cfg.Server.Port != "5000" {
		t.Errorf("default port = %q", cfg.Server.Port)
	}
}
