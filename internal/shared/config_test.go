package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("parses a full config", func(t *testing.T) {
		path := writeTempConfig(t, `
[credentials.google]
client_id = "cid"
client_secret = "secret"
redirect_uri = "http://localhost:3000/auth/google/callback"
scopes = ["https://www.googleapis.com/auth/drive.file"]

[database]
path = "drivebox.db"
max_open_conns = 5
max_idle_conns = 2

[server]
host = "0.0.0.0"
port = 3000
rate_limit = 10.0

[uploads]
max_body_mb = 25
default_mime_type = "image/jpeg"
`)

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.Credentials.Google.ClientID != "cid" {
			t.Errorf("expected client id cid, got %s", config.Credentials.Google.ClientID)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected port 3000, got %d", config.Server.Port)
		}
		if config.Server.RateLimit != 10.0 {
			t.Errorf("expected rate limit 10, got %f", config.Server.RateLimit)
		}
		if config.MaxBodyBytes() != 25<<20 {
			t.Errorf("expected 25 MB cap, got %d", config.MaxBodyBytes())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("invalid TOML", func(t *testing.T) {
		path := writeTempConfig(t, "not [valid toml")
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected a parse error")
		}
	})

	t.Run("environment overrides credentials", func(t *testing.T) {
		t.Setenv("GOOGLE_CLIENT_ID", "env-cid")
		t.Setenv("GOOGLE_CLIENT_SECRET", "env-secret")
		t.Setenv("GOOGLE_REDIRECT_URI", "http://example.com/cb")

		path := writeTempConfig(t, `
[credentials.google]
client_id = "file-cid"
client_secret = "file-secret"
`)

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Credentials.Google.ClientID != "env-cid" {
			t.Errorf("expected the environment to win, got %s", config.Credentials.Google.ClientID)
		}
		if config.Credentials.Google.RedirectURI != "http://example.com/cb" {
			t.Errorf("expected the environment redirect, got %s", config.Credentials.Google.RedirectURI)
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Server.Port == 0 {
		t.Error("expected a default port")
	}
	if config.Database.Path == "" {
		t.Error("expected a default database path")
	}
	if config.MaxBodyBytes() <= 0 {
		t.Error("expected a positive upload cap")
	}
}

func TestMaxBodyBytes(t *testing.T) {
	var config Config
	if config.MaxBodyBytes() != 50<<20 {
		t.Errorf("expected the 50 MB default, got %d", config.MaxBodyBytes())
	}

	config.Uploads.MaxBodyMB = 2
	if config.MaxBodyBytes() != 2<<20 {
		t.Errorf("expected 2 MB, got %d", config.MaxBodyBytes())
	}
}

func TestCreateConfigFile(t *testing.T) {
	t.Run("writes the example config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read created config: %v", err)
		}
		if !strings.Contains(string(data), "[credentials.google]") {
			t.Error("expected the example config contents")
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		path := writeTempConfig(t, "# existing")
		if err := CreateConfigFile(path); err == nil {
			t.Error("expected an error for an existing file")
		}
	})
}
