package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/drivebox/internal/shared"
	testutil "github.com/desertthunder/drivebox/internal/testing"
)

func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	config := shared.DefaultConfig()
	config.Credentials.Google.ClientID = "test-client"
	config.Credentials.Google.ClientSecret = "test-secret"
	config.Database.Path = filepath.Join(t.TempDir(), "test.db")
	return config
}

func TestNewRunner(t *testing.T) {
	t.Run("fills in defaults", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		if runner.config == nil {
			t.Error("expected a default config")
		}
		if runner.logger == nil {
			t.Error("expected a default logger")
		}
		if runner.store == nil {
			t.Error("expected a default credential store")
		}
		if runner.store.Authenticated() {
			t.Error("expected the default store to be empty")
		}
	})

	t.Run("registers all commands", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"serve", "auth", "files", "history", "setup", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("expected command %d to be %s, got %s", i, name, commands[i].Name)
			}
		}
	})
}

func TestEnsureFlow(t *testing.T) {
	t.Run("requires credentials", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Credentials.Google.ClientID = ""
		config.Credentials.Google.ClientSecret = ""
		runner := NewRunner(RunnerOpts{Config: config})

		if _, err := runner.ensureFlow(); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("builds and caches the flow", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Config: testConfig(t)})

		first, err := runner.ensureFlow()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := runner.ensureFlow()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first != second {
			t.Error("expected the flow to be cached")
		}
	})
}

func TestEnsureStorage(t *testing.T) {
	runner := NewRunner(RunnerOpts{Config: testConfig(t)})

	storage, err := runner.ensureStorage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storage.Name() != "Google Drive" {
		t.Errorf("expected the Drive gateway, got %s", storage.Name())
	}
}

func TestOpenLedger(t *testing.T) {
	runner := NewRunner(RunnerOpts{Config: testConfig(t)})

	repo, err := runner.openLedger()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer runner.db.Close()

	rows, err := repo.List(nil)
	if err != nil {
		t.Fatalf("expected a migrated ledger: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected an empty ledger, got %d rows", len(rows))
	}

	testutil.AssertFileExists(t, runner.config.Database.Path)
}

func TestRunnerOutput(t *testing.T) {
	t.Run("writes compact JSON", func(t *testing.T) {
		var buf bytes.Buffer
		runner := NewRunner(RunnerOpts{Output: &buf})

		if err := runner.writeJSON(map[string]string{"id": "f1"}, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != `{"id":"f1"}` {
			t.Errorf("unexpected output: %q", got)
		}
	})

	t.Run("writes indented JSON when pretty", func(t *testing.T) {
		var buf bytes.Buffer
		runner := NewRunner(RunnerOpts{Output: &buf})

		if err := runner.writeJSON(map[string]string{"id": "f1"}, true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Errorf("expected indented output, got %q", buf.String())
		}
	})

	t.Run("surfaces writer failures", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &testutil.FWriter{}})

		if err := runner.writePlainln("hello"); err == nil {
			t.Error("expected an error from a failing writer")
		}
	})
}
