// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/drivebox/internal/models"
	"github.com/desertthunder/drivebox/internal/shared"
)

// MockStorage is a configurable test double for services.StorageService.
//
// Unset function fields make the corresponding call succeed with zero values.
type MockStorage struct {
	UploadFunc   func(ctx context.Context, name string, content []byte) (*models.RemoteFile, error)
	ListFunc     func(ctx context.Context, mimeTypes ...string) ([]models.RemoteFile, error)
	DownloadFunc func(ctx context.Context, fileID string) (*models.FileStream, error)

	UploadCalls   int
	ListCalls     int
	DownloadCalls int
}

func (m *MockStorage) Upload(ctx context.Context, name string, content []byte) (*models.RemoteFile, error) {
	m.UploadCalls++
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, name, content)
	}
	return &models.RemoteFile{ID: "mock-id", Name: name}, nil
}

func (m *MockStorage) List(ctx context.Context, mimeTypes ...string) ([]models.RemoteFile, error) {
	m.ListCalls++
	if m.ListFunc != nil {
		return m.ListFunc(ctx, mimeTypes...)
	}
	return []models.RemoteFile{}, nil
}

func (m *MockStorage) Download(ctx context.Context, fileID string) (*models.FileStream, error) {
	m.DownloadCalls++
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, fileID)
	}
	return &models.FileStream{Body: io.NopCloser(&emptyReader{}), ContentType: "application/octet-stream", ContentLength: 0}, nil
}

func (m *MockStorage) Name() string { return "mock" }

type emptyReader struct{}

func (e *emptyReader) Read([]byte) (int, error) { return 0, io.EOF }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FailingReader errors partway through a read stream, after emitting prefix.
type FailingReader struct {
	Prefix []byte
	pos    int
}

func (f *FailingReader) Read(p []byte) (int, error) {
	if f.pos < len(f.Prefix) {
		n := copy(p, f.Prefix[f.pos:])
		f.pos += n
		return n, nil
	}
	return 0, errors.New("stream interrupted")
}

func (f *FailingReader) Close() error { return nil }

// NewTestDB opens a migrated in-memory database, closed on test cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Each sqlite in-memory connection is its own database; keep one.
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
