package formatter

import (
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/drivebox/internal/models"
	testutil "github.com/desertthunder/drivebox/internal/testing"
)

var sampleFiles = []models.RemoteFile{
	{ID: "f1", Name: "vacation.jpg"},
	{ID: "f2", Name: "clip.mp4"},
}

func sampleTransfers() []*models.Transfer {
	up := models.NewTransfer(1, models.TransferUp, "f1", "vacation.jpg", "image/jpeg", 2048)
	up.SetID("t1")
	down := models.NewTransfer(2, models.TransferDown, "f2", "clip.mp4", "video/mp4", 5<<20)
	down.SetID("t2")
	return []*models.Transfer{up, down}
}

func TestFilesToCSV(t *testing.T) {
	data, err := FilesToCSV(sampleFiles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "ID" || records[1][1] != "vacation.jpg" {
		t.Errorf("unexpected records: %v", records)
	}
}

func TestTransfersToCSV(t *testing.T) {
	data, err := TransfersToCSV(sampleTransfers())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[1][1] != "up" || records[2][1] != "down" {
		t.Errorf("unexpected directions: %v, %v", records[1], records[2])
	}
	if records[2][5] != "5242880" {
		t.Errorf("expected the raw byte count, got %s", records[2][5])
	}
}

func TestFilesToMarkdown(t *testing.T) {
	data, err := FilesToMarkdown("", sampleFiles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := string(data)
	if !strings.HasPrefix(out, "# Remote Files") {
		t.Errorf("expected the default title, got %q", out)
	}
	if !strings.Contains(out, "clip.mp4") || !strings.Contains(out, "`f2`") {
		t.Errorf("expected file entries, got %q", out)
	}
}

func TestTransfersToMarkdown(t *testing.T) {
	data, err := TransfersToMarkdown(sampleTransfers())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := string(data)
	if !strings.Contains(out, "↑ vacation.jpg") {
		t.Errorf("expected an upload arrow, got %q", out)
	}
	if !strings.Contains(out, "↓ clip.mp4") {
		t.Errorf("expected a download arrow, got %q", out)
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 << 20, "5.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}

	for _, tc := range cases {
		if got := FormatSize(tc.bytes); got != tc.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("writes the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "export.csv")
		if err := WriteExport(path, []byte("a,b\n")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := testutil.MustReadFile(t, path); got != "a,b\n" {
			t.Errorf("unexpected contents: %q", got)
		}
	})

	t.Run("requires a path", func(t *testing.T) {
		if err := WriteExport("", []byte("x")); err == nil {
			t.Error("expected an error for an empty path")
		}
	})
}
