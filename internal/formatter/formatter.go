// package formatter provides functions to export file listings and transfer history to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/drivebox/internal/models"
)

// FilesToCSV converts a remote file listing to CSV format with columns: ID, Name
func FilesToCSV(files []models.RemoteFile) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, file := range files {
		if err := writer.Write([]string{file.ID, file.Name}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TransfersToCSV converts the transfer ledger to CSV format with columns:
// ID, Direction, FileID, FileName, MimeType, SizeBytes, CreatedAt
func TransfersToCSV(transfers []*models.Transfer) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Direction", "FileID", "FileName", "MimeType", "SizeBytes", "CreatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, t := range transfers {
		record := []string{
			t.ID(),
			string(t.Direction()),
			t.FileID(),
			t.FileName(),
			t.MimeType(),
			strconv.FormatInt(t.SizeBytes(), 10),
			t.CreatedAt().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// FilesToMarkdown converts a remote file listing to a Markdown document
func FilesToMarkdown(title string, files []models.RemoteFile) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Remote Files"
	}

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Files**: %d\n\n", len(files)))

	for i, file := range files {
		buf.WriteString(fmt.Sprintf("%d. %s (`%s`)\n", i+1, file.Name, file.ID))
	}

	return buf.Bytes(), nil
}

// TransfersToMarkdown converts the transfer ledger to a Markdown document
func TransfersToMarkdown(transfers []*models.Transfer) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Transfer History\n\n")
	buf.WriteString(fmt.Sprintf("**Transfers**: %d\n\n", len(transfers)))

	for i, t := range transfers {
		arrow := "↑"
		if t.Direction() == models.TransferDown {
			arrow = "↓"
		}
		buf.WriteString(fmt.Sprintf("%d. %s %s (%s, %s) at %s\n",
			i+1, arrow, t.FileName(), t.MimeType(), FormatSize(t.SizeBytes()),
			t.CreatedAt().Format(time.RFC3339)))
	}

	return buf.Bytes(), nil
}

// FilesToText converts a remote file listing to plain text format
func FilesToText(files []models.RemoteFile) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Files: %d\n\n", len(files)))
	for i, file := range files {
		buf.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, file.Name, file.ID))
	}

	return buf.Bytes(), nil
}

// FormatSize renders a byte count in a human-readable unit.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// WriteExport writes formatted export data to the given path.
func WriteExport(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
