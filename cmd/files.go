package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/drivebox/internal/formatter"
	"github.com/desertthunder/drivebox/internal/models"
	"github.com/desertthunder/drivebox/internal/services"
	"github.com/urfave/cli/v3"
)

// FilesList fetches the remote file listing and renders it.
func (r *Runner) FilesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}
	if err := r.ensureAuthenticated(ctx); err != nil {
		return err
	}

	storage, err := r.ensureStorage()
	if err != nil {
		return err
	}

	files, err := storage.List(ctx, services.ListedMimeTypes...)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(files, cmd.Bool("pretty"))
	}

	if format := cmd.String("format"); format != "" {
		var data []byte
		switch strings.ToLower(format) {
		case "csv":
			data, err = formatter.FilesToCSV(files)
		case "md", "markdown":
			data, err = formatter.FilesToMarkdown("Remote Files", files)
		case "text", "txt":
			data, err = formatter.FilesToText(files)
		default:
			return fmt.Errorf("unknown format: %s (expected csv, md or text)", format)
		}
		if err != nil {
			return err
		}

		if output := cmd.String("output"); output != "" {
			if err := formatter.WriteExport(output, data); err != nil {
				return err
			}
			return r.writePlain("✓ Wrote %d files to %s\n", len(files), output)
		}
		return r.writePlain("%s", data)
	}

	if len(files) == 0 {
		return r.writePlainln("No files found.")
	}
	for i, file := range files {
		if err := r.writePlain("%d. %s [%s]\n", i+1, file.Name, file.ID); err != nil {
			return err
		}
	}
	return nil
}

// FilesUpload sends a local file to the remote store.
func (r *Runner) FilesUpload(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("usage: drivebox files upload <path>")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	name := cmd.String("name")
	if name == "" {
		name = filepath.Base(path)
	}

	if err := r.ensureAuthenticated(ctx); err != nil {
		return err
	}

	storage, err := r.ensureStorage()
	if err != nil {
		return err
	}

	file, err := storage.Upload(ctx, name, content)
	if err != nil {
		return err
	}

	mime := services.InferMimeType(name, r.config.Uploads.DefaultMimeType)
	r.recordTransfer(models.TransferUp, file.ID, file.Name, mime, int64(len(content)))

	return r.writePlain("✓ Uploaded %s (%s)\n", file.Name, file.ID)
}

// FilesDownload streams a remote file to disk.
func (r *Runner) FilesDownload(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	fileID := cmd.StringArg("id")
	if fileID == "" {
		return fmt.Errorf("usage: drivebox files download <id>")
	}

	if err := r.ensureAuthenticated(ctx); err != nil {
		return err
	}

	storage, err := r.ensureStorage()
	if err != nil {
		return err
	}

	stream, err := storage.Download(ctx, fileID)
	if err != nil {
		return err
	}
	defer stream.Body.Close()

	output := cmd.String("output")
	if output == "" {
		output = fileID
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}

	written, err := io.Copy(f, stream.Body)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(output)
		return fmt.Errorf("download interrupted: %w", err)
	}

	r.recordTransfer(models.TransferDown, fileID, filepath.Base(output), stream.ContentType, written)

	return r.writePlain("✓ Saved %s (%s)\n", output, formatter.FormatSize(written))
}

// HistoryList renders recorded transfers from the ledger.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	repo, err := r.openLedger()
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if direction := cmd.String("direction"); direction != "" {
		criteria["direction"] = direction
	}

	transfers, err := repo.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		records := make([]map[string]any, 0, len(transfers))
		for _, t := range transfers {
			records = append(records, map[string]any{
				"id":         t.ID(),
				"direction":  t.Direction(),
				"file_id":    t.FileID(),
				"file_name":  t.FileName(),
				"mime_type":  t.MimeType(),
				"size_bytes": t.SizeBytes(),
				"created_at": t.CreatedAt(),
			})
		}
		return r.writeJSON(records, cmd.Bool("pretty"))
	}

	if len(transfers) == 0 {
		return r.writePlainln("No transfers recorded.")
	}
	for i, t := range transfers {
		arrow := "↑"
		if t.Direction() == models.TransferDown {
			arrow = "↓"
		}
		if err := r.writePlain("%d. %s %s (%s, %s)\n", i+1, arrow, t.FileName(),
			t.MimeType(), formatter.FormatSize(t.SizeBytes())); err != nil {
			return err
		}
	}
	return nil
}

// HistoryExport writes the transfer ledger to a file.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	repo, err := r.openLedger()
	if err != nil {
		return err
	}

	transfers, err := repo.List(nil)
	if err != nil {
		return err
	}

	var data []byte
	format := strings.ToLower(cmd.String("format"))
	switch format {
	case "csv":
		data, err = formatter.TransfersToCSV(transfers)
	case "md", "markdown":
		data, err = formatter.TransfersToMarkdown(transfers)
	default:
		return fmt.Errorf("unknown format: %s (expected csv or md)", format)
	}
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		output = "transfers." + format
	}

	if err := formatter.WriteExport(output, data); err != nil {
		return err
	}
	return r.writePlain("✓ Exported %d transfers to %s\n", len(transfers), output)
}

// recordTransfer writes a ledger row for a completed CLI transfer.
// Ledger failures never fail the transfer itself.
func (r *Runner) recordTransfer(direction models.TransferDirection, fileID, fileName, mimeType string, size int64) {
	repo, err := r.openLedger()
	if err != nil {
		r.logger.Warn("transfer ledger unavailable", "error", err)
		return
	}

	transfer := models.NewTransfer(0, direction, fileID, fileName, mimeType, size)
	if err := repo.Create(transfer); err != nil {
		r.logger.Warn("failed to record transfer", "error", err)
	}
}
