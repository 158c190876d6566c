package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/drivebox/internal/models"
	"github.com/desertthunder/drivebox/internal/shared"
)

var _ models.Repository[*models.Transfer] = (*TransferRepository)(nil)

// TransferRepository implements [models.Repository] for [models.Transfer] persistence.
type TransferRepository struct {
	db *sql.DB
}

// NewTransferRepository creates a new [TransferRepository] with the given database connection
func NewTransferRepository(db *sql.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

// Create inserts a new transfer into the database with generated ID and sequence
func (r *TransferRepository) Create(transfer *models.Transfer) error {
	sequence, err := NextSequence(r.db, "transfers")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	transfer.SetSequence(sequence)
	transfer.SetID(shared.GenerateID())

	if err := transfer.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO transfers (id, sequence, direction, file_id, file_name, mime_type, size_bytes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		transfer.ID(), sequence, string(transfer.Direction()),
		transfer.FileID(), transfer.FileName(), transfer.MimeType(), transfer.SizeBytes(),
		transfer.CreatedAt(), transfer.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert transfer: %w", err)
	}

	return nil
}

// Get retrieves a transfer by ID, excluding soft-deleted rows
func (r *TransferRepository) Get(id string) (*models.Transfer, error) {
	query := `
		SELECT id, sequence, direction, file_id, file_name, mime_type, size_bytes, created_at, updated_at, deleted_at
		FROM transfers
		WHERE id = ? AND deleted_at IS NULL
	`

	transfer, err := scanTransfer(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transfer not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer: %w", err)
	}

	return transfer, nil
}

// Update modifies an existing transfer in the database
func (r *TransferRepository) Update(transfer *models.Transfer) error {
	if err := transfer.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	transfer.SetUpdatedAt(now)

	query := `
		UPDATE transfers
		SET file_name = ?, mime_type = ?, size_bytes = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, transfer.FileName(), transfer.MimeType(), transfer.SizeBytes(), now, transfer.ID())
	if err != nil {
		return fmt.Errorf("failed to update transfer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transfer not found or already deleted: %s", transfer.ID())
	}

	return nil
}

// Delete soft-deletes a transfer by ID
func (r *TransferRepository) Delete(id string) error {
	query := `
		UPDATE transfers
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete transfer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transfer not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all transfers matching the given criteria, excluding soft-deleted rows.
//
// Supported criteria: "direction" (up|down), "file_id".
func (r *TransferRepository) List(criteria map[string]any) ([]*models.Transfer, error) {
	query := `
		SELECT id, sequence, direction, file_id, file_name, mime_type, size_bytes, created_at, updated_at, deleted_at
		FROM transfers
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if direction, ok := criteria["direction"].(string); ok && direction != "" {
		query += " AND direction = ?"
		args = append(args, direction)
	}
	if fileID, ok := criteria["file_id"].(string); ok && fileID != "" {
		query += " AND file_id = ?"
		args = append(args, fileID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var transfers []*models.Transfer
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, transfer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return transfers, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransfer(s scanner) (*models.Transfer, error) {
	var (
		id        string
		sequence  int
		direction string
		fileID    string
		fileName  string
		mimeType  string
		sizeBytes int64
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := s.Scan(&id, &sequence, &direction, &fileID, &fileName, &mimeType, &sizeBytes, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	transfer := models.NewTransfer(sequence, models.TransferDirection(direction), fileID, fileName, mimeType, sizeBytes)
	transfer.SetID(id)
	transfer.SetCreatedAt(createdAt)
	transfer.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		transfer.SetDeletedAt(&deletedAt.Time)
	}

	return transfer, nil
}
