package models

import (
	"fmt"
	"time"
)

// TransferDirection distinguishes uploads from downloads in the ledger.
type TransferDirection string

const (
	TransferUp   TransferDirection = "up"
	TransferDown TransferDirection = "down"
)

var _ Model = (*Transfer)(nil)

// Transfer records one completed upload or download against the remote store.
// Rows are audit data only: no grant material, no file content.
type Transfer struct {
	id        string
	sequence  int
	direction TransferDirection
	fileID    string
	fileName  string
	mimeType  string
	sizeBytes int64
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewTransfer creates a Transfer with creation timestamps set to now.
// The ID is assigned by the repository on Create.
func NewTransfer(sequence int, direction TransferDirection, fileID, fileName, mimeType string, sizeBytes int64) *Transfer {
	now := time.Now()
	return &Transfer{
		sequence:  sequence,
		direction: direction,
		fileID:    fileID,
		fileName:  fileName,
		mimeType:  mimeType,
		sizeBytes: sizeBytes,
		createdAt: now,
		updatedAt: now,
	}
}

func (t *Transfer) ID() string                   { return t.id }
func (t *Transfer) Sequence() int                { return t.sequence }
func (t *Transfer) Direction() TransferDirection { return t.direction }
func (t *Transfer) FileID() string               { return t.fileID }
func (t *Transfer) FileName() string             { return t.fileName }
func (t *Transfer) MimeType() string             { return t.mimeType }
func (t *Transfer) SizeBytes() int64             { return t.sizeBytes }
func (t *Transfer) CreatedAt() time.Time         { return t.createdAt }
func (t *Transfer) UpdatedAt() time.Time         { return t.updatedAt }
func (t *Transfer) DeletedAt() *time.Time        { return t.deletedAt }

func (t *Transfer) SetID(id string)            { t.id = id }
func (t *Transfer) SetSequence(sequence int)   { t.sequence = sequence }
func (t *Transfer) SetCreatedAt(ts time.Time)  { t.createdAt = ts }
func (t *Transfer) SetUpdatedAt(ts time.Time)  { t.updatedAt = ts }
func (t *Transfer) SetDeletedAt(ts *time.Time) { t.deletedAt = ts }

// Validate checks that the transfer describes a real remote operation.
func (t *Transfer) Validate() error {
	switch t.direction {
	case TransferUp, TransferDown:
	default:
		return fmt.Errorf("invalid transfer direction: %q", t.direction)
	}
	if t.fileID == "" {
		return fmt.Errorf("transfer requires a remote file id")
	}
	if t.fileName == "" {
		return fmt.Errorf("transfer requires a file name")
	}
	if t.sizeBytes < 0 {
		return fmt.Errorf("transfer size cannot be negative: %d", t.sizeBytes)
	}
	return nil
}
