// package models defines the data model for the drive proxy web service
package models

import (
	"io"
	"time"
)

// Model defines the base interface for all persistent models in the drive proxy service.
// Implementations include Transfer.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// RemoteFile represents file metadata reported by the remote storage API.
// Read-through data: the remote service owns it, this service never mutates it.
type RemoteFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UploadRequest is the JSON body of an inbound upload.
// Content is base64-encoded on the wire.
type UploadRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// FileStream is a lazy download body. Finite, not restartable.
// The consumer owns Body and must close it.
type FileStream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}
