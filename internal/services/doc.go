// Package services defines the [StorageService] interface for remote file storage
// and its Google Drive implementation.
//
// # Gateway contract
//
// Every operation fails fast with [shared.ErrNotAuthenticated] when the
// credential store holds no grant: no remote call is ever attempted without
// one. When the remote API rejects a grant as expired or invalid, the error
// is mapped to [shared.ErrTokenExpired] so callers know to restart the
// authorization flow instead of retrying blindly.
//
// # Drive implementation
//
// [DriveService] delegates all wire-level work (request signing, refresh,
// resumable media upload) to google.golang.org/api/drive/v3. Listing follows
// nextPageToken across every page; download bodies are returned as streams
// and never buffered whole.
package services
