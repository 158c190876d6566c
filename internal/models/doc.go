// Package models defines domain entities and persistence interfaces for the drivebox proxy service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing remote storage data
//   - [RemoteFile] : File metadata as reported by the remote storage API
//   - [UploadRequest] : An inbound upload request (name + base64-encoded content)
//   - [FileStream] : A lazy download body with its content metadata
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Transfer] : A recorded upload or download, kept as a local audit ledger
//
// Persistent entities implement the [Model] interface providing ID generation, timestamps, validation, and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
//
// Authorization grant material never appears in any persistent entity.
package models
