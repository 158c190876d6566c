package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/drivebox/internal/auth"
	"github.com/desertthunder/drivebox/internal/models"
	"github.com/desertthunder/drivebox/internal/services"
	"github.com/desertthunder/drivebox/internal/shared"
)

// FilesHandler serves the file proxy endpoints: upload, list, download,
// transfer history, and health.
type FilesHandler struct {
	storage   services.StorageService
	store     auth.Store
	transfers models.Repository[*models.Transfer]
	logger    *log.Logger
	maxBody   int64
}

// FilesHandlerOpts contains configuration options for creating a FilesHandler.
type FilesHandlerOpts struct {
	Storage   services.StorageService
	Store     auth.Store
	Transfers models.Repository[*models.Transfer] // optional; nil disables the ledger
	Logger    *log.Logger
	MaxBody   int64 // maximum upload body bytes; defaults to 50 MB
}

// NewFilesHandler creates a FilesHandler.
func NewFilesHandler(opts FilesHandlerOpts) *FilesHandler {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = 50 << 20
	}
	return &FilesHandler{
		storage:   opts.Storage,
		store:     opts.Store,
		transfers: opts.Transfers,
		logger:    opts.Logger,
		maxBody:   opts.MaxBody,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *FilesHandler) Routes() []string {
	return []string{
		"POST /upload",
		"GET /list",
		"GET /download/{fileId}",
		"GET /history",
		"GET /health",
	}
}

// ServeHTTP dispatches to the operation matching the request path.
func (h *FilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/upload":
		h.upload(w, r)
	case r.URL.Path == "/list":
		h.list(w, r)
	case r.PathValue("fileId") != "":
		h.download(w, r)
	case r.URL.Path == "/history":
		h.history(w, r)
	case r.URL.Path == "/health":
		h.health(w, r)
	default:
		http.NotFound(w, r)
	}
}

// upload accepts a JSON body {name, content} with base64 content and proxies
// it to the remote store. 200 {id} on success.
func (h *FilesHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req models.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "Upload body too large.")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	if req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "A file name is required.")
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Content must be base64 encoded.")
		return
	}

	file, err := h.storage.Upload(r.Context(), req.Name, content)
	if err != nil {
		h.writeGatewayError(w, err, "Failed to upload the file.")
		return
	}

	h.record(models.TransferUp, file.ID, file.Name, services.InferMimeType(req.Name, ""), int64(len(content)))
	writeJSON(w, http.StatusOK, map[string]string{"id": file.ID})
}

// list returns remote files matching the default MIME filter, in remote order.
func (h *FilesHandler) list(w http.ResponseWriter, r *http.Request) {
	files, err := h.storage.List(r.Context())
	if err != nil {
		h.writeGatewayError(w, err, "Failed to list files.")
		return
	}

	if files == nil {
		files = []models.RemoteFile{}
	}
	writeJSON(w, http.StatusOK, files)
}

// download streams the remote file to the client without buffering it.
//
// All error responses are decided before the first body byte; a failure
// mid-copy aborts the connection so the client never sees a truncated body
// dressed up as success.
func (h *FilesHandler) download(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("fileId")

	stream, err := h.storage.Download(r.Context(), fileID)
	if err != nil {
		status := errorStatus(err)
		h.logger.Warn("download rejected", "file_id", fileID, "status", status)
		http.Error(w, "Download error.", status)
		return
	}
	defer stream.Body.Close()

	if stream.ContentType != "" {
		w.Header().Set("Content-Type", stream.ContentType)
	}

	written, err := io.Copy(w, stream.Body)
	if err != nil {
		// Headers are already committed; drop the connection instead of
		// appending an error to a half-written body.
		h.logger.Error("download stream interrupted", "file_id", fileID, "written", written, "error", err)
		panic(http.ErrAbortHandler)
	}

	h.record(models.TransferDown, fileID, fileID, stream.ContentType, written)
}

// history returns the recorded transfer ledger, newest rows last.
func (h *FilesHandler) history(w http.ResponseWriter, r *http.Request) {
	if h.transfers == nil {
		writeJSON(w, http.StatusOK, []transferJSON{})
		return
	}

	criteria := map[string]any{}
	if d := r.URL.Query().Get("direction"); d != "" {
		criteria["direction"] = d
	}

	rows, err := h.transfers.List(criteria)
	if err != nil {
		h.logger.Error("history query failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to read transfer history.")
		return
	}

	out := make([]transferJSON, 0, len(rows))
	for _, t := range rows {
		out = append(out, newTransferJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// health reports liveness and whether a grant is currently held.
func (h *FilesHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"authenticated": h.store.Authenticated(),
	})
}

// record appends a row to the transfer ledger. Best-effort: a ledger failure
// never fails the proxied operation.
func (h *FilesHandler) record(direction models.TransferDirection, fileID, fileName, mimeType string, size int64) {
	if h.transfers == nil {
		return
	}

	transfer := models.NewTransfer(0, direction, fileID, fileName, mimeType, size)
	if err := h.transfers.Create(transfer); err != nil {
		h.logger.Warn("failed to record transfer", "direction", direction, "file_id", fileID, "error", err)
	}
}

// writeGatewayError maps a gateway failure onto the HTTP surface with a JSON body.
func (h *FilesHandler) writeGatewayError(w http.ResponseWriter, err error, fallback string) {
	status := errorStatus(err)
	switch status {
	case http.StatusUnauthorized:
		writeJSONError(w, status, "Not authorized. Please authenticate again.")
	case http.StatusNotFound:
		writeJSONError(w, status, "File not found.")
	default:
		h.logger.Error("gateway call failed", "error", err)
		writeJSONError(w, status, fallback)
	}
}

// errorStatus translates the service error taxonomy to HTTP status codes.
// Missing and expired grants map to 401 so clients know to re-authenticate.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// transferJSON is the wire shape of a ledger row.
type transferJSON struct {
	ID        string `json:"id"`
	Direction string `json:"direction"`
	FileID    string `json:"file_id"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	CreatedAt string `json:"created_at"`
}

func newTransferJSON(t *models.Transfer) transferJSON {
	return transferJSON{
		ID:        t.ID(),
		Direction: string(t.Direction()),
		FileID:    t.FileID(),
		FileName:  t.FileName(),
		MimeType:  t.MimeType(),
		SizeBytes: t.SizeBytes(),
		CreatedAt: t.CreatedAt().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
