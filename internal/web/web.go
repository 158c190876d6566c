// Package web serves the embedded static front-end for the drive proxy.
//
// The original deployment served a public/ directory next to the process;
// embedding the assets keeps the binary self-contained.
package web

import (
	_ "embed"
	"net/http"
)

//go:embed static/index.html
var indexHTML []byte

// StaticHandler serves the single-page front-end at the home surface.
type StaticHandler struct{}

// NewStaticHandler creates a StaticHandler.
func NewStaticHandler() *StaticHandler {
	return &StaticHandler{}
}

// Routes returns the HTTP routes this handler serves.
func (h *StaticHandler) Routes() []string {
	return []string{"GET /{$}"}
}

// ServeHTTP writes the embedded index page.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexHTML)
}
