package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/drivebox/internal/auth"
	"github.com/desertthunder/drivebox/internal/shared"
)

// stateCookie carries the OAuth2 state parameter between the consent
// redirect and the provider callback. Short-lived and HttpOnly.
const stateCookie = "drivebox_oauth_state"

// AuthHandler serves the browser-driven OAuth2 authorization flow.
//
// GET /auth/google redirects to the provider consent screen; the provider
// calls back on GET /auth/google/callback with a one-time code which is
// exchanged for a grant. POST /auth/revoke is the explicit logout the
// original service lacked.
type AuthHandler struct {
	flow   *auth.Flow
	logger *log.Logger
}

// NewAuthHandler creates an AuthHandler around the given flow.
func NewAuthHandler(flow *auth.Flow, logger *log.Logger) *AuthHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &AuthHandler{flow: flow, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{
		"GET /auth/google",
		"GET /auth/google/callback",
		"POST /auth/revoke",
	}
}

// ServeHTTP dispatches to the login, callback, or revoke leg of the flow.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/auth/google":
		h.login(w, r)
	case r.URL.Path == "/auth/google/callback":
		h.callback(w, r)
	case r.URL.Path == "/auth/revoke":
		h.revoke(w, r)
	default:
		http.NotFound(w, r)
	}
}

// login generates a state token and redirects the browser to the consent URL.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	state, err := shared.GenerateState()
	if err != nil {
		h.logger.Error("state generation failed", "error", err)
		http.Error(w, "Authentication error.", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int((5 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.flow.AuthCodeURL(state), http.StatusFound)
}

// callback validates the state parameter, exchanges the code, and sends the
// browser back to the home surface. The credential store is only mutated on
// a successful exchange.
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		h.logger.Warn("callback with missing or mismatched state")
		http.Error(w, "Invalid state parameter.", http.StatusBadRequest)
		return
	}

	// Expire the state cookie; it is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    "",
		Path:     "/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
	})

	code := query.Get("code")
	if code == "" {
		h.logger.Warn("authorization denied by provider",
			"error", query.Get("error"),
			"description", query.Get("error_description"))
		http.Error(w, "Authentication error.", http.StatusInternalServerError)
		return
	}

	if _, err := h.flow.Exchange(r.Context(), code); err != nil {
		h.logger.Error("token exchange failed", "error", err)
		http.Error(w, "Authentication error.", http.StatusInternalServerError)
		return
	}

	h.logger.Info("authorization flow completed")
	http.Redirect(w, r, "/", http.StatusFound)
}

// revoke clears the grant. 204 on success, 401 when nothing was stored.
func (h *AuthHandler) revoke(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.Revoke(r.Context()); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			writeJSONError(w, http.StatusUnauthorized, "Not authorized. Please authenticate first.")
			return
		}
		h.logger.Error("revocation failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to revoke authorization.")
		return
	}

	h.logger.Info("authorization grant revoked")
	w.WriteHeader(http.StatusNoContent)
}
