package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/drivebox/internal/auth"
	"github.com/desertthunder/drivebox/internal/shared"
	"golang.org/x/oauth2"
)

type authFixture struct {
	handler *AuthHandler
	store   *auth.MemoryStore
	flow    *auth.Flow
}

// newAuthFixture builds an AuthHandler whose token and revoke endpoints point
// at a local stand-in for the provider.
func newAuthFixture(t *testing.T, provider http.HandlerFunc) *authFixture {
	t.Helper()

	ts := httptest.NewServer(provider)
	t.Cleanup(ts.Close)

	store := auth.NewMemoryStore()
	flow, err := auth.NewFlow(auth.FlowOpts{
		Google: shared.GoogleConfig{
			ClientID:     "test-client",
			ClientSecret: "test-secret",
			RedirectURI:  "http://localhost:3000/auth/google/callback",
		},
		Store:     store,
		Logger:    discardLogger(),
		RevokeURL: ts.URL + "/revoke",
	})
	if err != nil {
		t.Fatalf("failed to create flow: %v", err)
	}
	flow.Config().Endpoint = oauth2.Endpoint{
		AuthURL:  ts.URL + "/authorize",
		TokenURL: ts.URL + "/token",
	}

	return &authFixture{
		handler: NewAuthHandler(flow, discardLogger()),
		store:   store,
		flow:    flow,
	}
}

func stateCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == stateCookie {
			return c
		}
	}
	t.Fatal("expected a state cookie to be set")
	return nil
}

func TestAuthHandlerLogin(t *testing.T) {
	f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest("GET", "/auth/google", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}

	cookie := stateCookieFrom(t, rec)
	if !cookie.HttpOnly {
		t.Error("expected the state cookie to be HttpOnly")
	}

	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("failed to parse redirect location: %v", err)
	}
	if location.Query().Get("state") != cookie.Value {
		t.Error("expected the redirect state to match the cookie")
	}
	if location.Query().Get("access_type") != "offline" {
		t.Error("expected offline access to be requested")
	}
}

func TestAuthHandlerCallback(t *testing.T) {
	t.Run("exchanges the code and redirects home", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/token") {
				t.Errorf("unexpected provider request: %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"at","token_type":"Bearer","refresh_token":"rt","expires_in":3600}`))
		})

		req := httptest.NewRequest("GET", "/auth/google/callback?state=s1&code=c1", nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: "s1"})
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d: %s", rec.Code, rec.Body.String())
		}
		if rec.Header().Get("Location") != "/" {
			t.Errorf("expected redirect to /, got %s", rec.Header().Get("Location"))
		}
		if !f.store.Authenticated() {
			t.Error("expected the grant to be stored after the callback")
		}
	})

	t.Run("rejects a mismatched state", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("expected no provider request for a bad state")
		})

		req := httptest.NewRequest("GET", "/auth/google/callback?state=evil&code=c1", nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: "s1"})
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if f.store.Authenticated() {
			t.Error("expected no grant to be stored")
		}
	})

	t.Run("rejects a missing state cookie", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {})

		req := httptest.NewRequest("GET", "/auth/google/callback?state=s1&code=c1", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("reports a provider denial", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {})

		req := httptest.NewRequest("GET", "/auth/google/callback?state=s1&error=access_denied", nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: "s1"})
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if f.store.Authenticated() {
			t.Error("expected no grant to be stored")
		}
	})

	t.Run("keeps the store untouched on exchange failure", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
		})

		req := httptest.NewRequest("GET", "/auth/google/callback?state=s1&code=bad", nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: "s1"})
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if f.store.Authenticated() {
			t.Error("expected no grant to be stored after a failed exchange")
		}
	})
}

func TestAuthHandlerRevoke(t *testing.T) {
	t.Run("clears the grant", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		f.store.SetToken(&oauth2.Token{AccessToken: "at"})

		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, httptest.NewRequest("POST", "/auth/revoke", nil))

		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
		if f.store.Authenticated() {
			t.Error("expected the grant to be cleared")
		}
	})

	t.Run("401 when nothing is stored", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {})

		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, httptest.NewRequest("POST", "/auth/revoke", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}
