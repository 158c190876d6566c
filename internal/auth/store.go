package auth

import (
	"sync"

	"github.com/desertthunder/drivebox/internal/shared"
	"golang.org/x/oauth2"
)

// Store holds the process's authorization grant.
//
// Implementations must make SetToken atomic with respect to concurrent
// Token calls: no reader may observe a partially written grant.
type Store interface {
	Token() (*oauth2.Token, error) // Token returns the current grant or shared.ErrNotAuthenticated
	SetToken(token *oauth2.Token)  // SetToken replaces the current grant wholesale
	Clear()                        // Clear removes the grant
	Authenticated() bool           // Authenticated reports whether a grant is present
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore is the single-slot, in-process [Store].
//
// At most one grant exists process-wide; all requests observe the same one.
// No TTL is enforced locally: expiry surfaces when a remote call fails.
// Restart wipes the slot, forcing re-authorization.
type MemoryStore struct {
	mu    sync.RWMutex
	token *oauth2.Token
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Token returns the current grant, or [shared.ErrNotAuthenticated] when the slot is empty.
func (s *MemoryStore) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return s.token, nil
}

// SetToken replaces the current grant. Last write wins; there is no merge
// of refresh tokens between an old grant and a new one.
func (s *MemoryStore) SetToken(token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear removes the grant, returning the store to the unauthenticated state.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
}

// Authenticated reports whether a grant is present without exposing it.
func (s *MemoryStore) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != nil
}

var _ oauth2.TokenSource = (*notifySource)(nil)

// notifySource wraps an [oauth2.TokenSource] and writes refreshed tokens
// back into the Store, so the slot tracks the client library's automatic
// refresh instead of going stale.
type notifySource struct {
	store Store
	src   oauth2.TokenSource
	last  *oauth2.Token
}

// NotifySource returns a TokenSource that persists refreshed tokens into store.
func NotifySource(store Store, src oauth2.TokenSource, current *oauth2.Token) oauth2.TokenSource {
	return &notifySource{store: store, src: src, last: current}
}

func (n *notifySource) Token() (*oauth2.Token, error) {
	token, err := n.src.Token()
	if err != nil {
		return nil, err
	}

	if n.last == nil || token.AccessToken != n.last.AccessToken {
		// The library refreshed the grant; keep the refresh token if the
		// provider omitted it from the refresh response.
		if token.RefreshToken == "" && n.last != nil {
			token.RefreshToken = n.last.RefreshToken
		}
		n.store.SetToken(token)
		n.last = token
	}

	return token, nil
}
