package auth

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/desertthunder/drivebox/internal/shared"
	"golang.org/x/oauth2"
)

func TestMemoryStore(t *testing.T) {
	t.Run("empty store reports not authenticated", func(t *testing.T) {
		store := NewMemoryStore()

		if store.Authenticated() {
			t.Error("expected new store to be unauthenticated")
		}

		_, err := store.Token()
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("set and get token", func(t *testing.T) {
		store := NewMemoryStore()
		store.SetToken(&oauth2.Token{AccessToken: "abc"})

		if !store.Authenticated() {
			t.Error("expected store to be authenticated after SetToken")
		}

		token, err := store.Token()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.AccessToken != "abc" {
			t.Errorf("expected access token abc, got %s", token.AccessToken)
		}
	})

	t.Run("last write wins", func(t *testing.T) {
		store := NewMemoryStore()
		store.SetToken(&oauth2.Token{AccessToken: "first", RefreshToken: "first-refresh"})
		store.SetToken(&oauth2.Token{AccessToken: "second"})

		token, err := store.Token()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.AccessToken != "second" {
			t.Errorf("expected second grant, got %s", token.AccessToken)
		}
		if token.RefreshToken != "" {
			t.Error("expected no merge of refresh tokens between grants")
		}
	})

	t.Run("clear empties the slot", func(t *testing.T) {
		store := NewMemoryStore()
		store.SetToken(&oauth2.Token{AccessToken: "abc"})
		store.Clear()

		if store.Authenticated() {
			t.Error("expected store to be unauthenticated after Clear")
		}
		if _, err := store.Token(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("concurrent access", func(t *testing.T) {
		store := NewMemoryStore()
		var wg sync.WaitGroup

		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				store.SetToken(&oauth2.Token{AccessToken: fmt.Sprintf("token-%d", i)})
			}(i)
			go func() {
				defer wg.Done()
				if token, err := store.Token(); err == nil && token.AccessToken == "" {
					t.Error("observed a partially written grant")
				}
			}()
		}
		wg.Wait()

		if !store.Authenticated() {
			t.Error("expected a grant to remain after concurrent writes")
		}
	})
}

type staticSource struct {
	token *oauth2.Token
	err   error
}

func (s *staticSource) Token() (*oauth2.Token, error) {
	return s.token, s.err
}

func TestNotifySource(t *testing.T) {
	t.Run("unchanged token is not rewritten", func(t *testing.T) {
		current := &oauth2.Token{AccessToken: "same"}
		store := NewMemoryStore()
		src := NotifySource(store, &staticSource{token: current}, current)

		if _, err := src.Token(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.Authenticated() {
			t.Error("expected store untouched when the grant did not change")
		}
	})

	t.Run("refreshed token is persisted", func(t *testing.T) {
		current := &oauth2.Token{AccessToken: "old", RefreshToken: "keep-me"}
		refreshed := &oauth2.Token{AccessToken: "new"}
		store := NewMemoryStore()
		store.SetToken(current)
		src := NotifySource(store, &staticSource{token: refreshed}, current)

		token, err := src.Token()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.AccessToken != "new" {
			t.Errorf("expected refreshed access token, got %s", token.AccessToken)
		}
		if token.RefreshToken != "keep-me" {
			t.Error("expected refresh token carried over when the provider omits it")
		}

		stored, err := store.Token()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stored.AccessToken != "new" {
			t.Errorf("expected store to hold the refreshed grant, got %s", stored.AccessToken)
		}
	})

	t.Run("refresh failure leaves store untouched", func(t *testing.T) {
		current := &oauth2.Token{AccessToken: "old"}
		store := NewMemoryStore()
		store.SetToken(current)
		src := NotifySource(store, &staticSource{err: errors.New("refresh rejected")}, current)

		if _, err := src.Token(); err == nil {
			t.Fatal("expected an error")
		}

		stored, err := store.Token()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stored.AccessToken != "old" {
			t.Error("expected store to keep the previous grant after a failed refresh")
		}
	})
}
