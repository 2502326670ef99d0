package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/lvonguyen/sentinel-console/internal/api"
)

// fakeProber implements meProber with a fixed accept/reject decision.
type fakeProber struct {
	user      api.UserProfile
	err       error
	lastToken string
	calls     int
}

func (f *fakeProber) Me(ctx context.Context, token string) (api.UserProfile, error) {
	f.calls++
	f.lastToken = token
	if f.err != nil {
		return api.UserProfile{}, f.err
	}
	return f.user, nil
}

// =============================================================================
// Session Lifecycle Tests
// =============================================================================

// TestSession_LoginLogout verifies the basic state transitions and token
// persistence.
func TestSession_LoginLogout(t *testing.T) {
	store := &MemoryTokenStore{}
	session := NewSession(store, zaptest.NewLogger(t))

	if session.Authenticated() {
		t.Error("fresh session should be anonymous")
	}
	if session.Token() != "" {
		t.Error("fresh session should have no token")
	}

	session.Login("tok-1", api.UserProfile{ID: "u1", Username: "analyst"})

	if !session.Authenticated() {
		t.Error("session should be authenticated after login")
	}
	if session.Token() != "tok-1" {
		t.Errorf("Token() = %q, want tok-1", session.Token())
	}
	if saved, _ := store.Load(); saved != "tok-1" {
		t.Errorf("token should persist on login, store has %q", saved)
	}
	if user := session.User(); user == nil || user.Username != "analyst" {
		t.Error("User() should return the logged-in profile")
	}

	session.Logout()

	if session.Authenticated() || session.Token() != "" {
		t.Error("logout should clear the session")
	}
	if saved, _ := store.Load(); saved != "" {
		t.Errorf("logout should clear the persisted token, store has %q", saved)
	}
}

// TestSession_InitRestoresValidToken verifies Init probes the stored token
// and restores the session.
func TestSession_InitRestoresValidToken(t *testing.T) {
	store := &MemoryTokenStore{}
	store.Save("stored-tok")

	session := NewSession(store, zaptest.NewLogger(t))
	probe := &fakeProber{user: api.UserProfile{ID: "u1", Username: "analyst"}}

	session.Init(context.Background(), probe)

	if probe.lastToken != "stored-tok" {
		t.Errorf("probe should use the stored token, got %q", probe.lastToken)
	}
	if !session.Authenticated() {
		t.Error("valid stored token should restore the session")
	}
	if session.Token() != "stored-tok" {
		t.Errorf("Token() = %q, want stored-tok", session.Token())
	}
}

// TestSession_InitDiscardsRejectedToken verifies a rejected token is
// silently discarded from both session and store.
func TestSession_InitDiscardsRejectedToken(t *testing.T) {
	store := &MemoryTokenStore{}
	store.Save("expired-tok")

	session := NewSession(store, zaptest.NewLogger(t))
	probe := &fakeProber{err: errors.New("401 unauthorized")}

	session.Init(context.Background(), probe)

	if session.Authenticated() {
		t.Error("rejected token must leave the session anonymous")
	}
	if saved, _ := store.Load(); saved != "" {
		t.Errorf("rejected token should be cleared from the store, got %q", saved)
	}
}

// TestSession_InitEmptyStore verifies an empty store never probes.
func TestSession_InitEmptyStore(t *testing.T) {
	session := NewSession(&MemoryTokenStore{}, zaptest.NewLogger(t))
	probe := &fakeProber{}

	session.Init(context.Background(), probe)

	if probe.calls != 0 {
		t.Errorf("empty store should not probe, got %d calls", probe.calls)
	}
	if session.Authenticated() {
		t.Error("session should stay anonymous")
	}
}

// TestSession_UserReturnsCopy verifies mutating the returned profile does
// not leak into session state.
func TestSession_UserReturnsCopy(t *testing.T) {
	session := NewSession(&MemoryTokenStore{}, zaptest.NewLogger(t))
	session.Login("t", api.UserProfile{Username: "analyst"})

	session.User().Username = "tampered"

	if session.User().Username != "analyst" {
		t.Error("User() must return a copy")
	}
}

// =============================================================================
// File Store Tests
// =============================================================================

// TestFileTokenStore_RoundTrip verifies save, load, and clear against disk.
func TestFileTokenStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store := NewFileTokenStore(path)

	if tok, err := store.Load(); err != nil || tok != "" {
		t.Fatalf("missing file should be empty token, got %q err %v", tok, err)
	}

	if err := store.Save("disk-tok"); err != nil {
		t.Fatalf("Save should create parents and write: %v", err)
	}
	if tok, err := store.Load(); err != nil || tok != "disk-tok" {
		t.Fatalf("Load = %q, %v; want disk-tok", tok, err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear should succeed: %v", err)
	}
	if tok, _ := store.Load(); tok != "" {
		t.Errorf("cleared store should be empty, got %q", tok)
	}

	// Clearing again is a no-op.
	if err := store.Clear(); err != nil {
		t.Errorf("double clear should not error: %v", err)
	}
}

// TestFileTokenStore_TrimsWhitespace verifies tokens saved with trailing
// newlines load clean.
func TestFileTokenStore_TrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := NewFileTokenStore(path)

	if err := store.Save("tok\n"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if tok, _ := store.Load(); tok != "tok" {
		t.Errorf("Load = %q, want trimmed token", tok)
	}
}
