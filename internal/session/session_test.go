package session

import (
	"errors"
	"testing"
	"time"

	"github.com/claude/drgym/internal/client"
	"github.com/google/go-cmp/cmp"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	st, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// TestSaveLoad verifies a saved session is returned unchanged for its server
// and that other servers have none.
func TestSaveLoad(t *testing.T) {
	st := openTest(t)
	want := client.Session{
		Username:  "alice",
		Token:     "tok-1",
		ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	if err := st.Save("http://localhost:8080", want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.Load("http://localhost:8080")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("session mismatch (-want +got):\n%s", diff)
	}

	if _, err := st.Load("http://other:8080"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load(other) error = %v, want ErrNoSession", err)
	}
}

// TestSaveReplaces verifies a second login for the same server overwrites the first.
func TestSaveReplaces(t *testing.T) {
	st := openTest(t)
	exp := time.Now().Add(time.Hour)
	st.Save("srv", client.Session{Username: "alice", Token: "a", ExpiresAt: exp})
	st.Save("srv", client.Session{Username: "bob", Token: "b", ExpiresAt: exp})

	got, err := st.Load("srv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Username != "bob" || got.Token != "b" {
		t.Errorf("got %+v, want bob's session", got)
	}
}

// TestLoadExpired verifies an expired session is dropped.
func TestLoadExpired(t *testing.T) {
	st := openTest(t)
	exp := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := st.Save("srv", client.Session{Username: "alice", Token: "a", ExpiresAt: exp}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	st.now = func() time.Time { return exp.Add(time.Second) }

	if _, err := st.Load("srv"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load error = %v, want ErrNoSession", err)
	}
	st.now = func() time.Time { return exp.Add(-time.Hour) }
	if _, err := st.Load("srv"); !errors.Is(err, ErrNoSession) {
		t.Errorf("expired session should have been deleted, got %v", err)
	}
}

// TestClear verifies Clear removes the session and is a no-op when absent.
func TestClear(t *testing.T) {
	st := openTest(t)
	st.Save("srv", client.Session{Username: "alice", Token: "a", ExpiresAt: time.Now().Add(time.Hour)})
	if err := st.Clear("srv"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := st.Clear("srv"); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	if _, err := st.Load("srv"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load error = %v, want ErrNoSession", err)
	}
}
