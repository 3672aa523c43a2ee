package token

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_TimeoutBounds(t *testing.T) {
	dir := t.TempDir()
	candidate := filepath.Join(dir, "creds.json")
	out := filepath.Join(dir, "out", "token.json")

	w := NewWatcher(out, 50*time.Millisecond, candidate)

	timeout := 300 * time.Millisecond
	start := time.Now()
	_, ok := w.Watch(timeout)
	elapsed := time.Since(start)

	if ok {
		t.Fatal("expected failure with no candidate")
	}
	if elapsed < timeout {
		t.Errorf("returned after %v, before the %v timeout", elapsed, timeout)
	}
	if elapsed > timeout+w.interval+100*time.Millisecond {
		t.Errorf("returned after %v, well past timeout+interval", elapsed)
	}
}

func TestWatch_DetectsNewFile(t *testing.T) {
	dir := t.TempDir()
	candidate := filepath.Join(dir, "creds.json")
	out := filepath.Join(dir, "out", "token.json")

	w := NewWatcher(out, 20*time.Millisecond, candidate)

	done := make(chan bool, 1)
	go func() {
		_, ok := w.Watch(2 * time.Second)
		done <- ok
	}()

	time.Sleep(100 * time.Millisecond)
	os.WriteFile(candidate, []byte(`{"access_token":"fresh","expires_in":3600}`), 0600)

	select {
	case ok := <-done:
		if !ok {
			t.Fatal("watch returned failure for a qualifying file")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not return")
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("extracted token not written: %v", err)
	}
	var tok CanonicalToken
	if err := json.Unmarshal(data, &tok); err != nil {
		t.Fatalf("extracted token not valid JSON: %v", err)
	}
	if tok.AccessToken != "fresh" {
		t.Errorf("access_token = %q, want fresh", tok.AccessToken)
	}
	if tok.Source != candidate {
		t.Errorf("source = %q, want %q", tok.Source, candidate)
	}
}

func TestWatch_BaselineIgnoresPreexisting(t *testing.T) {
	dir := t.TempDir()
	candidate := filepath.Join(dir, "creds.json")
	out := filepath.Join(dir, "out", "token.json")

	// Present before the watch starts, never touched after.
	os.WriteFile(candidate, []byte(`{"access_token":"stale"}`), 0600)
	past := time.Now().Add(-time.Minute)
	os.Chtimes(candidate, past, past)

	w := NewWatcher(out, 20*time.Millisecond, candidate)
	if _, ok := w.Watch(200 * time.Millisecond); ok {
		t.Error("unmodified baseline file must not qualify")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no token should have been written")
	}
}

func TestWatch_IgnoresIrrelevantChanges(t *testing.T) {
	dir := t.TempDir()
	candidate := filepath.Join(dir, "creds.json")
	out := filepath.Join(dir, "out", "token.json")

	w := NewWatcher(out, 20*time.Millisecond, candidate)

	done := make(chan bool, 1)
	go func() {
		_, ok := w.Watch(400 * time.Millisecond)
		done <- ok
	}()

	time.Sleep(50 * time.Millisecond)
	// New file, but without credential keys: must keep waiting.
	os.WriteFile(candidate, []byte(`{"something":"else"}`), 0600)

	if ok := <-done; ok {
		t.Error("file without credential keys must not qualify")
	}
}

func TestExtractFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "raw.json")
	out := filepath.Join(dir, "token.json")

	os.WriteFile(src, []byte(`{"access_token":"a","refresh_token":"r","scope":"s","client_id":"c"}`), 0600)

	tok, err := ExtractFile(src, out)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file mode = %o, want 0600", perm)
	}

	data, _ := os.ReadFile(out)
	var back CanonicalToken
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	// saved_at is wall-clock; everything else must survive unchanged.
	back.SavedAt = tok.SavedAt
	if back != tok {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", back, tok)
	}
}
