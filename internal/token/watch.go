package token

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher polls the candidate paths until a credential file newly
// appears or changes, then extracts it to outPath. Polling is the
// contract; fsnotify only wakes the loop early when the platform
// supports it.
type Watcher struct {
	paths    []string
	interval time.Duration
	outPath  string
}

// NewWatcher builds a Watcher writing extracted tokens to outPath.
// With no paths it watches the default candidate list. A non-positive
// interval falls back to one second.
func NewWatcher(outPath string, interval time.Duration, paths ...string) *Watcher {
	if len(paths) == 0 {
		paths = CandidatePaths()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Watcher{paths: paths, interval: interval, outPath: outPath}
}

// Watch blocks until a candidate path qualifies or timeout elapses.
// A path qualifies when it exists, was absent from the baseline or has
// a newer mtime, and parses with a credential key. The first hit is
// extracted and Watch returns immediately; after the timeout it
// returns false.
func (w *Watcher) Watch(timeout time.Duration) (string, bool) {
	baseline := make(map[string]time.Time, len(w.paths))
	for _, p := range w.paths {
		if info, err := os.Stat(p); err == nil {
			baseline[p] = info.ModTime()
		}
	}

	fsw, events, errs := w.notify()
	if fsw != nil {
		defer fsw.Close()
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if path, ok := w.scan(baseline); ok {
			_, err := ExtractFile(path, w.outPath)
			return path, err == nil
		}

		select {
		case <-deadline.C:
			return "", false
		case <-ticker.C:
		case ev := <-events:
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
		case <-errs:
			// keep draining; the polling loop covers us
		}
	}
}

// notify sets up the optional fsnotify layer over the candidate parent
// directories. Returns nil channels when unavailable, which the select
// in Watch ignores.
func (w *Watcher) notify() (*fsnotify.Watcher, <-chan fsnotify.Event, <-chan error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, nil
	}
	seen := make(map[string]bool)
	for _, p := range w.paths {
		dir := filepath.Dir(p)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		_ = fsw.Add(dir) // missing dirs are fine, polling still covers them
	}
	return fsw, fsw.Events, fsw.Errors
}

// scan returns the first candidate that changed relative to the
// baseline and holds credential keys.
func (w *Watcher) scan(baseline map[string]time.Time) (string, bool) {
	for _, p := range w.paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		base, seen := baseline[p]
		if seen && !info.ModTime().After(base) {
			continue
		}
		if !hasCredentialKeys(p) {
			continue
		}
		return p, true
	}
	return "", false
}
