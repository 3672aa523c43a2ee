package token

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// CandidatePaths returns the well-known credential locations of the
// supported upstream tools, in priority order. Earlier entries win.
func CandidatePaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		// Gemini CLI
		filepath.Join(home, ".gemini", "oauth_token.json"),
		filepath.Join(home, ".gemini", "credentials.json"),
		filepath.Join(home, ".config", "gemini", "credentials.json"),
		filepath.Join(home, ".config", "gemini-cli", "credentials.json"),
		filepath.Join(home, ".config", "google-gemini", "oauth.json"),
		filepath.Join(home, ".cache", "gemini", "auth.json"),
		filepath.Join(home, ".local", "share", "gemini", "token.json"),

		// Google AI SDK
		filepath.Join(home, ".config", "google-generativeai", "credentials.json"),

		// gcloud application default credentials
		filepath.Join(home, ".config", "gcloud", "application_default_credentials.json"),

		// Firebase
		filepath.Join(home, ".config", "firebase", "tokens.json"),
	}
}

// Locator scans a fixed, ordered list of candidate paths for an
// existing usable credential file.
type Locator struct {
	paths []string
}

// NewLocator builds a Locator over the given paths. With no arguments
// it scans the default candidate list.
func NewLocator(paths ...string) *Locator {
	if len(paths) == 0 {
		paths = CandidatePaths()
	}
	return &Locator{paths: paths}
}

// Find returns the first candidate path, in list order, whose content
// is a JSON object carrying an access_token or refresh_token. Recency
// is not a tiebreaker. Unreadable or irrelevant files are skipped.
func (l *Locator) Find() (string, bool) {
	for _, path := range l.paths {
		if hasCredentialKeys(path) {
			return path, true
		}
	}
	return "", false
}

// hasCredentialKeys reports whether path parses as a JSON object with
// an access_token or refresh_token field. Any failure means no.
func hasCredentialKeys(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return false
	}
	_, access := obj["access_token"]
	_, refresh := obj["refresh_token"]
	return access || refresh
}
