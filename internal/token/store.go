package token

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes tok as indented JSON to path with owner-only permission,
// replacing any previous file.
func Save(tok CanonicalToken, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// ExtractFile reads a raw credential file, normalizes it, and persists
// the canonical token at outPath.
func ExtractFile(path, outPath string) (CanonicalToken, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CanonicalToken{}, fmt.Errorf("read credential %s: %w", path, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return CanonicalToken{}, fmt.Errorf("parse credential %s: %w", path, err)
	}
	tok := Normalize(raw, path)
	if err := Save(tok, outPath); err != nil {
		return CanonicalToken{}, err
	}
	return tok, nil
}
