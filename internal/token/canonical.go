package token

import (
	"strconv"
	"time"
)

// CanonicalToken is the normalized, storage-ready form of an OAuth
// credential, independent of which tool originally wrote it.
type CanonicalToken struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	TokenType    string  `json:"token_type"`
	Scope        string  `json:"scope"`
	SavedAt      float64 `json:"saved_at"`
	Source       string  `json:"source"`

	// Passthrough fields, kept only when the raw credential had them.
	ClientID       string   `json:"client_id,omitempty"`
	ClientSecret   string   `json:"client_secret,omitempty"`
	QuotaProjectID string   `json:"quota_project_id,omitempty"`
	ExpiresIn      *float64 `json:"expires_in,omitempty"`

	// ExpiresAt is always an absolute unix timestamp, never a duration.
	ExpiresAt *float64 `json:"expires_at,omitempty"`
}

// Normalize converts a raw credential object into a CanonicalToken.
// Missing optional fields are never an error. Expiry resolution order:
// raw expires_at verbatim, then now+expires_in, then an ISO-8601 "expiry"
// string; a malformed expiry string is silently dropped.
func Normalize(raw map[string]any, source string) CanonicalToken {
	now := float64(time.Now().UnixNano()) / 1e9

	tok := CanonicalToken{
		AccessToken:  stringField(raw, "access_token"),
		RefreshToken: stringField(raw, "refresh_token"),
		TokenType:    stringField(raw, "token_type"),
		Scope:        stringField(raw, "scope"),
		SavedAt:      now,
		Source:       source,
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}

	tok.ClientID = stringField(raw, "client_id")
	tok.ClientSecret = stringField(raw, "client_secret")
	tok.QuotaProjectID = stringField(raw, "quota_project_id")
	if n, ok := numberField(raw, "expires_in"); ok {
		tok.ExpiresIn = &n
	}

	switch {
	case hasKey(raw, "expires_at"):
		if n, ok := numberField(raw, "expires_at"); ok {
			tok.ExpiresAt = &n
		}
	case tok.ExpiresIn != nil:
		at := now + *tok.ExpiresIn
		tok.ExpiresAt = &at
	case hasKey(raw, "expiry"):
		if ts, err := parseExpiry(stringField(raw, "expiry")); err == nil {
			at := float64(ts.Unix())
			tok.ExpiresAt = &at
		}
	}

	return tok
}

// parseExpiry accepts RFC 3339 timestamps with or without fractional
// seconds, the formats Google tools write into their "expiry" field.
func parseExpiry(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", s)
}

func hasKey(raw map[string]any, key string) bool {
	_, ok := raw[key]
	return ok
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

// numberField reads a numeric field, tolerating the string-encoded
// numbers some credential writers emit.
func numberField(raw map[string]any, key string) (float64, bool) {
	switch v := raw[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
