package token

import (
	"math"
	"testing"
	"time"
)

func TestNormalize_ExpiresAtPriority(t *testing.T) {
	raw := map[string]any{
		"access_token": "abc",
		"expires_at":   float64(1700000000),
		"expires_in":   float64(3600),
		"expiry":       "2030-01-01T00:00:00Z",
	}

	tok := Normalize(raw, "src")
	if tok.ExpiresAt == nil {
		t.Fatal("expected expires_at to be set")
	}
	if *tok.ExpiresAt != 1700000000 {
		t.Errorf("expires_at = %v, want 1700000000 (raw value, not derived)", *tok.ExpiresAt)
	}
}

func TestNormalize_ExpiresIn(t *testing.T) {
	raw := map[string]any{
		"access_token": "abc",
		"expires_in":   float64(3600),
	}

	tok := Normalize(raw, "src")
	if tok.AccessToken != "abc" {
		t.Errorf("access_token = %q, want abc", tok.AccessToken)
	}
	if tok.TokenType != "Bearer" {
		t.Errorf("token_type = %q, want Bearer", tok.TokenType)
	}
	if tok.Source != "src" {
		t.Errorf("source = %q, want src", tok.Source)
	}
	if tok.ExpiresAt == nil {
		t.Fatal("expected expires_at to be set")
	}
	want := float64(time.Now().Unix()) + 3600
	if math.Abs(*tok.ExpiresAt-want) > 1 {
		t.Errorf("expires_at = %v, want within 1s of %v", *tok.ExpiresAt, want)
	}
}

func TestNormalize_ISOExpiry(t *testing.T) {
	raw := map[string]any{
		"access_token": "abc",
		"expiry":       "2025-06-15T10:30:00Z",
	}

	tok := Normalize(raw, "src")
	if tok.ExpiresAt == nil {
		t.Fatal("expected expires_at to be set")
	}
	want := float64(time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC).Unix())
	if *tok.ExpiresAt != want {
		t.Errorf("expires_at = %v, want %v", *tok.ExpiresAt, want)
	}
}

func TestNormalize_MalformedExpirySkipped(t *testing.T) {
	raw := map[string]any{
		"access_token": "abc",
		"expiry":       "not-a-date",
	}

	tok := Normalize(raw, "src")
	if tok.ExpiresAt != nil {
		t.Errorf("expires_at = %v, want unset for malformed expiry", *tok.ExpiresAt)
	}
}

func TestNormalize_Passthrough(t *testing.T) {
	raw := map[string]any{
		"access_token":     "abc",
		"refresh_token":    "def",
		"scope":            "openid",
		"token_type":       "bearer-ish",
		"client_id":        "cid",
		"client_secret":    "csec",
		"quota_project_id": "qp",
	}

	tok := Normalize(raw, "src")
	if tok.RefreshToken != "def" || tok.Scope != "openid" {
		t.Errorf("direct copies wrong: %+v", tok)
	}
	if tok.TokenType != "bearer-ish" {
		t.Errorf("token_type = %q, want raw value preserved", tok.TokenType)
	}
	if tok.ClientID != "cid" || tok.ClientSecret != "csec" || tok.QuotaProjectID != "qp" {
		t.Errorf("passthrough fields wrong: %+v", tok)
	}
}

func TestNormalize_MissingFieldsNoPanic(t *testing.T) {
	tok := Normalize(map[string]any{}, "empty")
	if tok.AccessToken != "" || tok.ExpiresAt != nil || tok.ExpiresIn != nil {
		t.Errorf("empty raw should yield zero token, got %+v", tok)
	}
	if tok.TokenType != "Bearer" {
		t.Errorf("token_type = %q, want Bearer default", tok.TokenType)
	}
	if tok.SavedAt == 0 {
		t.Error("saved_at should be set")
	}
}

func TestNormalize_StringExpiresIn(t *testing.T) {
	raw := map[string]any{
		"access_token": "abc",
		"expires_in":   "1800",
	}

	tok := Normalize(raw, "src")
	if tok.ExpiresIn == nil || *tok.ExpiresIn != 1800 {
		t.Fatalf("expires_in not parsed from string: %+v", tok.ExpiresIn)
	}
	if tok.ExpiresAt == nil {
		t.Fatal("expected expires_at derived from expires_in")
	}
}
