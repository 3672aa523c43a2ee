// Package session loads a captured application session (OAuth token,
// identifying headers, observed endpoints) for replaying requests.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LoadError reports why a captured session could not be constructed.
// Sessions fail closed: without a usable access token there is no
// session object at all.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load session %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("load session %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// CapturedSession is a read-only snapshot of a captured application
// session. It is not refreshed; build a new one to pick up a newer
// token.
type CapturedSession struct {
	AccessToken string
	Headers     map[string]string
	Endpoints   []json.RawMessage
	CapturedAt  string
}

// sessionFile mirrors the on-disk capture format. The active token is
// the last entry of the history; insertion order is trusted.
type sessionFile struct {
	Tokens []struct {
		AccessToken string `json:"access_token"`
		CapturedAt  string `json:"captured_at"`
	} `json:"tokens"`
	Headers   map[string]string `json:"headers"`
	Endpoints []json.RawMessage `json:"endpoints"`
}

// Load reads a captured session file and, when headersPath names an
// existing file, overlays its entries onto the captured headers (the
// separate file wins on collision). headersPath may be empty.
func Load(path, headersPath string) (*CapturedSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "read session file", Err: err}
	}

	var sf sessionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, &LoadError{Path: path, Reason: "parse session file", Err: err}
	}
	if len(sf.Tokens) == 0 {
		return nil, &LoadError{Path: path, Reason: "no tokens in session file"}
	}

	latest := sf.Tokens[len(sf.Tokens)-1]
	if latest.AccessToken == "" {
		return nil, &LoadError{Path: path, Reason: "latest token has no access_token"}
	}

	headers := make(map[string]string, len(sf.Headers))
	for k, v := range sf.Headers {
		headers[k] = v
	}

	if headersPath != "" {
		if extra, err := os.ReadFile(headersPath); err == nil {
			var overlay map[string]string
			if err := json.Unmarshal(extra, &overlay); err != nil {
				return nil, &LoadError{Path: headersPath, Reason: "parse headers file", Err: err}
			}
			for k, v := range overlay {
				headers[k] = v
			}
		}
	}

	return &CapturedSession{
		AccessToken: latest.AccessToken,
		Headers:     headers,
		Endpoints:   sf.Endpoints,
		CapturedAt:  latest.CapturedAt,
	}, nil
}

// RequestHeaders returns the headers for an outbound request: the
// synthesized bearer header plus every captured header. The token is
// the sole source of authorization; a captured "authorization" entry
// never survives, whatever its case.
func (s *CapturedSession) RequestHeaders() map[string]string {
	headers := map[string]string{
		"Authorization": "Bearer " + s.AccessToken,
		"Content-Type":  "application/json",
	}
	for k, v := range s.Headers {
		if strings.EqualFold(k, "authorization") {
			continue
		}
		headers[k] = v
	}
	return headers
}
