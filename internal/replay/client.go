// Package replay issues Gemini API requests under a captured
// application identity: the captured bearer token plus the captured
// identifying headers, so the backend treats the caller as the
// original application.
package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anomredux/gemini-replay/internal/session"
)

const (
	// DefaultBaseURL is the Gemini API base the captured application
	// talks to.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel matches the captured application's default.
	DefaultModel = "gemini-2.0-flash"

	defaultTimeout = 120 * time.Second
)

// UpstreamError is a non-success response from the backend, surfaced
// verbatim. It is never retried here.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Body)
}

// ErrEmptyResponse means the backend answered successfully but
// supplied no usable candidate.
var ErrEmptyResponse = errors.New("no response candidates")

// Message is one prior conversation turn.
type Message struct {
	Role    string // "assistant" maps to the wire role "model"
	Content string
}

// ChatOptions tune a single Chat call. Zero values fall back to the
// client's defaults.
type ChatOptions struct {
	Model        string
	SystemPrompt string
	History      []Message
}

// ChatResponse is the parsed result of a generation request. Usage is
// the backend's usageMetadata, passed through uninterpreted.
type ChatResponse struct {
	Text  string
	Model string
	Usage json.RawMessage
}

// Client replays requests under a captured session. It owns one
// lazily created HTTP client, reused across calls until Close; a call
// after Close creates a fresh one. Not safe for overlapping requests
// from uncoordinated goroutines; the design assumes one in-flight
// conversation per instance.
type Client struct {
	// BaseURL and DefaultModel may be overridden before the first
	// call (tests point BaseURL at a stub backend).
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration

	session *session.CapturedSession
	hc      *http.Client
}

// New builds a Client over a loaded captured session.
func New(sess *session.CapturedSession) *Client {
	return &Client{
		BaseURL:      DefaultBaseURL,
		DefaultModel: DefaultModel,
		Timeout:      defaultTimeout,
		session:      sess,
	}
}

// Wire format, request side.
type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// Wire format, response side. Parts without a text field are not
// text-bearing and are skipped.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata json.RawMessage `json:"usageMetadata"`
}

// Chat sends message (plus any history and system prompt) to the
// model's generateContent endpoint and returns the concatenated text
// of the first candidate.
func (c *Client) Chat(ctx context.Context, message string, opts ChatOptions) (*ChatResponse, error) {
	model := opts.Model
	if model == "" {
		model = c.DefaultModel
	}

	body := generateRequest{}
	for _, m := range opts.History {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		body.Contents = append(body.Contents, content{Role: role, Parts: []part{{Text: m.Content}}})
	}
	body.Contents = append(body.Contents, content{Role: "user", Parts: []part{{Text: message}}})

	if opts.SystemPrompt != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: opts.SystemPrompt}}}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.BaseURL, model)
	raw, err := c.do(ctx, "POST", url, body)
	if err != nil {
		return nil, err
	}

	var resp generateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}

	var buf bytes.Buffer
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != nil {
			buf.WriteString(*p.Text)
		}
	}

	return &ChatResponse{
		Text:  buf.String(),
		Model: model,
		Usage: resp.UsageMetadata,
	}, nil
}

// ListModels returns the backend's model list unmodified.
func (c *Client) ListModels(ctx context.Context) ([]json.RawMessage, error) {
	raw, err := c.do(ctx, "GET", c.BaseURL+"/models", nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Models []json.RawMessage `json:"models"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode model list: %w", err)
	}
	return resp.Models, nil
}

// CapturedHeaders returns a copy of the session's captured headers,
// for display and debugging.
func (c *Client) CapturedHeaders() map[string]string {
	out := make(map[string]string, len(c.session.Headers))
	for k, v := range c.session.Headers {
		out[k] = v
	}
	return out
}

// Close releases the underlying connection. Idempotent; the next call
// connects again.
func (c *Client) Close() {
	if c.hc != nil {
		c.hc.CloseIdleConnections()
		c.hc = nil
	}
}

// httpClient creates the connection on first use.
func (c *Client) httpClient() *http.Client {
	if c.hc == nil {
		c.hc = &http.Client{Timeout: c.Timeout}
	}
	return c.hc
}

// do issues one authenticated request and returns the raw success
// body. Non-2xx statuses become an *UpstreamError carrying the body.
func (c *Client) do(ctx context.Context, method, url string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.session.RequestHeaders() {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("api request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
