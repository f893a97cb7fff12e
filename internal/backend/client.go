// Package backend is the HTTP client for the clinic backend. It owns the
// wire format and turns every failure into one of the clinic error types.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-admin/internal/clinic"
)

// ErrUnauthorized is wrapped when the backend answers 401 outside login,
// which means the session token is missing, expired or revoked.
var ErrUnauthorized = errors.New("session rejected by backend")

const maxErrorBody = 64 << 10

type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New builds a client rooted at baseURL. Every call is bounded by timeout.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return NewWithTransport(baseURL, timeout, http.DefaultTransport, log)
}

func NewWithTransport(baseURL string, timeout time.Duration, rt http.RoundTripper, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: &authTransport{base: rt},
		},
		log: log,
	}
}

type tokenKey struct{}

// WithToken attaches a session token to ctx. Calls made with the returned
// context carry it as a bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

// authTransport is the single place outgoing requests get their credentials.
type authTransport struct {
	base http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if tok := TokenFrom(req.Context()); tok != "" {
		r.Header.Set("Authorization", "Bearer "+tok)
	}
	if r.Header.Get("X-Request-ID") == "" {
		r.Header.Set("X-Request-ID", uuid.NewString())
	}
	return t.base.RoundTrip(r)
}

type errorBody struct {
	Error   string          `json:"error"`
	Details string          `json:"details"`
	Detail  json.RawMessage `json:"detail"`
}

func (b errorBody) message() string {
	if b.Details != "" {
		return b.Details
	}
	if len(b.Detail) > 0 {
		var s string
		if err := json.Unmarshal(b.Detail, &s); err == nil {
			return s
		}
		return string(b.Detail)
	}
	return b.Error
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Dur("latency", time.Since(start)).Msg("backend unreachable")
		return &clinic.ExternalServiceError{Op: op, Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var eb errorBody
		msg := ""
		if json.Unmarshal(raw, &eb) == nil {
			msg = eb.message()
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		sErr := &clinic.ExternalServiceError{Op: op, StatusCode: resp.StatusCode, Message: msg}
		if resp.StatusCode == http.StatusUnauthorized {
			sErr.Err = ErrUnauthorized
		}
		return sErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &clinic.ExternalServiceError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    "malformed response",
			Err:        err,
		}
	}
	return nil
}

func transportMessage(err error) string {
	var nErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nErr) && nErr.Timeout()) {
		return "request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "request cancelled"
	}
	return "backend unreachable"
}

func doctorPath(id string) string {
	return "/doctors/" + url.PathEscape(id)
}

func appointmentPath(id string) string {
	return "/appointments/" + url.PathEscape(id)
}
