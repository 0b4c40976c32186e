package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestError is the single failure kind the transport reports: non-2xx
// responses, network failures, and timeouts all surface as one of these.
// Status is 0 when no HTTP response was received.
type RequestError struct {
	Message string
	Status  int
}

func (e *RequestError) Error() string { return e.Message }

type Options struct {
	// BaseURL is the API root every path is concatenated onto. A trailing
	// slash is appended when missing.
	BaseURL string

	// HTTPClient carries the cookie jar holding the session. Defaults to a
	// fresh client when nil.
	HTTPClient *http.Client

	// Cookies returns the current cookie string ("a=1; b=2"). When nil it
	// is derived from the jar for BaseURL on every request.
	Cookies func() string

	// CSRFCookie names the cookie echoed back in the X-CSRFToken header.
	// Defaults to "csrftoken".
	CSRFCookie string

	// Timeout bounds each request. Defaults to 15s; expiry is reported as
	// a RequestError like any other transport failure.
	Timeout time.Duration

	Logger *slog.Logger
}

// Client issues authenticated JSON requests against the storefront API.
// It owns no state beyond the connection: callers re-fetch whatever they
// need, and a failed call never yields a value.
type Client struct {
	base       string
	baseURL    *url.URL
	http       *http.Client
	cookies    func() string
	csrfCookie string
	timeout    time.Duration
	log        *slog.Logger
}

func NewClient(opts Options) (*Client, error) {
	base := opts.BaseURL
	if base == "" {
		return nil, fmt.Errorf("httpjson: base URL is required")
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("httpjson: parse base URL: %w", err)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	csrf := opts.CSRFCookie
	if csrf == "" {
		csrf = "csrftoken"
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	c := &Client{
		base:       base,
		baseURL:    u,
		http:       hc,
		cookies:    opts.Cookies,
		csrfCookie: csrf,
		timeout:    timeout,
		log:        log,
	}
	if c.cookies == nil {
		c.cookies = c.jarCookies
	}
	return c, nil
}

// Origin returns the scheme://host of the API root. Checkout return URLs
// must be absolute, so they are built from this.
func (c *Client) Origin() string {
	return c.baseURL.Scheme + "://" + c.baseURL.Host
}

// Request performs method on the API-relative path. body is serialized to
// JSON when non-nil and omitted entirely otherwise. The response body is
// returned raw; any failure is a *RequestError, with the server-supplied
// detail message when one can be extracted.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &RequestError{Message: fmt.Sprintf("encode request body: %v", err)}
		}
		payload = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("build request: %v", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-Request-ID", uuid.NewString())
	// A missing token is recoverable here: the request still goes out and
	// the server's rejection comes back as a RequestError.
	if token, ok := CookieValue(c.cookies(), c.csrfCookie); ok {
		req.Header.Set("X-CSRFToken", token)
	}

	c.log.Debug("api request", slog.String("method", method), slog.String("path", path))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("request %s %s: %v", method, path, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("read response for %s: %v", path, err), Status: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := errorFromResponse(resp.StatusCode, data)
		c.log.Debug("api request failed",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("message", reqErr.Message),
		)
		return nil, reqErr
	}

	return json.RawMessage(data), nil
}

func (c *Client) jarCookies() string {
	if c.http.Jar == nil {
		return ""
	}
	pairs := make([]string, 0, 4)
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		pairs = append(pairs, ck.Name+"="+ck.Value)
	}
	return strings.Join(pairs, "; ")
}

// errorFromResponse prefers the server's human-readable detail field and
// falls back to the bare status code when the body is not usable JSON.
func errorFromResponse(status int, body []byte) *RequestError {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Detail != "" {
		return &RequestError{Message: parsed.Detail, Status: status}
	}
	return &RequestError{Message: fmt.Sprintf("request failed: %d", status), Status: status}
}
