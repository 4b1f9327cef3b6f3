package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/marcovilla/storefront-client/pkg/config"
	pkgerrors "github.com/marcovilla/storefront-client/pkg/errors"
	"github.com/marcovilla/storefront-client/pkg/logger"
	"github.com/marcovilla/storefront-client/pkg/metrics"
)

const errorBodyReadLimit int64 = 4096

// TokenSource supplies the bearer token and absorbs the 401 side effect.
// The session store satisfies it.
type TokenSource interface {
	AccessToken() string
	ClearTokens(ctx context.Context) error
}

// Client is the gateway every remote call goes through. It injects the
// bearer token when one is present, attaches a request id, and maps error
// responses onto the client error taxonomy. A 401 on a first attempt clears
// the stored tokens; it does not retry (refresh exchange is an open gap) and
// does not navigate anywhere.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	logg       *logger.Logger
	metrics    *metrics.APIMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMetrics attaches outbound-call counters.
func WithMetrics(m *metrics.APIMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds the gateway for the configured base URL.
func NewClient(cfg config.APIConfig, tokens TokenSource, logg *logger.Logger, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}

	client := &Client{
		// Timeout zero keeps the transport default; no explicit deadline
		// is configured for these calls.
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		logg:       logg,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

type call struct {
	retried bool
}

// CallOption adjusts a single request.
type CallOption func(*call)

// AsRetry marks the request as a retry so a 401 response will not clear the
// stored tokens a second time.
func AsRetry() CallOption {
	return func(c *call) {
		c.retried = true
	}
}

// Get issues a GET with optional query parameters, decoding JSON into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any, opts ...CallOption) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out, opts...)
}

// Post issues a POST with a JSON body, decoding JSON into out.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out, opts...)
}

// Put issues a PUT with a JSON body, decoding JSON into out.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out, opts...)
}

// Delete issues a DELETE, decoding JSON into out when provided.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out, opts...)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, opts ...CallOption) error {
	var settings call
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}

	endpoint := c.buildURL(path)
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	ctx = c.logg.WithRequestID(ctx, requestID)
	c.logg.Debug(c.logg.WithFields(ctx, map[string]any{
		"method": method,
		"path":   path,
	}), "api request")
	c.metrics.IncRequest(method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.IncFailure(method, path, 0)
		return pkgerrors.Wrap(pkgerrors.CodeTransport, err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.metrics.IncFailure(method, path, resp.StatusCode)
			return pkgerrors.Wrap(pkgerrors.CodeTransport, err, "decode response body")
		}
		return nil
	}

	c.metrics.IncFailure(method, path, resp.StatusCode)
	return c.errorFromResponse(ctx, method, path, resp, settings.retried)
}

type errorBody struct {
	Detail  string `json:"detail"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (b errorBody) text() string {
	for _, candidate := range []string{b.Detail, b.Error, b.Message} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

func (c *Client) errorFromResponse(ctx context.Context, method, path string, resp *http.Response, retried bool) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	var parsed errorBody
	_ = json.Unmarshal(raw, &parsed)

	detail := parsed.text()
	if detail == "" {
		detail = strings.TrimSpace(string(raw))
	}

	if resp.StatusCode == http.StatusUnauthorized && !retried {
		// Session is no longer valid server-side. Drop the stored tokens;
		// the caller decides navigation.
		if err := c.tokens.ClearTokens(ctx); err != nil {
			c.logg.Error(ctx, "clear tokens after 401", err)
		}
	}

	code := pkgerrors.CodeForStatus(resp.StatusCode)
	message := detail
	if message == "" {
		message = fmt.Sprintf("%s %s failed with status %d", method, path, resp.StatusCode)
	}

	return pkgerrors.New(code, message).WithDetails(map[string]any{
		"status": resp.StatusCode,
		"detail": detail,
	})
}

func (c *Client) buildURL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}
