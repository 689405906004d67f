// HTTP client pipeline shared by every catalog call
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "http://127.0.0.1:8080"
	tracerName     = "github.com/desertthunder/mvx/internal/services"

	// HeaderRequestID correlates a request with server logs.
	HeaderRequestID = "X-Request-ID"
)

// TokenStore is the slice of the session store the pipeline needs.
type TokenStore interface {
	Token() (string, bool)
	ClearToken(token string) (bool, error)
}

// Request describes one call through the pipeline.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Anonymous requests never carry the stored token.
	Anonymous bool
}

// Client is the single chokepoint for outbound catalog calls.
//
// It attaches the stored bearer token, and when the server answers 401 to a token-bearing request it clears that
// token from the store and notifies every forced-logout subscriber before returning the error.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	limiter    *rate.Limiter
	tracer     trace.Tracer
	userAgent  string
	logger     *log.Logger

	mu     sync.Mutex
	subs   map[int]func(token string)
	nextID int
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithHTTPClient sets the transport. The default has a 15 second timeout.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit paces requests to rps per second. Zero or less disables pacing.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) ClientOption {
	return func(c *Client) { c.tracer = t }
}

func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a [Client] for baseURL reading tokens from tokens.
func NewClient(baseURL string, tokens TokenStore, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		tokens:     tokens,
		tracer:     otel.Tracer(tracerName),
		subs:       make(map[int]func(string)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = shared.NewLogger(nil)
	}
	return c
}

// NewClientFromConfig creates a [Client] from the catalog section of the configuration.
func NewClientFromConfig(cfg shared.CatalogConfig, tokens TokenStore, logger *log.Logger) *Client {
	return NewClient(cfg.BaseURL, tokens,
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		WithRateLimit(cfg.RequestsPerSecond),
		WithUserAgent(cfg.UserAgent),
		WithLogger(logger),
	)
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnForcedLogout registers fn to be called with the rejected token whenever the server answers 401 to a
// token-bearing request. The returned func unregisters it.
func (c *Client) OnForcedLogout(fn func(token string)) (unregister func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Do sends r and decodes a 2xx JSON body into out, which may be nil.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	ctx, span := c.tracer.Start(ctx, "HTTP "+r.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.Path),
		),
	)
	defer span.End()

	err := c.do(ctx, span, r, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}

func (c *Client) do(ctx context.Context, span trace.Span, r Request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %w", shared.ErrNetwork, err)
		}
	}

	req, err := c.newRequest(ctx, r)
	if err != nil {
		return err
	}

	attached := ""
	if !r.Anonymous && c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			(&oauth2.Token{AccessToken: token}).SetAuthHeader(req)
			attached = token
		}
	}
	span.SetAttributes(attribute.Bool("mvx.auth.attached", attached != ""))

	logger := c.logger.With("method", r.Method, "path", r.Path, "request_id", req.Header.Get(HeaderRequestID))
	logger.Debug("sending request", "authenticated", attached != "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("request failed", "error", err)
		return fmt.Errorf("%w: %w", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	logger.Debug("received response", "status", resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", shared.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Method:  r.Method,
			Path:    r.Path,
			Problem: decodeProblem(body),
		}

		if resp.StatusCode == http.StatusUnauthorized && attached != "" {
			apiErr.SessionExpired = true
			span.SetAttributes(attribute.Bool("mvx.session.expired", true))
			c.expire(logger, attached)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", shared.ErrAPIRequest, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	u := c.baseURL + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, shared.GenerateID())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// expire clears the rejected token and notifies subscribers. The store only clears when token is still current.
func (c *Client) expire(logger *log.Logger, token string) {
	if c.tokens != nil {
		cleared, err := c.tokens.ClearToken(token)
		if err != nil {
			logger.Warn("failed to clear expired session", "error", err)
		} else if cleared {
			logger.Info("session expired, cleared stored token")
		}
	}

	c.mu.Lock()
	fns := make([]func(string), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(token)
	}
}

func decodeProblem(body []byte) *models.Problem {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var p models.Problem
	if err := json.Unmarshal(body, &p); err != nil {
		return nil
	}
	if p == (models.Problem{}) {
		return nil
	}
	return &p
}
