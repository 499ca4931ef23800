// Package pharmacy is the authenticated gateway to the pharmacy REST API and
// the typed accessors built on it.
package pharmacy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/auth/adapters/memory"
	authports "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/ports"
	"github.com/Apurer/pharmacy-dispatch/internal/platform/navigation"
	apperrors "github.com/Apurer/pharmacy-dispatch/internal/shared/errors"
	"github.com/Apurer/pharmacy-dispatch/internal/shared/validation"
)

const (
	tracerName = "github.com/Apurer/pharmacy-dispatch/internal/clients/http/pharmacy"

	// RequestIDHeader carries a fresh identifier on every outbound request.
	RequestIDHeader = "X-Request-ID"

	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// Client is the single choke point for calls to the pharmacy API. It attaches
// the stored bearer token and turns every 401 into a global logout.
type Client struct {
	baseURL        string
	http           *http.Client
	tokens         authports.TokenStore
	nav            navigation.Navigator
	onUnauthorized func()
	validate       *validator.Validate
	tracer         trace.Tracer
	logger         *slog.Logger
	metrics        clientMetrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client. Its transport is still wrapped
// for tracing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenStore sets where the session token is read and cleared.
func WithTokenStore(store authports.TokenStore) Option {
	return func(c *Client) { c.tokens = store }
}

// WithNavigator sets where the client redirects after a 401.
func WithNavigator(nav navigation.Navigator) Option {
	return func(c *Client) { c.nav = nav }
}

// WithOnUnauthorized registers a hook run after the token was cleared on a 401.
func WithOnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTracer sets the tracer used for request spans.
func WithTracer(tr trace.Tracer) Option {
	return func(c *Client) { c.tracer = tr }
}

// WithMeter records request counts and latencies on m.
func WithMeter(m metric.Meter) Option {
	return func(c *Client) { c.metrics = newClientMetrics(m) }
}

// NewClient builds a gateway for the API rooted at baseURL. No request
// timeout is applied unless the supplied http.Client has one.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("pharmacy base URL is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("parse pharmacy base URL: %w", err)
	}
	c := &Client{
		baseURL: baseURL,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newClientMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	hc := *c.http
	transport := hc.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	hc.Transport = otelhttp.NewTransport(transport)
	c.http = &hc
	if c.tokens == nil {
		c.tokens = memory.NewTokenStore()
	}
	if c.nav == nil {
		c.nav = navigation.NewRouter(navigation.HomePath)
	}
	if c.tracer == nil {
		c.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if c.logger == nil {
		c.logger = defaultLogger()
	}
	c.validate = validation.New()
	return c, nil
}

// TokenStore exposes the store the gateway reads its credential from.
func (c *Client) TokenStore() authports.TokenStore { return c.tokens }

type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(op, method, path string, payload any) (request, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("encode %s request: %w", op, err)
	}
	return request{op: op, method: method, path: path, body: bytes.NewReader(raw), contentType: contentTypeJSON}, nil
}

// do sends req and decodes a 2xx body into out. Non-2xx answers come back as
// *apperrors.APIError, network failures as *apperrors.TransportError.
func (c *Client) do(ctx context.Context, req request, out any) error {
	ctx, span := c.tracer.Start(ctx, "pharmacy."+req.op, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.method", req.method), attribute.String("pharmacy.path", req.path)))
	defer span.End()
	c.metrics.recordRequest(ctx, req.op)

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return c.handleError(ctx, span, req, fmt.Errorf("build %s request: %w", req.op, err))
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set(RequestIDHeader, requestID)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	token, ok, err := c.tokens.Get(ctx)
	if err != nil {
		return c.handleError(ctx, span, req, fmt.Errorf("read access token: %w", err))
	}
	if ok && token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return c.handleError(ctx, span, req, &apperrors.TransportError{Method: req.method, Path: req.path, Err: err})
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.handleError(ctx, span, req, &apperrors.TransportError{Method: req.method, Path: req.path, Err: err})
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.logger.LogAttrs(ctx, slog.LevelDebug, "pharmacy api call",
		slog.String("op", req.op),
		slog.String("method", req.method),
		slog.String("path", req.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(started)),
		slog.String("request_id", requestID),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		c.expire(ctx, req)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := apperrors.DecodeAPIError(resp.StatusCode, body)
		apiErr.RequestID = requestID
		return c.handleError(ctx, span, req, apiErr)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return c.handleError(ctx, span, req, fmt.Errorf("decode %s response: %w", req.op, err))
	}
	return nil
}

// expire is the global logout: the token goes, and the user is sent to the
// login view unless already there.
func (c *Client) expire(ctx context.Context, req request) {
	c.metrics.recordUnauthorized(ctx)
	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelError, "clear access token", slog.String("error", err.Error()))
	}
	if c.nav.CurrentPath() != navigation.LoginPath {
		c.nav.Navigate(navigation.LoginPath)
	}
	c.logger.LogAttrs(ctx, slog.LevelWarn, "session expired, logged out", slog.String("op", req.op))
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

func (c *Client) handleError(ctx context.Context, span trace.Span, req request, err error) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	c.metrics.recordError(ctx, req.op)
	return err
}

func get[T any](ctx context.Context, c *Client, op, path string, query url.Values) (T, error) {
	var out T
	err := c.do(ctx, request{op: op, method: http.MethodGet, path: path, query: query}, &out)
	return out, err
}

func send[T any](ctx context.Context, c *Client, op, method, path string, payload any) (T, error) {
	var out T
	req := request{op: op, method: method, path: path}
	if payload != nil {
		var err error
		if req, err = jsonRequest(op, method, path, payload); err != nil {
			return out, err
		}
	}
	err := c.do(ctx, req, &out)
	return out, err
}

type clientMetrics struct {
	requests     metric.Int64Counter
	errors       metric.Int64Counter
	unauthorized metric.Int64Counter
}

func newClientMetrics(m metric.Meter) clientMetrics {
	if m == nil {
		return clientMetrics{}
	}
	requests, _ := m.Int64Counter("pharmacy.client.requests", metric.WithDescription("Number of calls to the pharmacy API"))
	failures, _ := m.Int64Counter("pharmacy.client.errors", metric.WithDescription("Number of failed calls to the pharmacy API"))
	unauthorized, _ := m.Int64Counter("pharmacy.client.unauthorized", metric.WithDescription("Number of global logouts caused by a 401"))
	return clientMetrics{requests: requests, errors: failures, unauthorized: unauthorized}
}

func (m clientMetrics) recordRequest(ctx context.Context, op string) {
	if m.requests != nil {
		m.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	}
}

func (m clientMetrics) recordError(ctx context.Context, op string) {
	if m.errors != nil {
		m.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	}
}

func (m clientMetrics) recordUnauthorized(ctx context.Context) {
	if m.unauthorized != nil {
		m.unauthorized.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
