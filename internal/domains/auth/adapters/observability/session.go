package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	authdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/domain"
	authports "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/ports"
)

const tracerName = "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/adapters/observability/session"

// Session decorates the session manager with tracing, logging, and metrics.
type Session struct {
	inner   authports.Session
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics sessionMetrics
}

type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Session) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Session) { s.metrics = newSessionMetrics(m) }
}

// New wraps the core session.
func New(inner authports.Session, opts ...Option) authports.Session {
	s := &Session{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newSessionMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Session) Current(ctx context.Context) (authdomain.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "Session.Current")
	defer span.End()
	identity, err := s.inner.Current(ctx)
	if err != nil {
		return identity, s.handleError(ctx, span, err, "failed to derive identity")
	}
	span.SetAttributes(attribute.Bool("auth.authenticated", identity.IsAuthenticated()), attribute.String("auth.role", string(identity.Role)))
	return identity, nil
}

func (s *Session) Login(ctx context.Context, username, password string) (authdomain.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "Session.Login", trace.WithAttributes(attribute.String("auth.username", username)))
	defer span.End()
	identity, err := s.inner.Login(ctx, username, password)
	if err != nil {
		s.metrics.recordFailure(ctx)
		return identity, s.handleError(ctx, span, err, "login failed", slog.String("username", username))
	}
	s.metrics.recordLogin(ctx)
	s.logInfo(ctx, "logged in", slog.String("subject", identity.Subject), slog.String("role", string(identity.Role)))
	return identity, nil
}

func (s *Session) Logout(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "Session.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx); err != nil {
		return s.handleError(ctx, span, err, "logout failed")
	}
	s.metrics.recordLogout(ctx)
	s.logInfo(ctx, "logged out")
	return nil
}

func (s *Session) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Session) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Session) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type sessionMetrics struct {
	logins   metric.Int64Counter
	failures metric.Int64Counter
	logouts  metric.Int64Counter
}

func newSessionMetrics(m metric.Meter) sessionMetrics {
	if m == nil {
		return sessionMetrics{}
	}
	logins, _ := m.Int64Counter("pharmacy.session.logins", metric.WithDescription("Number of successful logins"))
	failures, _ := m.Int64Counter("pharmacy.session.login_failures", metric.WithDescription("Number of rejected logins"))
	logouts, _ := m.Int64Counter("pharmacy.session.logouts", metric.WithDescription("Number of explicit logouts"))
	return sessionMetrics{logins: logins, failures: failures, logouts: logouts}
}

func (m sessionMetrics) recordLogin(ctx context.Context) {
	if m.logins != nil {
		m.logins.Add(ctx, 1)
	}
}

func (m sessionMetrics) recordFailure(ctx context.Context) {
	if m.failures != nil {
		m.failures.Add(ctx, 1)
	}
}

func (m sessionMetrics) recordLogout(ctx context.Context) {
	if m.logouts != nil {
		m.logouts.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ authports.Session = (*Session)(nil)
