// Package analytics records user-interface events emitted by the profile page.
package analytics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ActionType categorizes an event
type ActionType string

const (
	ActionRender  ActionType = "render"
	ActionClick   ActionType = "click"
	ActionChange  ActionType = "change"
	ActionError   ActionType = "error"
	ActionProcess ActionType = "process"
)

// Event names emitted by the profile frames section
const (
	EventEditModalOpen  = "profile_edit_modal_open"
	EventEditModalClose = "profile_edit_modal_close"
)

// DefaultContext is attached to events emitted from the profile page
const DefaultContext = "username_profile"

// Logger records analytics events
type Logger interface {
	LogEventWithContext(ctx context.Context, name string, action ActionType)
}

type pageContextKey struct{}

// WithPageContext attaches the page context name to ctx
func WithPageContext(ctx context.Context, page string) context.Context {
	return context.WithValue(ctx, pageContextKey{}, page)
}

// PageContext returns the page context attached to ctx, or DefaultContext
func PageContext(ctx context.Context) string {
	if page, ok := ctx.Value(pageContextKey{}).(string); ok && page != "" {
		return page
	}
	return DefaultContext
}

// SlogLogger writes events to a structured logger
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a logger backed by l (slog.Default when nil)
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{logger: l.With("component", "analytics")}
}

func (s *SlogLogger) LogEventWithContext(ctx context.Context, name string, action ActionType) {
	s.logger.InfoContext(ctx, "analytics event",
		"event", name,
		"action_type", string(action),
		"context", PageContext(ctx))
}

// MeterLogger counts events on an OpenTelemetry counter
type MeterLogger struct {
	events metric.Int64Counter
}

// NewMeterLogger creates the counter on the global meter provider
func NewMeterLogger() (*MeterLogger, error) {
	meter := otel.Meter("profile-frames/analytics")
	events, err := meter.Int64Counter(
		"profile_frames.analytics.events",
		metric.WithDescription("Analytics events by name and action type"),
	)
	if err != nil {
		return nil, err
	}
	return &MeterLogger{events: events}, nil
}

func (m *MeterLogger) LogEventWithContext(ctx context.Context, name string, action ActionType) {
	m.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", name),
		attribute.String("action_type", string(action)),
		attribute.String("context", PageContext(ctx)),
	))
}

// Multi fans an event out to every logger in order
type Multi []Logger

func (m Multi) LogEventWithContext(ctx context.Context, name string, action ActionType) {
	for _, l := range m {
		if l != nil {
			l.LogEventWithContext(ctx, name, action)
		}
	}
}
