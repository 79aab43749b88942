// Package tracer provides a lightweight tracing abstraction for the abuse
// module. The internal interface keeps the hot request path decoupled from
// OpenTelemetry APIs; production wires the OTel adapter, tests the noop.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an int attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names used by the abuse module.
const (
	SpanTrack = "abuse.track"
	SpanBan   = "abuse.ban"
	SpanSweep = "abuse.sweep"
)

// Attribute keys used by the abuse module.
const (
	AttrIdentityID  = "identity_id"
	AttrActionKind  = "action_kind"
	AttrTotalEvents = "total_events"
	AttrBlocked     = "blocked"
	AttrTrigger     = "trigger"
)
