// Package appctx carries request-scoped values through context.
package appctx

import (
	"context"
)

// TraceContext holds distributed tracing identifiers for a request.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

// traceKey is the context key for TraceContext.
type traceKey struct{}

// WithTrace adds trace context to a context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceKey{}, trace)
}

// GetTrace returns trace context or nil if absent.
func GetTrace(ctx context.Context) *TraceContext {
	if t, ok := ctx.Value(traceKey{}).(*TraceContext); ok {
		return t
	}
	return nil
}
