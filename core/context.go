package core

import "context"

// Context keys for pipeline options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	requestSeqKey     contextKey = "requestSeq"
)

// WithSuppressHeader marks the context so the pipeline stays quiet.
// The MCP server uses it because stdio carries the protocol.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether log lines should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: log as usual
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// WithRequestSeq tags the context with the sequence number of a channel request.
func WithRequestSeq(ctx context.Context, seq uint64) context.Context {
	return context.WithValue(ctx, requestSeqKey, seq)
}

// RequestSeq returns the request sequence carried by ctx, or 0 when absent.
func RequestSeq(ctx context.Context) uint64 {
	val := ctx.Value(requestSeqKey)
	if val == nil {
		return 0
	}
	seq, ok := val.(uint64)
	if !ok {
		return 0
	}
	return seq
}
