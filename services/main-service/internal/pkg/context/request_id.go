package context

import "context"

type requestIDKey struct{}

const NoRequestID = "no-request-id"

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func GetRequestID(ctx context.Context) string {
	v := ctx.Value(requestIDKey{})
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// TraceID is GetRequestID with a non-empty fallback, for outbox and audit records.
func TraceID(ctx context.Context) string {
	if s := GetRequestID(ctx); s != "" {
		return s
	}
	return NoRequestID
}
