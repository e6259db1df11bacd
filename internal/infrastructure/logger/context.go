package logger

import "context"

type ctxKey int

const requestIDCtxKey ctxKey = iota

// WithRequestID tags the context with the request ID so SQL traces issued
// while serving the request carry the same ID as the access log line.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey, requestID)
}

// RequestIDFrom returns the request ID the context was tagged with, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey).(string)
	return id
}
