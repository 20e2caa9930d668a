package logging

import "context"

type ctxKey struct{}

// RequestIDKey is the attribute name under which adapters record the request
// id carried by the context.
const RequestIDKey = "request_id"

// ContextWithRequestID returns a copy of ctx carrying id. Every record logged
// with the returned context gets a request_id attribute.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the id stored by ContextWithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
