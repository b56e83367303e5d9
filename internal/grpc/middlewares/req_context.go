package middleware

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestIDHeader is honoured when the caller already has a correlation id.
const RequestIDHeader = "x-request-id"

func ContextMiddleware(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	return handler(WithRequestID(ctx, incomingRequestID(ctx)), req)
}

// WithRequestID stores id on ctx, generating one when id is empty.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = generateRequestID()
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the id stored by ContextMiddleware, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get(RequestIDHeader); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func generateRequestID() string {
	return uuid.NewString()
}
