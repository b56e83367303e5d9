package middleware

import (
	"context"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var info = &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

func okHandler(ctx context.Context, req interface{}) (interface{}, error) {
	return RequestID(ctx), nil
}

func TestContextMiddlewareGeneratesID(t *testing.T) {
	resp, err := ContextMiddleware(context.Background(), nil, info, okHandler)
	require.NoError(t, err)
	assert.Len(t, resp, 36)
}

func TestContextMiddlewareKeepsIncomingID(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "abc-123"))

	resp, err := ContextMiddleware(ctx, nil, info, okHandler)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp)
}

func TestRateLimitingInterceptor(t *testing.T) {
	interceptor := NewRateLimitingInterceptor(rate.NewLimiter(rate.Limit(0.001), 1))

	_, err := interceptor(context.Background(), nil, info, okHandler)
	require.NoError(t, err)

	_, err = interceptor(context.Background(), nil, info, okHandler)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestMetricsInterceptor(t *testing.T) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_requests"}, []string{"method", "code"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_latency"}, []string{"method"})
	interceptor := NewMetricsInterceptor(requests, latency)

	_, _ = interceptor(context.Background(), nil, info, okHandler)
	_, _ = interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "unknown service")
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(requests.WithLabelValues("Check", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(requests.WithLabelValues("Check", "NotFound")))
}

func TestLoggingInterceptorPassesThrough(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	interceptor := NewLoggingInterceptor(logger)

	ctx := WithRequestID(context.Background(), "req-1")
	resp, err := interceptor(ctx, nil, info, okHandler)
	require.NoError(t, err)
	assert.Equal(t, "req-1", resp)
}
