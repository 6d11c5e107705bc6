package client

import (
	"context"
	"net/http"

	"github.com/devilmonastery/novel/internal/pkg/idgen"
	"github.com/devilmonastery/novel/internal/pkg/metrics"
)

// RequestIDHeader carries a per-request snowflake ID to the backend
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID returns a context whose API calls reuse id instead of
// generating their own. novel-web uses it to tie backend calls to the page
// request that caused them.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the ID set by WithRequestID, if any
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// requestIDTransport tags outgoing requests with a request ID
type requestIDTransport struct {
	base http.RoundTripper
}

// NewTransport wraps base with request IDs and API metrics
func NewTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &requestIDTransport{base: metrics.NewAPIMetricsTransport(base)}
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) != "" {
		return t.base.RoundTrip(req)
	}
	id := RequestIDFromContext(req.Context())
	if id == "" {
		id = idgen.GenerateID()
	}
	// RoundTrippers must not modify the caller's request
	clone := req.Clone(req.Context())
	clone.Header.Set(RequestIDHeader, id)
	return t.base.RoundTrip(clone)
}
