package observability

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Graph expects a GUID here and echoes it in the response.
const clientRequestIDHeader = "client-request-id"

// Transport tags outbound requests with a client-request-id and logs their
// completion at debug level.
type Transport struct {
	Base http.RoundTripper
	log  *Logger
}

func NewTransport(base http.RoundTripper, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, log: Component(logger, "http.client")}
}

func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()
	if r.Header.Get(clientRequestIDHeader) == "" {
		r = r.Clone(ctx)
		r.Header.Set(clientRequestIDHeader, uuid.NewString())
	}
	start := time.Now()
	resp, err := t.Base.RoundTrip(r)
	if err != nil {
		t.log.Debug(ctx, "request failed", "method", r.Method, "path", r.URL.Path, "duration_ms", time.Since(start).Milliseconds(), "error", err.Error())
		return nil, err
	}
	t.log.Debug(ctx, "request completed", "method", r.Method, "path", r.URL.Path, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	return resp, nil
}
