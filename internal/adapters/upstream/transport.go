package upstream

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/okian/safeeats/pkg/logger"
)

// RequestIDHeader carries the outbound request id.
const RequestIDHeader = "X-Request-ID"

// LoggingRoundTripper tags each outbound request with an id and logs the
// request and its response.
type LoggingRoundTripper struct {
	next http.RoundTripper
	log  logger.Logger
}

// NewLoggingRoundTripper wraps next. A nil next uses http.DefaultTransport.
func NewLoggingRoundTripper(next http.RoundTripper, log logger.Logger) LoggingRoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if log == nil {
		log = logger.Get()
	}
	return LoggingRoundTripper{next: next, log: log}
}

// RoundTrip implements http.RoundTripper.
func (rt LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = xid.New().String()
		req = req.Clone(ctx)
		req.Header.Set(RequestIDHeader, requestID)
	}

	rt.log.Debug(ctx, "upstream request",
		logger.String("request_id", requestID),
		logger.String("method", req.Method),
		logger.String("url", req.URL.String()),
	)

	start := time.Now()
	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		rt.log.Warn(ctx, "upstream request failed",
			logger.String("request_id", requestID),
			logger.Duration("duration", time.Since(start)),
			logger.Error(err),
		)
		return nil, fmt.Errorf("next.RoundTrip: %w", err)
	}

	rt.log.Debug(ctx, "upstream response",
		logger.String("request_id", requestID),
		logger.Int("status", resp.StatusCode),
		logger.Duration("duration", time.Since(start)),
	)
	return resp, nil
}
