// Package httpx builds the outbound HTTP client shared by the data providers.
package httpx

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"activity_service/internal/logging"
)

type Options struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
}

// NewClient returns an *http.Client that retries connection errors and 5xx/429
// responses with backoff and sets the User-Agent header OSM services require.
func NewClient(opts Options, logger zerolog.Logger) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = logging.RetryLogger{Log: logger.With().Str("component", "httpx").Logger()}

	client := rc.StandardClient()
	client.Transport = &userAgentTransport{
		next:      client.Transport,
		userAgent: opts.UserAgent,
	}
	return client
}

type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.next.RoundTrip(req)
}
