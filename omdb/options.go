package omdb

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	timeout    time.Duration
	httpClient *http.Client
	userAgent  string
	limit      rate.Limit
	burst      int
}

func defaultOptions() clientOptions {
	return clientOptions{
		timeout:   30 * time.Second,
		userAgent: "reelshelf",
		limit:     rate.Inf,
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithHTTPClient replaces the HTTP client. The timeout option is ignored when set.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithRateLimit caps outgoing requests to r per second with the given burst.
// A non-positive r disables limiting.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(o *clientOptions) {
		if r <= 0 {
			o.limit = rate.Inf
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.limit = r
		o.burst = burst
	}
}
