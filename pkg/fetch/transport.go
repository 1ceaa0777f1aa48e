package fetch

import (
	"net/http"
	"time"
)

// UserAgentTransport wraps an http.RoundTripper and adds a User-Agent header.
type UserAgentTransport struct {
	http.RoundTripper
	UserAgent string
}

// RoundTrip executes a single HTTP transaction, adding the User-Agent header.
func (t *UserAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clonedReq := req.Clone(req.Context())
	clonedReq.Header.Set("User-Agent", t.UserAgent)
	base := t.RoundTripper
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clonedReq)
}

// NewHTTPClient returns an http.Client that identifies itself with userAgent.
func NewHTTPClient(userAgent string, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &UserAgentTransport{
			RoundTripper: http.DefaultTransport,
			UserAgent:    userAgent,
		},
	}
}
