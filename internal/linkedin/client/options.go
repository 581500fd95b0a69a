package client

import "net/http"

type options struct {
	httpClient      *http.Client
	requestor       WebRequestor
	uploadRequestor WebRequestor
	userAgent       string
}

// Option customizes a VersionedClient.
type Option func(*options)

// WithHTTPClient sets the http.Client behind both default requestors.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithWebRequestor replaces the requestor used for authenticated API calls.
func WithWebRequestor(r WebRequestor) Option {
	return func(o *options) {
		o.requestor = r
	}
}

// WithUploadRequestor replaces the requestor used for pre-signed upload URLs.
// It must not attach any credentials of its own.
func WithUploadRequestor(r WebRequestor) Option {
	return func(o *options) {
		o.uploadRequestor = r
	}
}

// WithUserAgent sets the User-Agent sent on API calls.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}
