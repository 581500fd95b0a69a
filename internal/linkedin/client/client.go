package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/blacktop/lipost/internal/linkedin"
	"github.com/blacktop/lipost/internal/logutil"
	"github.com/hashicorp/go-cleanhttp"
)

const (
	headerAuthorization   = "Authorization"
	headerVersion         = "LinkedIn-Version"
	headerRestliProtocol  = "X-Restli-Protocol-Version"
	headerContentType     = "Content-Type"
	headerUserAgent       = "User-Agent"
	restliProtocolVersion = "2.0.0"
	defaultUserAgent      = "lipost/1"
)

// Parameter is a single query string parameter.
type Parameter struct {
	Name  string
	Value string
}

// WithParam is shorthand for Parameter{Name: name, Value: value}.
func WithParam(name, value string) Parameter {
	return Parameter{Name: name, Value: value}
}

// VersionedClient talks to LinkedIn's versioned REST API.
type VersionedClient struct {
	cfg             Config
	requestor       WebRequestor
	uploadRequestor WebRequestor
	userAgent       string
}

// New constructs a VersionedClient. cfg is defaulted and validated; use
// LoadConfig to build it from the environment.
func New(cfg Config, opts ...Option) (*VersionedClient, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{userAgent: defaultUserAgent}
	for _, opt := range opts {
		opt(o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
		httpClient.Timeout = cfg.Timeout
	}
	if o.requestor == nil {
		o.requestor = NewWebRequestor(httpClient)
	}
	if o.uploadRequestor == nil {
		o.uploadRequestor = NewWebRequestor(httpClient)
	}

	return &VersionedClient{
		cfg:             cfg,
		requestor:       o.requestor,
		uploadRequestor: o.uploadRequestor,
		userAgent:       o.userAgent,
	}, nil
}

// Config returns the effective configuration.
func (c *VersionedClient) Config() Config { return c.cfg }

// WebRequestor returns the requestor used for authenticated API calls.
func (c *VersionedClient) WebRequestor() WebRequestor { return c.requestor }

// UploadRequestor returns a requestor with no credentials attached, suitable
// for PUTting bytes to a pre-signed upload URL.
func (c *VersionedClient) UploadRequestor() WebRequestor { return c.uploadRequestor }

// Publish POSTs body as JSON to path and decodes the response into out when
// out is non-nil and the response has a body.
func (c *VersionedClient) Publish(ctx context.Context, path string, body, out any, params ...Parameter) error {
	endpoint, err := c.endpoint(path, params)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	logutil.Debugf("POST %s", endpoint)
	resp, err := c.requestor.ExecutePost(ctx, endpoint, payload, c.apiHeaders())
	if err != nil {
		return &linkedin.NetworkError{Op: "publish " + path, URL: endpoint, Err: err}
	}
	logutil.Debugf("POST %s -> %d", endpoint, resp.StatusCode)

	if err := ValidateResponse(resp); err != nil {
		return err
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *VersionedClient) endpoint(path string, params []Parameter) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL + path)
	if err != nil {
		return "", fmt.Errorf("build endpoint %q: %w", path, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for _, p := range params {
			q.Add(p.Name, p.Value)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *VersionedClient) apiHeaders() map[string]string {
	return map[string]string{
		headerAuthorization:  "Bearer " + c.cfg.AccessToken,
		headerVersion:        c.cfg.Version,
		headerRestliProtocol: restliProtocolVersion,
		headerContentType:    "application/json",
		headerUserAgent:      c.userAgent,
	}
}
