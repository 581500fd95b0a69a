package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/blacktop/lipost/internal/linkedin"
	"github.com/hashicorp/go-cleanhttp"
)

const contentTypeOctetStream = "application/octet-stream"

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// WebRequestor executes raw HTTP requests. Implementations add nothing to the
// headers they are given apart from a Content-Type for attachments, so a
// requestor used for pre-signed URLs never leaks API credentials.
type WebRequestor interface {
	ExecutePost(ctx context.Context, url string, body []byte, headers map[string]string) (*Response, error)
	ExecutePut(ctx context.Context, url string, headers map[string]string, attachment *linkedin.BinaryAttachment) (*Response, error)
}

// HTTPRequestor is the net/http backed WebRequestor.
type HTTPRequestor struct {
	client *http.Client
}

// NewWebRequestor wraps httpClient. A nil client gets a pooled cleanhttp client.
func NewWebRequestor(httpClient *http.Client) *HTTPRequestor {
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
		httpClient.Timeout = defaultTimeout
	}
	return &HTTPRequestor{client: httpClient}
}

// ExecutePost sends body with the given headers.
func (r *HTTPRequestor) ExecutePost(ctx context.Context, url string, body []byte, headers map[string]string) (*Response, error) {
	return r.execute(ctx, http.MethodPost, url, body, headers)
}

// ExecutePut sends the attachment bytes as the raw request body.
func (r *HTTPRequestor) ExecutePut(ctx context.Context, url string, headers map[string]string, attachment *linkedin.BinaryAttachment) (*Response, error) {
	var body []byte
	merged := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		merged[k] = v
	}
	if attachment != nil {
		body = attachment.Data
		if !hasHeader(merged, "Content-Type") {
			contentType := attachment.ContentType
			if contentType == "" {
				contentType = contentTypeOctetStream
			}
			merged["Content-Type"] = contentType
		}
	}
	return r.execute(ctx, http.MethodPut, url, body, merged)
}

func (r *HTTPRequestor) execute(ctx context.Context, method, url string, body []byte, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Headers:    flattenHeaders(resp.Header),
	}, nil
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, values := range h {
		out[k] = strings.Join(values, ", ")
	}
	return out
}

func hasHeader(headers map[string]string, name string) bool {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// ValidateResponse returns a *linkedin.ResponseError for anything outside 2xx.
func ValidateResponse(resp *Response) error {
	if resp == nil {
		return fmt.Errorf("validate response: no response")
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return linkedin.NewResponseError(resp.StatusCode, resp.Body)
}
