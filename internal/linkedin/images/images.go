// Package images uploads images through LinkedIn's Images API: an
// initializeUpload action followed by a PUT of the raw bytes to the returned
// pre-signed URL.
package images

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/blacktop/lipost/internal/linkedin"
	"github.com/blacktop/lipost/internal/linkedin/client"
	"github.com/blacktop/lipost/internal/logutil"
)

const (
	providerName = "linkedin"

	imagesPath       = "/images"
	actionKey        = "action"
	initializeUpload = "initializeUpload"
)

// Connection groups the image operations of a VersionedClient.
type Connection struct {
	client *client.VersionedClient
}

// New returns a Connection that issues requests through c.
func New(c *client.VersionedClient) *Connection {
	return &Connection{client: c}
}

// InitializeUpload declares an upcoming upload and returns where to send it.
func (c *Connection) InitializeUpload(ctx context.Context, body linkedin.InitializeUploadRequestBody) (*linkedin.InitializeUpload, error) {
	if body.InitializeUploadRequest.Owner.IsZero() {
		return nil, linkedin.ValidationError{Provider: providerName, Reason: "initialize upload: owner is required"}
	}

	var res linkedin.InitializeUpload
	if err := c.client.Publish(ctx, imagesPath, body, &res, client.WithParam(actionKey, initializeUpload)); err != nil {
		return nil, fmt.Errorf("initialize upload: %w", err)
	}
	if res.Value.UploadURL == "" {
		return nil, fmt.Errorf("initialize upload: response has no upload url")
	}
	if res.Value.Image.IsZero() {
		return nil, fmt.Errorf("initialize upload: response has no image urn")
	}

	logutil.Debugf("initialize complete: image=%s expires=%s", res.Value.Image, res.Value.ExpiresAt())
	return &res, nil
}

// UploadImage initializes an upload and PUTs data to the returned URL. The
// returned InitializeUpload carries the image URN in Value.Image.
func (c *Connection) UploadImage(ctx context.Context, body linkedin.InitializeUploadRequestBody, filename string, data []byte) (*linkedin.InitializeUpload, error) {
	if err := linkedin.ValidateImage(filename, data); err != nil {
		return nil, err
	}

	logutil.Debugf("initialize upload: owner=%s bytes=%d", body.InitializeUploadRequest.Owner, len(data))
	initRes, err := c.InitializeUpload(ctx, body)
	if err != nil {
		return nil, err
	}

	uploadURL, err := ParseUploadURL(initRes.Value.UploadURL)
	if err != nil {
		return nil, err
	}

	if _, err := c.UploadImageBytes(ctx, c.client.UploadRequestor(), uploadURL, map[string]string{}, filename, data); err != nil {
		return nil, err
	}
	logutil.Debugf("image uploaded: image=%s", initRes.Value.Image)

	return initRes, nil
}

// UploadImageFile reads path and uploads it, returning the image URN.
func (c *Connection) UploadImageFile(ctx context.Context, body linkedin.InitializeUploadRequestBody, path string) (linkedin.URN, error) {
	data, err := readImage(path)
	if err != nil {
		return linkedin.URN{}, err
	}

	res, err := c.UploadImage(ctx, body, filepath.Base(path), data)
	if err != nil {
		return linkedin.URN{}, err
	}
	return res.Value.Image, nil
}

// UploadImageBytes PUTs data to uploadURL with exactly the given headers and
// returns the response headers. requestor must not carry API credentials.
func (c *Connection) UploadImageBytes(ctx context.Context, requestor client.WebRequestor, uploadURL *url.URL, headers map[string]string, filename string, data []byte) (map[string]string, error) {
	return PutBytes(ctx, requestor, uploadURL, headers, filename, data)
}

// UploadImageFileTo reads path and PUTs it to uploadURL.
func (c *Connection) UploadImageFileTo(ctx context.Context, requestor client.WebRequestor, uploadURL *url.URL, headers map[string]string, path string) (map[string]string, error) {
	return PutFile(ctx, requestor, uploadURL, headers, path)
}

// PutBytes performs the second half of an upload on its own: a single PUT of
// data to a pre-signed URL. It returns the response headers.
func PutBytes(ctx context.Context, requestor client.WebRequestor, uploadURL *url.URL, headers map[string]string, filename string, data []byte) (map[string]string, error) {
	if uploadURL == nil {
		return nil, linkedin.ValidationError{Provider: providerName, Reason: "upload url is required"}
	}
	if requestor == nil {
		requestor = client.NewWebRequestor(nil)
	}

	logutil.Debugf("put upload: file=%s bytes=%d", filename, len(data))
	resp, err := requestor.ExecutePut(ctx, uploadURL.String(), headers, linkedin.NewBinaryAttachment(filename, data))
	if err != nil {
		return nil, &linkedin.NetworkError{Op: "upload image", URL: uploadURL.Redacted(), Err: err}
	}
	if err := client.ValidateResponse(resp); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	return resp.Headers, nil
}

// PutFile is PutBytes for the contents of path.
func PutFile(ctx context.Context, requestor client.WebRequestor, uploadURL *url.URL, headers map[string]string, path string) (map[string]string, error) {
	data, err := readImage(path)
	if err != nil {
		return nil, err
	}
	return PutBytes(ctx, requestor, uploadURL, headers, filepath.Base(path), data)
}

// ParseUploadURL validates an upload URL returned by InitializeUpload.
func ParseUploadURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, linkedin.ValidationError{Provider: providerName, Reason: fmt.Sprintf("invalid upload url: %v", err)}
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, linkedin.ValidationError{Provider: providerName, Reason: fmt.Sprintf("upload url %q is not an absolute http(s) url", raw)}
	}
	return u, nil
}

func readImage(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, linkedin.ValidationError{Provider: providerName, Reason: fmt.Sprintf("image %q not found", path)}
		}
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}
