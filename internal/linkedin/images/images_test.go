package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/blacktop/lipost/internal/linkedin"
	"github.com/blacktop/lipost/internal/linkedin/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

const imageURN = "urn:li:image:C4E10AQFoyyAjHPMQuQ"

// fakeLinkedIn serves the initializeUpload action and the pre-signed upload URL.
type fakeLinkedIn struct {
	*httptest.Server

	mu            sync.Mutex
	initCalls     int
	owner         string
	uploaded      []byte
	uploadHeaders http.Header

	initStatus   int
	uploadStatus int
	initBody     string
}

func newFakeLinkedIn(t *testing.T) *fakeLinkedIn {
	t.Helper()
	f := &fakeLinkedIn{initStatus: http.StatusOK, uploadStatus: http.StatusCreated}
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/images", f.handleInit)
	mux.HandleFunc("/dms-uploads/", f.handleUpload)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeLinkedIn) handleInit(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++

	if r.Method != http.MethodPost || r.URL.Query().Get("action") != "initializeUpload" {
		http.Error(w, "unexpected request", http.StatusBadRequest)
		return
	}
	if r.Header.Get("Authorization") != "Bearer secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var body linkedin.InitializeUploadRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.owner = body.InitializeUploadRequest.Owner.String()

	if f.initStatus != http.StatusOK {
		w.WriteHeader(f.initStatus)
		fmt.Fprintf(w, `{"status":%d,"message":"init rejected"}`, f.initStatus)
		return
	}
	if f.initBody != "" {
		io.WriteString(w, f.initBody)
		return
	}
	fmt.Fprintf(w, `{"value":{"uploadUrlExpiresAt":1650567510704,"uploadUrl":%q,"image":%q}}`,
		f.URL+"/dms-uploads/C4E10AQFoyyAjHPMQuQ/uploaded-image/0?ca=vector_ads", imageURN)
}

func (f *fakeLinkedIn) handleUpload(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method != http.MethodPut {
		http.Error(w, "unexpected method", http.StatusMethodNotAllowed)
		return
	}
	data, _ := io.ReadAll(r.Body)
	f.uploaded = data
	f.uploadHeaders = r.Header.Clone()

	w.Header().Set("X-Upload-Id", "up-1")
	w.WriteHeader(f.uploadStatus)
}

type fakeState struct {
	initCalls     int
	owner         string
	uploaded      []byte
	uploadHeaders http.Header
}

func (f *fakeLinkedIn) state() fakeState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeState{initCalls: f.initCalls, owner: f.owner, uploaded: f.uploaded, uploadHeaders: f.uploadHeaders}
}

func (f *fakeLinkedIn) connection(t *testing.T, opts ...client.Option) *Connection {
	t.Helper()
	opts = append([]client.Option{client.WithHTTPClient(f.Client())}, opts...)
	c, err := client.New(client.Config{AccessToken: "secret", BaseURL: f.URL + "/rest"}, opts...)
	require.NoError(t, err)
	return New(c)
}

func ownerBody() linkedin.InitializeUploadRequestBody {
	return linkedin.NewInitializeUploadRequestBody(linkedin.MustParseURN("urn:li:organization:5515715"))
}

type failingPut struct{ err error }

func (f failingPut) ExecutePost(context.Context, string, []byte, map[string]string) (*client.Response, error) {
	return nil, f.err
}

func (f failingPut) ExecutePut(context.Context, string, map[string]string, *linkedin.BinaryAttachment) (*client.Response, error) {
	return nil, f.err
}

func TestConnection_InitializeUpload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFakeLinkedIn(t)

		res, err := f.connection(t).InitializeUpload(context.Background(), ownerBody())
		require.NoError(t, err)

		assert.Equal(t, imageURN, res.Value.Image.String())
		assert.Contains(t, res.Value.UploadURL, "/dms-uploads/")
		assert.Equal(t, "urn:li:organization:5515715", f.state().owner)
	})

	t.Run("missing owner", func(t *testing.T) {
		f := newFakeLinkedIn(t)

		_, err := f.connection(t).InitializeUpload(context.Background(), linkedin.InitializeUploadRequestBody{})
		assert.ErrorAs(t, err, &linkedin.ValidationError{})
		assert.Zero(t, f.state().initCalls)
	})

	t.Run("api error", func(t *testing.T) {
		f := newFakeLinkedIn(t)
		f.initStatus = http.StatusForbidden

		_, err := f.connection(t).InitializeUpload(context.Background(), ownerBody())
		require.Error(t, err)
		assert.True(t, linkedin.IsStatus(err, http.StatusForbidden))
		assert.Contains(t, err.Error(), "init rejected")
	})

	t.Run("incomplete response", func(t *testing.T) {
		f := newFakeLinkedIn(t)
		f.initBody = `{"value":{"image":"urn:li:image:abc"}}`

		_, err := f.connection(t).InitializeUpload(context.Background(), ownerBody())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no upload url")

		f.initBody = `{"value":{"uploadUrl":"https://example.com/up"}}`
		_, err = f.connection(t).InitializeUpload(context.Background(), ownerBody())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no image urn")
	})
}

func TestConnection_UploadImage(t *testing.T) {
	t.Run("two phase upload", func(t *testing.T) {
		f := newFakeLinkedIn(t)

		res, err := f.connection(t).UploadImage(context.Background(), ownerBody(), "shot.png", pngData)
		require.NoError(t, err)

		assert.Equal(t, imageURN, res.Value.Image.String())
		assert.Equal(t, 1, f.state().initCalls)
		assert.Equal(t, pngData, f.state().uploaded)
		assert.Empty(t, f.state().uploadHeaders.Get("Authorization"), "pre-signed upload must not carry the API token")
		assert.Empty(t, f.state().uploadHeaders.Get("LinkedIn-Version"))
		assert.Equal(t, "image/png", f.state().uploadHeaders.Get("Content-Type"))
	})

	t.Run("rejects non image before any request", func(t *testing.T) {
		f := newFakeLinkedIn(t)

		_, err := f.connection(t).UploadImage(context.Background(), ownerBody(), "notes.txt", []byte("hello"))
		assert.ErrorAs(t, err, &linkedin.ValidationError{})
		assert.Zero(t, f.state().initCalls)
	})

	t.Run("upload rejected", func(t *testing.T) {
		f := newFakeLinkedIn(t)
		f.uploadStatus = http.StatusForbidden

		_, err := f.connection(t).UploadImage(context.Background(), ownerBody(), "shot.png", pngData)
		require.Error(t, err)
		assert.True(t, linkedin.IsStatus(err, http.StatusForbidden))
		assert.Contains(t, err.Error(), "upload image")
	})

	t.Run("upload network failure", func(t *testing.T) {
		f := newFakeLinkedIn(t)
		cause := errors.New("connection reset by peer")

		_, err := f.connection(t, client.WithUploadRequestor(failingPut{err: cause})).
			UploadImage(context.Background(), ownerBody(), "shot.png", pngData)

		var netErr *linkedin.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Equal(t, "upload image", netErr.Op)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "LinkedIn request failed")
	})

	t.Run("bad upload url", func(t *testing.T) {
		f := newFakeLinkedIn(t)
		f.initBody = `{"value":{"uploadUrl":"/relative/path","image":"urn:li:image:abc"}}`

		_, err := f.connection(t).UploadImage(context.Background(), ownerBody(), "shot.png", pngData)
		assert.ErrorAs(t, err, &linkedin.ValidationError{})
	})
}

func TestConnection_UploadImageFile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFakeLinkedIn(t)
		path := filepath.Join(t.TempDir(), "shot.png")
		require.NoError(t, os.WriteFile(path, pngData, 0o600))

		urn, err := f.connection(t).UploadImageFile(context.Background(), ownerBody(), path)
		require.NoError(t, err)
		assert.Equal(t, imageURN, urn.String())
		assert.Equal(t, pngData, f.state().uploaded)
	})

	t.Run("missing file", func(t *testing.T) {
		f := newFakeLinkedIn(t)

		_, err := f.connection(t).UploadImageFile(context.Background(), ownerBody(), filepath.Join(t.TempDir(), "nope.png"))
		var verr linkedin.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Reason, "not found")
		assert.Zero(t, f.state().initCalls)
	})
}

func TestConnection_UploadImageBytes(t *testing.T) {
	f := newFakeLinkedIn(t)
	conn := f.connection(t)
	uploadURL, err := ParseUploadURL(f.URL + "/dms-uploads/abc")
	require.NoError(t, err)

	headers, err := conn.UploadImageBytes(context.Background(), client.NewWebRequestor(f.Client()), uploadURL,
		map[string]string{"x-amz-meta-name": "shot"}, "shot.png", pngData)
	require.NoError(t, err)

	assert.Equal(t, "up-1", headers["X-Upload-Id"])
	assert.Equal(t, "shot", f.state().uploadHeaders.Get("X-Amz-Meta-Name"))
	assert.Equal(t, pngData, f.state().uploaded)

	_, err = conn.UploadImageBytes(context.Background(), nil, nil, nil, "shot.png", pngData)
	assert.ErrorAs(t, err, &linkedin.ValidationError{})
}

func TestConnection_UploadImageFileTo(t *testing.T) {
	f := newFakeLinkedIn(t)
	uploadURL, err := ParseUploadURL(f.URL + "/dms-uploads/abc")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(path, pngData, 0o600))

	headers, err := f.connection(t).UploadImageFileTo(context.Background(), client.NewWebRequestor(f.Client()), uploadURL, nil, path)
	require.NoError(t, err)
	assert.Equal(t, "up-1", headers["X-Upload-Id"])
	assert.Equal(t, pngData, f.state().uploaded)

	_, err = PutFile(context.Background(), nil, uploadURL, nil, filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorAs(t, err, &linkedin.ValidationError{})
}

func TestParseUploadURL(t *testing.T) {
	tests := []struct {
		raw   string
		valid bool
	}{
		{raw: "https://www.linkedin.com/dms-uploads/abc/uploaded-image/0?ca=vector_ads", valid: true},
		{raw: "http://127.0.0.1:8080/upload", valid: true},
		{raw: "/relative", valid: false},
		{raw: "ftp://example.com/file", valid: false},
		{raw: "https://", valid: false},
		{raw: "://bad", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := ParseUploadURL(tt.raw)
			if !tt.valid {
				assert.ErrorAs(t, err, &linkedin.ValidationError{})
				return
			}
			require.NoError(t, err)
			parsed, _ := url.Parse(tt.raw)
			assert.Equal(t, parsed.String(), u.String())
		})
	}
}
