package linkedin

import "time"

// InitializeUploadRequestBody declares an upcoming image upload.
type InitializeUploadRequestBody struct {
	InitializeUploadRequest InitializeUploadRequest `json:"initializeUploadRequest"`
}

// InitializeUploadRequest names the member or organization that will own the image.
type InitializeUploadRequest struct {
	Owner URN `json:"owner"`
}

// NewInitializeUploadRequestBody returns a request body for owner.
func NewInitializeUploadRequestBody(owner URN) InitializeUploadRequestBody {
	return InitializeUploadRequestBody{InitializeUploadRequest: InitializeUploadRequest{Owner: owner}}
}

// InitializeUpload is the response to an initializeUpload action.
type InitializeUpload struct {
	Value UploadInstructions `json:"value"`
}

// UploadInstructions tells the caller where to PUT the image bytes and which
// URN the image will have once uploaded.
type UploadInstructions struct {
	UploadURLExpiresAt int64  `json:"uploadUrlExpiresAt,omitempty"`
	UploadURL          string `json:"uploadUrl"`
	Image              URN    `json:"image"`
}

// ExpiresAt converts the epoch-millisecond expiry. It is the zero time when
// LinkedIn did not send one.
func (u UploadInstructions) ExpiresAt() time.Time {
	if u.UploadURLExpiresAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(u.UploadURLExpiresAt).UTC()
}
