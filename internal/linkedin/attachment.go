package linkedin

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const defaultContentType = "application/octet-stream"

// BinaryAttachment is a named blob sent as a raw request body.
type BinaryAttachment struct {
	Filename    string
	Data        []byte
	ContentType string
}

// NewBinaryAttachment wraps data and sniffs its content type.
func NewBinaryAttachment(filename string, data []byte) *BinaryAttachment {
	return &BinaryAttachment{
		Filename:    filename,
		Data:        data,
		ContentType: DetectContentType(data),
	}
}

// DetectContentType sniffs the MIME type of data, without parameters.
func DetectContentType(data []byte) string {
	if len(data) == 0 {
		return defaultContentType
	}
	// text types come back with a charset parameter
	contentType, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return contentType
}

var supportedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// ValidateImage rejects data that LinkedIn's Images API will not accept.
func ValidateImage(filename string, data []byte) error {
	if len(data) == 0 {
		return invalid("image %q is empty", filename)
	}
	mt := mimetype.Detect(data)
	for _, supported := range supportedImageTypes {
		if mt.Is(supported) {
			return nil
		}
	}
	return invalid("unsupported image type %s for %q", mt.String(), filename)
}
