// Package qrcode renders otpauth provisioning URIs as PNG QR codes.
package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned for blank content.
	ErrEmptyContent = errors.New("qrcode: content cannot be empty")
	// ErrEncode wraps a failure of the underlying encoder.
	ErrEncode = errors.New("qrcode: failed to encode")
)

// DefaultSize is the image edge in pixels when none is given.
const DefaultSize = 256

// Renderer produces PNG images at a fixed size.
type Renderer struct {
	size int
}

// NewRenderer returns a Renderer for size-pixel images. Non-positive sizes
// fall back to DefaultSize.
func NewRenderer(size int) *Renderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Renderer{size: size}
}

// PNG encodes content with medium error correction.
func (r *Renderer) PNG(content string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	png, err := skipqrcode.Encode(content, skipqrcode.Medium, r.size)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return png, nil
}

// DataURI returns the PNG as a "data:image/png;base64," URI.
func (r *Renderer) DataURI(content string) (string, error) {
	png, err := r.PNG(content)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
