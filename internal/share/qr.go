// Package share renders the game's public URL as a scannable QR code.
// It reads nothing but its configured URL and never touches game state.
package share

import (
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 256

// Link is the sharing helper for one fixed URL.
type Link struct {
	URL string
}

// PNG encodes the URL as a QR image of size×size pixels.
func (l Link) PNG(size int) ([]byte, error) {
	if l.URL == "" {
		return nil, errors.New("share: no app url configured")
	}
	if size <= 0 || size > 1024 {
		size = DefaultSize
	}
	return qrcode.Encode(l.URL, qrcode.Low, size)
}
