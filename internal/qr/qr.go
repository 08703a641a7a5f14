// Package qr renders reservation check-in codes as QR images.
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Size is the pixel width of generated QR images. 256 scans reliably
// from a phone screen at the door.
const Size = 256

// Encode renders the check-in code as a PNG. Medium error correction
// keeps the image small while tolerating screen glare.
func Encode(code string) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("qr: empty code")
	}
	png, err := qrcode.Encode(code, qrcode.Medium, Size)
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}
	return png, nil
}
