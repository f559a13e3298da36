// Package qr renders the printable product labels. The QR payload is the
// bare product code; the scan flow parses nothing else out of it.
package qr

import (
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

const defaultSize = 256

var ErrEmptyCode = errors.New("product code is empty")

// LabelPNG encodes a product code as a PNG QR image, defaultSize pixels
// square when size <= 0.
func LabelPNG(code string, size int) ([]byte, error) {
	if code == "" {
		return nil, ErrEmptyCode
	}
	if size <= 0 {
		size = defaultSize
	}
	return qrcode.Encode(code, qrcode.Medium, size)
}
