package scanner

import (
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// QRDecoder decodes QR payloads from frames. A fresh reader is built per
// call; the underlying reader keeps decode state and is not safe to share.
type QRDecoder struct{}

func NewQRDecoder() *QRDecoder {
	return &QRDecoder{}
}

func (d *QRDecoder) Decode(img image.Image) (string, bool, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false, err
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		if _, notFound := err.(gozxing.NotFoundException); notFound {
			return "", false, nil
		}
		return "", false, err
	}

	return result.GetText(), true, nil
}
