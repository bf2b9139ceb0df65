package qr

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
)

// Decode reads the text of the first QR symbol found in a PNG or JPEG image.
func Decode(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrQRDecode
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", errors.Join(ErrQRDecode, err)
	}
	return DecodeImage(img)
}

// DecodeImage reads the text of a QR symbol from an already decoded image.
func DecodeImage(img image.Image) (string, error) {
	if img == nil {
		return "", ErrQRDecode
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", errors.Join(ErrQRDecode, err)
	}
	result, err := zxqr.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", errors.Join(ErrQRDecode, err)
	}
	return result.GetText(), nil
}
