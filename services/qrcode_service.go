// services/qrcode_service.go
package services

import (
	"errors"

	"github.com/skip2/go-qrcode"
)

// QREncoder matches qrcode.Encode so tests can swap it out.
type QREncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// GenerateQRCode renders a PNG QR code pointing at url. A nil encoder uses qrcode.Encode.
func GenerateQRCode(url string, size int, encode QREncoder) ([]byte, error) {
	if size <= 0 {
		return nil, errors.New("invalid size: must be positive")
	}
	if url == "" {
		return nil, errors.New("no URL to encode")
	}
	if encode == nil {
		encode = qrcode.Encode
	}
	png, err := encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}
