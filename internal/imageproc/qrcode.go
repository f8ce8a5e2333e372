package imageproc

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QRCodeSize is the edge length of generated codes in pixels
const QRCodeSize = 256

// QRCode renders content as a PNG with the highest error correction level
func QRCode(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr code content is empty")
	}
	png, err := qrcode.Encode(content, qrcode.Highest, QRCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}
	return png, nil
}
