package pass

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const DefaultQRSize = 256

// QR renders a pass payload as a PNG.
func QR(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
