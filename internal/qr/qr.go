package qr

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const imageSize = 256

// Render encodes a signed ticket token into a PNG QR code for the digital
// ticket page and the paper print sheet. The token is already signed, so
// the QR carries it verbatim; tampering is caught at scan time by token
// verification.
func Render(ticketToken string) ([]byte, error) {
	if ticketToken == "" {
		return nil, fmt.Errorf("ticket token is empty")
	}
	png, err := qrcode.Encode(ticketToken, qrcode.Medium, imageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR: %w", err)
	}
	return png, nil
}
