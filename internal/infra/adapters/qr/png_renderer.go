package qr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"ubot-platform/internal/domain/ports/adapter"
)

var _ adapter.QRRenderer = (*PNGRenderer)(nil)

const dataURLPrefix = "data:image/png;base64,"

// PNGRenderer encodes the JSON payload as a PNG QR code.
type PNGRenderer struct {
	size  int
	level qrcode.RecoveryLevel
}

func NewPNGRenderer(size int) *PNGRenderer {
	if size <= 0 {
		size = 256
	}
	return &PNGRenderer{size: size, level: qrcode.Medium}
}

func (r *PNGRenderer) DataURL(p adapter.QRPayload) (string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("qr: encode payload: %w", err)
	}
	png, err := qrcode.Encode(string(body), r.level, r.size)
	if err != nil {
		return "", fmt.Errorf("qr: render: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}
