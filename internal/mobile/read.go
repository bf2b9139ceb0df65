package mobile

import (
	"fmt"

	"github.com/harrylevesque/qrforge/internal/models"
	"github.com/harrylevesque/qrforge/internal/qr"
)

// ScanResult is what a scanned image decodes to.
type ScanResult struct {
	Text   string        `json:"text"`
	Kind   models.Kind   `json:"kind"`
	Record models.Record `json:"record"`
}

// Scan reads the QR symbol in a PNG or JPEG image and parses its payload.
func Scan(image []byte) (*ScanResult, error) {
	text, err := qr.Decode(image)
	if err != nil {
		return nil, err
	}
	rec, err := ParseScanned(text)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return &ScanResult{Text: text, Kind: rec.Kind(), Record: rec}, nil
}
