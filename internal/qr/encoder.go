// Package qr wraps the QR symbol encoder and decoder.
package qr

import (
	"errors"
	"fmt"
	"image/color"

	qrgen "github.com/skip2/go-qrcode"
)

// QR code errors
var (
	ErrQREncode        = errors.New("failed to encode QR code")
	ErrQRDecode        = errors.New("failed to decode QR code")
	ErrEmptyPayload    = errors.New("payload is empty")
	ErrPayloadTooLarge = errors.New("payload exceeds QR capacity")
)

const (
	// DefaultModulePixels matches a box size of 10 px per module.
	DefaultModulePixels = 10
	// MaxPayloadBytes is the byte-mode capacity of a version 40 symbol at level H.
	MaxPayloadBytes = 1273
)

// Options configures an Encoder.
type Options struct {
	// ModulePixels is the edge length of one module in the PNG.
	ModulePixels int
	// DisableBorder drops the quiet zone around the symbol.
	DisableBorder bool
	// MaxPayloadBytes rejects longer payloads before encoding. Zero uses MaxPayloadBytes.
	MaxPayloadBytes int
}

// Encoder renders payloads as PNG QR codes at error correction level H with
// the smallest symbol version that fits.
type Encoder struct {
	opts Options
}

// NewEncoder returns an Encoder, filling zero options with defaults.
func NewEncoder(opts Options) *Encoder {
	if opts.ModulePixels <= 0 {
		opts.ModulePixels = DefaultModulePixels
	}
	if opts.MaxPayloadBytes <= 0 {
		opts.MaxPayloadBytes = MaxPayloadBytes
	}
	return &Encoder{opts: opts}
}

// Encode renders payload with the given colors. Nil colors fall back to black
// on white.
func (e *Encoder) Encode(payload string, fg, bg color.Color) ([]byte, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	if len(payload) > e.opts.MaxPayloadBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(payload), e.opts.MaxPayloadBytes)
	}

	q, err := qrgen.New(payload, qrgen.Highest)
	if err != nil {
		return nil, errors.Join(ErrQREncode, err)
	}
	q.DisableBorder = e.opts.DisableBorder
	if fg != nil {
		q.ForegroundColor = fg
	}
	if bg != nil {
		q.BackgroundColor = bg
	}

	// A negative size makes every module that many pixels wide.
	png, err := q.PNG(-e.opts.ModulePixels)
	if err != nil {
		return nil, errors.Join(ErrQREncode, err)
	}
	return png, nil
}

// Version reports the symbol version that payload would be encoded with.
func (e *Encoder) Version(payload string) (int, error) {
	q, err := qrgen.New(payload, qrgen.Highest)
	if err != nil {
		return 0, errors.Join(ErrQREncode, err)
	}
	return q.VersionNumber, nil
}
