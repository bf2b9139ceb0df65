package qr

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isPNG(b []byte) bool {
	return len(b) > 8 && b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	enc := NewEncoder(Options{})
	payloads := map[string]string{
		"text":  "hello world",
		"wifi":  "WIFI:T:WPA;S:home;P:secret;H:false;;",
		"sms":   "SMSTO:5551234:Hi",
		"vcard": "BEGIN:VCARD\nVERSION:3.0\nN:Doe;John;;;\nFN:John Doe\nEND:VCARD\n",
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			data, err := enc.Encode(payload, nil, nil)
			require.NoError(t, err)
			require.True(t, isPNG(data), "expected PNG header")

			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestEncodeWithColors(t *testing.T) {
	fg, err := ParseColor("#1a237e")
	require.NoError(t, err)
	bg, err := ParseColor("fffde7")
	require.NoError(t, err)

	data, err := NewEncoder(Options{ModulePixels: 8}).Encode("TEL:+15551234", fg, bg)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "TEL:+15551234", got)
}

func TestEncodeModulePixels(t *testing.T) {
	data, err := NewEncoder(Options{ModulePixels: 10}).Encode("hi", nil, nil)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	w := img.Bounds().Dx()
	assert.Equal(t, w, img.Bounds().Dy())
	assert.Zero(t, w%10)
	assert.GreaterOrEqual(t, w, 210)
}

func TestEncodeErrors(t *testing.T) {
	enc := NewEncoder(Options{MaxPayloadBytes: 16})

	_, err := enc.Encode("", nil, nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = enc.Encode(strings.Repeat("x", 17), nil, nil)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestVersionGrowsWithPayload(t *testing.T) {
	enc := NewEncoder(Options{})
	small, err := enc.Version("hi")
	require.NoError(t, err)
	large, err := enc.Version(strings.Repeat("abcdef", 40))
	require.NoError(t, err)
	assert.Equal(t, 1, small)
	assert.Greater(t, large, small)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrQRDecode)

	_, err = Decode([]byte("not a png"))
	assert.ErrorIs(t, err, ErrQRDecode)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = ParseColor("#ff0000")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", HexColor(c, ""))

	c, err = ParseColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", HexColor(c, ""))

	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)

	assert.Equal(t, "#000000", HexColor(nil, "#000000"))
}
