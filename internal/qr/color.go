package qr

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses "#rrggbb", "rrggbb" or "#rgb". An empty string returns
// nil so the encoder keeps its default.
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// HexColor renders c as "#rrggbb"; nil renders as fallback.
func HexColor(c color.Color, fallback string) string {
	if c == nil {
		return fallback
	}
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return fallback
	}
	return cf.Hex()
}
