package scenario

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ErrUnknownColor is returned for colours that are neither a hex code nor a
// known colour name.
var ErrUnknownColor = errors.New("unknown color")

// ParseColor accepts "#rgb", "#rrggbb", "#aarrggbb" and SVG colour names.
// Names are matched case-insensitively with spaces dropped, so "Light Blue"
// and "lightblue" are the same colour.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	name := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	if name == "transparent" {
		return color.RGBA{}, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	return color.RGBA{}, ErrUnknownColor
}

func parseHex(h string) (color.RGBA, error) {
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, ErrUnknownColor
	}
	switch len(h) {
	case 3:
		r, g, b := uint8(v>>8&0xf), uint8(v>>4&0xf), uint8(v&0xf)
		return color.RGBA{R: r * 0x11, G: g * 0x11, B: b * 0x11, A: 0xff}, nil
	case 6:
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	case 8:
		// #aarrggbb; colour values are kept non-premultiplied as written.
		return color.RGBA{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	}
	return color.RGBA{}, ErrUnknownColor
}

// HexString formats c as #rrggbb.
func HexString(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
