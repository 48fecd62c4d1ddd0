package colors

// package colors holds the small palette the viewer overlay draws with, along with helpers to turn
// configuration strings (like "#595959") into tetra3d.Color values and tetra3d.Colors into image/color values.

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/solarlune/tetra3d"
)

// ErrBadHex is returned by FromHex when the string isn't a #RGB, #RRGGBB, or #RRGGBBAA color.
var ErrBadHex = errors.New("colors: malformed hex color")

func rgba(r, g, b, a float32) tetra3d.Color {
	return tetra3d.Color{R: r, G: g, B: b, A: a}
}

// Transparent returns fully transparent black.
func Transparent() tetra3d.Color {
	return rgba(0, 0, 0, 0)
}

// White returns opaque white; used for the progress label.
func White() tetra3d.Color {
	return rgba(1, 1, 1, 1)
}

// LightGray returns the fill color of the progress bar.
func LightGray() tetra3d.Color {
	return rgba(0.8, 0.8, 0.8, 1)
}

// DarkGray returns the track color behind the progress bar.
func DarkGray() tetra3d.Color {
	return rgba(0.2, 0.2, 0.2, 1)
}

// PaleRed is used for the label when the model failed to load.
func PaleRed() tetra3d.Color {
	return rgba(0.678, 0.172, 0.384, 1)
}

// FromHex parses a CSS-style hex color string. The leading '#' is optional, and the short #RGB form expands
// each digit (so "#fa0" is "#ffaa00").
func FromHex(hex string) (tetra3d.Color, error) {

	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")

	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}

	if len(s) == 6 {
		s += "ff"
	}

	if len(s) != 8 {
		return Transparent(), fmt.Errorf("%w: %q", ErrBadHex, hex)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Transparent(), fmt.Errorf("%w: %q", ErrBadHex, hex)
	}

	return rgba(
		float32(v>>24&0xff)/255,
		float32(v>>16&0xff)/255,
		float32(v>>8&0xff)/255,
		float32(v&0xff)/255,
	), nil

}

// WithAlpha returns a copy of the color with its alpha multiplied by the given factor (clamped from 0 to 1).
func WithAlpha(c tetra3d.Color, alpha float32) tetra3d.Color {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	c.A *= alpha
	return c
}

// ToNRGBA converts a tetra3d.Color into a non-premultiplied color usable with ebiten's drawing functions.
func ToNRGBA(c tetra3d.Color) color.NRGBA {
	return color.NRGBA{
		R: channel(c.R),
		G: channel(c.G),
		B: channel(c.B),
		A: channel(c.A),
	}
}

func channel(v float32) uint8 {
	if v <= 0 {
		return 0
	} else if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
