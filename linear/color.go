// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package linear

import (
	"image/color"
	"strconv"
	"strings"
)

// RGBA is a linear color with straight (non-premultiplied) alpha.
// Channels are nominally in [0, 1]; lighting sums may exceed 1 and are
// clamped only by Color.
type RGBA struct {
	R, G, B, A float64
}

// RGB returns an opaque color.
func RGB(r, g, b float64) RGBA { return RGBA{r, g, b, 1} }

var (
	Black = RGB(0, 0, 0)
	White = RGB(1, 1, 1)
	Gray  = RGB(0.8, 0.8, 0.8)
	Red   = RGB(1, 0, 0)
	Green = RGB(0, 1, 0)
	Blue  = RGB(0, 0, 1)
)

// Hex parses "#rgb", "#rgba", "#rrggbb" or "#rrggbbaa", with or without
// the leading '#'. Anything else yields opaque black.
func Hex(s string) RGBA {
	s = strings.TrimPrefix(s, "#")
	width := 2
	switch len(s) {
	case 3, 4:
		width = 1
	case 6, 8:
	default:
		return Black
	}
	ch := [4]float64{0, 0, 0, 1}
	for i := 0; i*width < len(s); i++ {
		v, err := strconv.ParseUint(s[i*width:(i+1)*width], 16, 8)
		if err != nil {
			return Black
		}
		if width == 1 {
			v *= 17
		}
		ch[i] = float64(v) / 255
	}
	return RGBA{ch[0], ch[1], ch[2], ch[3]}
}

// Scale multiplies the color channels by s and keeps alpha.
func (c RGBA) Scale(s float64) RGBA {
	return RGBA{c.R * s, c.G * s, c.B * s, c.A}
}

// Add sums the color channels and keeps c's alpha.
func (c RGBA) Add(o RGBA) RGBA {
	return RGBA{c.R + o.R, c.G + o.G, c.B + o.B, c.A}
}

// Lerp interpolates every channel, alpha included.
func (c RGBA) Lerp(o RGBA, t float64) RGBA {
	return RGBA{
		c.R + (o.R-c.R)*t,
		c.G + (o.G-c.G)*t,
		c.B + (o.B-c.B)*t,
		c.A + (o.A-c.A)*t,
	}
}

// Color clamps c into an 8-bit color.NRGBA.
func (c RGBA) Color() color.Color {
	return color.NRGBA{to8(c.R), to8(c.G), to8(c.B), to8(c.A)}
}

func to8(v float64) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}
