// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package linear

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHexForms(t *testing.T) {
	assert.Equal(t, RGBA{1, 1, 1, 0}, Hex("fff0"))
	assert.InDelta(t, 0x80/255.0, Hex("#000080").B, 1e-12)
	assert.Equal(t, Black, Hex("#12345"), "odd lengths are rejected")
	assert.Equal(t, Black, Hex("zz0000"), "non-hex digits are rejected")
}

func TestColorClampsAndRounds(t *testing.T) {
	lit := Red.Scale(0.5).Add(RGB(0.8, -1, 0))
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 0, A: 255}, lit.Color())
	assert.Equal(t, color.NRGBA{R: 128, G: 128, B: 128, A: 255}, Black.Lerp(White, 0.5).Color())
}
