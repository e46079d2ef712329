// Package color565 packs and transforms 16-bit RGB565 pixels (rrrrrggggggbbbbb).
package color565

import "image/color"

// Common colors.
const (
	Black   uint16 = 0x0000
	White   uint16 = 0xFFFF
	Red     uint16 = 0xF800
	Green   uint16 = 0x07E0
	Blue    uint16 = 0x001F
	Yellow  uint16 = 0xFFE0
	Cyan    uint16 = 0x07FF
	Magenta uint16 = 0xF81F
)

// RGB packs 8-bit channels, dropping the low bits.
func RGB(r, g, b uint8) uint16 {
	return uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b>>3)
}

// Split unpacks c into its 5/6/5-bit channels.
func Split(c uint16) (r, g, b uint8) {
	return uint8(c>>11) & 0x1F, uint8(c>>5) & 0x3F, uint8(c) & 0x1F
}

// Swap exchanges the two bytes of c (little-endian host order to bus order).
func Swap(c uint16) uint16 { return c<<8 | c>>8 }

// Lighten brightens every channel by a third (at least one step), saturating.
func Lighten(c uint16) uint16 {
	r, g, b := Split(c)
	return pack(lift(int(r), 31), lift(int(g), 63), lift(int(b), 31))
}

// Darken scales every channel to two thirds.
func Darken(c uint16) uint16 {
	r, g, b := Split(c)
	return pack(int(r)*2/3, int(g)*2/3, int(b)*2/3)
}

// ToRGBA expands c to 8-bit channels by bit replication, so FromRGBA(ToRGBA(c)) == c.
func ToRGBA(c uint16) color.RGBA {
	r, g, b := Split(c)
	return color.RGBA{
		R: r<<3 | r>>2,
		G: g<<2 | g>>4,
		B: b<<3 | b>>2,
		A: 0xFF,
	}
}

// FromRGBA packs an RGBA color, ignoring alpha.
func FromRGBA(c color.RGBA) uint16 { return RGB(c.R, c.G, c.B) }

func lift(v, hi int) int {
	step := v / 3
	if step <= 0 {
		step = 1
	}
	v += step
	if v > hi {
		v = hi
	}
	return v
}

func pack(r, g, b int) uint16 {
	return uint16(r&0x1F)<<11 | uint16(g&0x3F)<<5 | uint16(b&0x1F)
}
