package text

import (
	"image/color"

	"tinygo.org/x/drivers"
)

var _ drivers.Displayer = (*tileDisplay)(nil)

// tileDisplay exposes a tile buffer to tinyfont. Glyph space starts at
// (originX, originY) on screen and every glyph pixel becomes a scale x scale block,
// clipped to the tile. Pixels take the block's RGB565 color; the glyph color argument
// is ignored.
type tileDisplay struct {
	originX, originY int
	scale            int

	x0, y0, w, h int
	buf          []uint16
	color        uint16
}

func (d *tileDisplay) Size() (x, y int16) {
	return int16(d.w), int16(d.h)
}

func (d *tileDisplay) SetPixel(x, y int16, _ color.RGBA) {
	sx := d.originX + int(x)*d.scale - d.x0
	sy := d.originY + int(y)*d.scale - d.y0
	for dy := 0; dy < d.scale; dy++ {
		py := sy + dy
		if py < 0 || py >= d.h {
			continue
		}
		row := d.buf[py*d.w : py*d.w+d.w]
		for dx := 0; dx < d.scale; dx++ {
			px := sx + dx
			if px < 0 || px >= d.w {
				continue
			}
			row[px] = d.color
		}
	}
}

func (d *tileDisplay) Display() error { return nil }
