// Package sprites is a fixed-capacity overlay layer of bitmap sprites and solid
// missiles, composited over background tiles.
//
// Clients fill sprite/missile slots and call RenderRegion after the background for a
// tile has been written into the tile buffer. Missiles are drawn first, then sprites in
// ascending slot order, so a higher slot wins where objects overlap.
package sprites

import "sgf/sgf/dirty"

const (
	MaxSprites  = 8
	MaxMissiles = 4
)

// Layer owns the sprite and missile slots. The zero value is ready to use.
type Layer struct {
	sprites  [MaxSprites]Sprite
	missiles [MaxMissiles]Missile
}

// NewLayer returns an empty layer.
func NewLayer() *Layer { return &Layer{} }

// Sprite returns slot i. Out-of-range indices clamp to the nearest valid slot.
func (l *Layer) Sprite(i int) *Sprite {
	return &l.sprites[clampIndex(i, MaxSprites)]
}

// Missile returns slot i. Out-of-range indices clamp to the nearest valid slot.
func (l *Layer) Missile(i int) *Missile {
	return &l.missiles[clampIndex(i, MaxMissiles)]
}

// SpriteBoundsPadded returns the bounds of slot i grown by pad pixels, or an empty
// rect when the slot is inactive.
func (l *Layer) SpriteBoundsPadded(i, pad int) dirty.Rect {
	s := l.Sprite(i)
	if !s.active {
		return dirty.EmptyRect
	}
	return s.BoundsPadded(pad)
}

func (l *Layer) ClearSprites() {
	for i := range l.sprites {
		l.sprites[i].SetActive(false)
	}
}

func (l *Layer) ClearMissiles() {
	for i := range l.missiles {
		l.missiles[i].Active = false
	}
}

func (l *Layer) ClearAll() {
	l.ClearSprites()
	l.ClearMissiles()
}

// RenderRegion composites every active object over buf, which holds the w x h screen
// block at (x0, y0) in row-major order. Transparent sprite pixels leave buf untouched.
func (l *Layer) RenderRegion(x0, y0, w, h int, buf []uint16) {
	if w <= 0 || h <= 0 || len(buf) < w*h {
		return
	}
	for i := range l.missiles {
		l.missiles[i].render(x0, y0, w, h, buf)
	}
	for i := range l.sprites {
		l.sprites[i].render(x0, y0, w, h, buf)
	}
}

func (m *Missile) render(x0, y0, w, h int, buf []uint16) {
	if !m.Active {
		return
	}
	b := m.Bounds()
	rx0, ry0, rx1, ry1, ok := intersect(int(b.X0), int(b.Y0), int(b.X1), int(b.Y1), x0, y0, w, h)
	if !ok {
		return
	}
	for yy := ry0; yy <= ry1; yy++ {
		row := buf[(yy-y0)*w:]
		for xx := rx0; xx <= rx1; xx++ {
			row[xx-x0] = m.Color
		}
	}
}

func (s *Sprite) render(x0, y0, w, h int, buf []uint16) {
	if !s.drawable() {
		return
	}
	b := s.Bounds()
	rx0, ry0, rx1, ry1, ok := intersect(int(b.X0), int(b.Y0), int(b.X1), int(b.Y1), x0, y0, w, h)
	if !ok {
		return
	}
	sx0, sy0 := int(b.X0), int(b.Y0)
	fx, fy := s.scale.factorX(), s.scale.factorY()
	for yy := ry0; yy <= ry1; yy++ {
		srcRow := s.pixels[((yy-sy0)/fy)*s.w:]
		row := buf[(yy-y0)*w:]
		for xx := rx0; xx <= rx1; xx++ {
			c := srcRow[(xx-sx0)/fx]
			if c == s.transparent {
				continue
			}
			row[xx-x0] = c
		}
	}
}

// intersect clips the inclusive object rect against the w x h region at (x0, y0).
func intersect(ox0, oy0, ox1, oy1, x0, y0, w, h int) (rx0, ry0, rx1, ry1 int, ok bool) {
	if ox1 < ox0 || oy1 < oy0 {
		return 0, 0, 0, 0, false
	}
	if ox1 < x0 || ox0 >= x0+w || oy1 < y0 || oy0 >= y0+h {
		return 0, 0, 0, 0, false
	}
	rx0, ry0, rx1, ry1 = ox0, oy0, ox1, oy1
	if rx0 < x0 {
		rx0 = x0
	}
	if ry0 < y0 {
		ry0 = y0
	}
	if rx1 > x0+w-1 {
		rx1 = x0 + w - 1
	}
	if ry1 > y0+h-1 {
		ry1 = y0 + h - 1
	}
	return rx0, ry0, rx1, ry1, true
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
