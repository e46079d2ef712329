package sprites

import (
	"math"

	"sgf/sgf/dirty"
)

// Scale selects per-axis pixel doubling.
type Scale uint8

const (
	ScaleNormal  Scale = 0
	ScaleDoubleX Scale = 1 << 0
	ScaleDoubleY Scale = 1 << 1
	ScaleDouble        = ScaleDoubleX | ScaleDoubleY
)

func (s Scale) factorX() int {
	if s&ScaleDoubleX != 0 {
		return 2
	}
	return 1
}

func (s Scale) factorY() int {
	if s&ScaleDoubleY != 0 {
		return 2
	}
	return 1
}

// Sprite is a bitmap overlay object.
//
// Pixel data is borrowed: the sprite keeps the caller's slice and never copies it.
// Setters bump the redraw revision whenever the visible result may change without the
// bounding box changing, so the renderer can repaint pure appearance updates.
type Sprite struct {
	active      bool
	x, y        int
	w, h        int
	pixels      []uint16
	transparent uint16
	scale       Scale
	anchorX     float32
	anchorY     float32
	revision    uint32
}

func (s *Sprite) Active() bool         { return s.active }
func (s *Sprite) Position() (x, y int) { return s.x, s.y }
func (s *Sprite) Size() (w, h int)     { return s.w, s.h }
func (s *Sprite) Pixels() []uint16     { return s.pixels }
func (s *Sprite) Transparent() uint16  { return s.transparent }
func (s *Sprite) Scale() Scale         { return s.scale }

// Anchor returns the fractional anchor (0 = origin edge, 1 = far edge).
func (s *Sprite) Anchor() (ax, ay float32) { return s.anchorX, s.anchorY }

// Revision returns the redraw revision counter.
func (s *Sprite) Revision() uint32 { return s.revision }

// Redraw schedules a repaint of the current bounds on the next flush.
func (s *Sprite) Redraw() { s.revision++ }

func (s *Sprite) SetActive(on bool) {
	if s.active == on {
		return
	}
	s.active = on
	s.Redraw()
}

func (s *Sprite) SetPosition(x, y int) {
	s.x = x
	s.y = y
}

func (s *Sprite) Translate(dx, dy int) {
	s.x += dx
	s.y += dy
}

// SetAnchor sets the point of the sprite that Position refers to. Values outside
// [0,1] are allowed.
func (s *Sprite) SetAnchor(ax, ay float32) {
	s.anchorX = ax
	s.anchorY = ay
}

func (s *Sprite) SetScale(sc Scale) {
	if s.scale == sc {
		return
	}
	s.scale = sc
	s.Redraw()
}

// SetBitmap points the sprite at a w x h row-major bitmap.
func (s *Sprite) SetBitmap(pixels []uint16, w, h int) {
	changed := w != s.w || h != s.h || !samePixels(pixels, s.pixels)
	s.pixels = pixels
	s.w = w
	s.h = h
	if changed {
		s.Redraw()
	}
}

// SetBitmapKeyed is SetBitmap plus SetTransparent.
func (s *Sprite) SetBitmapKeyed(pixels []uint16, w, h int, transparent uint16) {
	s.SetBitmap(pixels, w, h)
	s.SetTransparent(transparent)
}

// SetTransparent sets the color key; pixels equal to it are not drawn.
func (s *Sprite) SetTransparent(c uint16) {
	if s.transparent == c {
		return
	}
	s.transparent = c
	s.Redraw()
}

// Bounds returns the inclusive on-screen rectangle, or an empty rect for a
// zero-sized sprite. The anchor shifts the origin by anchor*(scaledW-1), so moving
// the anchor from 0 to 1 shifts a 2x sprite by 2W-1 pixels, not W.
func (s *Sprite) Bounds() dirty.Rect {
	sw := s.w * s.scale.factorX()
	sh := s.h * s.scale.factorY()
	if sw <= 0 || sh <= 0 {
		return dirty.EmptyRect
	}
	x0 := s.x - roundAway(s.anchorX*float32(sw-1))
	y0 := s.y - roundAway(s.anchorY*float32(sh-1))
	return dirty.R(x0, y0, x0+sw-1, y0+sh-1)
}

// BoundsPadded returns Bounds grown by pad pixels on every side.
func (s *Sprite) BoundsPadded(pad int) dirty.Rect {
	b := s.Bounds()
	if b.Empty() {
		return b
	}
	return b.Inset(pad)
}

func (s *Sprite) drawable() bool {
	return s.active && s.w > 0 && s.h > 0 && len(s.pixels) >= s.w*s.h
}

// Missile is a solid-color rectangle overlay, typically a bullet.
type Missile struct {
	Active bool
	X, Y   int
	W, H   int
	Color  uint16
	Scale  Scale
}

// Bounds returns the inclusive on-screen rectangle.
func (m *Missile) Bounds() dirty.Rect {
	sw := m.W * m.Scale.factorX()
	sh := m.H * m.Scale.factorY()
	if sw <= 0 || sh <= 0 {
		return dirty.EmptyRect
	}
	return dirty.R(m.X, m.Y, m.X+sw-1, m.Y+sh-1)
}

func roundAway(v float32) int {
	return int(math.Round(float64(v)))
}

func samePixels(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return (a == nil) == (b == nil)
	}
	return &a[0] == &b[0]
}
