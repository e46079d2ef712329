// Package text renders single-line text overlays with tinyfont.
//
// A Block owns no pixels. It marks its old and new footprint dirty whenever its
// appearance changes, and paints glyphs into whatever tile the renderer hands it.
package text

import (
	"image/color"
	"unicode/utf8"

	"sgf/sgf/dirty"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// MaxLen is the longest text a Block keeps, in bytes.
const MaxLen = 63

// Align selects which edge of the text the X position refers to.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// DefaultFont is used when no font is set.
var DefaultFont tinyfont.Fonter = &proggy.TinySZ8pt7b

// Runes probed to size a font's line box.
const probeRunes = "AMgjy|"

// Block is a positioned, scaled run of text.
type Block struct {
	dirty *dirty.Set

	text    string
	x, y    int
	scale   int
	color   uint16
	align   Align
	font    tinyfont.Fonter
	visible bool

	ascent  int
	descent int

	disp tileDisplay
}

// NewBlock returns a visible, empty, white block that marks changes in d.
func NewBlock(d *dirty.Set) *Block {
	b := &Block{
		dirty:   d,
		scale:   1,
		color:   0xFFFF,
		visible: true,
	}
	b.font = DefaultFont
	b.measureFont()
	return b
}

func (b *Block) Text() string          { return b.text }
func (b *Block) Position() (x, y int)  { return b.x, b.y }
func (b *Block) Scale() int            { return b.scale }
func (b *Block) Color() uint16         { return b.color }
func (b *Block) Align() Align          { return b.align }
func (b *Block) Font() tinyfont.Fonter { return b.font }
func (b *Block) Visible() bool         { return b.visible }

// SetText replaces the text, truncated to MaxLen bytes on a rune boundary.
func (b *Block) SetText(s string) {
	s = truncate(s, MaxLen)
	if s == b.text {
		return
	}
	old := b.Bounds()
	b.text = s
	b.changed(old)
}

// SetPosition moves the anchor point. Y is the top of the line box.
func (b *Block) SetPosition(x, y int) {
	if x == b.x && y == b.y {
		return
	}
	old := b.Bounds()
	b.x, b.y = x, y
	b.changed(old)
}

// SetScale sets the integer pixel scale; values below 1 become 1.
func (b *Block) SetScale(scale int) {
	if scale < 1 {
		scale = 1
	}
	if scale == b.scale {
		return
	}
	old := b.Bounds()
	b.scale = scale
	b.changed(old)
}

func (b *Block) SetColor(c uint16) {
	if c == b.color {
		return
	}
	old := b.Bounds()
	b.color = c
	b.changed(old)
}

func (b *Block) SetAlign(a Align) {
	if a == b.align {
		return
	}
	old := b.Bounds()
	b.align = a
	b.changed(old)
}

// SetFont switches fonts; nil selects DefaultFont.
func (b *Block) SetFont(f tinyfont.Fonter) {
	if f == nil {
		f = DefaultFont
	}
	if f == b.font {
		return
	}
	old := b.Bounds()
	b.font = f
	b.measureFont()
	b.changed(old)
}

func (b *Block) SetVisible(on bool) {
	if on == b.visible {
		return
	}
	old := b.Bounds()
	b.visible = on
	b.changed(old)
}

// Width returns the scaled advance width, 0 when nothing is shown.
func (b *Block) Width() int {
	if !b.shown() {
		return 0
	}
	_, outbox := tinyfont.LineWidth(b.font, b.text)
	return int(outbox) * b.scale
}

// Height returns the scaled line box height, 0 when nothing is shown.
func (b *Block) Height() int {
	if !b.shown() {
		return 0
	}
	return (b.ascent + b.descent) * b.scale
}

// Bounds returns the inclusive screen footprint, or an empty rect.
func (b *Block) Bounds() dirty.Rect {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return dirty.EmptyRect
	}
	x0 := b.left(w)
	return dirty.R(x0, b.y, x0+w-1, b.y+h-1)
}

// RenderRegion paints glyph pixels falling inside the w x h screen block at (x0, y0).
func (b *Block) RenderRegion(x0, y0, w, h int, buf []uint16) {
	if w <= 0 || h <= 0 || len(buf) < w*h {
		return
	}
	bounds := b.Bounds()
	if bounds.Empty() ||
		int(bounds.X1) < x0 || int(bounds.X0) >= x0+w ||
		int(bounds.Y1) < y0 || int(bounds.Y0) >= y0+h {
		return
	}

	b.disp = tileDisplay{
		originX: int(bounds.X0),
		originY: b.y,
		scale:   b.scale,
		x0:      x0,
		y0:      y0,
		w:       w,
		h:       h,
		buf:     buf,
		color:   b.color,
	}
	tinyfont.WriteLine(&b.disp, b.font, 0, int16(b.ascent), b.text, color.RGBA{})
	b.disp.buf = nil
}

func (b *Block) shown() bool {
	return b.visible && b.text != "" && b.font != nil
}

func (b *Block) left(w int) int {
	switch b.align {
	case AlignCenter:
		return b.x - w/2
	case AlignRight:
		return b.x - w + 1
	}
	return b.x
}

func (b *Block) changed(old dirty.Rect) {
	if b.dirty == nil {
		return
	}
	b.dirty.AddRect(old)
	b.dirty.AddRect(b.Bounds())
}

// measureFont derives the line box from a few tall and descending glyphs.
func (b *Block) measureFont() {
	b.ascent, b.descent = 0, 0
	for _, r := range probeRunes {
		info := b.font.GetGlyph(r).Info()
		if a := -int(info.YOffset); a > b.ascent {
			b.ascent = a
		}
		if d := int(info.Height) + int(info.YOffset); d > b.descent {
			b.descent = d
		}
	}
	if b.ascent == 0 && b.descent == 0 {
		b.ascent = int(b.font.GetYAdvance())
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
