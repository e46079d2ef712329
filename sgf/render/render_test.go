package render

import (
	"errors"
	"testing"

	"sgf/hal"
	"sgf/sgf/dirty"
	"sgf/sgf/scroll"
	"sgf/sgf/sprites"
)

func col(x, y int) uint16 { return uint16(x*13 + y*29 + 3) }

func bgWorld(x0, y0, w, h int, wx, wy int32, buf []uint16) {
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			buf[r*w+c] = col(int(wx)+c, int(wy)+r)
		}
	}
}

type fakeClock struct{ ms uint32 }

func (c *fakeClock) NowMs() uint32 { return c.ms }

// box is an overlay painting a solid rectangle.
type box struct {
	r dirty.Rect
	c uint16
}

func (b *box) Bounds() dirty.Rect { return b.r }

func (b *box) RenderRegion(x0, y0, w, h int, buf []uint16) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if b.r.Contains(x0+x, y0+y) {
				buf[y*w+x] = b.c
			}
		}
	}
}

type rig struct {
	panel  *hal.MemPanel
	sc     *scroll.Scroller
	layer  *sprites.Layer
	r      *Renderer
	tile   []uint16
	strip  []uint16
	maxStr int
}

func newRig(t *testing.T, w, h int, hw, inverted bool, fs, span, fe int) *rig {
	t.Helper()
	p := hal.NewMemPanel(hal.MemPanelConfig{Width: w, Height: h, HardwareScroll: hw, Inverted: inverted})
	sc := scroll.New(p)
	layer := sprites.NewLayer()
	r := New(p, sc, layer, dirty.New(16), 16, 16)
	r.SetBackground(bgWorld)
	if err := r.ConfigureScroll(fs, span, fe); err != nil {
		t.Fatalf("ConfigureScroll: %v", err)
	}
	const maxStrip = 8
	return &rig{
		panel:  p,
		sc:     sc,
		layer:  layer,
		r:      r,
		tile:   make([]uint16, 16*16),
		strip:  make([]uint16, sc.CrossLength()*maxStrip),
		maxStr: maxStrip,
	}
}

// check compares the visible panel with background, overlays and sprites composed
// per pixel.
func (g *rig) check(t *testing.T, frame int) {
	t.Helper()
	px := make([]uint16, 1)
	for y := 0; y < g.panel.Height(); y++ {
		for x := 0; x < g.panel.Width(); x++ {
			wx, wy := int32(x), int32(y)
			if g.sc.AlongY() {
				wy = g.sc.WorldCoord(y)
			} else {
				wx = g.sc.WorldCoord(x)
			}
			px[0] = col(int(wx), int(wy))
			for i := 0; i < g.r.nOverlays; i++ {
				g.r.overlays[i].RenderRegion(x, y, 1, 1, px)
			}
			g.layer.RenderRegion(x, y, 1, 1, px)
			if got := g.panel.ScanoutPixel(x, y); got != px[0] {
				t.Fatalf("frame %d: pixel (%d,%d)=%#04x, want %#04x", frame, x, y, got, px[0])
			}
		}
	}
}

func bitmap(w, h int, base uint16) []uint16 {
	b := make([]uint16, w*h)
	for i := range b {
		if i%5 == 2 {
			continue // transparent
		}
		b[i] = base + uint16(i)
	}
	return b
}

func TestFlushDrawsBackgroundAndSprites(t *testing.T) {
	g := newRig(t, 64, 96, true, false, 16, 72, 8)
	s := g.layer.Sprite(0)
	s.SetBitmapKeyed(bitmap(6, 5, 0xF800), 6, 5, 0)
	s.SetPosition(20, 12)
	s.SetActive(true)

	if err := g.r.Flush(g.tile); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	g.check(t, 0)
	if g.r.Dirty().Count() != 0 {
		t.Fatalf("dirty set not drained")
	}
	if st := g.r.Stats(); st.Flushes != 1 || st.Tiles == 0 || st.Pixels != 64*96 {
		t.Fatalf("stats=%+v", st)
	}
}

func TestScrollingSceneStaysConsistent(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		hw         bool
		inverted   bool
		fs, sp, fe int
	}{
		{"portrait", 64, 96, true, false, 0, 96, 0},
		{"portrait hud", 64, 96, true, false, 16, 72, 8},
		{"portrait hud inverted", 64, 96, true, true, 16, 72, 8},
		{"landscape", 96, 48, true, false, 0, 96, 0},
		{"landscape bands inverted", 96, 48, true, true, 10, 80, 6},
		{"no hardware", 64, 96, false, false, 16, 72, 8},
	}
	deltas := []int{3, 7, -4, 12, 0, 25, -30, 9, 1, 8}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newRig(t, tt.w, tt.h, tt.hw, tt.inverted, tt.fs, tt.sp, tt.fe)

			a := g.layer.Sprite(0)
			a.SetBitmapKeyed(bitmap(6, 5, 0xF800), 6, 5, 0)
			a.SetActive(true)
			b := g.layer.Sprite(3)
			b.SetBitmapKeyed(bitmap(4, 4, 0x07E0), 4, 4, 0)
			b.SetScale(sprites.ScaleDouble)
			b.SetAnchor(0.5, 0.5)
			b.SetActive(true)
			m := g.layer.Missile(1)
			m.W, m.H, m.Color, m.Active = 2, 3, 0xFFE0, true
			g.r.AddOverlay(&box{r: dirty.R(30, 30, 37, 33), c: 0x001F})

			if err := g.r.Flush(g.tile); err != nil {
				t.Fatalf("Flush: %v", err)
			}
			g.check(t, -1)

			for f, d := range deltas {
				a.SetPosition(4+f*5, 20+f*3)
				b.SetPosition(40-f*2, 50-f)
				m.X, m.Y = f*7, 60-f*4
				if f == 4 {
					b.SetTransparent(0x07E1)
				}
				if f == 6 {
					a.SetActive(false)
				}
				if f == 8 {
					a.SetActive(true)
				}
				if err := g.r.Scroll(d, g.strip, g.maxStr); err != nil {
					t.Fatalf("frame %d: Scroll: %v", f, err)
				}
				if err := g.r.Flush(g.tile); err != nil {
					t.Fatalf("frame %d: Flush: %v", f, err)
				}
				g.check(t, f)
			}
		})
	}
}

func TestMovingOverlayLeavesNoGhostWhileScrolling(t *testing.T) {
	tests := []struct {
		name     string
		inverted bool
	}{
		{"normal", false},
		{"inverted", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newRig(t, 64, 96, true, tt.inverted, 8, 80, 8)
			o := &box{r: dirty.R(10, 30, 25, 37), c: 0x001F}
			g.r.AddOverlay(o)
			if err := g.r.Flush(g.tile); err != nil {
				t.Fatalf("Flush: %v", err)
			}
			g.check(t, -1)

			for f, d := range []int{6, 6, -9, 13, 4} {
				old := o.r
				o.r = old.Offset(3, 5)
				g.r.MarkMovement(old, o.r)
				if err := g.r.Scroll(d, g.strip, g.maxStr); err != nil {
					t.Fatalf("frame %d: Scroll: %v", f, err)
				}
				if err := g.r.Flush(g.tile); err != nil {
					t.Fatalf("frame %d: Flush: %v", f, err)
				}
				g.check(t, f)
			}
		})
	}
}

func TestScrollWithoutHardwareInvalidates(t *testing.T) {
	g := newRig(t, 40, 80, false, false, 0, 80, 0)
	if err := g.r.Flush(g.tile); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := g.r.Scroll(5, nil, 8); err != nil {
		t.Fatalf("Scroll: %v", err)
	}
	if g.r.Dirty().Count() != 1 || g.r.Dirty().At(0) != dirty.R(0, 0, 39, 79) {
		t.Fatalf("dirty=%v, want full target", g.r.Dirty().Bounds())
	}
	if g.sc.WorldOffset() != 5 {
		t.Fatalf("world=%d, want 5", g.sc.WorldOffset())
	}
}

func TestTrackChanges(t *testing.T) {
	g := newRig(t, 100, 100, true, false, 0, 100, 0)
	d := g.r.Dirty()
	d.Clear()

	s := g.layer.Sprite(2)
	s.SetBitmap(make([]uint16, 16), 4, 4)
	s.SetPosition(10, 10)
	s.SetActive(true)
	g.r.trackChanges()
	if d.Count() != 1 || d.At(0) != dirty.R(10, 10, 13, 13) {
		t.Fatalf("activation dirty=%v count %d", d.Bounds(), d.Count())
	}

	d.Clear()
	g.r.trackChanges()
	if d.Count() != 0 {
		t.Fatalf("unchanged sprite marked dirty")
	}

	s.SetPosition(40, 40)
	g.r.trackChanges()
	if d.Count() != 2 {
		t.Fatalf("move marked %d rects, want 2", d.Count())
	}

	d.Clear()
	s.SetTransparent(0x1234)
	g.r.trackChanges()
	if d.Count() != 1 || d.At(0) != dirty.R(40, 40, 43, 43) {
		t.Fatalf("revision change dirty=%v", d.Bounds())
	}

	d.Clear()
	m := g.layer.Missile(0)
	m.X, m.Y, m.W, m.H, m.Active = 70, 5, 1, 4, true
	g.r.trackChanges()
	m.Color = 0xF800
	d.Clear()
	g.r.trackChanges()
	if d.Count() != 1 || d.At(0) != dirty.R(70, 5, 70, 8) {
		t.Fatalf("missile color change dirty=%v", d.Bounds())
	}

	d.Clear()
	s.SetActive(false)
	g.r.trackChanges()
	if d.Count() != 1 || d.At(0) != dirty.R(40, 40, 43, 43) {
		t.Fatalf("deactivation dirty=%v", d.Bounds())
	}
}

func TestScrollMarksGhosts(t *testing.T) {
	g := newRig(t, 64, 96, true, false, 0, 96, 0)
	s := g.layer.Sprite(0)
	s.SetBitmap(make([]uint16, 16), 4, 4)
	s.SetPosition(20, 40)
	s.SetActive(true)
	if err := g.r.Flush(g.tile); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if err := g.r.Scroll(10, g.strip, g.maxStr); err != nil {
		t.Fatalf("Scroll: %v", err)
	}
	d := g.r.Dirty()
	for _, want := range []dirty.Rect{dirty.R(19, 39, 24, 44), dirty.R(19, 29, 24, 34)} {
		covered := false
		for i := 0; i < d.Count(); i++ {
			b := d.At(i)
			if b.Union(want) == b {
				covered = true
			}
		}
		if !covered {
			t.Fatalf("ghost %v not marked", want)
		}
	}
	if g.r.Stats().Strips < 2 {
		t.Fatalf("strips=%d, want >= 2 for a 10px scroll in 8px chunks", g.r.Stats().Strips)
	}
}

func TestStripDescriptor(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want Strip
	}{
		{"portrait", 40, 80, Strip{AlongY: true, Span: 5, W: 40, H: 5, ScreenY0: 75, WorldY0: 80}},
		{"landscape", 80, 40, Strip{AlongY: false, Span: 5, W: 5, H: 40, ScreenX0: 75, WorldX0: 80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newRig(t, tt.w, tt.h, true, false, 0, 80, 0)
			var got []Strip
			g.r.SetStripRenderer(func(s Strip, buf []uint16) {
				got = append(got, s)
				if len(buf) != s.W*s.H {
					t.Fatalf("strip buf len=%d, want %d", len(buf), s.W*s.H)
				}
			})
			if err := g.r.Scroll(5, g.strip, g.maxStr); err != nil {
				t.Fatalf("Scroll: %v", err)
			}
			if len(got) != 1 || got[0] != tt.want {
				t.Fatalf("strips=%+v, want %+v", got, tt.want)
			}
		})
	}
}

type failTarget struct {
	*hal.MemPanel
	err error
}

func (f *failTarget) BlitRGB565(x, y, w, h int, pix []uint16) error { return f.err }

func TestFlushWriteErrorKeepsDirty(t *testing.T) {
	boom := errors.New("spi")
	tgt := &failTarget{MemPanel: hal.NewMemPanel(hal.MemPanelConfig{Width: 32, Height: 32}), err: boom}
	r := New(tgt, scroll.New(tgt), sprites.NewLayer(), dirty.New(4), 8, 8)
	r.Invalidate()
	if err := r.Flush(make([]uint16, 64)); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want spi error", err)
	}
	if r.Dirty().Count() == 0 {
		t.Fatalf("dirty set dropped after failed flush")
	}
}

func TestFlushTicksEffects(t *testing.T) {
	clk := &fakeClock{}
	p := hal.NewMemPanel(hal.MemPanelConfig{Width: 16, Height: 16, Clock: clk})
	r := New(p, scroll.New(p), sprites.NewLayer(), dirty.New(4), 8, 8)
	p.FadeBacklightTo(0, 100)
	clk.ms = 50
	if err := r.Flush(make([]uint16, 64)); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if lvl := p.Backlight(); lvl == 0 || lvl == 255 {
		t.Fatalf("backlight=%d mid-fade", lvl)
	}
	clk.ms = 200
	if err := r.Flush(make([]uint16, 64)); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if p.Backlight() != 0 {
		t.Fatalf("backlight=%d after fade, want 0", p.Backlight())
	}
}

func TestAddOverlayCapacity(t *testing.T) {
	g := newRig(t, 16, 16, false, false, 0, 16, 0)
	for i := 0; i < MaxOverlays; i++ {
		if !g.r.AddOverlay(&box{}) {
			t.Fatalf("overlay %d rejected", i)
		}
	}
	if g.r.AddOverlay(&box{}) {
		t.Fatalf("overlay accepted past capacity")
	}
	g.r.ClearOverlays()
	if !g.r.AddOverlay(&box{}) {
		t.Fatalf("overlay rejected after ClearOverlays")
	}
}

func TestConfigureScrollRejectsBadPartition(t *testing.T) {
	g := newRig(t, 40, 80, true, false, 0, 80, 0)
	if err := g.r.ConfigureScroll(10, 10, 10); !errors.Is(err, scroll.ErrPartition) {
		t.Fatalf("err=%v, want ErrPartition", err)
	}
}
