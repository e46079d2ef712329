// Package render orchestrates one frame: hardware scroll with ghost repair, sprite change
// tracking and a tile flush of background, overlays and sprites through a scroll-aware
// view of the panel.
package render

import (
	"sgf/hal"
	"sgf/sgf/dirty"
	"sgf/sgf/scroll"
	"sgf/sgf/sprites"
	"sgf/sgf/tiles"
)

// MaxOverlays is the capacity of the overlay list.
const MaxOverlays = 8

// BackgroundFunc fills buf with the w x h screen block at (x0, y0). worldX0/worldY0 is the
// world coordinate of the block's first pixel; world advances one unit per pixel on both
// axes within the block.
type BackgroundFunc func(x0, y0, w, h int, worldX0, worldY0 int32, buf []uint16)

// Strip describes a strip exposed by a hardware scroll step.
type Strip struct {
	AlongY bool // active scroll axis
	Span   int  // thickness on the active axis
	W, H   int  // buffer dimensions, row-major

	// Logical screen origin of the strip before physical remapping.
	ScreenX0, ScreenY0 int
	WorldX0, WorldY0   int32
}

// StripFunc fills buf (s.W*s.H pixels) with background content for s.
type StripFunc func(s Strip, buf []uint16)

// Overlay paints over the background of a tile, under the sprites.
type Overlay interface {
	RenderRegion(x0, y0, w, h int, buf []uint16)
}

// bounded overlays are repainted at their old memory position after a hardware scroll.
type bounded interface {
	Bounds() dirty.Rect
}

// Stats are cumulative renderer counters.
type Stats struct {
	Flushes     uint32
	Tiles       uint32
	Pixels      uint64
	ScrollSteps uint32
	Strips      uint32
	Ghosts      uint32
	FullRedraws uint32
}

type spriteSnap struct {
	active   bool
	bounds   dirty.Rect
	revision uint32
}

type missileSnap struct {
	active bool
	bounds dirty.Rect
	color  uint16
}

// Renderer borrows the target, scroller, sprite layer and dirty set; it owns none of them.
type Renderer struct {
	t       hal.Target
	sc      *scroll.Scroller
	sprites *sprites.Layer
	dirty   *dirty.Set
	flusher *tiles.Flusher
	remap   remapTarget

	bg    BackgroundFunc
	strip StripFunc

	overlays  [MaxOverlays]Overlay
	nOverlays int
	// Bounds of bounded overlays at the last flush.
	overlaySnaps [MaxOverlays]dirty.Rect

	spriteSnaps  [sprites.MaxSprites]spriteSnap
	missileSnaps [sprites.MaxMissiles]missileSnap
	// Scroll distance applied since the snapshots were taken.
	pendingShift int

	// Method values bound once so per-frame calls do not allocate.
	tileFn  tiles.RenderRegionFunc
	stripFn scroll.RenderStripFunc

	stats Stats
}

// New wires a renderer. sc must be bound to t.
func New(t hal.Target, sc *scroll.Scroller, s *sprites.Layer, d *dirty.Set, tileW, tileH int) *Renderer {
	r := &Renderer{
		t:       t,
		sc:      sc,
		sprites: s,
		dirty:   d,
		flusher: tiles.NewFlusher(d, tileW, tileH),
		remap:   remapTarget{t: t, sc: sc},
	}
	r.tileFn = r.renderTile
	r.stripFn = r.renderStrip
	return r
}

func (r *Renderer) SetBackground(fn BackgroundFunc) { r.bg = fn }
func (r *Renderer) SetStripRenderer(fn StripFunc)   { r.strip = fn }

func (r *Renderer) Scroller() *scroll.Scroller { return r.sc }
func (r *Renderer) Dirty() *dirty.Set          { return r.dirty }
func (r *Renderer) Stats() Stats               { return r.stats }

// TileSize returns the flusher tile size; Flush needs a buffer of w*h pixels.
func (r *Renderer) TileSize() (w, h int) { return r.flusher.TileSize() }

// AddOverlay appends o to the overlay list. It reports false when the list is full.
func (r *Renderer) AddOverlay(o Overlay) bool {
	if o == nil || r.nOverlays == MaxOverlays {
		return false
	}
	r.overlays[r.nOverlays] = o
	r.overlaySnaps[r.nOverlays] = dirty.EmptyRect
	r.nOverlays++
	return true
}

func (r *Renderer) ClearOverlays() {
	for i := range r.overlays {
		r.overlays[i] = nil
	}
	r.nOverlays = 0
}

// ConfigureScroll partitions the active axis and forces a full redraw.
func (r *Renderer) ConfigureScroll(fixedStart, span, fixedEnd int) error {
	if err := r.sc.Configure(fixedStart, span, fixedEnd); err != nil {
		return err
	}
	r.Invalidate()
	return nil
}

func (r *Renderer) ConfigureFullScreenScroll() error {
	return r.ConfigureScroll(0, r.sc.AxisLength(), 0)
}

// ResetScrollOffset moves the window to offset and forces a full redraw.
func (r *Renderer) ResetScrollOffset(offset int) error {
	if err := r.sc.ResetOffset(offset); err != nil {
		return err
	}
	r.Invalidate()
	return nil
}

// Scroll moves the background by delta units. With hardware scroll only the exposed
// strips are rendered and sprite ghosts are marked; otherwise the next flush redraws the
// whole target. buf must hold CrossLength()*min(maxStrip, span) pixels.
func (r *Renderer) Scroll(delta int, buf []uint16, maxStrip int) error {
	if delta == 0 {
		return nil
	}
	if !r.sc.HardwareEnabled() {
		before := r.sc.WorldOffset()
		if err := r.sc.Scroll(delta, buf, maxStrip, nil, nil); err != nil {
			return err
		}
		if r.sc.WorldOffset() != before {
			r.Invalidate()
		}
		return nil
	}

	before := r.sc.WorldOffset()
	steps := r.sc.Steps()
	err := r.sc.Scroll(delta, buf, maxStrip, r.stripFn, nil)
	r.stats.ScrollSteps += r.sc.Steps() - steps
	moved := int(r.sc.WorldOffset() - before)
	if err != nil {
		// Display memory is in an unknown state.
		r.Invalidate()
		return err
	}
	if moved != 0 {
		r.pendingShift += moved
		r.markGhosts(moved)
	}
	return nil
}

// ScrollByVelocity integrates speed (units per second) over dtMs and scrolls by the whole
// units accumulated.
func (r *Renderer) ScrollByVelocity(speed int, dtMs uint32, buf []uint16, maxStrip int) error {
	units := r.sc.Advance(speed, dtMs)
	if units == 0 {
		return nil
	}
	return r.Scroll(units, buf, maxStrip)
}

func (r *Renderer) ResetScrollAccumulator() { r.sc.ResetAccumulator() }

// MarkMovement marks both rectangles dirty.
func (r *Renderer) MarkMovement(old, cur dirty.Rect) {
	r.dirty.AddRect(old)
	r.dirty.AddRect(cur)
}

// Invalidate forces a full-target redraw on the next flush.
func (r *Renderer) Invalidate() {
	r.dirty.Invalidate(r.t)
	r.stats.FullRedraws++
}

// Flush ticks target effects, tracks sprite changes and redraws every dirty tile.
// buf must hold one tile. On a write error the dirty set is kept for the next flush.
func (r *Renderer) Flush(buf []uint16) error {
	if ticker, ok := r.t.(hal.EffectTicker); ok {
		ticker.TickEffects()
	}
	r.trackChanges()

	r.flusher.SetBands(r.sc.AlongY(), r.sc.FixedStart(), r.sc.FixedStart()+r.sc.Span())
	n, err := r.flusher.Flush(&r.remap, buf, r.tileFn)
	r.stats.Flushes++
	r.stats.Tiles += uint32(n)
	return err
}

func (r *Renderer) renderTile(x0, y0, w, h int, buf []uint16) {
	wx, wy := int32(x0), int32(y0)
	if r.sc.AlongY() {
		wy = r.sc.WorldCoord(y0)
	} else {
		wx = r.sc.WorldCoord(x0)
	}
	tile := buf[:w*h]
	if r.bg != nil {
		r.bg(x0, y0, w, h, wx, wy, tile)
	} else {
		clear(tile)
	}
	for i := 0; i < r.nOverlays; i++ {
		r.overlays[i].RenderRegion(x0, y0, w, h, tile)
	}
	r.sprites.RenderRegion(x0, y0, w, h, tile)
	r.stats.Pixels += uint64(w * h)
}

func (r *Renderer) renderStrip(worldOffset int32, span int, buf []uint16) {
	cross := r.sc.CrossLength()
	pos := r.sc.FixedStart() + int(worldOffset-r.sc.WorldOffset())
	s := Strip{AlongY: r.sc.AlongY(), Span: span}
	if s.AlongY {
		s.W, s.H = cross, span
		s.ScreenY0, s.WorldY0 = pos, worldOffset
	} else {
		s.W, s.H = span, cross
		s.ScreenX0, s.WorldX0 = pos, worldOffset
	}
	r.stats.Strips++

	strip := buf[:s.W*s.H]
	switch {
	case r.strip != nil:
		r.strip(s, strip)
	case r.bg != nil:
		r.bg(s.ScreenX0, s.ScreenY0, s.W, s.H, s.WorldX0, s.WorldY0, strip)
	default:
		clear(strip)
	}
}

// markGhosts repaints every object footprint that the scroll moved in display memory.
// moved is the logical scroll distance since the last call.
func (r *Renderer) markGhosts(moved int) {
	dx, dy := 0, -moved
	if !r.sc.AlongY() {
		dx, dy = -moved, 0
	}
	shift := r.pendingShift
	sx, sy := 0, -shift
	if !r.sc.AlongY() {
		sx, sy = -shift, 0
	}

	for i := 0; i < sprites.MaxSprites; i++ {
		s := r.sprites.Sprite(i)
		if s.Active() {
			b := s.BoundsPadded(1)
			r.addGhost(b)
			r.addGhost(b.Offset(dx, dy))
		}
		// What was last flushed for this slot now sits shifted in memory.
		if snap := r.spriteSnaps[i]; snap.active {
			r.addGhost(pad(snap.bounds).Offset(sx, sy))
		}
	}
	for i := 0; i < sprites.MaxMissiles; i++ {
		m := r.sprites.Missile(i)
		if m.Active {
			b := pad(m.Bounds())
			r.addGhost(b)
			r.addGhost(b.Offset(dx, dy))
		}
		if snap := r.missileSnaps[i]; snap.active {
			r.addGhost(pad(snap.bounds).Offset(sx, sy))
		}
	}
	for i := 0; i < r.nOverlays; i++ {
		if b, ok := r.overlays[i].(bounded); ok {
			bb := b.Bounds()
			r.addGhost(bb)
			r.addGhost(bb.Offset(dx, dy))
		}
		if snap := r.overlaySnaps[i]; !snap.Empty() {
			r.addGhost(snap.Offset(sx, sy))
		}
	}
}

// pad grows b by one pixel to cover seam pixels; empty rects stay empty.
func pad(b dirty.Rect) dirty.Rect {
	if b.Empty() {
		return b
	}
	return b.Inset(1)
}

func (r *Renderer) addGhost(b dirty.Rect) {
	if r.dirty.AddRect(b) {
		r.stats.Ghosts++
	}
}

// trackChanges compares every slot with the snapshot taken at the previous flush and
// marks the old and new footprints of anything that changed.
func (r *Renderer) trackChanges() {
	for i := 0; i < sprites.MaxSprites; i++ {
		s := r.sprites.Sprite(i)
		cur := spriteSnap{active: s.Active(), revision: s.Revision()}
		if cur.active {
			cur.bounds = s.Bounds()
		}
		prev := r.spriteSnaps[i]
		if cur == prev {
			continue
		}
		if prev.active {
			r.dirty.AddRect(prev.bounds)
		}
		if cur.active {
			r.dirty.AddRect(cur.bounds)
		}
		r.spriteSnaps[i] = cur
	}

	for i := 0; i < sprites.MaxMissiles; i++ {
		m := r.sprites.Missile(i)
		cur := missileSnap{active: m.Active, color: m.Color}
		if cur.active {
			cur.bounds = m.Bounds()
		}
		prev := r.missileSnaps[i]
		if cur == prev {
			continue
		}
		if prev.active {
			r.dirty.AddRect(prev.bounds)
		}
		if cur.active {
			r.dirty.AddRect(cur.bounds)
		}
		r.missileSnaps[i] = cur
	}

	for i := 0; i < r.nOverlays; i++ {
		if b, ok := r.overlays[i].(bounded); ok {
			r.overlaySnaps[i] = b.Bounds()
		}
	}
	r.pendingShift = 0
}
