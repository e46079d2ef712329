package render

import (
	"sgf/hal"
	"sgf/sgf/scroll"
)

// remapTarget translates logical screen writes into the physical addresses the
// controller shows there under the current scroll window. Writes that wrap the end of
// the span are split; writes outside the span pass through.
type remapTarget struct {
	t  hal.Target
	sc *scroll.Scroller
}

func (r *remapTarget) Width() int  { return r.t.Width() }
func (r *remapTarget) Height() int { return r.t.Height() }

func (r *remapTarget) BlitRGB565(x, y, w, h int, pix []uint16) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	if !r.sc.HardwareEnabled() || r.sc.Span() == 0 {
		return r.t.BlitRGB565(x, y, w, h, pix)
	}
	if r.sc.AlongY() {
		return r.blitRows(x, y, w, h, pix)
	}
	return r.blitCols(x, y, w, h, pix)
}

// run returns the physical start of the axis run beginning at pos and its length,
// limited to end. A run never crosses a band edge or the wrap point.
func (r *remapTarget) run(pos, end int) (phys, n int) {
	fs := r.sc.FixedStart()
	spanEnd := fs + r.sc.Span()
	switch {
	case pos < fs:
		return pos, minInt(end, fs) - pos
	case pos >= spanEnd:
		return pos, end - pos
	}
	phys = r.sc.PhysicalPos(pos)
	n = minInt(end, spanEnd) - pos
	return phys, minInt(n, spanEnd-phys)
}

func (r *remapTarget) blitRows(x, y, w, h int, pix []uint16) error {
	for pos := y; pos < y+h; {
		phys, n := r.run(pos, y+h)
		off := (pos - y) * w
		if err := r.t.BlitRGB565(x, phys, w, n, pix[off:off+n*w]); err != nil {
			return err
		}
		pos += n
	}
	return nil
}

func (r *remapTarget) blitCols(x, y, w, h int, pix []uint16) error {
	if phys, n := r.run(x, x+w); n == w {
		return r.t.BlitRGB565(phys, y, w, h, pix)
	}
	// Column runs are not contiguous in the tile: one write per row and run.
	for pos := x; pos < x+w; {
		phys, n := r.run(pos, x+w)
		for row := 0; row < h; row++ {
			off := row*w + (pos - x)
			if err := r.t.BlitRGB565(phys, y+row, n, 1, pix[off:off+n]); err != nil {
				return err
			}
		}
		pos += n
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
