// Package scroll drives a panel controller's circular scroll window.
//
// The active axis follows the target's logical orientation: Y when the panel is at least
// as tall as it is wide, X otherwise. The axis is partitioned into a fixed start band, a
// scroll span and a fixed end band. Scrolling moves the controller's start address inside
// the span and repaints only the strip that became visible; callers generate that strip
// from an unbounded world offset rather than from the circular address.
package scroll

import (
	"errors"
	"fmt"

	"sgf/hal"
)

var (
	// ErrPartition is returned when a scroll partition does not cover the active axis.
	ErrPartition = errors.New("scroll: fixedStart+span+fixedEnd must equal the axis length")
	// ErrShortBuffer is returned when a strip buffer cannot hold the largest strip.
	ErrShortBuffer = errors.New("scroll: strip buffer too small")
)

// RenderStripFunc fills buf with a strip whose first unit is at worldOffset on the
// active axis. The strip is row-major: cross x span when scrolling along Y, span x cross
// when scrolling along X.
type RenderStripFunc func(worldOffset int32, span int, buf []uint16)

// BlitStripFunc writes a rendered strip at physical axis position physPos. It is
// responsible for splitting the write when physPos+span passes the end of the span.
type BlitStripFunc func(physPos, span int, buf []uint16) error

// Scroller tracks the circular offset, the world offset and the velocity accumulator.
type Scroller struct {
	t  hal.Target
	hw hal.ScrollController

	fixedStart int
	span       int
	fixedEnd   int

	offset int   // 0..span-1
	world  int32 // world coordinate of the first visible unit of the span
	accum  int64 // units*ms not yet turned into whole units

	steps uint32
}

// New binds a scroller to t. Without a native scroll capability the scroller only keeps
// logical offsets.
func New(t hal.Target) *Scroller {
	return &Scroller{t: t, hw: hal.ScrollControllerOf(t)}
}

func (s *Scroller) HardwareEnabled() bool { return s.hw != nil }

// AlongY reports whether the active axis is Y.
func (s *Scroller) AlongY() bool { return s.t.Height() >= s.t.Width() }

// Inverted reports whether the controller address moves against logical scrolling.
func (s *Scroller) Inverted() bool { return s.hw != nil && s.hw.ScrollAxisInverted() }

func (s *Scroller) AxisLength() int {
	if s.AlongY() {
		return s.t.Height()
	}
	return s.t.Width()
}

func (s *Scroller) CrossLength() int {
	if s.AlongY() {
		return s.t.Width()
	}
	return s.t.Height()
}

func (s *Scroller) FixedStart() int    { return s.fixedStart }
func (s *Scroller) Span() int          { return s.span }
func (s *Scroller) FixedEnd() int      { return s.fixedEnd }
func (s *Scroller) Offset() int        { return s.offset }
func (s *Scroller) WorldOffset() int32 { return s.world }
func (s *Scroller) Steps() uint32      { return s.steps }

// Configure sets the partition of the active axis and programs the controller when
// present. The offset is reset to 0. On error the previous state is kept.
func (s *Scroller) Configure(fixedStart, span, fixedEnd int) error {
	axis := s.AxisLength()
	if fixedStart < 0 || span < 0 || fixedEnd < 0 || fixedStart+span+fixedEnd != axis {
		return fmt.Errorf("%w: %d+%d+%d != %d", ErrPartition, fixedStart, span, fixedEnd, axis)
	}
	if s.hw != nil {
		if err := s.hw.SetScrollArea(uint16(fixedStart), uint16(span), uint16(fixedEnd)); err != nil {
			return fmt.Errorf("scroll: set area: %w", err)
		}
	}
	s.fixedStart = fixedStart
	s.span = span
	s.fixedEnd = fixedEnd
	return s.ResetOffset(0)
}

// ConfigureFullScreen makes the whole active axis scroll.
func (s *Scroller) ConfigureFullScreen() error {
	return s.Configure(0, s.AxisLength(), 0)
}

// ResetOffset sets the circular offset to v mod span and aligns the world offset with it.
func (s *Scroller) ResetOffset(v int) error {
	if s.span == 0 {
		return nil
	}
	s.offset = wrap(v, s.span)
	s.world = int32(s.offset)
	return s.program()
}

// Scroll moves the window by delta units. Positive delta exposes new content at the end
// of the span.
//
// Deltas larger than min(maxStrip, span) are split into chunks. buf must hold
// CrossLength()*min(maxStrip, span) pixels. A nil blit uses the default split writer.
// Without hardware only the world offset moves.
func (s *Scroller) Scroll(delta int, buf []uint16, maxStrip int, render RenderStripFunc, blit BlitStripFunc) error {
	if s.span == 0 || maxStrip <= 0 || delta == 0 {
		return nil
	}
	if s.hw == nil {
		s.world += int32(delta)
		return nil
	}
	if render == nil {
		return nil
	}

	limit := minInt(maxStrip, s.span)
	if need := s.CrossLength() * limit; len(buf) < need {
		return fmt.Errorf("%w: have %d, need %d", ErrShortBuffer, len(buf), need)
	}

	for remaining := delta; remaining != 0; {
		step := clamp(remaining, -limit, limit)
		if err := s.step(step, buf, render, blit); err != nil {
			return err
		}
		remaining -= step
	}
	return nil
}

func (s *Scroller) step(step int, buf []uint16, render RenderStripFunc, blit BlitStripFunc) error {
	hwStep := step
	if s.Inverted() {
		hwStep = -step
	}
	s.offset = wrap(s.offset+hwStep, s.span)
	if err := s.program(); err != nil {
		return err
	}
	s.world += int32(step)
	s.steps++

	stripSpan := absInt(step)
	screenStart := 0
	worldOffset := s.world
	if step > 0 {
		screenStart = s.span - stripSpan
		worldOffset = s.world + int32(s.span-stripSpan)
	}
	phys := s.PhysicalPos(s.fixedStart + screenStart)

	strip := buf[:s.CrossLength()*stripSpan]
	render(worldOffset, stripSpan, strip)
	if blit != nil {
		return blit(phys, stripSpan, strip)
	}
	return s.blitSplit(phys, stripSpan, strip)
}

// blitSplit writes a strip at phys, wrapping at the end of the span.
func (s *Scroller) blitSplit(phys, stripSpan int, buf []uint16) error {
	cross := s.CrossLength()
	spanEnd := s.fixedStart + s.span
	first := minInt(stripSpan, spanEnd-phys)
	second := stripSpan - first

	if s.AlongY() {
		if err := s.t.BlitRGB565(0, phys, cross, first, buf); err != nil {
			return err
		}
		if second > 0 {
			return s.t.BlitRGB565(0, s.fixedStart, cross, second, buf[cross*first:])
		}
		return nil
	}

	if second <= 0 {
		return s.t.BlitRGB565(phys, 0, stripSpan, cross, buf)
	}
	// Columns of a sub-range are not contiguous in the strip: one write per row.
	for row := 0; row < cross; row++ {
		line := buf[row*stripSpan : row*stripSpan+stripSpan]
		if err := s.t.BlitRGB565(phys, row, first, 1, line[:first]); err != nil {
			return err
		}
		if err := s.t.BlitRGB565(s.fixedStart, row, second, 1, line[first:]); err != nil {
			return err
		}
	}
	return nil
}

// Advance integrates speed (units per second) over dtMs and returns the whole units to
// scroll now. The sub-unit remainder, including its sign, is kept for the next call.
func (s *Scroller) Advance(speed int, dtMs uint32) int {
	s.accum += int64(speed) * int64(dtMs)
	units := s.accum / 1000
	s.accum -= units * 1000
	return int(units)
}

// ScrollByVelocity advances the accumulator and scrolls by the whole units it yields.
func (s *Scroller) ScrollByVelocity(speed int, dtMs uint32, buf []uint16, maxStrip int, render RenderStripFunc, blit BlitStripFunc) (int, error) {
	units := s.Advance(speed, dtMs)
	if units == 0 {
		return 0, nil
	}
	return units, s.Scroll(units, buf, maxStrip, render, blit)
}

// ResetAccumulator drops any sub-unit velocity remainder.
func (s *Scroller) ResetAccumulator() { s.accum = 0 }

// InSpan reports whether the logical axis position pos lies in the scroll span.
func (s *Scroller) InSpan(pos int) bool {
	return s.span > 0 && pos >= s.fixedStart && pos < s.fixedStart+s.span
}

// WorldCoord maps a logical axis position to world space. Fixed bands map to themselves.
func (s *Scroller) WorldCoord(pos int) int32 {
	if !s.InSpan(pos) {
		return int32(pos)
	}
	return s.world + int32(pos-s.fixedStart)
}

// PhysicalPos maps a logical axis position to the controller address that shows it.
func (s *Scroller) PhysicalPos(pos int) int {
	if s.hw == nil || !s.InSpan(pos) {
		return pos
	}
	off := s.offset
	if s.Inverted() {
		off = -off
	}
	return s.fixedStart + wrap(pos-s.fixedStart+off, s.span)
}

func (s *Scroller) program() error {
	if s.hw == nil {
		return nil
	}
	if err := s.hw.SetScrollOffset(uint16(s.fixedStart + s.offset)); err != nil {
		return fmt.Errorf("scroll: set offset: %w", err)
	}
	return nil
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
