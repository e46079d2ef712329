// Package fx holds small time-driven visual effects that feed the dirty-rect set.
package fx

import (
	"sgf/sgf/color565"
	"sgf/sgf/dirty"
)

// FlashSlot is one flashing rectangle. Slots are owned by the caller and reused.
type FlashSlot struct {
	Active  bool
	RemUs   uint32
	TotalUs uint32
	Rect    dirty.Rect
	Base    uint16
	Light   uint16
}

// FlashAnim fades rectangles from white through warm white and a light tint to a base
// color. Colors step at each remaining-time quartile.
type FlashAnim struct {
	slots     []FlashSlot
	white     uint16
	warmWhite uint16
}

// NewFlashAnim uses slots as fixed storage; its length is the flash capacity.
func NewFlashAnim(slots []FlashSlot, white, warmWhite uint16) *FlashAnim {
	return &FlashAnim{slots: slots, white: white, warmWhite: warmWhite}
}

// DefaultWarmWhite is a slightly yellow white.
var DefaultWarmWhite = color565.RGB(255, 236, 200)

func (a *FlashAnim) Clear() {
	for i := range a.slots {
		a.slots[i].Active = false
	}
}

// Spawn starts a flash over r in the first free slot, or slot 0 when all are busy.
func (a *FlashAnim) Spawn(r dirty.Rect, durationUs uint32, base, light uint16) {
	if len(a.slots) == 0 {
		return
	}
	slot := 0
	for i := range a.slots {
		if !a.slots[i].Active {
			slot = i
			break
		}
	}
	a.slots[slot] = FlashSlot{
		Active:  true,
		RemUs:   durationUs,
		TotalUs: durationUs,
		Rect:    r,
		Base:    base,
		Light:   light,
	}
}

// ActiveCount returns the number of running flashes.
func (a *FlashAnim) ActiveCount() int {
	n := 0
	for i := range a.slots {
		if a.slots[i].Active {
			n++
		}
	}
	return n
}

// ColorAt returns the color of the first active flash covering (x, y), and whether
// any flash covers it.
func (a *FlashAnim) ColorAt(x, y int) (uint16, bool) {
	for i := range a.slots {
		f := &a.slots[i]
		if !f.Active || !f.Rect.Contains(x, y) {
			continue
		}
		return a.slotColor(f), true
	}
	return 0, false
}

func (a *FlashAnim) slotColor(f *FlashSlot) uint16 {
	if f.TotalUs == 0 {
		return f.Base
	}
	rem4 := uint64(f.RemUs) * 4
	tot := uint64(f.TotalUs)
	switch {
	case rem4 > tot*3:
		return a.white
	case rem4 > tot*2:
		return a.warmWhite
	case rem4 > tot:
		return f.Light
	default:
		return f.Base
	}
}

// MarkDirty marks every active flash (padded by one pixel) dirty.
func (a *FlashAnim) MarkDirty(d *dirty.Set) {
	for i := range a.slots {
		if a.slots[i].Active {
			d.AddRect(a.slots[i].Rect.Inset(1))
		}
	}
}

// Advance ages every flash by dtUs. Expired flashes are deactivated and their area
// marked dirty so the background shows through again.
func (a *FlashAnim) Advance(dtUs uint32, d *dirty.Set) {
	if dtUs == 0 {
		return
	}
	for i := range a.slots {
		f := &a.slots[i]
		if !f.Active {
			continue
		}
		if f.RemUs > dtUs {
			f.RemUs -= dtUs
			continue
		}
		f.RemUs = 0
		f.Active = false
		d.AddRect(f.Rect.Inset(1))
	}
}

// RenderRegion paints active flashes into the w x h tile at (x0, y0).
func (a *FlashAnim) RenderRegion(x0, y0, w, h int, buf []uint16) {
	if w <= 0 || h <= 0 || len(buf) < w*h {
		return
	}
	for i := range a.slots {
		f := &a.slots[i]
		if !f.Active || f.Rect.Empty() {
			continue
		}
		rx0 := maxInt(int(f.Rect.X0), x0)
		ry0 := maxInt(int(f.Rect.Y0), y0)
		rx1 := minInt(int(f.Rect.X1), x0+w-1)
		ry1 := minInt(int(f.Rect.Y1), y0+h-1)
		if rx1 < rx0 || ry1 < ry0 {
			continue
		}
		c := a.slotColor(f)
		for y := ry0; y <= ry1; y++ {
			row := buf[(y-y0)*w:]
			for x := rx0; x <= rx1; x++ {
				row[x-x0] = c
			}
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
