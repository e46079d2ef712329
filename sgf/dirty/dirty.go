// Package dirty tracks invalidated screen regions.
//
// A Set holds a bounded number of inclusive rectangles. New rectangles are merged
// eagerly into any existing rectangle they overlap or touch; when the set is full the
// whole set collapses into a single bounding rectangle. Memory use never grows after
// construction and every operation is O(capacity) (MergeAll is O(capacity^3) worst case).
package dirty

import "math"

// DefaultCapacity is the rect capacity used by NewDefault.
const DefaultCapacity = 32

// Rect is an inclusive rectangle in screen coordinates.
//
// A Rect is empty when X1 < X0 or Y1 < Y0.
type Rect struct {
	X0, Y0, X1, Y1 int16
}

// R builds a Rect from int coordinates, saturating to the int16 range.
func R(x0, y0, x1, y1 int) Rect {
	return Rect{X0: sat16(x0), Y0: sat16(y0), X1: sat16(x1), Y1: sat16(y1)}
}

// EmptyRect is a canonical empty rectangle.
var EmptyRect = Rect{X0: 0, Y0: 0, X1: -1, Y1: -1}

func (r Rect) Empty() bool { return r.X1 < r.X0 || r.Y1 < r.Y0 }

// W returns the width in pixels (0 when empty).
func (r Rect) W() int {
	if r.Empty() {
		return 0
	}
	return int(r.X1) - int(r.X0) + 1
}

// H returns the height in pixels (0 when empty).
func (r Rect) H() int {
	if r.Empty() {
		return 0
	}
	return int(r.Y1) - int(r.Y0) + 1
}

func (r Rect) Contains(x, y int) bool {
	return x >= int(r.X0) && x <= int(r.X1) && y >= int(r.Y0) && y <= int(r.Y1)
}

// Union returns the bounding rectangle of r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		X0: min16(r.X0, o.X0),
		Y0: min16(r.Y0, o.Y0),
		X1: max16(r.X1, o.X1),
		Y1: max16(r.Y1, o.Y1),
	}
}

// Touches reports whether r and o overlap or are adjacent within one pixel.
func (r Rect) Touches(o Rect) bool {
	return !(int(r.X1) < int(o.X0)-1 || int(r.X0) > int(o.X1)+1 ||
		int(r.Y1) < int(o.Y0)-1 || int(r.Y0) > int(o.Y1)+1)
}

// Offset returns r translated by (dx, dy).
func (r Rect) Offset(dx, dy int) Rect {
	return R(int(r.X0)+dx, int(r.Y0)+dy, int(r.X1)+dx, int(r.Y1)+dy)
}

// Inset returns r grown by pad pixels on every side (shrunk when pad < 0).
func (r Rect) Inset(pad int) Rect {
	return R(int(r.X0)-pad, int(r.Y0)-pad, int(r.X1)+pad, int(r.Y1)+pad)
}

// Sizer is anything with current logical dimensions.
type Sizer interface {
	Width() int
	Height() int
}

// Set is a bounded collection of dirty rectangles.
//
// It is not safe for concurrent use; producers and the single flush consumer are
// expected to run on one goroutine.
type Set struct {
	r []Rect
}

// New returns a set holding at most capacity rects (minimum 1).
func New(capacity int) *Set {
	if capacity < 1 {
		capacity = 1
	}
	return &Set{r: make([]Rect, 0, capacity)}
}

// NewDefault returns a set with DefaultCapacity.
func NewDefault() *Set { return New(DefaultCapacity) }

func (s *Set) Clear()        { s.r = s.r[:0] }
func (s *Set) Count() int    { return len(s.r) }
func (s *Set) Capacity() int { return cap(s.r) }
func (s *Set) At(i int) Rect { return s.r[i] }

// AddRect is Add for a Rect value.
func (s *Set) AddRect(r Rect) bool {
	return s.Add(int(r.X0), int(r.Y0), int(r.X1), int(r.Y1))
}

// Add marks the inclusive rectangle (x0,y0)-(x1,y1) dirty.
//
// Empty input is rejected and reports false. Otherwise the rect is merged into the
// first touching entry, appended, or (when the set is full) the whole set collapses
// into one bounding rect.
func (s *Set) Add(x0, y0, x1, y1 int) bool {
	if x1 < x0 || y1 < y0 {
		return false
	}
	nr := R(x0, y0, x1, y1)

	for i := range s.r {
		if s.r[i].Touches(nr) {
			s.r[i] = s.r[i].Union(nr)
			return true
		}
	}

	if len(s.r) == cap(s.r) {
		u := nr
		for _, r := range s.r {
			u = u.Union(r)
		}
		s.r = append(s.r[:0], u)
		return true
	}

	s.r = append(s.r, nr)
	return true
}

// Clip clamps every rect into [0,w)x[0,h) and drops rects that become empty.
// Order is not preserved.
func (s *Set) Clip(w, h int) {
	for i := 0; i < len(s.r); i++ {
		r := &s.r[i]
		if r.X0 < 0 {
			r.X0 = 0
		}
		if r.Y0 < 0 {
			r.Y0 = 0
		}
		if int(r.X1) >= w {
			r.X1 = sat16(w - 1)
		}
		if int(r.Y1) >= h {
			r.Y1 = sat16(h - 1)
		}
		if r.Empty() {
			last := len(s.r) - 1
			s.r[i] = s.r[last]
			s.r = s.r[:last]
			i--
		}
	}
}

// MergeAll coalesces touching or overlapping rects until none remain.
func (s *Set) MergeAll() {
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(s.r) && !changed; i++ {
			for j := i + 1; j < len(s.r); j++ {
				if !s.r[i].Touches(s.r[j]) {
					continue
				}
				s.r[i] = s.r[i].Union(s.r[j])
				last := len(s.r) - 1
				s.r[j] = s.r[last]
				s.r = s.r[:last]
				changed = true
				break
			}
		}
	}
}

// Invalidate replaces the set with one rect covering the whole target.
func (s *Set) Invalidate(t Sizer) {
	s.Clear()
	if t == nil {
		return
	}
	s.Add(0, 0, t.Width()-1, t.Height()-1)
}

// Bounds returns the union of all rects, or EmptyRect.
func (s *Set) Bounds() Rect {
	if len(s.r) == 0 {
		return EmptyRect
	}
	u := s.r[0]
	for _, r := range s.r[1:] {
		u = u.Union(r)
	}
	return u
}

func sat16(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

func min16(a, b int16) int16 {
	if a < b {
		return a
	}
	return b
}

func max16(a, b int16) int16 {
	if a > b {
		return a
	}
	return b
}
