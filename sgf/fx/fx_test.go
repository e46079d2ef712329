package fx

import (
	"testing"

	"sgf/sgf/color565"
	"sgf/sgf/dirty"
)

func TestFadeLevels(t *testing.T) {
	var f BacklightFade
	if got := f.LevelAt(0); got != 0 {
		t.Fatalf("idle level=%d, want 0", got)
	}
	f.Start(0, 200, 1000, 100)
	tests := []struct {
		now  uint32
		want uint8
	}{
		{1000, 0},
		{1050, 100},
		{1099, 198},
		{1100, 200},
		{5000, 200},
	}
	for _, tt := range tests {
		if got := f.LevelAt(tt.now); got != tt.want {
			t.Errorf("LevelAt(%d)=%d, want %d", tt.now, got, tt.want)
		}
	}
	if f.Complete(1099) || !f.Complete(1100) {
		t.Fatalf("Complete boundary wrong")
	}
}

func TestFadeDown(t *testing.T) {
	var f BacklightFade
	f.Start(255, 55, 0, 200)
	if got := f.LevelAt(100); got != 155 {
		t.Fatalf("LevelAt(100)=%d, want 155", got)
	}
}

func TestFadeClockWrap(t *testing.T) {
	var f BacklightFade
	f.Start(0, 100, 0xFFFFFFF0, 0x20)
	if got := f.LevelAt(0x00000000); got != 50 {
		t.Fatalf("LevelAt across wrap=%d, want 50", got)
	}
}

func TestFlashQuartiles(t *testing.T) {
	slots := make([]FlashSlot, 2)
	a := NewFlashAnim(slots, color565.White, DefaultWarmWhite)
	d := dirty.New(4)
	a.Spawn(dirty.Rect{X0: 10, Y0: 10, X1: 19, Y1: 19}, 1000, color565.Blue, color565.Cyan)

	steps := []struct {
		advance uint32
		want    uint16
	}{
		{0, color565.White},
		{300, DefaultWarmWhite},
		{250, color565.Cyan},
		{250, color565.Blue},
	}
	for i, st := range steps {
		a.Advance(st.advance, d)
		got, ok := a.ColorAt(12, 12)
		if !ok || got != st.want {
			t.Fatalf("step %d: color=%#04x ok=%v, want %#04x", i, got, ok, st.want)
		}
	}
	if d.Count() != 0 {
		t.Fatalf("dirty marked before expiry")
	}

	a.Advance(1000, d)
	if a.ActiveCount() != 0 {
		t.Fatalf("flash still active")
	}
	if d.Count() != 1 || d.At(0) != (dirty.Rect{X0: 9, Y0: 9, X1: 20, Y1: 20}) {
		t.Fatalf("expiry dirty=%v", d.Bounds())
	}
	if _, ok := a.ColorAt(12, 12); ok {
		t.Fatalf("expired flash still covers pixel")
	}
}

func TestFlashSpawnReusesSlotZeroWhenFull(t *testing.T) {
	slots := make([]FlashSlot, 1)
	a := NewFlashAnim(slots, color565.White, DefaultWarmWhite)
	a.Spawn(dirty.Rect{X0: 0, Y0: 0, X1: 1, Y1: 1}, 100, 1, 2)
	a.Spawn(dirty.Rect{X0: 5, Y0: 5, X1: 6, Y1: 6}, 100, 3, 4)
	if slots[0].Rect.X0 != 5 || slots[0].Base != 3 {
		t.Fatalf("slot 0 not replaced: %+v", slots[0])
	}
}

func TestFlashRenderRegionClips(t *testing.T) {
	slots := make([]FlashSlot, 1)
	a := NewFlashAnim(slots, color565.White, DefaultWarmWhite)
	a.Spawn(dirty.Rect{X0: 2, Y0: 2, X1: 5, Y1: 5}, 0, color565.Red, color565.Red)

	buf := make([]uint16, 4*4)
	a.RenderRegion(4, 4, 4, 4, buf)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := uint16(0)
			if x < 2 && y < 2 {
				want = color565.Red
			}
			if got := buf[y*4+x]; got != want {
				t.Fatalf("pixel (%d,%d)=%#04x, want %#04x", x, y, got, want)
			}
		}
	}
}
