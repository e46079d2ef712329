package hal

import (
	"errors"
	"sync"

	"sgf/sgf/fx"
)

// ErrShortPixels is returned when a blit supplies fewer than w*h pixels.
var ErrShortPixels = errors.New("hal: pixel slice shorter than w*h")

// MemPanelConfig describes an emulated panel.
type MemPanelConfig struct {
	Width  int
	Height int

	// HardwareScroll enables the emulated scroll window.
	HardwareScroll bool
	// Inverted makes the scroll address run opposite to logical movement,
	// as on controllers whose row order is mirrored in the current rotation.
	Inverted bool

	// Clock drives backlight fades. Optional.
	Clock Clock
}

// MemPanel is an in-memory panel with a controller-style circular scroll window.
//
// Blits write physical display RAM. Scanout applies the programmed scroll window the
// way the controller would when refreshing the glass, so callers can inspect what is
// actually visible.
type MemPanel struct {
	mu sync.Mutex

	w, h int
	ram  []uint16

	hwScroll bool
	inverted bool

	fixedStart int
	span       int
	rawOffset  int

	clock     Clock
	backlight uint8
	fade      fx.BacklightFade

	blits  uint64
	pixels uint64
}

// NewMemPanel allocates display RAM for cfg.
func NewMemPanel(cfg MemPanelConfig) *MemPanel {
	if cfg.Width < 0 {
		cfg.Width = 0
	}
	if cfg.Height < 0 {
		cfg.Height = 0
	}
	return &MemPanel{
		w:         cfg.Width,
		h:         cfg.Height,
		ram:       make([]uint16, cfg.Width*cfg.Height),
		hwScroll:  cfg.HardwareScroll,
		inverted:  cfg.Inverted,
		clock:     cfg.Clock,
		backlight: 255,
	}
}

func (p *MemPanel) Width() int  { return p.w }
func (p *MemPanel) Height() int { return p.h }

func (p *MemPanel) BlitRGB565(x, y, w, h int, pix []uint16) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	if len(pix) < w*h {
		return ErrShortPixels
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.blits++
	p.pixels += uint64(w * h)
	for row := 0; row < h; row++ {
		yy := y + row
		if yy < 0 || yy >= p.h {
			continue
		}
		src := pix[row*w : row*w+w]
		for col, c := range src {
			xx := x + col
			if xx < 0 || xx >= p.w {
				continue
			}
			p.ram[yy*p.w+xx] = c
		}
	}
	return nil
}

func (p *MemPanel) SupportsHardwareScroll() bool { return p.hwScroll }
func (p *MemPanel) ScrollAxisInverted() bool     { return p.inverted }

func (p *MemPanel) SetScrollArea(fixedStart, span, fixedEnd uint16) error {
	if !p.hwScroll {
		return ErrNotImplemented
	}
	if int(fixedStart)+int(span)+int(fixedEnd) != p.axisLen() {
		return errors.New("hal: scroll area does not cover the axis")
	}
	p.mu.Lock()
	p.fixedStart = int(fixedStart)
	p.span = int(span)
	p.rawOffset = int(fixedStart)
	p.mu.Unlock()
	return nil
}

func (p *MemPanel) SetScrollOffset(offset uint16) error {
	if !p.hwScroll {
		return ErrNotImplemented
	}
	p.mu.Lock()
	p.rawOffset = int(offset)
	p.mu.Unlock()
	return nil
}

// ScrollState returns the programmed window and raw start address.
func (p *MemPanel) ScrollState() (fixedStart, span, rawOffset int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fixedStart, p.span, p.rawOffset
}

// RAMPixel returns the display RAM word at (x, y) without scroll mapping.
func (p *MemPanel) RAMPixel(x, y int) uint16 {
	if x < 0 || y < 0 || x >= p.w || y >= p.h {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ram[y*p.w+x]
}

// ScanoutPixel returns the pixel visible at logical (x, y).
func (p *MemPanel) ScanoutPixel(x, y int) uint16 {
	if x < 0 || y < 0 || x >= p.w || y >= p.h {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	mx, my := p.memCoord(x, y)
	return p.ram[my*p.w+mx]
}

// Scanout copies the visible image into dst (row-major, len >= Width*Height).
func (p *MemPanel) Scanout(dst []uint16) {
	if len(dst) < p.w*p.h {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			mx, my := p.memCoord(x, y)
			dst[y*p.w+x] = p.ram[my*p.w+mx]
		}
	}
}

func (p *MemPanel) axisLen() int {
	if p.h >= p.w {
		return p.h
	}
	return p.w
}

// memCoord maps a visible coordinate to the RAM coordinate shown there.
func (p *MemPanel) memCoord(x, y int) (int, int) {
	if !p.hwScroll || p.span <= 0 {
		return x, y
	}
	alongY := p.h >= p.w
	pos := x
	if alongY {
		pos = y
	}
	if pos < p.fixedStart || pos >= p.fixedStart+p.span {
		return x, y
	}
	off := p.rawOffset - p.fixedStart
	if p.inverted {
		off = -off
	}
	m := (pos - p.fixedStart + off) % p.span
	if m < 0 {
		m += p.span
	}
	m += p.fixedStart
	if alongY {
		return x, m
	}
	return m, y
}

// Stats returns the number of blits and pixels written since the last ResetStats.
func (p *MemPanel) Stats() (blits, pixels uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blits, p.pixels
}

func (p *MemPanel) ResetStats() {
	p.mu.Lock()
	p.blits = 0
	p.pixels = 0
	p.mu.Unlock()
}

// Backlight returns the current backlight level.
func (p *MemPanel) Backlight() uint8 { return p.backlight }

// SetBacklight sets the level immediately and cancels any fade.
func (p *MemPanel) SetBacklight(level uint8) {
	p.fade.Stop()
	p.backlight = level
}

// FadeBacklightTo starts a fade from the current level. Without a clock the level
// jumps immediately.
func (p *MemPanel) FadeBacklightTo(level uint8, durationMs uint32) {
	if p.clock == nil || durationMs == 0 {
		p.SetBacklight(level)
		return
	}
	p.fade.Start(p.backlight, level, p.clock.NowMs(), durationMs)
}

// TickEffects advances a running backlight fade.
func (p *MemPanel) TickEffects() {
	if !p.fade.Active() || p.clock == nil {
		return
	}
	now := p.clock.NowMs()
	p.backlight = p.fade.LevelAt(now)
	if p.fade.Complete(now) {
		p.fade.Stop()
	}
}
