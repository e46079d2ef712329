package app

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"sgf/hal"
	"sgf/sgf/color565"
	"sgf/sgf/fx"
	"sgf/sgf/scroll"
	"sgf/sgf/tiles"
)

type recLogger struct {
	lines []string
}

func (l *recLogger) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *recLogger) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

func (l *recLogger) count(substr string) int {
	n := 0
	for _, s := range l.lines {
		if strings.Contains(s, substr) {
			n++
		}
	}
	return n
}

type rig struct {
	s       *scene
	panel   *hal.MemPanel
	clock   *hal.ManualClock
	buttons *hal.ButtonLatch
	log     *recLogger
}

func newRig(t *testing.T, w, h int, hw bool, cfg Config) *rig {
	t.Helper()
	r := &rig{
		panel:   hal.NewMemPanel(hal.MemPanelConfig{Width: w, Height: h, HardwareScroll: hw}),
		clock:   &hal.ManualClock{},
		buttons: &hal.ButtonLatch{},
		log:     &recLogger{},
	}
	s, err := newScene(hal.NewBoard(r.log, r.panel, r.clock, r.buttons), cfg)
	if err != nil {
		t.Fatalf("newScene: %v", err)
	}
	r.s = s
	return r
}

func (r *rig) frame(t *testing.T, dtMs uint32) {
	t.Helper()
	r.clock.Advance(dtMs)
	if err := r.s.step(); err != nil {
		t.Fatalf("step: %v", err)
	}
}

// covered reports whether (x, y) may show an object instead of the background.
func (r *rig) covered(x, y int) bool {
	s := r.s
	for i := 0; i < s.cfg.Sprites; i++ {
		if s.layer.SpriteBoundsPadded(i, 1).Contains(x, y) {
			return true
		}
	}
	for i := 0; i < s.cfg.Missiles; i++ {
		if m := s.layer.Missile(i); m.Active && m.Bounds().Inset(1).Contains(x, y) {
			return true
		}
	}
	if s.hud.Bounds().Contains(x, y) {
		return true
	}
	return s.footer != nil && s.footer.Bounds().Contains(x, y)
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}

	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"tile too wide", func(c *Config) { c.TileW = 65 }},
		{"zero strip", func(c *Config) { c.StripLines = -1 }},
		{"negative footer", func(c *Config) { c.FooterLines = -2 }},
		{"too fast", func(c *Config) { c.ScrollSpeed = maxSpeed + 1 }},
		{"too many sprites", func(c *Config) { c.Sprites = 9 }},
		{"too many missiles", func(c *Config) { c.Missiles = 5 }},
		{"no dirty capacity", func(c *Config) { c.DirtyCapacity = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrConfig) {
				t.Fatalf("err=%v, want ErrConfig", err)
			}
		})
	}
}

func TestConfigWithDefaults(t *testing.T) {
	got := Config{FooterLines: 0, TileW: 8}.WithDefaults()
	want := DefaultConfig()
	want.TileW = 8
	want.FooterLines = 0
	want.StatsEveryMs = 0
	if got != want {
		t.Fatalf("WithDefaults=%+v\nwant %+v", got, want)
	}
}

func TestNewRejectsBandsCoveringAxis(t *testing.T) {
	p := hal.NewMemPanel(hal.MemPanelConfig{Width: 240, Height: 320, HardwareScroll: true})
	cfg := DefaultConfig()
	cfg.HUDLines, cfg.FooterLines = 200, 120
	if _, err := New(hal.NewBoard(nil, p, nil, nil), cfg); !errors.Is(err, ErrConfig) {
		t.Fatalf("err=%v, want ErrConfig", err)
	}
	if _, err := New(hal.NewBoard(nil, nil, nil, nil), DefaultConfig()); err == nil {
		t.Fatalf("missing panel accepted")
	}
}

func TestNewLogsBuildLine(t *testing.T) {
	log := &recLogger{}
	p := hal.NewMemPanel(hal.MemPanelConfig{Width: 240, Height: 320, HardwareScroll: true})
	step, err := New(hal.NewBoard(log, p, nil, nil), DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if log.count("app: sgf ") != 1 || log.count("bands=16/292/12") != 1 {
		t.Fatalf("log=%q", log.lines)
	}
}

func TestSceneScanoutMatchesWorld(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		hw   bool
	}{
		{"portrait hardware", 240, 320, true},
		{"portrait software", 240, 320, false},
		{"landscape hardware", 320, 240, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.ScrollSpeed = 90
			r := newRig(t, tt.w, tt.h, tt.hw, cfg)
			for i := 0; i < 40; i++ {
				r.frame(t, 16)
			}
			s := r.s
			if s.sc.WorldOffset() <= 0 {
				t.Fatalf("world offset %d did not advance", s.sc.WorldOffset())
			}

			alongY := s.sc.AlongY()
			for y := 0; y < tt.h; y++ {
				for x := 0; x < tt.w; x++ {
					if r.covered(x, y) {
						continue
					}
					pos := y
					if !alongY {
						pos = x
					}
					got := r.panel.ScanoutPixel(x, y)
					if !s.sc.InSpan(pos) {
						if got != hudColor && got != hudEdge {
							t.Fatalf("band pixel (%d,%d)=%04x", x, y, got)
						}
						continue
					}
					wx, wy := int32(x), s.sc.WorldCoord(y)
					if !alongY {
						wx, wy = s.sc.WorldCoord(x), int32(y)
					}
					if want := worldPixel(wx, wy); got != want {
						t.Fatalf("field pixel (%d,%d)=%04x, want %04x (world %d,%d)", x, y, got, want, wx, wy)
					}
				}
			}
		})
	}
}

func TestSceneButtons(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sprites = 1
	r := newRig(t, 240, 320, true, cfg)
	r.frame(t, 0)
	s := r.s

	r.buttons.Set(hal.ButtonMask(hal.ButtonFire))
	r.frame(t, 16)
	if !s.layer.Missile(0).Active {
		t.Fatalf("fire did not launch a missile")
	}

	speed := s.speed
	r.buttons.Set(hal.ButtonMask(hal.ButtonUp))
	r.frame(t, 16)
	r.frame(t, 16)
	if s.speed != speed+speedStep {
		t.Fatalf("speed=%d, want %d (one step per press)", s.speed, speed+speedStep)
	}

	x0, _ := s.layer.Sprite(shipSlot).Position()
	r.buttons.Set(hal.ButtonMask(hal.ButtonLeft))
	r.frame(t, 100)
	if x1, _ := s.layer.Sprite(shipSlot).Position(); x1 != x0-12 {
		t.Fatalf("ship x=%d, want %d", x1, x0-12)
	}

	full := s.r.Stats().FullRedraws
	r.buttons.Set(hal.ButtonMask(hal.ButtonMenu))
	r.frame(t, 16)
	if s.r.Stats().FullRedraws != full+1 {
		t.Fatalf("menu did not force a redraw")
	}
	if s.flash.ActiveCount() != 1 {
		t.Fatalf("menu flash count=%d", s.flash.ActiveCount())
	}
}

func TestMenuFlashStepsWithoutScroll(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sprites = 1
	r := newRig(t, 240, 320, true, cfg)
	s := r.s
	s.speed = 0
	r.frame(t, 0)

	r.buttons.Set(hal.ButtonMask(hal.ButtonMenu))
	r.frame(t, 16)
	r.buttons.Set(0)

	hud := s.hud.Bounds()
	count := func(c uint16) int {
		n := 0
		for y := int(hud.Y0); y <= int(hud.Y1); y++ {
			for x := int(hud.X0); x <= int(hud.X1); x++ {
				if r.panel.ScanoutPixel(x, y) == c {
					n++
				}
			}
		}
		return n
	}
	area := (int(hud.X1) - int(hud.X0) + 1) * (int(hud.Y1) - int(hud.Y0) + 1)
	if n := count(color565.White); n < area/2 {
		t.Fatalf("white pixels=%d of %d, want the flash to cover the HUD", n, area)
	}

	r.frame(t, 150)
	if c, ok := s.flash.ColorAt(int(hud.X0), int(hud.Y0)); !ok || c != fx.DefaultWarmWhite {
		t.Fatalf("flash color=%#04x ok=%v, want warm white", c, ok)
	}
	if n := count(fx.DefaultWarmWhite); n < area/2 {
		t.Fatalf("warm white pixels=%d of %d, quartile not repainted", n, area)
	}
}

func TestMissileHitScores(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sprites = 2
	r := newRig(t, 240, 320, true, cfg)
	s := r.s
	r.frame(t, 0)

	rock := &s.actors[1]
	rock.vx, rock.vy = 0, 0
	ship := s.layer.Sprite(shipSlot).Bounds()
	rock.x = (int(ship.X0) + int(ship.X1)) / 2 * subpx
	rock.y = (int(ship.Y0) - 20) * subpx
	s.place(1)

	r.buttons.Set(hal.ButtonMask(hal.ButtonFire))
	for i := 0; i < 10 && s.score == 0; i++ {
		r.frame(t, 16)
	}
	if s.score != scoreOnHit {
		t.Fatalf("score=%d, want %d", s.score, scoreOnHit)
	}
	if s.layer.Missile(0).Active {
		t.Fatalf("missile survived the hit")
	}
	r.frame(t, 16)
	if s.hud.Text() != "SCORE 000010" {
		t.Fatalf("hud=%q", s.hud.Text())
	}
}

func TestStatsLogging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StatsEveryMs = 100
	r := newRig(t, 240, 320, true, cfg)
	r.frame(t, 0)
	r.frame(t, 50)
	if r.log.count("stats:") != 0 {
		t.Fatalf("stats logged early: %q", r.log.lines)
	}
	r.frame(t, 50)
	if r.log.count("stats: frames=3 ") != 1 {
		t.Fatalf("log=%q", r.log.lines)
	}
}

// flakyPanel fails every blit while fail is set.
type flakyPanel struct {
	*hal.MemPanel
	fail  bool
	blits int
}

func (p *flakyPanel) BlitRGB565(x, y, w, h int, pix []uint16) error {
	p.blits++
	if p.fail {
		return errors.New("bus timeout")
	}
	return p.MemPanel.BlitRGB565(x, y, w, h, pix)
}

func TestPanelErrorsAreLoggedOnce(t *testing.T) {
	p := &flakyPanel{MemPanel: hal.NewMemPanel(hal.MemPanelConfig{Width: 240, Height: 320})}
	log := &recLogger{}
	clock := &hal.ManualClock{}
	s, err := newScene(hal.NewBoard(log, p, clock, nil), DefaultConfig())
	if err != nil {
		t.Fatalf("newScene: %v", err)
	}

	p.fail = true
	for i := 0; i < 3; i++ {
		clock.Advance(16)
		if err := s.step(); err != nil {
			t.Fatalf("step returned %v", err)
		}
	}
	if n := log.count("app: flush: bus timeout"); n != 1 {
		t.Fatalf("flush errors logged %d times: %q", n, log.lines)
	}

	p.fail = false
	clock.Advance(16)
	if err := s.step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if s.dirty.Count() != 0 {
		t.Fatalf("recovered flush left %d dirty rects", s.dirty.Count())
	}

	p.fail = true
	clock.Advance(16)
	_ = s.step()
	if n := log.count("app: flush: bus timeout"); n != 2 {
		t.Fatalf("re-armed error logged %d times", n)
	}
}

func TestErrOnce(t *testing.T) {
	log := &recLogger{}
	e := errOnce{op: "x"}
	a, b := errors.New("a"), errors.New("b")
	for _, err := range []error{a, a, nil, a, b, b} {
		e.report(log, err)
	}
	want := []string{"app: x: a", "app: x: a", "app: x: b"}
	if fmt.Sprint(log.lines) != fmt.Sprint(want) {
		t.Fatalf("lines=%q, want %q", log.lines, want)
	}
}

func TestFatalClassifiesBufferErrors(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("bus"), false},
		{fmt.Errorf("flush: %w", tiles.ErrShortBuffer), true},
		{scroll.ErrShortBuffer, true},
	}
	for _, tt := range tests {
		if got := fatal(tt.err); got != tt.want {
			t.Fatalf("fatal(%v)=%v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestShowFatalPaintsPanel(t *testing.T) {
	p := hal.NewMemPanel(hal.MemPanelConfig{Width: 96, Height: 96})
	log := &recLogger{}
	showFatal(hal.NewBoard(log, p, nil, nil), fmt.Errorf("scroll: %w", scroll.ErrShortBuffer))

	if log.count("app: fatal: scroll: scroll: strip buffer too small") != 1 {
		t.Fatalf("log=%q", log.lines)
	}
	if got := p.ScanoutPixel(95, 95); got != fatalBackground {
		t.Fatalf("corner=%04x, want background", got)
	}
	lit := 0
	for y := 0; y < 12; y++ {
		for x := 0; x < 96; x++ {
			if p.ScanoutPixel(x, y) == 0xFFFF {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatalf("no text drawn in the first line")
	}
}

func TestShowFatalStopsOnPanelError(t *testing.T) {
	p := &flakyPanel{MemPanel: hal.NewMemPanel(hal.MemPanelConfig{Width: 96, Height: 96}), fail: true}
	log := &recLogger{}
	showFatal(hal.NewBoard(log, p, nil, nil), errors.New("boom"))

	if p.blits != 1 {
		t.Fatalf("blits=%d after a failed write, want 1", p.blits)
	}
	if log.count("app: fatal: display: bus timeout") != 1 {
		t.Fatalf("log=%q", log.lines)
	}
}

func TestTakeRunes(t *testing.T) {
	tests := []struct {
		s, prefix, rest string
		n               int
	}{
		{"hello", "hel", "lo", 3},
		{"héllo", "hé", "llo", 2},
		{"abc", "abc", "", 5},
		{"abc", "", "abc", 0},
	}
	for _, tt := range tests {
		p, r := takeRunes(tt.s, tt.n)
		if p != tt.prefix || r != tt.rest {
			t.Fatalf("takeRunes(%q,%d)=(%q,%q)", tt.s, tt.n, p, r)
		}
	}
}

func TestBackgroundPanelEdges(t *testing.T) {
	r := newRig(t, 240, 320, true, DefaultConfig())
	buf := make([]uint16, 4*16)
	r.s.background(0, 0, 4, 16, 0, 0, buf)
	if buf[0] != hudColor || buf[15*4] != hudEdge {
		t.Fatalf("hud band colors %04x/%04x", buf[0], buf[15*4])
	}
}
