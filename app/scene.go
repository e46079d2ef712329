package app

import (
	"errors"
	"fmt"
	"strconv"

	"sgf/hal"
	"sgf/sgf/color565"
	"sgf/sgf/dirty"
	"sgf/sgf/fx"
	"sgf/sgf/render"
	"sgf/sgf/scroll"
	"sgf/sgf/sprites"
	"sgf/sgf/text"
	"sgf/sgf/tiles"
)

const (
	shipSlot   = 0
	shipSpeed  = 120 // px/s
	rockSpeed  = 48  // px/s, per axis at most
	flashUs    = 400_000
	scoreOnHit = 10
	subpx      = 16
)

// actor is the fixed-point motion state behind a sprite slot.
type actor struct {
	x, y   int // 1/subpx pixels
	vx, vy int // px/s
}

type scene struct {
	cfg     Config
	log     hal.Logger
	clock   hal.Clock
	buttons hal.Buttons
	panel   hal.Target

	dirty  *dirty.Set
	layer  *sprites.Layer
	sc     *scroll.Scroller
	r      *render.Renderer
	hud    *text.Block
	footer *text.Block
	flash  *fx.FlashAnim

	flashSlots [4]fx.FlashSlot
	actors     [sprites.MaxSprites]actor
	shipPx     []uint16
	rockPx     []uint16

	tileBuf  []uint16
	stripBuf []uint16
	textBuf  []byte

	field dirty.Rect

	speed      int
	score      int
	shownScore int
	shownSpeed int
	prev       hal.ButtonMask
	rng        uint32

	started bool
	lastMs  uint32
	statsMs uint32
	frames  uint32

	scrollErr errOnce
	flushErr  errOnce
}

func newScene(h hal.HAL, cfg Config) (*scene, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := h.Panel()
	if p == nil || p.Width() <= 0 || p.Height() <= 0 {
		return nil, errors.New("app: no panel")
	}

	s := &scene{
		cfg:        cfg,
		log:        h.Logger(),
		clock:      h.Clock(),
		buttons:    h.Buttons(),
		panel:      p,
		dirty:      dirty.New(cfg.DirtyCapacity),
		layer:      sprites.NewLayer(),
		speed:      cfg.ScrollSpeed,
		shownScore: -1,
		shownSpeed: -1,
		rng:        cfg.Seed,
		textBuf:    make([]byte, 0, text.MaxLen),
		scrollErr:  errOnce{op: "scroll"},
		flushErr:   errOnce{op: "flush"},
	}
	s.sc = scroll.New(p)
	s.r = render.New(p, s.sc, s.layer, s.dirty, cfg.TileW, cfg.TileH)

	span := s.sc.AxisLength() - cfg.HUDLines - cfg.FooterLines
	if span < 1 {
		return nil, fmt.Errorf("%w: bands %d+%d leave no scroll span on a %d axis",
			ErrConfig, cfg.HUDLines, cfg.FooterLines, s.sc.AxisLength())
	}
	if err := s.r.ConfigureScroll(cfg.HUDLines, span, cfg.FooterLines); err != nil {
		return nil, fmt.Errorf("app: scroll partition: %w", err)
	}
	s.r.SetBackground(s.background)

	s.tileBuf = make([]uint16, cfg.TileW*cfg.TileH)
	s.stripBuf = make([]uint16, s.sc.CrossLength()*min(cfg.StripLines, span))

	if s.sc.AlongY() {
		s.field = dirty.R(0, cfg.HUDLines, p.Width()-1, cfg.HUDLines+span-1)
	} else {
		s.field = dirty.R(cfg.HUDLines, 0, cfg.HUDLines+span-1, p.Height()-1)
	}

	s.flash = fx.NewFlashAnim(s.flashSlots[:], color565.White, fx.DefaultWarmWhite)
	s.hud = text.NewBlock(s.dirty)
	s.hud.SetPosition(2, 2)
	s.r.AddOverlay(s.flash)
	s.r.AddOverlay(s.hud)
	if cfg.FooterLines > 0 {
		s.footer = text.NewBlock(s.dirty)
		s.footer.SetAlign(text.AlignRight)
		s.footer.SetColor(color565.Cyan)
		s.r.AddOverlay(s.footer)
	}
	s.updateText()
	if s.footer != nil {
		s.footer.SetPosition(p.Width()-3, p.Height()-1-s.footer.Height())
	}

	s.shipPx = bitmap(shipArt, color565.Cyan)
	s.rockPx = bitmap(rockArt, color565.RGB(200, 120, 64))
	s.spawnShip()
	for i := 1; i < cfg.Sprites; i++ {
		s.spawnRock(i, false)
	}
	return s, nil
}

// step advances the scene by the time elapsed since the previous call and flushes.
// Only programming errors (undersized buffers) are returned; panel errors are logged
// and retried on the next frame.
func (s *scene) step() error {
	now := s.clock.NowMs()
	var dt uint32
	if s.started {
		dt = now - s.lastMs
	} else {
		s.started = true
		s.statsMs = now
	}
	s.lastMs = now
	if dt > maxFrameMs {
		dt = maxFrameMs
	}

	s.handleButtons(dt)
	s.moveRocks(dt)
	s.moveMissiles(dt)
	s.flash.Advance(dt*1000, s.dirty)
	s.flash.MarkDirty(s.dirty)
	s.updateText()

	err := s.r.ScrollByVelocity(s.speed, dt, s.stripBuf, s.cfg.StripLines)
	if fatal(err) {
		return err
	}
	s.scrollErr.report(s.log, err)

	err = s.r.Flush(s.tileBuf)
	if fatal(err) {
		return err
	}
	s.flushErr.report(s.log, err)

	s.frames++
	s.logStats(now)
	return nil
}

func fatal(err error) bool {
	return errors.Is(err, tiles.ErrShortBuffer) || errors.Is(err, scroll.ErrShortBuffer)
}

func (s *scene) handleButtons(dt uint32) {
	held := s.buttons.Held()
	pressed := held &^ s.prev
	s.prev = held

	ship := &s.actors[shipSlot]
	move := shipSpeed * int(dt) * subpx / 1000
	if held.Has(hal.ButtonLeft) {
		s.moveCross(ship, -move)
	}
	if held.Has(hal.ButtonRight) {
		s.moveCross(ship, move)
	}
	s.place(shipSlot)

	if pressed.Has(hal.ButtonUp) {
		s.speed = min(s.speed+speedStep, maxSpeed)
	}
	if pressed.Has(hal.ButtonDown) {
		s.speed = max(s.speed-speedStep, -maxSpeed)
	}
	if pressed.Has(hal.ButtonFire) {
		s.fire()
	}
	if pressed.Has(hal.ButtonMenu) {
		s.r.Invalidate()
		s.flash.Spawn(s.hud.Bounds(), flashUs, hudColor, color565.Lighten(hudColor))
	}
}

// moveCross moves a by d subpixels across the scroll axis, clamped to the field.
func (s *scene) moveCross(a *actor, d int) {
	if s.sc.AlongY() {
		a.x = clamp(a.x+d, int(s.field.X0)*subpx, int(s.field.X1)*subpx)
	} else {
		a.y = clamp(a.y+d, int(s.field.Y0)*subpx, int(s.field.Y1)*subpx)
	}
}

func (s *scene) spawnShip() {
	sp := s.layer.Sprite(shipSlot)
	sp.SetBitmapKeyed(s.shipPx, 8, 8, keyColor)
	sp.SetScale(sprites.ScaleDouble)
	sp.SetAnchor(0.5, 0.5)
	sp.SetActive(true)

	a := &s.actors[shipSlot]
	cx := (int(s.field.X0) + int(s.field.X1)) / 2
	cy := (int(s.field.Y0) + int(s.field.Y1)) / 2
	if s.sc.AlongY() {
		cy = int(s.field.Y1) - 12
	} else {
		cx = int(s.field.X1) - 12
	}
	*a = actor{x: cx * subpx, y: cy * subpx}
	s.place(shipSlot)
}

// spawnRock puts slot i at a random spot, or at the start edge of the field when
// entering.
func (s *scene) spawnRock(i int, entering bool) {
	sp := s.layer.Sprite(i)
	sp.SetBitmapKeyed(s.rockPx, 8, 8, keyColor)
	if i%2 == 0 {
		sp.SetScale(sprites.ScaleDouble)
	} else {
		sp.SetScale(sprites.ScaleNormal)
	}
	sp.SetAnchor(0.5, 0.5)
	sp.SetActive(true)

	x := int(s.field.X0) + s.rand(s.field.W())
	y := int(s.field.Y0) + s.rand(s.field.H())
	if entering {
		if s.sc.AlongY() {
			y = int(s.field.Y0) + 8
		} else {
			x = int(s.field.X0) + 8
		}
	}
	s.actors[i] = actor{
		x:  x * subpx,
		y:  y * subpx,
		vx: s.rand(2*rockSpeed+1) - rockSpeed,
		vy: s.rand(2*rockSpeed+1) - rockSpeed,
	}
	s.place(i)
}

func (s *scene) moveRocks(dt uint32) {
	for i := 1; i < s.cfg.Sprites; i++ {
		a := &s.actors[i]
		a.x += a.vx * int(dt) * subpx / 1000
		a.y += a.vy * int(dt) * subpx / 1000
		if x0, x1 := int(s.field.X0)*subpx, int(s.field.X1)*subpx; a.x < x0 || a.x > x1 {
			a.vx = -a.vx
			a.x = clamp(a.x, x0, x1)
		}
		if y0, y1 := int(s.field.Y0)*subpx, int(s.field.Y1)*subpx; a.y < y0 || a.y > y1 {
			a.vy = -a.vy
			a.y = clamp(a.y, y0, y1)
		}
		s.place(i)
	}
}

func (s *scene) place(i int) {
	a := &s.actors[i]
	s.layer.Sprite(i).SetPosition(a.x/subpx, a.y/subpx)
}

// fire launches a missile from the ship nose toward the HUD.
func (s *scene) fire() {
	for i := 0; i < s.cfg.Missiles; i++ {
		m := s.layer.Missile(i)
		if m.Active {
			continue
		}
		nose := s.layer.Sprite(shipSlot).Bounds()
		*m = sprites.Missile{Active: true, Color: missileTint}
		if s.sc.AlongY() {
			m.W, m.H = 2, 4
			m.X = (int(nose.X0)+int(nose.X1))/2 - 1
			m.Y = int(nose.Y0) - m.H
		} else {
			m.W, m.H = 4, 2
			m.X = int(nose.X0) - m.W
			m.Y = (int(nose.Y0)+int(nose.Y1))/2 - 1
		}
		return
	}
}

func (s *scene) moveMissiles(dt uint32) {
	travel := missileSpeed * int(dt) / 1000
	if dt > 0 && travel == 0 {
		travel = 1
	}
	for i := 0; i < s.cfg.Missiles; i++ {
		m := s.layer.Missile(i)
		if !m.Active {
			continue
		}
		if s.sc.AlongY() {
			m.Y -= travel
		} else {
			m.X -= travel
		}
		b := m.Bounds()
		if !b.Touches(s.field) {
			m.Active = false
			continue
		}
		for r := 1; r < s.cfg.Sprites; r++ {
			if s.layer.Sprite(r).Bounds().Touches(b) {
				m.Active = false
				s.hit(r)
				break
			}
		}
	}
}

func (s *scene) hit(rock int) {
	s.score += scoreOnHit
	s.spawnRock(rock, true)
	s.flash.Spawn(s.hud.Bounds(), flashUs, hudColor, scoreFlash)
}

func (s *scene) updateText() {
	if s.score != s.shownScore {
		s.shownScore = s.score
		b := append(s.textBuf[:0], "SCORE "...)
		b = appendPadded(b, s.score, 6)
		s.hud.SetText(string(b))
	}
	if s.footer != nil && s.speed != s.shownSpeed {
		s.shownSpeed = s.speed
		b := append(s.textBuf[:0], "SPD "...)
		b = strconv.AppendInt(b, int64(s.speed), 10)
		s.footer.SetText(string(b))
	}
}

func (s *scene) logStats(now uint32) {
	every := s.cfg.StatsEveryMs
	if every == 0 || now-s.statsMs < every {
		return
	}
	s.statsMs = now
	st := s.r.Stats()
	s.log.WriteLineString(fmt.Sprintf(
		"stats: frames=%d flushes=%d tiles=%d px=%d strips=%d steps=%d full=%d ghosts=%d world=%d",
		s.frames, st.Flushes, st.Tiles, st.Pixels, st.Strips, st.ScrollSteps, st.FullRedraws,
		st.Ghosts, s.sc.WorldOffset()))
}

// rand returns a value in [0, n) from a xorshift32 stream.
func (s *scene) rand(n int) int {
	if n <= 0 {
		return 0
	}
	x := s.rng
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	s.rng = x
	return int(x % uint32(n))
}

func appendPadded(b []byte, v, width int) []byte {
	var digits [20]byte
	d := strconv.AppendInt(digits[:0], int64(v), 10)
	for i := len(d); i < width; i++ {
		b = append(b, '0')
	}
	return append(b, d...)
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

func (s *scene) describe() string {
	return fmt.Sprintf("panel=%dx%d hw_scroll=%v axis=%s bands=%d/%d/%d tile=%dx%d",
		s.panel.Width(), s.panel.Height(), s.sc.HardwareEnabled(), axisName(s.sc.AlongY()),
		s.sc.FixedStart(), s.sc.Span(), s.sc.FixedEnd(), s.cfg.TileW, s.cfg.TileH)
}

func axisName(alongY bool) string {
	if alongY {
		return "y"
	}
	return "x"
}
