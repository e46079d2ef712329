package hal

import "sync/atomic"

type board struct {
	logger  Logger
	panel   Target
	clock   Clock
	buttons Buttons
}

// NewBoard assembles a HAL from parts. Nil parts are replaced by inert ones.
func NewBoard(l Logger, p Target, c Clock, b Buttons) HAL {
	if l == nil {
		l = nopLogger{}
	}
	if c == nil {
		c = &ManualClock{}
	}
	if b == nil {
		b = &ButtonLatch{}
	}
	return &board{logger: l, panel: p, clock: c, buttons: b}
}

func (h *board) Logger() Logger   { return h.logger }
func (h *board) Panel() Target    { return h.panel }
func (h *board) Clock() Clock     { return h.clock }
func (h *board) Buttons() Buttons { return h.buttons }

type nopLogger struct{}

func (nopLogger) WriteLineString(string) {}
func (nopLogger) WriteLineBytes([]byte)  {}

// ManualClock is a Clock that only moves when told to. Useful for deterministic
// runs and tests.
type ManualClock struct {
	ms atomic.Uint32
}

func (c *ManualClock) NowMs() uint32 { return c.ms.Load() }

// Advance moves the clock forward by ms, wrapping like a hardware counter.
func (c *ManualClock) Advance(ms uint32) { c.ms.Add(ms) }

func (c *ManualClock) Set(ms uint32) { c.ms.Store(ms) }

// ButtonLatch is a Buttons whose state is set by a platform poller (or a test).
type ButtonLatch struct {
	mask atomic.Uint32
}

func (b *ButtonLatch) Held() ButtonMask { return ButtonMask(b.mask.Load()) }

func (b *ButtonLatch) Set(m ButtonMask) { b.mask.Store(uint32(m)) }
