package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// Target is a panel that accepts row-major RGB565 pixel blocks.
//
// Width and Height are the current logical dimensions (after rotation).
// BlitRGB565 fully overwrites the destination block; there is no blending.
// len(pix) must be at least w*h.
type Target interface {
	Width() int
	Height() int
	BlitRGB565(x, y, w, h int, pix []uint16) error
}

// ScrollController is the optional native scroll-window capability of a Target.
//
// The scroll window lies on the active axis: Y when the panel is at least as tall as it
// is wide, X otherwise. SetScrollOffset receives fixedStart+offset, i.e. the controller's
// raw start address.
type ScrollController interface {
	SupportsHardwareScroll() bool
	SetScrollArea(fixedStart, span, fixedEnd uint16) error
	SetScrollOffset(offset uint16) error
	// ScrollAxisInverted reports whether positive logical movement requires a
	// decreasing controller offset.
	ScrollAxisInverted() bool
}

// EffectTicker is implemented by targets that own time-based effects
// (backlight fades). TickEffects is called once per flush.
type EffectTicker interface {
	TickEffects()
}

// ScrollControllerOf returns t's scroll capability, or nil when t has none.
func ScrollControllerOf(t Target) ScrollController {
	sc, ok := t.(ScrollController)
	if !ok || !sc.SupportsHardwareScroll() {
		return nil
	}
	return sc
}

// Clock is a monotonic millisecond clock. It wraps around after ~49 days.
type Clock interface {
	NowMs() uint32
}

// Button is a bit in a ButtonMask.
type Button uint8

const (
	ButtonLeft Button = 1 << iota
	ButtonRight
	ButtonUp
	ButtonDown
	ButtonFire
	ButtonMenu
)

// ButtonMask is a set of held buttons.
type ButtonMask uint8

func (m ButtonMask) Has(b Button) bool { return m&ButtonMask(b) != 0 }

// Buttons reports the currently held buttons (already debounced by the platform).
type Buttons interface {
	Held() ButtonMask
}

// HAL provides the only contact point between the engine and the outside world.
type HAL interface {
	Logger() Logger
	Panel() Target
	Clock() Clock
	Buttons() Buttons
}
