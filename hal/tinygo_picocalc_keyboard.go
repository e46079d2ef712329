//go:build tinygo && baremetal && picocalc

package hal

import (
	"errors"
	"machine"
	"time"
)

const (
	picoCalcKbdAddr uint16 = 0x1F
	picoCalcKbdCmd         = 0x09

	// Events drained per Held call; the keyboard MCU queues up to 16.
	picoCalcKbdDrain = 8
)

const (
	picoCalcKeyEnter byte = 0x0A
	picoCalcKeyCR    byte = 0x0D
	picoCalcKeySpace byte = 0x20
	picoCalcKeyEsc   byte = 0xB1
	picoCalcKeyLeft  byte = 0xB4
	picoCalcKeyUp    byte = 0xB5
	picoCalcKeyDown  byte = 0xB6
	picoCalcKeyRight byte = 0xB7
)

const (
	picoCalcEvDown byte = 0x01
	picoCalcEvHeld byte = 0x02
	picoCalcEvUp   byte = 0x03
)

// picoCalcButtons folds the keyboard's down/up event FIFO into a held-button mask.
type picoCalcButtons struct {
	i2c   *machine.I2C
	write [1]byte
	read  [2]byte

	held ButtonMask
}

func newPicoCalcButtons() (*picoCalcButtons, error) {
	// Prefer I2C1 (PicoCalc wiring), but some TinyGo targets expose only I2C0.
	for _, bus := range []*machine.I2C{machine.I2C1, machine.I2C0} {
		if bus == nil {
			continue
		}
		for _, freq := range []uint32{100_000, 400_000} {
			if err := bus.Configure(machine.I2CConfig{
				SCL:       machine.GP7,
				SDA:       machine.GP6,
				Frequency: freq,
			}); err != nil {
				continue
			}

			k := &picoCalcButtons{i2c: bus, write: [1]byte{picoCalcKbdCmd}}

			// The keyboard MCU can be slow to answer right after boot.
			for i := 0; i < 50; i++ {
				if err := k.i2c.Tx(picoCalcKbdAddr, k.write[:], k.read[:]); err == nil {
					return k, nil
				}
				time.Sleep(10 * time.Millisecond)
			}
		}
	}
	return nil, errors.New("I2C unavailable")
}

func (k *picoCalcButtons) Held() ButtonMask {
	for i := 0; i < picoCalcKbdDrain; i++ {
		if !k.poll() {
			break
		}
	}
	return k.held
}

// poll applies one queued event and reports whether the FIFO may hold more.
func (k *picoCalcButtons) poll() bool {
	if err := k.i2c.Tx(picoCalcKbdAddr, k.write[:], k.read[:]); err != nil {
		return false
	}
	ev, code := k.read[0], k.read[1]
	if ev == 0 && code == 0 {
		return false
	}
	b, ok := picoCalcButton(code)
	if !ok {
		return true
	}
	switch ev {
	case picoCalcEvDown, picoCalcEvHeld:
		k.held |= ButtonMask(b)
	case picoCalcEvUp:
		k.held &^= ButtonMask(b)
	}
	return true
}

func picoCalcButton(code byte) (Button, bool) {
	switch code {
	case picoCalcKeyLeft:
		return ButtonLeft, true
	case picoCalcKeyRight:
		return ButtonRight, true
	case picoCalcKeyUp:
		return ButtonUp, true
	case picoCalcKeyDown:
		return ButtonDown, true
	case picoCalcKeyEnter, picoCalcKeyCR, picoCalcKeySpace:
		return ButtonFire, true
	case picoCalcKeyEsc:
		return ButtonMenu, true
	default:
		return 0, false
	}
}
