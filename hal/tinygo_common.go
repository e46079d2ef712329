//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"
)

// newUART0 configures UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
func newUART0() *machine.UART {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	return uart
}

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

// tickClock reads the runtime monotonic clock.
type tickClock struct {
	start time.Time
}

func newTickClock() *tickClock { return &tickClock{start: time.Now()} }

func (c *tickClock) NowMs() uint32 {
	return uint32(time.Since(c.start) / time.Millisecond)
}

// pinButton is an active-low push button.
type pinButton struct {
	pin machine.Pin
	btn Button
}

type gpioButtons struct {
	pins []pinButton
}

func newGPIOButtons(pins ...pinButton) *gpioButtons {
	for _, p := range pins {
		p.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}
	return &gpioButtons{pins: pins}
}

func (g *gpioButtons) Held() ButtonMask {
	var m ButtonMask
	for _, p := range g.pins {
		if !p.pin.Get() {
			m |= ButtonMask(p.btn)
		}
	}
	return m
}
