//go:build tinygo && baremetal && !picocalc && !pyportal

package hal

import (
	"machine"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/st7789"
)

type tinyGoHAL struct {
	logger  *uartLogger
	panel   *driverPanel
	clock   *tickClock
	buttons *gpioButtons
}

// New returns a Pico HAL for a 240x240 ST7789 display board (Waveshare Pico-LCD-1.3
// wiring): SPI1 on GP10/GP11, DC GP8, CS GP9, RST GP12, backlight GP13.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
func New() HAL {
	uart := newUART0()

	machine.SPI1.Configure(machine.SPIConfig{
		SCK:       machine.GP10,
		SDO:       machine.GP11,
		Frequency: 62_500_000,
		Mode:      0,
	})
	lcd := st7789.New(machine.SPI1, machine.GP12, machine.GP8, machine.GP9, machine.GP13)
	lcd.Configure(st7789.Config{
		Width:    240,
		Height:   240,
		Rotation: drivers.Rotation0,
	})

	return &tinyGoHAL{
		logger: &uartLogger{uart: uart},
		panel:  &driverPanel{d: &lcd},
		clock:  newTickClock(),
		buttons: newGPIOButtons(
			pinButton{machine.GP16, ButtonLeft},
			pinButton{machine.GP20, ButtonRight},
			pinButton{machine.GP2, ButtonUp},
			pinButton{machine.GP18, ButtonDown},
			pinButton{machine.GP15, ButtonFire},
			pinButton{machine.GP17, ButtonMenu},
		),
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) Panel() Target    { return h.panel }
func (h *tinyGoHAL) Clock() Clock     { return h.clock }
func (h *tinyGoHAL) Buttons() Buttons { return h.buttons }
