//go:build tinygo && baremetal && pyportal

package hal

import (
	"machine"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ili9341"
)

type pyPortalHAL struct {
	logger  *uartLogger
	panel   *driverPanel
	clock   *tickClock
	buttons *ButtonLatch
}

// New returns a PyPortal HAL: ILI9341 on the 8-bit parallel bus, portrait 240x320.
// The board has no buttons; Buttons always reports nothing held.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{BaudRate: 115200})

	backlight := machine.LCD_BACKLIGHT
	backlight.Configure(machine.PinConfig{Mode: machine.PinOutput})

	lcd := ili9341.NewParallel(
		machine.LCD_DATA0,
		machine.LCD_WR,
		machine.LCD_DC,
		machine.LCD_CS,
		machine.LCD_RESET,
		machine.LCD_RD,
	)
	lcd.Configure(ili9341.Config{Rotation: drivers.Rotation0})
	backlight.High()

	return &pyPortalHAL{
		logger:  &uartLogger{uart: uart},
		panel:   &driverPanel{d: lcd},
		clock:   newTickClock(),
		buttons: &ButtonLatch{},
	}
}

func (h *pyPortalHAL) Logger() Logger   { return h.logger }
func (h *pyPortalHAL) Panel() Target    { return h.panel }
func (h *pyPortalHAL) Clock() Clock     { return h.clock }
func (h *pyPortalHAL) Buttons() Buttons { return h.buttons }
