//go:build tinygo && baremetal && picocalc

package hal

type picoCalcHAL struct {
	logger  *uartLogger
	panel   Target
	clock   *tickClock
	buttons Buttons
}

// New returns a PicoCalc HAL (Pico/Pico2 on the PicoCalc carrier): 320x320 ILI9488 on
// SPI1 with native vertical scroll, I2C keyboard mapped onto buttons.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
func New() HAL {
	uart := newUART0()
	logger := &uartLogger{uart: uart}

	var panel Target
	if lcd, err := initILI9488(); err == nil {
		panel = lcd
	} else {
		logger.WriteLineString("hal: display: " + err.Error())
		panel = NewMemPanel(MemPanelConfig{Width: picoCalcWidth, Height: picoCalcHeight})
	}

	var buttons Buttons
	if kb, err := newPicoCalcButtons(); err == nil {
		buttons = kb
	} else {
		logger.WriteLineString("hal: keyboard: " + err.Error())
		buttons = &ButtonLatch{}
	}

	return &picoCalcHAL{
		logger:  logger,
		panel:   panel,
		clock:   newTickClock(),
		buttons: buttons,
	}
}

func (h *picoCalcHAL) Logger() Logger   { return h.logger }
func (h *picoCalcHAL) Panel() Target    { return h.panel }
func (h *picoCalcHAL) Clock() Clock     { return h.clock }
func (h *picoCalcHAL) Buttons() Buttons { return h.buttons }
