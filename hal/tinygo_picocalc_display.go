//go:build tinygo && baremetal && picocalc

package hal

import (
	"errors"
	"machine"
	"time"
)

const (
	picoCalcWidth  = 320
	picoCalcHeight = 320

	// ILI9488 frame memory has 480 rows; the glass shows the first 320.
	ili9488MemRows = 480
)

// ili9488 drives the PicoCalc panel directly over SPI and implements Target and
// ScrollController.
type ili9488 struct {
	spi machine.SPI
	cs  machine.Pin
	dc  machine.Pin
	rst machine.Pin

	txBuf []byte
}

func initILI9488() (*ili9488, error) {
	if machine.SPI1 == nil {
		return nil, errors.New("SPI1 unavailable")
	}

	machine.SPI1.Configure(machine.SPIConfig{
		SCK:       machine.GP10,
		SDO:       machine.GP11,
		SDI:       machine.GP12,
		Frequency: 40_000_000,
	})

	lcd := &ili9488{
		spi:   *machine.SPI1,
		cs:    machine.GP13,
		dc:    machine.GP14,
		rst:   machine.GP15,
		txBuf: make([]byte, 4096),
	}

	lcd.cs.Configure(machine.PinConfig{Mode: machine.PinOutput})
	lcd.dc.Configure(machine.PinConfig{Mode: machine.PinOutput})
	lcd.rst.Configure(machine.PinConfig{Mode: machine.PinOutput})
	lcd.cs.High()
	lcd.dc.High()
	lcd.rst.High()

	lcd.reset()
	lcd.init()

	return lcd, nil
}

func (d *ili9488) reset() {
	d.rst.Low()
	time.Sleep(64 * time.Millisecond)
	d.rst.High()
	time.Sleep(140 * time.Millisecond)
}

func (d *ili9488) init() {
	d.cmd(0xC0, 0x17, 0x15)             // PWCTRL1
	d.cmd(0xC1, 0x41)                   // PWCTRL2
	d.cmd(0xC5, 0x00, 0x12, 0x80, 0x40) // VMCTRL
	d.cmd(0x3A, 0x55)                   // COLMOD 16bpp
	d.cmd(0xB1, 0xA0, 0x11)             // FRMCTRL1
	d.cmd(0xB6, 0x02, 0x22, 0x27)       // DISCTRL (320 lines)
	d.cmd(0x21)                         // INVON

	// MX|MH|BGR. MY stays clear, so the scroll address follows logical rows.
	d.cmd(0x36, 0x40|0x04|0x08)

	d.cmd(0x11) // SLPOUT
	time.Sleep(120 * time.Millisecond)
	d.cmd(0x29) // DISPON
}

func (d *ili9488) cmd(cmd byte, data ...byte) {
	d.cs.Low()
	d.dc.Low()
	d.spi.Tx([]byte{cmd}, nil)
	d.dc.High()
	if len(data) > 0 {
		d.spi.Tx(data, nil)
	}
	d.cs.High()
}

func (d *ili9488) setWindow(x0, y0, x1, y1 uint16) {
	d.cmd(0x2A, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1))
	d.cmd(0x2B, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1))
	d.cmd(0x2C)
}

func (d *ili9488) Width() int  { return picoCalcWidth }
func (d *ili9488) Height() int { return picoCalcHeight }

// BlitRGB565 streams pix big-endian into the window at (x, y).
func (d *ili9488) BlitRGB565(x, y, w, h int, pix []uint16) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	if len(pix) < w*h {
		return ErrShortPixels
	}
	if x < 0 || y < 0 || x+w > picoCalcWidth || y+h > picoCalcHeight {
		return errors.New("ili9488: blit outside panel")
	}

	d.setWindow(uint16(x), uint16(y), uint16(x+w-1), uint16(y+h-1))

	d.cs.Low()
	d.dc.High()

	chunk := d.txBuf[:len(d.txBuf)&^1]
	src := pix[:w*h]
	for len(src) > 0 {
		n := len(chunk) / 2
		if n > len(src) {
			n = len(src)
		}
		for i, c := range src[:n] {
			chunk[2*i] = byte(c >> 8)
			chunk[2*i+1] = byte(c)
		}
		d.spi.Tx(chunk[:2*n], nil)
		src = src[n:]
	}

	d.cs.High()
	return nil
}

func (d *ili9488) SupportsHardwareScroll() bool { return true }
func (d *ili9488) ScrollAxisInverted() bool     { return false }

// SetScrollArea programs VSCRDEF. Rows below the glass are folded into the bottom
// fixed area so the three values cover the whole frame memory.
func (d *ili9488) SetScrollArea(fixedStart, span, fixedEnd uint16) error {
	if int(fixedStart)+int(span)+int(fixedEnd) != picoCalcHeight {
		return errors.New("ili9488: scroll area does not cover the panel")
	}
	bottom := fixedEnd + (ili9488MemRows - picoCalcHeight)
	d.cmd(0x33,
		byte(fixedStart>>8), byte(fixedStart),
		byte(span>>8), byte(span),
		byte(bottom>>8), byte(bottom),
	)
	return nil
}

// SetScrollOffset programs VSCRSADD.
func (d *ili9488) SetScrollOffset(offset uint16) error {
	d.cmd(0x37, byte(offset>>8), byte(offset))
	return nil
}
