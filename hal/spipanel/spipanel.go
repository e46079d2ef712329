// Package spipanel drives an ST7789-class RGB565 panel over a periph.io SPI port.
//
// Dev implements hal.Target and hal.ScrollController, so a Linux SBC can host the
// engine with the same native scroll path the microcontroller boards use.
package spipanel

import (
	"errors"
	"fmt"
	"time"

	"sgf/hal"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	cmdSWRESET = 0x01
	cmdSLPOUT  = 0x11
	cmdNORON   = 0x13
	cmdINVON   = 0x21
	cmdDISPON  = 0x29
	cmdCASET   = 0x2A
	cmdRASET   = 0x2B
	cmdRAMWR   = 0x2C
	cmdVSCRDEF = 0x33
	cmdMADCTL  = 0x36
	cmdVSCSAD  = 0x37
	cmdCOLMOD  = 0x3A

	madctlMY  = 0x80
	madctlMX  = 0x40
	madctlMV  = 0x20
	madctlBGR = 0x08

	defaultTxSize = 4096
)

var ErrOutOfBounds = errors.New("spipanel: blit outside panel")

// Opts configures the panel geometry.
type Opts struct {
	W, H int

	// MemRows is the controller's frame memory height along the scroll axis
	// (320 for ST7789). Zero means the scroll axis length.
	MemRows int

	// XOffset and YOffset shift the RAM window for glass smaller than frame memory.
	XOffset, YOffset int

	// Landscape swaps row and column addressing (MADCTL MV); the scroll axis becomes X.
	Landscape bool
	// Mirrored flips the scroll axis (MADCTL MY), which inverts the scroll address.
	Mirrored bool
	// BGR selects BGR subpixel order.
	BGR bool

	// Hz is the SPI clock. Zero means 32 MHz.
	Hz physic.Frequency

	RST gpio.PinOut
}

// Dev is an open panel.
type Dev struct {
	c   conn.Conn
	dc  gpio.PinOut
	rst gpio.PinOut

	w, h    int
	memRows int
	xoff    int
	yoff    int
	mirror  bool

	maxTx int
	tx    []byte
}

var (
	_ hal.Target           = (*Dev)(nil)
	_ hal.ScrollController = (*Dev)(nil)
)

// NewSPI connects to p in SPI mode 0 and initializes the controller.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{W: 240, H: 320}
	}
	if opts.W <= 0 || opts.H <= 0 || opts.W > 0xFFFF || opts.H > 0xFFFF {
		return nil, fmt.Errorf("spipanel: invalid size %dx%d", opts.W, opts.H)
	}
	if dc == nil {
		return nil, errors.New("spipanel: dc pin required")
	}
	hz := opts.Hz
	if hz == 0 {
		hz = 32 * physic.MegaHertz
	}

	c, err := p.Connect(hz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("spipanel: connect: %w", err)
	}

	d := &Dev{
		c:       c,
		dc:      dc,
		rst:     opts.RST,
		w:       opts.W,
		h:       opts.H,
		memRows: opts.MemRows,
		xoff:    opts.XOffset,
		yoff:    opts.YOffset,
		mirror:  opts.Mirrored,
		maxTx:   defaultTxSize,
	}
	if d.memRows < d.axisLen() {
		d.memRows = d.axisLen()
	}
	if l, ok := c.(conn.Limits); ok && l.MaxTxSize() > 0 && l.MaxTxSize() < d.maxTx {
		d.maxTx = l.MaxTxSize()
	}
	d.maxTx &^= 1
	if d.maxTx < 2 {
		d.maxTx = 2
	}
	d.tx = make([]byte, d.maxTx)

	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) init(opts *Opts) error {
	if d.rst != nil {
		if err := d.rst.Out(gpio.Low); err != nil {
			return fmt.Errorf("spipanel: RST low: %w", err)
		}
		time.Sleep(20 * time.Millisecond)
		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("spipanel: RST high: %w", err)
		}
		time.Sleep(120 * time.Millisecond)
	} else {
		if err := d.command(cmdSWRESET); err != nil {
			return err
		}
		time.Sleep(150 * time.Millisecond)
	}

	var madctl byte
	if opts.Landscape {
		madctl |= madctlMV | madctlMX
	}
	if opts.Mirrored {
		madctl |= madctlMY
	}
	if opts.BGR {
		madctl |= madctlBGR
	}

	if err := d.command(cmdSLPOUT); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	for _, c := range [][]byte{
		{cmdCOLMOD, 0x55},
		{cmdMADCTL, madctl},
		{cmdINVON},
		{cmdNORON},
		{cmdDISPON},
	} {
		if err := d.command(c[0], c[1:]...); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dev) String() string { return fmt.Sprintf("spipanel.Dev{%dx%d}", d.w, d.h) }

func (d *Dev) Width() int  { return d.w }
func (d *Dev) Height() int { return d.h }

// BlitRGB565 writes a w x h block at (x, y), big-endian on the wire.
func (d *Dev) BlitRGB565(x, y, w, h int, pix []uint16) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	if len(pix) < w*h {
		return hal.ErrShortPixels
	}
	if x < 0 || y < 0 || x+w > d.w || y+h > d.h {
		return ErrOutOfBounds
	}

	x0, y0 := x+d.xoff, y+d.yoff
	x1, y1 := x0+w-1, y0+h-1
	if err := d.command(cmdCASET, be16(x0, x1)...); err != nil {
		return err
	}
	if err := d.command(cmdRASET, be16(y0, y1)...); err != nil {
		return err
	}
	if err := d.command(cmdRAMWR); err != nil {
		return err
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}

	src := pix[:w*h]
	for len(src) > 0 {
		n := min(len(src), d.maxTx/2)
		for i, c := range src[:n] {
			d.tx[2*i] = byte(c >> 8)
			d.tx[2*i+1] = byte(c)
		}
		if err := d.c.Tx(d.tx[:2*n], nil); err != nil {
			return fmt.Errorf("spipanel: pixel data: %w", err)
		}
		src = src[n:]
	}
	return nil
}

func (d *Dev) SupportsHardwareScroll() bool { return true }
func (d *Dev) ScrollAxisInverted() bool     { return d.mirror }

// SetScrollArea programs VSCRDEF. Frame memory before the glass is added to the top
// fixed area and memory past it to the bottom one.
func (d *Dev) SetScrollArea(fixedStart, span, fixedEnd uint16) error {
	if int(fixedStart)+int(span)+int(fixedEnd) != d.axisLen() {
		return fmt.Errorf("spipanel: scroll area %d+%d+%d does not cover %d",
			fixedStart, span, fixedEnd, d.axisLen())
	}
	off := d.axisOffset()
	top := int(fixedStart) + off
	bottom := int(fixedEnd) + d.memRows - d.axisLen() - off
	if bottom < 0 {
		return fmt.Errorf("spipanel: glass offset %d exceeds frame memory: %w", off, ErrOutOfBounds)
	}
	return d.command(cmdVSCRDEF,
		byte(top>>8), byte(top),
		byte(span>>8), byte(span),
		byte(bottom>>8), byte(bottom),
	)
}

// SetScrollOffset programs VSCSAD with the raw start address moved by the glass offset.
func (d *Dev) SetScrollOffset(offset uint16) error {
	addr := int(offset) + d.axisOffset()
	return d.command(cmdVSCSAD, byte(addr>>8), byte(addr))
}

// axisOffset is the glass offset into frame memory along the scroll axis.
func (d *Dev) axisOffset() int {
	if d.h >= d.w {
		return d.yoff
	}
	return d.xoff
}

func (d *Dev) axisLen() int {
	if d.h >= d.w {
		return d.h
	}
	return d.w
}

func (d *Dev) command(cmd byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.c.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("spipanel: cmd 0x%02X: %w", cmd, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	if err := d.c.Tx(data, nil); err != nil {
		return fmt.Errorf("spipanel: cmd 0x%02X data: %w", cmd, err)
	}
	return nil
}

func be16(a, b int) []byte {
	return []byte{byte(a >> 8), byte(a), byte(b >> 8), byte(b)}
}
