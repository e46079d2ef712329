//go:build tinygo && baremetal && !picocalc

package hal

// scrollDriver is the subset of tinygo.org/x/drivers panel devices (st7789, ili9341)
// needed to act as a Target with a native scroll window.
type scrollDriver interface {
	Size() (w, h int16)
	DrawRGBBitmap(x, y int16, data []uint16, w, h int16) error
	SetScrollArea(topFixedArea, bottomFixedArea int16)
	SetScroll(line int16)
}

type driverPanel struct {
	d        scrollDriver
	inverted bool
}

func (p *driverPanel) Width() int {
	w, _ := p.d.Size()
	return int(w)
}

func (p *driverPanel) Height() int {
	_, h := p.d.Size()
	return int(h)
}

func (p *driverPanel) BlitRGB565(x, y, w, h int, pix []uint16) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	if len(pix) < w*h {
		return ErrShortPixels
	}
	return p.d.DrawRGBBitmap(int16(x), int16(y), pix[:w*h], int16(w), int16(h))
}

func (p *driverPanel) SupportsHardwareScroll() bool { return true }
func (p *driverPanel) ScrollAxisInverted() bool     { return p.inverted }

// SetScrollArea programs VSCRDEF. The driver derives the span from the two fixed areas.
func (p *driverPanel) SetScrollArea(fixedStart, span, fixedEnd uint16) error {
	p.d.SetScrollArea(int16(fixedStart), int16(fixedEnd))
	return nil
}

func (p *driverPanel) SetScrollOffset(offset uint16) error {
	p.d.SetScroll(int16(offset))
	return nil
}
