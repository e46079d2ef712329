//go:build !tinygo && cgo

package hal

import (
	"image"

	"sgf/internal/buildinfo"
	"sgf/sgf/color565"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow opens a desktop window showing the emulated panel at 2x and forwards the
// keyboard as buttons. It blocks until the window closes or a step fails.
func RunWindow(host HostConfig, newApp func(HAL) (func() error, error)) error {
	h := newHostHAL(host)
	step, err := newApp(h)
	if err != nil {
		return err
	}

	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle("sgf (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.panel.Width()*2, h.panel.Height()*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *hostHAL
	img     *image.RGBA
	panImg  *ebiten.Image
	scratch []uint16
	step    func() error
}

func (g *hostGame) Update() error {
	g.h.buttons.poll()
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	p := g.h.panel
	w, h := p.Width(), p.Height()
	if g.img == nil || g.img.Bounds().Dx() != w || g.img.Bounds().Dy() != h {
		g.img = image.NewRGBA(image.Rect(0, 0, w, h))
		g.scratch = make([]uint16, w*h)
		if g.panImg != nil {
			g.panImg.Deallocate()
		}
		g.panImg = ebiten.NewImage(w, h)
	}

	// Scanout applies the scroll window, as the glass would.
	p.Scanout(g.scratch)

	level := uint32(p.Backlight())
	dst := g.img.Pix
	for i, c := range g.scratch {
		rgba := color565.ToRGBA(c)
		j := i * 4
		dst[j+0] = uint8(uint32(rgba.R) * level / 255)
		dst[j+1] = uint8(uint32(rgba.G) * level / 255)
		dst[j+2] = uint8(uint32(rgba.B) * level / 255)
		dst[j+3] = 0xFF
	}

	g.panImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.panImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.panel.Width(), g.h.panel.Height()
}
