// Package capture turns what a panel shows into images.
package capture

import (
	"errors"
	"fmt"
	"image"
	"io"

	"sgf/hal"
	"sgf/sgf/color565"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// ErrEmpty is returned when there is nothing to encode.
var ErrEmpty = errors.New("capture: empty image")

// Scanner is a panel whose visible image can be read back.
type Scanner interface {
	Width() int
	Height() int
	Scanout(dst []uint16)
}

var _ Scanner = (*hal.MemPanel)(nil)

// Snapshot returns the visible image of p, with any scroll window applied.
func Snapshot(p Scanner) *image.RGBA {
	w, h := p.Width(), p.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return img
	}
	px := make([]uint16, w*h)
	p.Scanout(px)
	FromRGB565(img, px, w)
	return img
}

// FromRGB565 writes row-major RGB565 pixels of the given stride into img.
func FromRGB565(img *image.RGBA, px []uint16, stride int) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx() && x < stride; x++ {
			i := y*stride + x
			if i >= len(px) {
				return
			}
			c := color565.ToRGBA(px[i])
			o := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			img.Pix[o+0] = c.R
			img.Pix[o+1] = c.G
			img.Pix[o+2] = c.B
			img.Pix[o+3] = 0xFF
		}
	}
}

// Upscale enlarges img by an integer factor with nearest-neighbour sampling so
// panel pixels stay sharp. factor < 2 returns a copy.
func Upscale(img image.Image, factor int) *image.RGBA {
	if factor < 1 {
		factor = 1
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// WriteWebP encodes img as lossless WebP.
func WriteWebP(w io.Writer, img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return ErrEmpty
	}
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("capture: webp encode: %w", err)
	}
	return nil
}
