package app

import "sgf/sgf/color565"

const keyColor = color565.Magenta

var (
	hudColor    = color565.RGB(24, 24, 56)
	hudEdge     = color565.RGB(80, 80, 160)
	spaceColor  = color565.RGB(0, 0, 20)
	gridColor   = color565.RGB(0, 24, 48)
	starColor   = color565.White
	scoreFlash  = color565.RGB(255, 200, 64)
	missileTint = color565.Yellow
)

var shipArt = [8]string{
	"...##...",
	"...##...",
	"..####..",
	".##..##.",
	"########",
	"##.##.##",
	"#..##..#",
	"........",
}

var rockArt = [8]string{
	"..####..",
	".#####o.",
	"###o####",
	"########",
	"##o#####",
	"######o#",
	".######.",
	"..####..",
}

// bitmap turns an 8x8 ASCII drawing into RGB565 pixels. '#' is fg, 'o' is shade and
// anything else is the transparent key.
func bitmap(art [8]string, fg uint16) []uint16 {
	shade := color565.Darken(fg)
	px := make([]uint16, 0, 64)
	for _, row := range art {
		for i := 0; i < 8; i++ {
			switch row[i] {
			case '#':
				px = append(px, fg)
			case 'o':
				px = append(px, shade)
			default:
				px = append(px, keyColor)
			}
		}
	}
	return px
}

// background paints the scene from world coordinates only: a dark grid with a sparse
// hashed starfield in the scroll band and a flat panel in the fixed bands.
func (s *scene) background(x0, y0, w, h int, wx0, wy0 int32, buf []uint16) {
	pos := y0
	if !s.sc.AlongY() {
		pos = x0
	}
	if !s.sc.InSpan(pos) {
		s.panelBackground(x0, y0, w, h, buf)
		return
	}
	for y := 0; y < h; y++ {
		row := buf[y*w : y*w+w]
		wy := wy0 + int32(y)
		for x := range row {
			row[x] = worldPixel(wx0+int32(x), wy)
		}
	}
}

func (s *scene) panelBackground(x0, y0, w, h int, buf []uint16) {
	alongY := s.sc.AlongY()
	fs, fe := s.sc.FixedStart(), s.sc.FixedStart()+s.sc.Span()
	for y := 0; y < h; y++ {
		row := buf[y*w : y*w+w]
		for x := range row {
			pos := x0 + x
			if alongY {
				pos = y0 + y
			}
			c := hudColor
			if pos == fs-1 || pos == fe {
				c = hudEdge
			}
			row[x] = c
		}
	}
}

// worldPixel is the playfield color at world (x, y).
func worldPixel(x, y int32) uint16 {
	if x&31 == 0 || y&31 == 0 {
		return gridColor
	}
	hv := hash2(x, y)
	if hv&0x1FF == 0 {
		if hv&0x200 != 0 {
			return color565.Lighten(gridColor)
		}
		return starColor
	}
	return spaceColor
}

func hash2(x, y int32) uint32 {
	h := uint32(x)*0x9E3779B1 ^ uint32(y)*0x85EBCA77
	h ^= h >> 15
	h *= 0xC2B2AE3D
	h ^= h >> 13
	return h
}
