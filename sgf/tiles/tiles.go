// Package tiles drains a dirty-rect set against a render target in bounded tiles.
package tiles

import (
	"errors"
	"fmt"

	"sgf/hal"
	"sgf/sgf/dirty"
)

// ErrShortBuffer is returned when the scratch buffer cannot hold one full tile.
var ErrShortBuffer = errors.New("tiles: scratch buffer smaller than one tile")

// RenderRegionFunc fills buf with exactly w*h row-major pixels describing the final
// content of the screen block at (x0, y0).
type RenderRegionFunc func(x0, y0, w, h int, buf []uint16)

const maxCuts = 4

// Flusher walks dirty rects in row-major tiles of at most TileW x TileH pixels.
type Flusher struct {
	dirty *dirty.Set
	tileW int
	tileH int

	// Tiles never cross a cut on the band axis.
	bandsAlongY bool
	cuts        [maxCuts]int
	nCuts       int
}

// NewFlusher binds a flusher to d. Tile sizes below 1 are raised to 1.
func NewFlusher(d *dirty.Set, tileW, tileH int) *Flusher {
	if tileW < 1 {
		tileW = 1
	}
	if tileH < 1 {
		tileH = 1
	}
	return &Flusher{dirty: d, tileW: tileW, tileH: tileH}
}

func (f *Flusher) TileSize() (w, h int) { return f.tileW, f.tileH }

// SetBands makes tiles stop at each cut coordinate on one axis (Y when alongY).
// A cut c means no tile contains both c-1 and c. At most four cuts are kept;
// calling SetBands with no cuts removes them.
func (f *Flusher) SetBands(alongY bool, cuts ...int) {
	f.bandsAlongY = alongY
	f.nCuts = 0
	for _, c := range cuts {
		if f.nCuts == maxCuts {
			break
		}
		f.cuts[f.nCuts] = c
		f.nCuts++
	}
}

// Flush clips and merges the dirty set, renders and blits every tile, then clears the
// set. It returns the number of tiles written.
//
// On a blit error the flush stops and the (clipped, merged) set is kept so the next
// flush retries.
func (f *Flusher) Flush(t hal.Target, buf []uint16, render RenderRegionFunc) (int, error) {
	if render == nil || t == nil {
		return 0, nil
	}
	if len(buf) < f.tileW*f.tileH {
		return 0, fmt.Errorf("%w: have %d, need %d", ErrShortBuffer, len(buf), f.tileW*f.tileH)
	}

	f.dirty.Clip(t.Width(), t.Height())
	f.dirty.MergeAll()

	tiles := 0
	for i := 0; i < f.dirty.Count(); i++ {
		r := f.dirty.At(i)
		x0, y0, x1, y1 := int(r.X0), int(r.Y0), int(r.X1), int(r.Y1)
		for y := y0; y <= y1; {
			hh := minInt(f.tileH, y1-y+1)
			if f.bandsAlongY {
				hh = f.clampToCut(y, hh)
			}
			for x := x0; x <= x1; {
				ww := minInt(f.tileW, x1-x+1)
				if !f.bandsAlongY {
					ww = f.clampToCut(x, ww)
				}
				tile := buf[:ww*hh]
				render(x, y, ww, hh, tile)
				if err := t.BlitRGB565(x, y, ww, hh, tile); err != nil {
					return tiles, err
				}
				tiles++
				x += ww
			}
			y += hh
		}
	}
	f.dirty.Clear()
	return tiles, nil
}

// clampToCut shortens a run starting at pos so it does not cross a cut.
func (f *Flusher) clampToCut(pos, n int) int {
	for i := 0; i < f.nCuts; i++ {
		c := f.cuts[i]
		if c > pos && c < pos+n {
			n = c - pos
		}
	}
	return n
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
