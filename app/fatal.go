package app

import (
	"strings"
	"unicode/utf8"

	"sgf/hal"
	"sgf/sgf/color565"
	"sgf/sgf/text"

	"tinygo.org/x/tinyfont"
)

var fatalBackground = color565.RGB(96, 0, 0)

// showFatal logs err and paints it, word-wrapped, over the whole panel.
func showFatal(h hal.HAL, err error) {
	lines := []string{"sgf stopped:"}
	for _, l := range strings.Split(err.Error(), ": ") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	log := func(msg string) {
		if l := h.Logger(); l != nil {
			l.WriteLineString(msg)
		}
	}
	log("app: fatal: " + err.Error())

	p := h.Panel()
	if p == nil || p.Width() <= 0 || p.Height() <= 0 {
		return
	}
	w, ph := p.Width(), p.Height()

	b := text.NewBlock(nil)
	b.SetText("0")
	lineH := b.Height()
	if lineH <= 0 {
		return
	}
	_, glyphW := tinyfont.LineWidth(b.Font(), "0")
	cols := w / max(int(glyphW), 1)
	if cols <= 0 {
		cols = 1
	}

	band := make([]uint16, w*lineH)
	y := 0
	blit := func(rows int) bool {
		if err := p.BlitRGB565(0, y, w, rows, band); err != nil {
			log("app: fatal: display: " + err.Error())
			return false
		}
		y += rows
		return true
	}
	paint := func(s string) bool {
		if y+lineH > ph {
			return false
		}
		for i := range band {
			band[i] = fatalBackground
		}
		b.SetText(s)
		b.SetPosition(0, y)
		b.RenderRegion(0, y, w, lineH, band)
		return blit(lineH)
	}

	for _, line := range lines {
		for line != "" {
			chunk, rest := takeRunes(line, cols)
			if !paint(chunk) {
				return
			}
			line = strings.TrimLeft(rest, " ")
		}
	}
	for i := range band {
		band[i] = fatalBackground
	}
	for y < ph {
		if !blit(min(lineH, ph-y)) {
			return
		}
	}
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	i, count := 0, 0
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
