// Command sgfshot renders the demo scene headlessly on an emulated panel for a fixed
// number of frames and writes the visible image as WebP.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"sgf/app"
	"sgf/hal"
	"sgf/sgf/capture"

	"github.com/charmbracelet/lipgloss"
)

type options struct {
	Frames    int
	DtMs      uint
	FireEvery int
	Width     int
	Height    int
	NoScroll  bool
	Inverted  bool
	Scale     int
	Config    string
	Out       string
}

type report struct {
	Frames    int
	Blits     uint64
	Pixels    uint64
	RawOffset int
	Bytes     int
	Out       string
	Log       []string
}

func main() {
	var o options
	flag.IntVar(&o.Frames, "frames", 120, "Frames to render.")
	flag.UintVar(&o.DtMs, "dt", 16, "Simulated milliseconds per frame.")
	flag.IntVar(&o.FireEvery, "fire-every", 20, "Press fire every N frames (0 = never).")
	flag.IntVar(&o.Width, "width", 240, "Panel width in pixels.")
	flag.IntVar(&o.Height, "height", 320, "Panel height in pixels.")
	flag.BoolVar(&o.NoScroll, "no-hw-scroll", false, "Emulate a panel without a scroll window.")
	flag.BoolVar(&o.Inverted, "inverted", false, "Invert the emulated scroll address.")
	flag.IntVar(&o.Scale, "scale", 2, "Upscale factor of the written image.")
	flag.StringVar(&o.Config, "config", "", "JSON scene config file.")
	flag.StringVar(&o.Out, "o", "sgf.webp", "Output WebP path.")
	flag.Parse()

	cfg := app.DefaultConfig()
	if o.Config != "" {
		c, err := app.LoadConfig(o.Config)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = c.WithDefaults()
	}

	f, err := os.Create(o.Out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rep, err := run(o, cfg, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rep.Out = o.Out
	fmt.Println(render(rep))
}

// run steps the scene o.Frames times on a manual clock and encodes the final scanout.
func run(o options, cfg app.Config, w io.Writer) (report, error) {
	if o.Frames < 1 {
		return report{}, fmt.Errorf("sgfshot: frames must be positive, got %d", o.Frames)
	}
	var logBuf bytes.Buffer
	panel := hal.NewMemPanel(hal.MemPanelConfig{
		Width:          o.Width,
		Height:         o.Height,
		HardwareScroll: !o.NoScroll,
		Inverted:       o.Inverted,
	})
	clock := &hal.ManualClock{}
	buttons := &hal.ButtonLatch{}
	h := hal.NewBoard(hal.NewWriterLogger(&logBuf), panel, clock, buttons)

	step, err := app.New(h, cfg)
	if err != nil {
		return report{}, err
	}
	for i := 0; i < o.Frames; i++ {
		var held hal.ButtonMask
		if o.FireEvery > 0 && i%o.FireEvery == 0 {
			held |= hal.ButtonMask(hal.ButtonFire)
		}
		buttons.Set(held)
		if err := step(); err != nil {
			return report{}, fmt.Errorf("sgfshot: frame %d: %w", i, err)
		}
		clock.Advance(uint32(o.DtMs))
	}

	img := capture.Snapshot(panel)
	if o.Scale > 1 {
		img = capture.Upscale(img, o.Scale)
	}
	cw := &countWriter{w: w}
	if err := capture.WriteWebP(cw, img); err != nil {
		return report{}, fmt.Errorf("sgfshot: encode: %w", err)
	}

	blits, pixels := panel.Stats()
	_, _, raw := panel.ScrollState()
	return report{
		Frames:    o.Frames,
		Blits:     blits,
		Pixels:    pixels,
		RawOffset: raw,
		Bytes:     cw.n,
		Log:       strings.Split(strings.TrimSpace(logBuf.String()), "\n"),
	}, nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(6))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(4)).Width(12)
	logStyle   = lipgloss.NewStyle().Faint(true)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func render(r report) string {
	perFrame := r.Pixels / uint64(max(r.Frames, 1))
	rows := []string{
		titleStyle.Render("sgfshot"),
		keyStyle.Render("frames") + fmt.Sprint(r.Frames),
		keyStyle.Render("blits") + fmt.Sprint(r.Blits),
		keyStyle.Render("pixels") + fmt.Sprintf("%d (%d/frame)", r.Pixels, perFrame),
		keyStyle.Render("raw offset") + fmt.Sprint(r.RawOffset),
		keyStyle.Render("webp") + fmt.Sprintf("%d bytes", r.Bytes),
	}
	if r.Out != "" {
		rows = append(rows, keyStyle.Render("output")+r.Out)
	}
	for _, l := range r.Log {
		if l != "" {
			rows = append(rows, logStyle.Render(l))
		}
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

type countWriter struct {
	w io.Writer
	n int
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
