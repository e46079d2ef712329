//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// HostConfig describes the emulated panel used by the host runners.
type HostConfig struct {
	Width          int
	Height         int
	HardwareScroll bool
	Inverted       bool
}

// DefaultHostConfig is a 240x320 portrait panel with a native scroll window, like an
// ILI9341 in its default rotation.
func DefaultHostConfig() HostConfig {
	return HostConfig{Width: 240, Height: 320, HardwareScroll: true}
}

type hostHAL struct {
	logger  *hostLogger
	panel   *MemPanel
	clock   *wallClock
	buttons *hostButtons
}

// New returns a host HAL with the default panel.
func New() HAL { return NewHost(DefaultHostConfig()) }

// NewHost returns a host HAL backed by an in-memory panel.
func NewHost(cfg HostConfig) HAL {
	return newHostHAL(cfg)
}

func newHostHAL(cfg HostConfig) *hostHAL {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		def := DefaultHostConfig()
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	clock := newWallClock()
	return &hostHAL{
		logger: &hostLogger{w: os.Stdout},
		panel: NewMemPanel(MemPanelConfig{
			Width:          cfg.Width,
			Height:         cfg.Height,
			HardwareScroll: cfg.HardwareScroll,
			Inverted:       cfg.Inverted,
			Clock:          clock,
		}),
		clock:   clock,
		buttons: &hostButtons{},
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Panel() Target    { return h.panel }
func (h *hostHAL) Clock() Clock     { return h.clock }
func (h *hostHAL) Buttons() Buttons { return h.buttons }

// NewWriterLogger returns a Logger writing one line per call to w.
func NewWriterLogger(w io.Writer) Logger {
	return &hostLogger{w: w}
}

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
