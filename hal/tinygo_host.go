//go:build tinygo && !baremetal

package hal

import "time"

type tinyGoHostHAL struct {
	logger  printLogger
	panel   *MemPanel
	clock   *monoClock
	buttons *ButtonLatch
}

// New returns a TinyGo-on-host HAL backed by an in-memory panel.
//
// This is used by `tinygo run` targets like linux/wasm where there is no MCU pin mapping.
func New() HAL {
	clock := &monoClock{start: time.Now()}
	return &tinyGoHostHAL{
		clock:   clock,
		buttons: &ButtonLatch{},
		panel: NewMemPanel(MemPanelConfig{
			Width:          240,
			Height:         320,
			HardwareScroll: true,
			Clock:          clock,
		}),
	}
}

func (h *tinyGoHostHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHostHAL) Panel() Target    { return h.panel }
func (h *tinyGoHostHAL) Clock() Clock     { return h.clock }
func (h *tinyGoHostHAL) Buttons() Buttons { return h.buttons }

type printLogger struct{}

func (printLogger) WriteLineString(s string) { println(s) }
func (printLogger) WriteLineBytes(b []byte)  { println(string(b)) }

type monoClock struct {
	start time.Time
}

func (c *monoClock) NowMs() uint32 {
	return uint32(time.Since(c.start) / time.Millisecond)
}
