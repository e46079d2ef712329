// Package app wires the engine into a small scrolling shooter demo.
//
// The scene has a fixed HUD band with a score line, a procedurally generated world that
// scrolls through the middle of the panel, bouncing rocks, a ship steered with the
// buttons and its missiles. Everything is drawn through the dirty-rect renderer.
package app

import (
	"time"

	"sgf/hal"
	"sgf/internal/buildinfo"
)

// New builds the demo on h and returns its per-frame step.
func New(h hal.HAL, cfg Config) (func() error, error) {
	s, err := newScene(h, cfg)
	if err != nil {
		return nil, err
	}
	h.Logger().WriteLineString("app: " + buildinfo.Line() + " " + s.describe())
	return s.step, nil
}

// Run builds the demo and steps it forever at roughly 60 Hz (TinyGo entrypoint).
// A setup or step error is shown on the panel and Run then blocks.
func Run(h hal.HAL, cfg Config) {
	step, err := New(h, cfg)
	if err != nil {
		showFatal(h, err)
		select {}
	}
	const frame = time.Second / 60
	for {
		start := time.Now()
		if err := step(); err != nil {
			showFatal(h, err)
			select {}
		}
		if d := frame - time.Since(start); d > 0 {
			time.Sleep(d)
		}
	}
}
