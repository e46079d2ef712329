//go:build !tinygo

package hal

import "time"

// wallClock counts milliseconds since it was created.
type wallClock struct {
	start time.Time
}

func newWallClock() *wallClock {
	return &wallClock{start: time.Now()}
}

func (c *wallClock) NowMs() uint32 {
	return uint32(time.Since(c.start) / time.Millisecond)
}

// NewWallClock returns a Clock counting from now, for boards assembled with NewBoard.
func NewWallClock() Clock { return newWallClock() }
