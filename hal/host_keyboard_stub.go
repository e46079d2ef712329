//go:build !tinygo && !cgo

package hal

type hostButtons struct {
	ButtonLatch
}

func (b *hostButtons) poll() {
	// No keyboard support without the window backend.
}
