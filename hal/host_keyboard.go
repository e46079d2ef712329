//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// hostButtons maps the window keyboard onto the button mask.
type hostButtons struct {
	ButtonLatch
	keys []ebiten.Key
}

var hostKeyMap = map[ebiten.Key]Button{
	ebiten.KeyArrowLeft:  ButtonLeft,
	ebiten.KeyA:          ButtonLeft,
	ebiten.KeyArrowRight: ButtonRight,
	ebiten.KeyD:          ButtonRight,
	ebiten.KeyArrowUp:    ButtonUp,
	ebiten.KeyW:          ButtonUp,
	ebiten.KeyArrowDown:  ButtonDown,
	ebiten.KeyS:          ButtonDown,
	ebiten.KeySpace:      ButtonFire,
	ebiten.KeyEnter:      ButtonFire,
	ebiten.KeyEscape:     ButtonMenu,
	ebiten.KeyTab:        ButtonMenu,
}

func (b *hostButtons) poll() {
	b.keys = inpututil.AppendPressedKeys(b.keys[:0])
	var m ButtonMask
	for _, k := range b.keys {
		if btn, ok := hostKeyMap[k]; ok {
			m |= ButtonMask(btn)
		}
	}
	b.Set(m)
}
