//go:build tinygo

package main

import (
	"sgf/app"
	"sgf/hal"
)

func main() {
	app.Run(hal.New(), app.DefaultConfig())
}
