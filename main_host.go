//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"sgf/app"
	"sgf/hal"
)

func main() {
	var (
		cfg        hal.HeadlessConfig
		host       = hal.DefaultHostConfig()
		configPath string
		noScroll   bool
		speed      int
		seed       uint
	)
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.IntVar(&host.Width, "width", host.Width, "Panel width in pixels.")
	flag.IntVar(&host.Height, "height", host.Height, "Panel height in pixels.")
	flag.BoolVar(&noScroll, "no-hw-scroll", false, "Emulate a panel without a scroll window.")
	flag.BoolVar(&host.Inverted, "inverted", false, "Invert the emulated scroll address.")
	flag.StringVar(&configPath, "config", "", "JSON scene config file.")
	flag.IntVar(&speed, "speed", 0, "Initial scroll speed in lines per second (0 = config value).")
	flag.UintVar(&seed, "seed", 0, "Scene seed (0 = config value).")
	flag.Parse()
	host.HardwareScroll = !noScroll

	appCfg := app.DefaultConfig()
	if configPath != "" {
		c, err := app.LoadConfig(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		appCfg = c.WithDefaults()
	}
	if speed != 0 {
		appCfg.ScrollSpeed = speed
	}
	if seed != 0 {
		appCfg.Seed = uint32(seed)
	}

	newApp := func(h hal.HAL) (func() error, error) {
		return app.New(h, appCfg)
	}

	if cfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, host, newApp, cfg); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(host, newApp); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
