// Command sgfpi runs the demo on an ST7789 panel wired to a Linux SBC's SPI bus.
//
// Hardware setup (Raspberry Pi defaults):
//
//	Panel      Raspberry Pi
//	SCL        GPIO11 (SPI0 CLK)
//	SDA        GPIO10 (SPI0 MOSI)
//	CS         GPIO8  (SPI0 CE0)
//	DC         GPIO25
//	RST        GPIO27
//
// Buttons are active-low GPIOs with the internal pull-up enabled.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"sgf/app"
	"sgf/hal"
	"sgf/hal/spipanel"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

func main() {
	var (
		spiBus     = flag.String("spi", "", "SPI bus name (empty for default).")
		dcPin      = flag.String("dc", "GPIO25", "Data/Command pin name.")
		rstPin     = flag.String("rst", "GPIO27", "Reset pin name (empty for software reset).")
		width      = flag.Int("width", 240, "Panel width in pixels.")
		height     = flag.Int("height", 320, "Panel height in pixels.")
		memRows    = flag.Int("mem-rows", 320, "Controller frame memory rows along the scroll axis.")
		yOffset    = flag.Int("y-offset", 0, "RAM row offset of the glass.")
		landscape  = flag.Bool("landscape", false, "Landscape addressing (scroll along X).")
		mirrored   = flag.Bool("mirrored", false, "Mirror the scroll axis.")
		hz         = flag.Int64("hz", 32_000_000, "SPI clock in Hz.")
		buttons    = flag.String("buttons", "left=GPIO5,right=GPIO6,up=GPIO13,down=GPIO19,fire=GPIO26,menu=GPIO21", "Button pin map.")
		configPath = flag.String("config", "", "JSON scene config file.")
	)
	flag.Parse()

	if err := run(*spiBus, *dcPin, *rstPin, *buttons, *configPath, spipanel.Opts{
		W:         *width,
		H:         *height,
		MemRows:   *memRows,
		YOffset:   *yOffset,
		Landscape: *landscape,
		Mirrored:  *mirrored,
		Hz:        physic.Frequency(*hz) * physic.Hertz,
	}); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(bus, dcName, rstName, buttonMap, configPath string, opts spipanel.Opts) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph init: %w", err)
	}

	port, err := spireg.Open(bus)
	if err != nil {
		return fmt.Errorf("open SPI bus: %w", err)
	}
	defer port.Close()

	dc := gpioreg.ByName(dcName)
	if dc == nil {
		return fmt.Errorf("GPIO pin %s not found", dcName)
	}
	if rstName != "" {
		rst := gpioreg.ByName(rstName)
		if rst == nil {
			return fmt.Errorf("GPIO pin %s not found", rstName)
		}
		opts.RST = rst
	}

	panel, err := spipanel.NewSPI(port, dc, &opts)
	if err != nil {
		return err
	}

	btns, err := newPinButtons(buttonMap)
	if err != nil {
		return err
	}

	cfg := app.DefaultConfig()
	if configPath != "" {
		c, err := app.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = c.WithDefaults()
	}

	logger := hal.NewWriterLogger(os.Stdout)
	logger.WriteLineString("sgfpi: " + panel.String())
	step, err := app.New(hal.NewBoard(logger, panel, hal.NewWallClock(), btns), cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	t := time.NewTicker(time.Second / 60)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := step(); err != nil {
				return err
			}
		}
	}
}

var buttonNames = map[string]hal.Button{
	"left":  hal.ButtonLeft,
	"right": hal.ButtonRight,
	"up":    hal.ButtonUp,
	"down":  hal.ButtonDown,
	"fire":  hal.ButtonFire,
	"menu":  hal.ButtonMenu,
}

type pinButton struct {
	pin gpio.PinIn
	btn hal.Button
}

// pinButtons reads active-low push buttons.
type pinButtons struct {
	pins []pinButton
}

func newPinButtons(mapping string) (*pinButtons, error) {
	pairs, err := parseButtonMap(mapping)
	if err != nil {
		return nil, err
	}
	b := &pinButtons{}
	for _, p := range pairs {
		pin := gpioreg.ByName(p.pin)
		if pin == nil {
			return nil, fmt.Errorf("GPIO pin %s not found", p.pin)
		}
		if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("configure %s: %w", p.pin, err)
		}
		b.pins = append(b.pins, pinButton{pin: pin, btn: p.btn})
	}
	return b, nil
}

func (b *pinButtons) Held() hal.ButtonMask {
	var m hal.ButtonMask
	for _, p := range b.pins {
		if p.pin.Read() == gpio.Low {
			m |= hal.ButtonMask(p.btn)
		}
	}
	return m
}

type buttonPin struct {
	btn hal.Button
	pin string
}

// parseButtonMap parses "name=PIN,name=PIN". An empty mapping maps no buttons.
func parseButtonMap(mapping string) ([]buttonPin, error) {
	var out []buttonPin
	for _, field := range strings.Split(mapping, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		name, pin, ok := strings.Cut(field, "=")
		if !ok || pin == "" {
			return nil, fmt.Errorf("button map: bad entry %q", field)
		}
		btn, ok := buttonNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("button map: unknown button %q", name)
		}
		out = append(out, buttonPin{btn: btn, pin: pin})
	}
	return out, nil
}
