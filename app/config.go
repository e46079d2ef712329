package app

import (
	"errors"
	"fmt"

	"sgf/sgf/sprites"
)

// Config tunes the demo scene. Zero fields fall back to DefaultConfig values.
type Config struct {
	TileW int `json:"tile_w"`
	TileH int `json:"tile_h"`

	// StripLines caps how many lines one scroll step renders.
	StripLines int `json:"strip_lines"`

	// HUDLines and FooterLines size the fixed bands at each end of the scroll axis.
	HUDLines    int `json:"hud_lines"`
	FooterLines int `json:"footer_lines"`

	// ScrollSpeed is the initial background velocity in lines per second.
	ScrollSpeed int `json:"scroll_speed"`

	Sprites  int `json:"sprites"`
	Missiles int `json:"missiles"`

	DirtyCapacity int `json:"dirty_capacity"`

	// StatsEveryMs is the period of the statistics log line; zero disables it.
	StatsEveryMs uint32 `json:"stats_every_ms"`

	Seed uint32 `json:"seed"`
}

const (
	maxTileSide  = 64
	maxSpeed     = 480
	speedStep    = 20
	maxFrameMs   = 100
	missileSpeed = 240
)

// DefaultConfig returns the settings the demo ships with.
func DefaultConfig() Config {
	return Config{
		TileW:         16,
		TileH:         16,
		StripLines:    16,
		HUDLines:      16,
		FooterLines:   12,
		ScrollSpeed:   40,
		Sprites:       6,
		Missiles:      sprites.MaxMissiles,
		DirtyCapacity: 32,
		StatsEveryMs:  5000,
		Seed:          0x5EED,
	}
}

// WithDefaults returns c with every zero field replaced by its default.
// FooterLines and StatsEveryMs keep zero as a meaningful value.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.TileW == 0 {
		c.TileW = d.TileW
	}
	if c.TileH == 0 {
		c.TileH = d.TileH
	}
	if c.StripLines == 0 {
		c.StripLines = d.StripLines
	}
	if c.HUDLines == 0 {
		c.HUDLines = d.HUDLines
	}
	if c.ScrollSpeed == 0 {
		c.ScrollSpeed = d.ScrollSpeed
	}
	if c.Sprites == 0 {
		c.Sprites = d.Sprites
	}
	if c.Missiles == 0 {
		c.Missiles = d.Missiles
	}
	if c.DirtyCapacity == 0 {
		c.DirtyCapacity = d.DirtyCapacity
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	return c
}

var ErrConfig = errors.New("app: invalid config")

// Validate checks ranges that do not depend on the panel.
func (c Config) Validate() error {
	switch {
	case c.TileW < 1 || c.TileW > maxTileSide || c.TileH < 1 || c.TileH > maxTileSide:
		return fmt.Errorf("%w: tile %dx%d outside 1..%d", ErrConfig, c.TileW, c.TileH, maxTileSide)
	case c.StripLines < 1:
		return fmt.Errorf("%w: strip_lines %d", ErrConfig, c.StripLines)
	case c.HUDLines < 0 || c.FooterLines < 0:
		return fmt.Errorf("%w: negative band", ErrConfig)
	case c.ScrollSpeed < -maxSpeed || c.ScrollSpeed > maxSpeed:
		return fmt.Errorf("%w: scroll_speed %d outside ±%d", ErrConfig, c.ScrollSpeed, maxSpeed)
	case c.Sprites < 1 || c.Sprites > sprites.MaxSprites:
		return fmt.Errorf("%w: sprites %d outside 1..%d", ErrConfig, c.Sprites, sprites.MaxSprites)
	case c.Missiles < 0 || c.Missiles > sprites.MaxMissiles:
		return fmt.Errorf("%w: missiles %d outside 0..%d", ErrConfig, c.Missiles, sprites.MaxMissiles)
	case c.DirtyCapacity < 1:
		return fmt.Errorf("%w: dirty_capacity %d", ErrConfig, c.DirtyCapacity)
	}
	return nil
}
