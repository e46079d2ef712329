//go:build !tinygo

package app

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadConfig reads a JSON config file. Fields missing from the file keep their zero
// values; call WithDefaults to fill them.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}
