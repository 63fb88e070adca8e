package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/playmatatu/gravityputt/internal/game"
)

// LoadTuning returns the default gameplay tuning with the TOML file at path
// laid over it. Keys missing from the file keep their defaults. An empty path
// returns the defaults.
func LoadTuning(path string, tickHz int) (game.Tuning, error) {
	tuning := game.DefaultTuning()
	if tickHz > 0 {
		tuning.TickRate = time.Second / time.Duration(tickHz)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return tuning, fmt.Errorf("read tuning %s: %w", path, err)
		}
		if err := toml.Unmarshal(raw, &tuning); err != nil {
			return tuning, fmt.Errorf("%w: parse tuning %s: %v", game.ErrConfiguration, path, err)
		}
	}
	if err := tuning.Validate(); err != nil {
		return tuning, err
	}
	return tuning, nil
}
