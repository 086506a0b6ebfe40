package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Settings are the CLI defaults read from the environment. Flags override
// them.
type Settings struct {
	DataDir    string `env:"LTISIM_DATA_DIR"    envDefault:"./data"`
	Samples    int    `env:"LTISIM_SAMPLES"     envDefault:"100"`
	FreqPoints int    `env:"LTISIM_FREQ_POINTS" envDefault:"200"`
	LogLevel   string `env:"LTISIM_LOG_LEVEL"   envDefault:"info"`
}

// ParseEnv loads settings from environment variables.
func ParseEnv() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// Level maps LogLevel onto a slog level. Unknown names are info.
func (s Settings) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
