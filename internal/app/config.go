package app

import (
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/maxbolgarin/errm"

	"github.com/maxbolgarin/taskry/internal/config"
)

// LoadConfig reads configuration from an optional YAML file with environment
// variables layered on top, or from the environment alone when no path is
// given
func LoadConfig(path string) (config.Config, error) {
	var cfg config.Config

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, errm.Wrap(err, "failed to read config file")
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, errm.Wrap(err, "failed to read environment")
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, errm.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}
