package config

import (
	"errors"
	"fmt"
)

// Validate checks the structural validity of a Config. All problems are
// reported at once so an operator fixes the file in one pass. Defaults must
// be applied first; Load does both.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Character.Name == "" {
		errs = append(errs, errors.New("config: character.name is required"))
	}
	if err := cfg.Provider.Validate(); err != nil {
		errs = append(errs, err)
	}
	if cfg.History.MaxMessages <= 0 {
		errs = append(errs, fmt.Errorf("config: history.max_messages must be positive, got %d", cfg.History.MaxMessages))
	}
	if cfg.DataDir == "" {
		errs = append(errs, errors.New("config: data_dir is required"))
	}
	if err := cfg.Scheduler.Validate(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Gateway.Enabled {
		if err := cfg.Gateway.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := cfg.Photo.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
