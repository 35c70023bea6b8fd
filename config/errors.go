package config

import "errors"

var (
	// ErrInvalidConfig is returned when loaded settings fail validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfigFile is returned when the configuration file cannot be read.
	ErrConfigFile = errors.New("cannot read configuration file")
)
