package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // pipeline .hcl file or directory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	// WorkerCount overrides the pipeline's workers when > 0.
	WorkerCount int

	// Conf holds the override parameters of a one-shot run.
	Conf map[string]any
	// Serve keeps the process running and triggers runs on the schedule.
	Serve bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.WorkerCount < 0 {
		return nil, errors.New("WorkerCount must not be negative")
	}
	if cfg.Serve && len(cfg.Conf) > 0 {
		return nil, errors.New("override parameters cannot be combined with serve mode")
	}
	return &cfg, nil
}
