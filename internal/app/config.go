package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// PipelinePath is a .hcl file or a directory of .hcl files defining
	// the pipeline.
	PipelinePath string
	// Subject is the run input's subject.
	Subject string

	LogFormat string
	LogLevel  string
	// Workers overrides the pipeline's max_parallelism when positive.
	Workers int
}

// NewConfig validates and returns the configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
