package app

import "errors"

// Config holds everything a conversion run needs.
type Config struct {
	// InputPath is the XML export to convert.
	InputPath string
	// OutputDir receives the generated Terraform files and reports.
	OutputDir string

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.InputPath == "" {
		return nil, errors.New("InputPath is a required configuration field and cannot be empty")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "terraform_output"
	}
	return &cfg, nil
}

// SplitConfig holds everything a split run needs.
type SplitConfig struct {
	// InputPath is the management-server XML export to partition.
	InputPath string
	// OutputDir receives one XML file per device group.
	OutputDir string

	LogFormat string
	LogLevel  string
}

func NewSplitConfig(cfg SplitConfig) (*SplitConfig, error) {
	if cfg.InputPath == "" {
		return nil, errors.New("InputPath is a required configuration field and cannot be empty")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "split_configs"
	}
	return &cfg, nil
}
