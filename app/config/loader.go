package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads, defaults and validates the application configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setDefaults(&config)

	// The snapshot lives next to the config file unless given as an
	// absolute path.
	if !filepath.IsAbs(config.KnownItemsFile) {
		config.KnownItemsFile = filepath.Join(filepath.Dir(path), config.KnownItemsFile)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	slog.Debug("Configuration loaded",
		"feeds", len(config.Feeds),
		"polling_interval", config.PollingIntervalSeconds,
		"max_items_per_feed", config.MaxItemsPerFeed)

	return &config, nil
}

func setDefaults(config *Config) {
	if config.ServerHost == "" {
		config.ServerHost = "127.0.0.1"
	}
	if config.ServerPort == 0 {
		config.ServerPort = 8080
	}
	if config.PollingIntervalSeconds == 0 {
		config.PollingIntervalSeconds = 300 // seconds
	}
	if config.MaxItemsPerFeed == 0 {
		config.MaxItemsPerFeed = 60
	}
	if config.KnownItemsCapacity == 0 {
		config.KnownItemsCapacity = 1000
	}
	if config.KnownItemsFile == "" {
		config.KnownItemsFile = "known_items.json"
	}
}

func validate(config *Config) error {
	if len(config.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}

	filtersConfigured := !config.GlobalFilters.Empty()
	for name, feed := range config.Feeds {
		if feed.URL == "" {
			return fmt.Errorf("feed %q: url is required", name)
		}
		if !feed.Filters.Empty() {
			filtersConfigured = true
		}
	}

	// The LLM backend is only reached when some filter topics exist.
	if filtersConfigured {
		if config.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required when filters are configured")
		}
		if config.LLM.Model == "" {
			return fmt.Errorf("llm.model is required when filters are configured")
		}
		if config.LLM.Prompt == "" {
			return fmt.Errorf("llm.prompt is required when filters are configured")
		}
	}

	if config.PollingIntervalSeconds < 0 {
		return fmt.Errorf("polling_interval_seconds must be non-negative")
	}
	if config.MaxItemsPerFeed < 0 {
		return fmt.Errorf("max_items_per_feed must be non-negative")
	}
	if config.KnownItemsCapacity < config.MaxItemsPerFeed {
		return fmt.Errorf("known_items_capacity must be at least max_items_per_feed")
	}

	return nil
}
