package config

// Config is the application configuration, loaded from a single YAML file.
// It is immutable for the lifetime of the process.
type Config struct {
	LLM           LLMConfig             `yaml:"llm"`
	GlobalFilters Filters               `yaml:"global_filters"`
	Feeds         map[string]FeedConfig `yaml:"feeds"`

	ServerHost             string `yaml:"server_host"`
	ServerPort             int    `yaml:"server_port"`
	PollingIntervalSeconds int    `yaml:"polling_interval_seconds"`
	MaxItemsPerFeed        int    `yaml:"max_items_per_feed"`
	KnownItemsCapacity     int    `yaml:"known_items_capacity"`
	KnownItemsFile         string `yaml:"known_items_file"`
}

// LLMConfig configures the remote classification backend.
type LLMConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
	Prompt string `yaml:"prompt"`
}

// Filters are free-form topic descriptions handed to the classifier.
type Filters struct {
	Accept []string `yaml:"accept"`
	Reject []string `yaml:"reject"`
}

// Empty reports whether the filter set carries no topics at all.
func (f Filters) Empty() bool {
	return len(f.Accept) == 0 && len(f.Reject) == 0
}

// FeedConfig describes one upstream feed: where to fetch it and which
// topic filters to layer on top of the global set.
type FeedConfig struct {
	URL     string  `yaml:"url"`
	Filters Filters `yaml:"filters"`
}
