package duckvec

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// MemoryPath is the special database path for a transient in-memory
// database.
const MemoryPath = ":memory:"

// Config collects engine options applied at open time. Every field maps to
// an engine configuration setting; Settings carries anything without a
// dedicated field.
type Config struct {
	// Path is the database file, or MemoryPath for a transient database.
	Path string `yaml:"path"`

	// ReadOnly opens an existing database without write access.
	ReadOnly bool `yaml:"read_only"`

	// Threads caps the engine's worker thread count. Zero keeps the
	// engine default.
	Threads int `yaml:"threads"`

	// MaxMemory is the engine memory limit, in the engine's own syntax
	// ("2GB"). Empty keeps the default.
	MaxMemory string `yaml:"max_memory"`

	// Settings holds additional engine settings by their engine names.
	Settings map[string]string `yaml:"settings"`
}

// Option mutates a Config before open.
type Option func(*Config)

// WithReadOnly opens the database read-only.
func WithReadOnly() Option {
	return func(c *Config) { c.ReadOnly = true }
}

// WithThreads caps the engine worker thread count.
func WithThreads(n int) Option {
	return func(c *Config) { c.Threads = n }
}

// WithMaxMemory sets the engine memory limit.
func WithMaxMemory(limit string) Option {
	return func(c *Config) { c.MaxMemory = limit }
}

// WithSetting sets one engine setting by its engine name.
func WithSetting(name, value string) Option {
	return func(c *Config) {
		if c.Settings == nil {
			c.Settings = make(map[string]string)
		}
		c.Settings[name] = value
	}
}

// LoadConfig reads a Config from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(ErrGeneric, err, "read config file")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, wrapError(ErrGeneric, err, "parse config file")
	}
	if cfg.Path == "" {
		cfg.Path = MemoryPath
	}
	return &cfg, nil
}

// settingPairs flattens the config into (name, value) engine settings in a
// stable order.
func (c *Config) settingPairs() [][2]string {
	var pairs [][2]string
	if c.ReadOnly {
		pairs = append(pairs, [2]string{"access_mode", "READ_ONLY"})
	}
	if c.Threads > 0 {
		pairs = append(pairs, [2]string{"threads", fmt.Sprintf("%d", c.Threads)})
	}
	if c.MaxMemory != "" {
		pairs = append(pairs, [2]string{"max_memory", c.MaxMemory})
	}
	names := make([]string, 0, len(c.Settings))
	for name := range c.Settings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pairs = append(pairs, [2]string{name, c.Settings[name]})
	}
	return pairs
}
