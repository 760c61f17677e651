// Package config loads client configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Password  string `yaml:"password"`
	Transport string `yaml:"transport"` // "rcon" (default) or "wsconsole"
	// ConsoleURL overrides the derived ws url for wsconsole transports.
	ConsoleURL string `yaml:"console_url"`

	TimeoutSec   int `yaml:"timeout_sec"`
	MaxRetries   int `yaml:"max_retries"`
	ChunkSize    int `yaml:"chunk_size"`
	MinChunkSize int `yaml:"min_chunk_size"`
	MaxChunkSize int `yaml:"max_chunk_size"`
	WindowSize   int `yaml:"perf_window"`
	CacheTTLSec  int `yaml:"cache_ttl_sec"`
	Workers      int `yaml:"workers"`

	// Optional sinks; empty disables them.
	OplogDir    string `yaml:"oplog_dir"`
	HistoryPath string `yaml:"history_db"`
}

func Defaults() Config {
	return Config{
		Host:         "127.0.0.1",
		Port:         25575,
		Transport:    "rcon",
		TimeoutSec:   10,
		MaxRetries:   3,
		ChunkSize:    32,
		MinChunkSize: 16,
		MaxChunkSize: 48,
		WindowSize:   20,
		CacheTTLSec:  60,
		Workers:      4,
	}
}

// Load reads path and overlays it on the defaults.
func Load(path string) (Config, error) {
	c := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	switch c.Transport {
	case "", "rcon", "wsconsole":
	default:
		return fmt.Errorf("unknown transport: %q", c.Transport)
	}
	if c.MinChunkSize > c.MaxChunkSize {
		return fmt.Errorf("min_chunk_size %d > max_chunk_size %d", c.MinChunkSize, c.MaxChunkSize)
	}
	if c.ChunkSize < c.MinChunkSize || c.ChunkSize > c.MaxChunkSize {
		return fmt.Errorf("chunk_size %d outside [%d, %d]", c.ChunkSize, c.MinChunkSize, c.MaxChunkSize)
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WSURL returns the websocket console url, derived from host/port unless
// console_url is set.
func (c Config) WSURL() string {
	if c.ConsoleURL != "" {
		return c.ConsoleURL
	}
	return fmt.Sprintf("ws://%s:%d/console", c.Host, c.Port)
}

func (c Config) Timeout() time.Duration  { return time.Duration(c.TimeoutSec) * time.Second }
func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSec) * time.Second }
