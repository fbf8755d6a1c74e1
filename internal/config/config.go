// Package config provides configuration loading and structs for the Smartie
// server and CLI.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Generator GeneratorConfig `yaml:"generator"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds snapshot backend settings. Backend is "badger" or
// "memory".
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// EmbeddingConfig holds embedding provider settings. Provider is "openai" or
// "fallback"; the API key falls back to OPENAI_API_KEY when empty.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

// GeneratorConfig holds chat completion settings. Provider is "openai" or
// "static".
type GeneratorConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

// ScraperConfig holds crawl settings.
type ScraperConfig struct {
	StartURL string `yaml:"start_url"`
	MaxPages int    `yaml:"max_pages"`
}

// WatchConfig holds the page dump drop directory.
type WatchConfig struct {
	Directory string `yaml:"directory"`
}

// Load reads and parses the config file at path and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a config with all defaults applied, for running without a
// config file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "memory"
	}
	if cfg.Storage.Backend == "badger" && cfg.Storage.Path == "" {
		cfg.Storage.Path = ".smartie/data"
	}
	if cfg.Embedding.Provider == "" {
		if os.Getenv("OPENAI_API_KEY") != "" || cfg.Embedding.APIKey != "" {
			cfg.Embedding.Provider = "openai"
		} else {
			cfg.Embedding.Provider = "fallback"
		}
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Generator.Provider == "" {
		if os.Getenv("OPENAI_API_KEY") != "" || cfg.Generator.APIKey != "" {
			cfg.Generator.Provider = "openai"
		} else {
			cfg.Generator.Provider = "static"
		}
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "gpt-4o"
	}
	if cfg.Scraper.MaxPages == 0 {
		cfg.Scraper.MaxPages = 100
	}
}
