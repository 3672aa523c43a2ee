package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Capture CaptureConfig `toml:"capture"`
	API     APIConfig     `toml:"api"`
	Watch   WatchConfig   `toml:"watch"`
}

// CaptureConfig points at the files the capture process writes and at
// the canonical token destination. Paths are explicit configuration;
// nothing reassigns them at runtime.
type CaptureConfig struct {
	SessionFile string `toml:"session_file"`
	HeadersFile string `toml:"headers_file"`
	TokenFile   string `toml:"token_file"`
}

type APIConfig struct {
	Base    string `toml:"base"`
	Model   string `toml:"model"`
	Timeout int    `toml:"timeout"` // seconds
}

type WatchConfig struct {
	Interval int `toml:"interval"` // seconds
	Timeout  int `toml:"timeout"`  // seconds
}

func DefaultConfig() Config {
	captured := filepath.Join(homeDir(), ".config", "antigravity", "captured")
	return Config{
		Capture: CaptureConfig{
			SessionFile: filepath.Join(captured, "session.json"),
			HeadersFile: filepath.Join(captured, "headers.json"),
			TokenFile:   filepath.Join(homeDir(), ".config", "antigravity", "token.json"),
		},
		API: APIConfig{
			Base:    "https://generativelanguage.googleapis.com/v1beta",
			Model:   "gemini-2.0-flash",
			Timeout: 120,
		},
		Watch: WatchConfig{
			Interval: 1,
			Timeout:  300,
		},
	}
}

func DefaultPath() string {
	return filepath.Join(homeDir(), ".config", "gemini-replay", "config.toml")
}

func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // use defaults
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
