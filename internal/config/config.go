package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/seleniumkit/geckoget/internal/domain"
)

// EnvTargetDir overrides the configured target directory when set.
const EnvTargetDir = "GECKODRIVER_PATH"

const defaultVersion = "0.31.0"

type Config struct {
	TargetDir string `toml:"target_dir"`
	CacheDir  string `toml:"cache_dir"`
	DataDir   string `toml:"data_dir"`
	DBFile    string `toml:"db_file"`
	Version   string `toml:"version"`
	BaseURL   string `toml:"base_url"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".geckoget")

	return &Config{
		CacheDir: filepath.Join(base, "cache"),
		DataDir:  base,
		DBFile:   filepath.Join(base, "state.db"),
		Version:  defaultVersion,
		BaseURL:  "https://github.com/mozilla/geckodriver/releases",
	}
}

func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil
	}

	configPath := filepath.Join(home, ".geckoget", "config.toml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		applyEnv(cfg)
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

func Save(cfg *Config) error {
	home, _ := os.UserHomeDir()
	configPath := filepath.Join(home, ".geckoget", "config.toml")

	os.MkdirAll(filepath.Dir(configPath), 0755)
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func applyEnv(cfg *Config) {
	if dir := os.Getenv(EnvTargetDir); dir != "" {
		cfg.TargetDir = dir
	}
}

// ResolveTargetDir returns the configured target directory, validated once.
func (c *Config) ResolveTargetDir() (string, error) {
	if c.TargetDir == "" {
		return "", fmt.Errorf("%w: set %s or target_dir in config.toml", domain.ErrTargetDirNotSet, EnvTargetDir)
	}
	return c.TargetDir, nil
}
