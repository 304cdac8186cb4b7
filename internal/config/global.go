package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/kg/config.yml.
type GlobalConfig struct {
	RepoPath    string `yaml:"repo_path,omitempty"`
	Seed        *int64 `yaml:"seed,omitempty"`
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "kg"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Environment overrides, applied after the config file is read.
const (
	EnvRepoPath    = "KG_REPO_PATH"
	EnvSeed        = "KG_SEED"
	EnvMetricsAddr = "KG_METRICS_ADDR"
	EnvLogLevel    = "KG_LOG_LEVEL"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/kg/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file and applies
// environment overrides. Returns an empty config (not an error) if the file
// doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	var cfg GlobalConfig
	if path := GlobalConfigPath(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing global config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.RepoPath != "" {
		cfg.RepoPath = ExpandPath(cfg.RepoPath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

func (c *GlobalConfig) applyEnv() error {
	if v := os.Getenv(EnvRepoPath); v != "" {
		c.RepoPath = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvSeed, err)
		}
		c.Seed = &seed
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		c.MetricsAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// SlogLevel maps log_level to a slog level. Unknown or empty values mean info.
func (c *GlobalConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ErrRepoPathNotExist is returned when the configured repo_path is not a
// kgraph repository.
var ErrRepoPathNotExist = errors.New("repo_path is not a kgraph repository")

// ResolveRepository finds the repository for start, falling back to the
// globally configured repo_path.
func ResolveRepository(start string) (string, error) {
	root, err := FindRepository(start)
	if err == nil {
		return root, nil
	}

	cfg, cfgErr := LoadGlobalConfig()
	if cfgErr != nil {
		return "", cfgErr
	}
	if cfg.RepoPath == "" {
		return "", err
	}
	if !IsRepository(cfg.RepoPath) {
		return "", fmt.Errorf("%w: %s", ErrRepoPathNotExist, cfg.RepoPath)
	}
	return cfg.RepoPath, nil
}

// HelpfulConfigMessage returns a helpful message when no repository is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No kgraph repository found.

Run 'kg init --demo' to create one here, or create %s to set a default:
  mkdir -p %s
  echo 'repo_path: /path/to/your/graph' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
