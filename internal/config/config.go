// Package config handles dataset repository and global configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/scholarnet/kgraph/internal/force"
)

// Config holds per-repository layout settings stored in .kgraph/config.json.
// Zero fields fall back to the simulation defaults.
type Config struct {
	Width        float64 `json:"width,omitempty"`
	Height       float64 `json:"height,omitempty"`
	TickMS       int     `json:"tick_ms,omitempty"`
	LinkStrength float64 `json:"link_strength,omitempty"`
	Repulsion    float64 `json:"repulsion,omitempty"`
	Attraction   float64 `json:"attraction,omitempty"`
}

const (
	DataDir    = ".kgraph"
	ConfigFile = "config.json"
	NodesFile  = "nodes.jsonl"
	LinksFile  = "links.jsonl"
	CacheDir   = "cache"
	DBFile     = "graph.db"
	LogFile    = "kg.log"
)

// ErrNotRepository is returned when no .kgraph directory can be found.
var ErrNotRepository = errors.New("not in a kgraph repository (no .kgraph directory found)")

// DataPath returns the path to the .kgraph directory from a root path.
func DataPath(root string) string {
	return filepath.Join(root, DataDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, DataDir, ConfigFile)
}

// NodesPath returns the path to nodes.jsonl from a root path.
func NodesPath(root string) string {
	return filepath.Join(root, DataDir, NodesFile)
}

// LinksPath returns the path to links.jsonl from a root path.
func LinksPath(root string) string {
	return filepath.Join(root, DataDir, LinksFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, DataDir, CacheDir)
}

// DBPath returns the path to graph.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, DataDir, CacheDir, DBFile)
}

// LogPath returns the path to the TUI log file from a root path.
func LogPath(root string) string {
	return filepath.Join(root, DataDir, CacheDir, LogFile)
}

// IsRepository checks if the given path contains a kgraph repository.
func IsRepository(root string) bool {
	info, err := os.Stat(DataPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a kgraph repository.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotRepository
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root.
// A missing config file yields an empty config.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns the simulation defaults written by kg init.
func DefaultConfig() *Config {
	p := force.DefaultParams()
	return &Config{
		Width:        p.Width,
		Height:       p.Height,
		TickMS:       int(p.TickPeriod / time.Millisecond),
		LinkStrength: p.LinkStrength,
		Repulsion:    p.Repulsion,
		Attraction:   p.Attraction,
	}
}

// Params overlays the configured values on the default simulation
// parameters and validates the result.
func (c *Config) Params() (force.Params, error) {
	p := force.DefaultParams()
	if c.Width > 0 {
		p.Width = c.Width
	}
	if c.Height > 0 {
		p.Height = c.Height
	}
	if c.TickMS > 0 {
		p.TickPeriod = time.Duration(c.TickMS) * time.Millisecond
	}
	if c.LinkStrength > 0 {
		p.LinkStrength = force.ClampLinkStrength(c.LinkStrength)
	}
	if c.Repulsion > 0 {
		p.Repulsion = c.Repulsion
	}
	if c.Attraction > 0 {
		p.Attraction = c.Attraction
	}
	if err := p.Validate(); err != nil {
		return force.Params{}, fmt.Errorf("invalid layout config: %w", err)
	}
	return p, nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
