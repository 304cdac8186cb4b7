package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolateGlobal points the global config at an empty temp dir and clears the
// cache and every KG_* override.
func isolateGlobal(t *testing.T) string {
	t.Helper()
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	for _, env := range []string{EnvRepoPath, EnvSeed, EnvMetricsAddr, EnvLogLevel} {
		t.Setenv(env, "")
	}
	return tmpDir
}

func writeGlobal(t *testing.T, configHome, content string) string {
	t.Helper()
	dir := filepath.Join(configHome, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, GlobalConfigFile)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := GlobalConfigPath(), "/custom/config/kg/config.yml"; got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := GlobalConfigPath(), filepath.Join(home, ".config", "kg", "config.yml"); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	isolateGlobal(t)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.RepoPath != "" || cfg.Seed != nil || cfg.MetricsAddr != "" {
		t.Errorf("LoadGlobalConfig() = %+v, want empty", cfg)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	home := isolateGlobal(t)
	writeGlobal(t, home, `repo_path: ~/graphs/scholars
seed: 42
metrics_addr: ":9108"
log_level: debug
`)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	userHome, _ := os.UserHomeDir()
	if want := filepath.Join(userHome, "graphs/scholars"); cfg.RepoPath != want {
		t.Errorf("RepoPath = %q, want %q", cfg.RepoPath, want)
	}
	if cfg.Seed == nil || *cfg.Seed != 42 {
		t.Errorf("Seed = %v, want 42", cfg.Seed)
	}
	if cfg.MetricsAddr != ":9108" {
		t.Errorf("MetricsAddr = %q, want :9108", cfg.MetricsAddr)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", cfg.SlogLevel())
	}
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	home := isolateGlobal(t)
	writeGlobal(t, home, "seed: [not an int\n")

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() should fail on invalid YAML")
	}
}

func TestLoadGlobalConfig_EnvOverrides(t *testing.T) {
	home := isolateGlobal(t)
	writeGlobal(t, home, "seed: 1\nmetrics_addr: \":1\"\n")
	t.Setenv(EnvSeed, "7")
	t.Setenv(EnvMetricsAddr, "localhost:9999")
	t.Setenv(EnvRepoPath, "/env/repo")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.Seed == nil || *cfg.Seed != 7 {
		t.Errorf("Seed = %v, want 7 from env", cfg.Seed)
	}
	if cfg.MetricsAddr != "localhost:9999" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
	if cfg.RepoPath != "/env/repo" {
		t.Errorf("RepoPath = %q", cfg.RepoPath)
	}
}

func TestLoadGlobalConfig_BadSeedEnv(t *testing.T) {
	isolateGlobal(t)
	t.Setenv(EnvSeed, "forty-two")

	if _, err := LoadGlobalConfig(); err == nil || !strings.Contains(err.Error(), EnvSeed) {
		t.Errorf("LoadGlobalConfig() error = %v, want mention of %s", err, EnvSeed)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := GlobalConfig{LogLevel: tt.level}
		if got := cfg.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestResolveRepository(t *testing.T) {
	isolateGlobal(t)
	repo := t.TempDir()
	if err := os.Mkdir(filepath.Join(repo, DataDir), 0755); err != nil {
		t.Fatal(err)
	}
	elsewhere := t.TempDir()

	if _, err := ResolveRepository(elsewhere); !errors.Is(err, ErrNotRepository) {
		t.Errorf("without repo_path: error = %v, want ErrNotRepository", err)
	}

	ResetGlobalConfigCache()
	t.Setenv(EnvRepoPath, repo)
	got, err := ResolveRepository(elsewhere)
	if err != nil || got != repo {
		t.Errorf("ResolveRepository() = (%q, %v), want %q", got, err, repo)
	}

	ResetGlobalConfigCache()
	t.Setenv(EnvRepoPath, elsewhere)
	if _, err := ResolveRepository(elsewhere); !errors.Is(err, ErrRepoPathNotExist) {
		t.Errorf("bad repo_path: error = %v, want ErrRepoPathNotExist", err)
	}
}

func TestHelpfulConfigMessage(t *testing.T) {
	msg := HelpfulConfigMessage()
	if !strings.Contains(msg, "kg init") || !strings.Contains(msg, "repo_path") {
		t.Errorf("HelpfulConfigMessage() = %q", msg)
	}
}

func TestGlobalConfigCache(t *testing.T) {
	home := isolateGlobal(t)
	path := writeGlobal(t, home, "metrics_addr: first\n")

	cfg1, _ := LoadGlobalConfig()
	if cfg1.MetricsAddr != "first" {
		t.Errorf("First load: MetricsAddr = %q, want first", cfg1.MetricsAddr)
	}

	os.WriteFile(path, []byte("metrics_addr: second\n"), 0644)

	cfg2, _ := LoadGlobalConfig()
	if cfg2.MetricsAddr != "first" {
		t.Errorf("Second load: MetricsAddr = %q, want first (cached)", cfg2.MetricsAddr)
	}

	ResetGlobalConfigCache()

	cfg3, _ := LoadGlobalConfig()
	if cfg3.MetricsAddr != "second" {
		t.Errorf("Third load: MetricsAddr = %q, want second", cfg3.MetricsAddr)
	}
}
