// Package main provides the kg CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/scholarnet/kgraph/internal/config"
	"github.com/scholarnet/kgraph/internal/dataset"
	"github.com/scholarnet/kgraph/internal/force"
	"github.com/scholarnet/kgraph/internal/graph"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kg",
	Short: "Force-directed knowledge graph visualizer",
	Long: `kg lays out a scholarly knowledge graph (scholars, papers, keywords,
departments) with a force-directed simulation and shows it in the terminal,
as a PNG, or as a standalone HTML page.

Data is stored in git-versionable JSONL with an ephemeral SQLite cache.
All commands output JSON by default; use --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load .env file if present (ignore error if not found)
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// mustFindRepository finds and validates the repository, exits on error.
// Returns the repository root path.
func mustFindRepository() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	repoRoot, err := config.ResolveRepository(cwd)
	if err != nil {
		if humanOutput {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
			os.Exit(ExitConfigError)
		}
		exitWithError(ExitConfigError, "%v", err)
	}
	return repoRoot
}

// mustOpenDatabase opens the SQLite cache, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *dataset.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := dataset.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustLoadParams loads the repository config and returns the simulation
// parameters, exits on error.
func mustLoadParams(repoRoot string) force.Params {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	p, err := cfg.Params()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return p
}

// mustLoadGraph reads the dataset from the JSONL source files, exits on error.
func mustLoadGraph(repoRoot string) *graph.Graph {
	g, err := dataset.Load(config.NodesPath(repoRoot), config.LinksPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "loading dataset: %v", err)
	}
	return g
}

// mustLoadGlobalConfig loads the global config, exits on error.
func mustLoadGlobalConfig() *config.GlobalConfig {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading global config: %v", err)
	}
	return cfg
}
