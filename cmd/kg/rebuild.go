package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scholarnet/kgraph/internal/config"
	"github.com/scholarnet/kgraph/internal/graph"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query cache from source data",
	Long: `Rebuild the SQLite query cache from the JSONL source files.

Use this after pulling changes from git or editing nodes.jsonl/links.jsonl
by hand. Links whose endpoints are missing are kept and reported.`,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status   string               `json:"status"`
	Nodes    int                  `json:"nodes"`
	Links    int                  `json:"links"`
	Dangling []graph.DanglingLink `json:"dangling_links"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	stats, err := db.RebuildFromJSONL(config.NodesPath(repoRoot), config.LinksPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query database with %d nodes and %d links\n", stats.Nodes, stats.Links)
		printDanglingHuman(stats.Dangling)
	} else {
		dangling := stats.Dangling
		if dangling == nil {
			dangling = []graph.DanglingLink{}
		}
		outputJSON(RebuildResult{
			Status:   "rebuilt",
			Nodes:    stats.Nodes,
			Links:    stats.Links,
			Dangling: dangling,
		})
	}

	return nil
}
