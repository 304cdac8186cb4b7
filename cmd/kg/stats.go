package main

import (
	"github.com/spf13/cobra"

	"github.com/scholarnet/kgraph/internal/view"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-kind node counts",
	Long: `Count nodes per kind, links, and dangling links in the dataset.

Reads the JSONL source files directly, so the counts are current even when
the query cache is stale.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	g := mustLoadGraph(repoRoot)

	s := view.Stats(g)
	if humanOutput {
		printSummaryHuman(s)
	} else {
		outputJSON(s)
	}
	return nil
}
