package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scholarnet/kgraph/internal/clipboard"
	"github.com/scholarnet/kgraph/internal/dataset"
	"github.com/scholarnet/kgraph/internal/graph"
	"github.com/scholarnet/kgraph/internal/view"
)

var (
	nodeSearch string
	nodeLimit  int
	nodeCopy   bool
)

func init() {
	nodeCmd.Flags().StringVarP(&nodeSearch, "search", "s", "", "Full-text search node labels instead of showing one node")
	nodeCmd.Flags().IntVarP(&nodeLimit, "limit", "n", DefaultSearchLimit, "Maximum number of search results")
	nodeCmd.Flags().BoolVar(&nodeCopy, "copy", false, "Copy the node id (or the top search hit) to the clipboard")
	rootCmd.AddCommand(nodeCmd)
}

var nodeCmd = &cobra.Command{
	Use:   "node [id]",
	Short: "Show a node's details or search nodes",
	Long: `Show the detail panel for one node: label, kind, influence, number of
connections, and up to five connected nodes with link strengths.

With --search, list nodes whose label or id matches the query instead.
Queries match word prefixes, so "learn" finds "Deep Learning".

Reads the query cache; run 'kg rebuild' after editing the dataset.

Examples:
  kg node scholar1 --human
  kg node --search "machine learn"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNode,
}

// NodeSearchResult is the response for node --search.
type NodeSearchResult struct {
	Query string       `json:"query"`
	Nodes []graph.Node `json:"nodes"`
}

func runNode(cmd *cobra.Command, args []string) error {
	if nodeSearch == "" && len(args) == 0 {
		exitWithError(ExitError, "either a node id or --search is required")
	}

	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()
	mustHaveCache(db)

	if nodeSearch != "" {
		nodes, err := db.SearchNodes(nodeSearch, nodeLimit)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if nodes == nil {
			nodes = []graph.Node{}
		}
		if nodeCopy && len(nodes) > 0 {
			mustCopy(nodes[0].ID)
		}
		if humanOutput {
			if len(nodes) == 0 {
				fmt.Println("No matching nodes")
			}
			for _, n := range nodes {
				printNodeHuman(n)
			}
			return nil
		}
		outputJSON(NodeSearchResult{Query: nodeSearch, Nodes: nodes})
		return nil
	}

	g, err := db.LoadGraph()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	d, ok := view.Describe(g, args[0])
	if !ok {
		exitWithError(ExitDataError, "node %q not found", args[0])
	}

	if nodeCopy {
		mustCopy(d.ID)
	}

	if humanOutput {
		printDetailHuman(d)
	} else {
		outputJSON(d)
	}
	return nil
}

// mustCopy copies text to the clipboard, exits on error.
func mustCopy(text string) {
	if err := clipboard.Copy(text); err != nil {
		exitWithError(ExitError, "%v", err)
	}
}

// mustHaveCache exits with a hint when the query cache has never been built.
func mustHaveCache(db *dataset.DB) {
	nodes, _, err := db.Count()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if nodes == 0 {
		exitWithError(ExitConfigError, "query cache is empty\n\nRun 'kg rebuild' to build it.")
	}
}
