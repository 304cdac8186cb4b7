package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scholarnet/kgraph/internal/config"
	"github.com/scholarnet/kgraph/internal/dataset"
)

var initDemo bool

func init() {
	initCmd.Flags().BoolVar(&initDemo, "demo", false, "Seed the repository with the demo dataset")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new kgraph repository",
	Long: `Initialize a new kgraph repository in the current directory.

Creates:
  .kgraph/
  ├── nodes.jsonl     # Empty, or the demo nodes with --demo
  ├── links.jsonl     # Empty, or the demo links with --demo
  ├── config.json     # Default layout config
  └── cache/          # Empty directory (gitignored)`,
	RunE: runInit,
}

// InitResult is the response for the init command.
type InitResult struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	Nodes  int    `json:"nodes"`
	Links  int    `json:"links"`
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains a kgraph repository")
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	result := InitResult{Status: "initialized", Path: config.DataPath(root)}
	if initDemo {
		g := dataset.Demo()
		if err := dataset.Save(g, config.NodesPath(root), config.LinksPath(root)); err != nil {
			exitWithError(ExitError, "writing demo dataset: %v", err)
		}
		result.Nodes, result.Links = g.Len(), len(g.Links())
	} else {
		for _, path := range []string{config.NodesPath(root), config.LinksPath(root)} {
			if err := os.WriteFile(path, nil, 0644); err != nil {
				exitWithError(ExitError, "creating %s: %v", path, err)
			}
		}
	}

	gitignore := "cache/\n"
	if err := os.WriteFile(filepath.Join(config.DataPath(root), ".gitignore"), []byte(gitignore), 0644); err != nil {
		exitWithError(ExitError, "creating .gitignore: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized kgraph repository in %s\n", result.Path)
		if initDemo {
			fmt.Printf("Added demo dataset: %d nodes, %d links\n", result.Nodes, result.Links)
		}
	} else {
		outputJSON(result)
	}
	return nil
}
