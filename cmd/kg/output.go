package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/scholarnet/kgraph/internal/graph"
	"github.com/scholarnet/kgraph/internal/view"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 20 // Default limit for node search
	DefaultTicks       = 300
	LabelMaxLen        = 40 // Used in human list output
)

var (
	bold   = color.New(color.Bold)
	subtle = color.New(color.FgHiBlack)
	warn   = color.New(color.FgYellow)

	kindColors = map[graph.Kind]*color.Color{
		graph.KindScholar:    color.New(color.FgHiBlue),
		graph.KindPaper:      color.New(color.FgHiGreen),
		graph.KindKeyword:    color.New(color.FgHiYellow),
		graph.KindDepartment: color.New(color.FgHiRed),
	}
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// OutputResponse reports a written file.
type OutputResponse struct {
	Output string `json:"output"`
	Nodes  int    `json:"nodes"`
	Ticks  uint64 `json:"ticks"`
}

// kindLabel renders a kind name in its display color, padded to width
// before coloring so columns stay aligned.
func kindLabel(k graph.Kind, width int) string {
	s := fmt.Sprintf("%-*s", width, k)
	if c, ok := kindColors[k]; ok {
		return c.Sprint(s)
	}
	return s
}

// truncateString shortens s to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// printNodeHuman prints one node on a single line.
func printNodeHuman(n graph.Node) {
	fmt.Printf("%-16s %-40s %s %3.0f\n", n.ID, truncateString(n.Label, LabelMaxLen), kindLabel(n.Kind, 10), n.Weight)
}

// printDetailHuman prints a node's detail panel.
func printDetailHuman(d view.Detail) {
	bold.Printf("%s\n", d.Label)
	fmt.Printf("  id:         %s\n", d.ID)
	fmt.Printf("  kind:       %s\n", kindLabel(d.Kind, 0))
	fmt.Printf("  influence:  %.0f\n", d.Influence)
	fmt.Printf("  degree:     %d\n", d.Degree)
	if len(d.Connections) == 0 {
		subtle.Println("  no connections")
		return
	}
	fmt.Println("  connections:")
	for _, c := range d.Connections {
		fmt.Printf("    %-40s %s %s %3d%%\n",
			truncateString(c.Label, LabelMaxLen), kindLabel(c.Kind, 10), subtle.Sprintf("%-19s", c.LinkKind), c.Percent)
	}
}

// printSummaryHuman prints per-kind statistics.
func printSummaryHuman(s view.Summary) {
	for _, k := range graph.Kinds {
		fmt.Printf("%s %4d\n", kindLabel(k, 12), s.ByKind[k])
	}
	fmt.Printf("%-12s %4d\n", "nodes", s.Nodes)
	fmt.Printf("%-12s %4d\n", "links", s.Links)
	if s.Dangling > 0 {
		warn.Printf("%-12s %4d\n", "dangling", s.Dangling)
	}
}

// printDanglingHuman warns about links whose endpoints are missing.
func printDanglingHuman(dangling []graph.DanglingLink) {
	for _, d := range dangling {
		warn.Fprintf(os.Stderr, "warning: link %s -> %s: %s\n", d.Source, d.Target, d.Reason)
	}
}
