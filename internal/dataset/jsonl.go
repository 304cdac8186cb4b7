// Package dataset loads and stores knowledge-graph datasets: JSONL files as
// the source of truth, a SQLite cache with full-text label search, the
// built-in demo graph, and a file watcher for live reloads.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/scholarnet/kgraph/internal/graph"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// readJSONL decodes one record per non-empty line, validating each one.
// A missing file yields no records.
func readJSONL[T any](path, what string, validate func(*T) error) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s file: %w", what, err)
	}
	defer f.Close()

	var out []T
	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec T
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", what, lineNum, err)
		}
		if err := validate(&rec); err != nil {
			return nil, fmt.Errorf("invalid %s at line %d: %w", what, lineNum, err)
		}
		out = append(out, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s file: %w", what, err)
	}

	return out, nil
}

// ReadNodes reads all nodes from a JSONL file.
// Returns an error if any node fails validation (fail-fast).
func ReadNodes(path string) ([]graph.Node, error) {
	return readJSONL(path, "node", (*graph.Node).Validate)
}

// ReadLinks reads all links from a JSONL file.
// Returns an error if any link fails validation (fail-fast).
func ReadLinks(path string) ([]graph.Link, error) {
	return readJSONL(path, "link", (*graph.Link).Validate)
}

func writeJSONLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}
	return nil
}

func writeAll[T any](path string, recs []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := range recs {
		if err := writeJSONLine(w, recs[i]); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

// WriteNodes writes all nodes to a JSONL file, replacing existing content.
func WriteNodes(path string, nodes []graph.Node) error {
	return writeAll(path, nodes)
}

// WriteLinks writes all links to a JSONL file, replacing existing content.
func WriteLinks(path string, links []graph.Link) error {
	return writeAll(path, links)
}

func appendRecord(path string, v any) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", path, err)
	}
	defer f.Close()

	return writeJSONLine(f, v)
}

// AppendNode validates n and adds it to the end of a JSONL file.
func AppendNode(path string, n graph.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	return appendRecord(path, n)
}

// AppendLink validates l and adds it to the end of a JSONL file.
func AppendLink(path string, l graph.Link) error {
	if err := l.Validate(); err != nil {
		return err
	}
	return appendRecord(path, l)
}

// Load reads a graph from its node and link files and rejects duplicate node
// ids. Dangling links are kept; callers report them.
func Load(nodesPath, linksPath string) (*graph.Graph, error) {
	nodes, err := ReadNodes(nodesPath)
	if err != nil {
		return nil, err
	}
	links, err := ReadLinks(linksPath)
	if err != nil {
		return nil, err
	}
	g := graph.New(nodes, links)
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Save writes g to its node and link files.
func Save(g *graph.Graph, nodesPath, linksPath string) error {
	if err := WriteNodes(nodesPath, g.Nodes()); err != nil {
		return err
	}
	return WriteLinks(linksPath, g.Links())
}
