package dataset

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/scholarnet/kgraph/internal/graph"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite cache of a dataset. The JSONL files stay the source of
// truth; the cache is rebuilt from them.
type DB struct {
	db *sql.DB
}

// RebuildStats summarizes a cache rebuild.
type RebuildStats struct {
	Nodes    int                  `json:"nodes"`
	Links    int                  `json:"links"`
	Dangling []graph.DanglingLink `json:"dangling_links"`
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS nodes (
			seq INTEGER NOT NULL,
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			kind TEXT NOT NULL,
			weight REAL NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(kind);

		CREATE TABLE IF NOT EXISTS links (
			seq INTEGER NOT NULL,
			source_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			strength REAL NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_links_source ON links(source_id);
		CREATE INDEX IF NOT EXISTS idx_links_target ON links(target_id);

		-- Full-text search over labels (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
			id,
			label,
			kind
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from the dataset files.
func (d *DB) RebuildFromJSONL(nodesPath, linksPath string) (RebuildStats, error) {
	g, err := Load(nodesPath, linksPath)
	if err != nil {
		return RebuildStats{}, fmt.Errorf("reading JSONL: %w", err)
	}
	return d.Rebuild(g)
}

// Rebuild replaces the cached contents with g in one transaction.
func (d *DB) Rebuild(g *graph.Graph) (RebuildStats, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return RebuildStats{}, fmt.Errorf("beginning rebuild: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"nodes", "links", "nodes_fts"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return RebuildStats{}, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	nodeStmt, err := tx.Prepare(`INSERT INTO nodes (seq, id, label, kind, weight) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return RebuildStats{}, fmt.Errorf("preparing nodes insert: %w", err)
	}
	defer nodeStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO nodes_fts (id, label, kind) VALUES (?, ?, ?)`)
	if err != nil {
		return RebuildStats{}, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	linkStmt, err := tx.Prepare(`INSERT INTO links (seq, source_id, target_id, kind, strength) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return RebuildStats{}, fmt.Errorf("preparing links insert: %w", err)
	}
	defer linkStmt.Close()

	for i, n := range g.Nodes() {
		if _, err := nodeStmt.Exec(i, n.ID, n.Label, string(n.Kind), n.Weight); err != nil {
			return RebuildStats{}, fmt.Errorf("inserting node %s: %w", n.ID, err)
		}
		if _, err := ftsStmt.Exec(n.ID, n.Label, string(n.Kind)); err != nil {
			return RebuildStats{}, fmt.Errorf("inserting fts for %s: %w", n.ID, err)
		}
	}
	for i, l := range g.Links() {
		if _, err := linkStmt.Exec(i, l.Source, l.Target, string(l.Kind), l.Strength); err != nil {
			return RebuildStats{}, fmt.Errorf("inserting link %s->%s: %w", l.Source, l.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return RebuildStats{}, fmt.Errorf("committing rebuild: %w", err)
	}

	return RebuildStats{
		Nodes:    g.Len(),
		Links:    len(g.Links()),
		Dangling: g.DanglingLinks(),
	}, nil
}

// LoadGraph reads the cached graph in its original collection order.
func (d *DB) LoadGraph() (*graph.Graph, error) {
	rows, err := d.db.Query(`SELECT id, label, kind, weight FROM nodes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	nodes, err := scanNodes(rows)
	if err != nil {
		return nil, err
	}

	links, err := d.queryLinks(`SELECT source_id, target_id, kind, strength FROM links ORDER BY seq`)
	if err != nil {
		return nil, err
	}

	return graph.New(nodes, links), nil
}

// GetNode retrieves a node by id. Returns false if it does not exist.
func (d *DB) GetNode(id string) (graph.Node, bool, error) {
	var n graph.Node
	var kind string
	err := d.db.QueryRow(`SELECT id, label, kind, weight FROM nodes WHERE id = ?`, id).
		Scan(&n.ID, &n.Label, &kind, &n.Weight)
	if errors.Is(err, sql.ErrNoRows) {
		return graph.Node{}, false, nil
	}
	if err != nil {
		return graph.Node{}, false, fmt.Errorf("getting node %s: %w", id, err)
	}
	n.Kind = graph.Kind(kind)
	return n, true, nil
}

// LinksOf returns every link touching id in collection order.
func (d *DB) LinksOf(id string) ([]graph.Link, error) {
	return d.queryLinks(`
		SELECT source_id, target_id, kind, strength
		FROM links
		WHERE source_id = ? OR target_id = ?
		ORDER BY seq`, id, id)
}

// SearchNodes performs a full-text prefix search over node labels and ids,
// best matches first.
func (d *DB) SearchNodes(query string, limit int) ([]graph.Node, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT n.id, n.label, n.kind, n.weight
		FROM nodes_fts f
		JOIN nodes n ON n.id = f.id
		WHERE nodes_fts MATCH ?
		ORDER BY f.rank
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	return scanNodes(rows)
}

// Count returns the number of cached nodes and links.
func (d *DB) Count() (nodes, links int, err error) {
	if err := d.db.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&nodes); err != nil {
		return 0, 0, fmt.Errorf("counting nodes: %w", err)
	}
	if err := d.db.QueryRow("SELECT COUNT(*) FROM links").Scan(&links); err != nil {
		return 0, 0, fmt.Errorf("counting links: %w", err)
	}
	return nodes, links, nil
}

func (d *DB) queryLinks(query string, args ...any) ([]graph.Link, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying links: %w", err)
	}
	defer rows.Close()

	var links []graph.Link
	for rows.Next() {
		var l graph.Link
		var kind string
		if err := rows.Scan(&l.Source, &l.Target, &kind, &l.Strength); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		l.Kind = graph.LinkKind(kind)
		links = append(links, l)
	}
	return links, rows.Err()
}

func scanNodes(rows *sql.Rows) ([]graph.Node, error) {
	defer rows.Close()

	var nodes []graph.Node
	for rows.Next() {
		var n graph.Node
		var kind string
		if err := rows.Scan(&n.ID, &n.Label, &kind, &n.Weight); err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		n.Kind = graph.Kind(kind)
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// prepareFTSQuery turns free text into an FTS5 query: each word is quoted
// and prefix-matched, and all words must match.
func prepareFTSQuery(query string) string {
	var terms []string
	for _, part := range strings.Fields(query) {
		escaped := strings.ReplaceAll(part, "\"", "\"\"")
		terms = append(terms, "\""+escaped+"\"*")
	}
	return strings.Join(terms, " ")
}
