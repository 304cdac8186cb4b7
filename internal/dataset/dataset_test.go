package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/scholarnet/kgraph/internal/graph"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReadNodes(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantNodes int
		wantErr   string
	}{
		{
			name:      "empty file",
			content:   "",
			wantNodes: 0,
		},
		{
			name:      "single node",
			content:   `{"id":"s1","label":"Wang Bo","kind":"scholar","weight":20}`,
			wantNodes: 1,
		},
		{
			name: "with empty lines",
			content: `{"id":"s1","label":"Wang Bo","kind":"scholar","weight":20}

{"id":"p1","label":"Survey","kind":"paper","weight":15}`,
			wantNodes: 2,
		},
		{
			name:    "invalid JSON",
			content: `{"id":"s1"`,
			wantErr: "line 1",
		},
		{
			name: "invalid kind",
			content: `{"id":"s1","label":"Wang Bo","kind":"scholar","weight":20}
{"id":"x","label":"X","kind":"robot","weight":1}`,
			wantErr: "line 2",
		},
		{
			name:    "zero weight",
			content: `{"id":"s1","label":"Wang Bo","kind":"scholar","weight":0}`,
			wantErr: "weight",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nodes.jsonl")
			writeFile(t, path, tt.content)

			nodes, err := ReadNodes(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ReadNodes() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadNodes() error = %v", err)
			}
			if len(nodes) != tt.wantNodes {
				t.Errorf("ReadNodes() returned %d nodes, want %d", len(nodes), tt.wantNodes)
			}
		})
	}
}

func TestReadNodes_MissingFile(t *testing.T) {
	nodes, err := ReadNodes(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err != nil || nodes != nil {
		t.Errorf("ReadNodes(missing) = (%v, %v), want (nil, nil)", nodes, err)
	}
}

func TestReadLinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.jsonl")
	writeFile(t, path, `{"source":"p1","target":"k1","strength":0.9,"kind":"keyword"}
{"source":"s1","target":"ghost","strength":1,"kind":"citation"}
`)

	links, err := ReadLinks(path)
	if err != nil {
		t.Fatalf("ReadLinks() error = %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2", len(links))
	}
	if links[0].Kind != graph.LinkKeywordAssociation {
		t.Errorf("legacy kind = %q, want keyword-association", links[0].Kind)
	}

	writeFile(t, path, `{"source":"a","target":"a","strength":0.5,"kind":"citation"}`)
	if _, err := ReadLinks(path); !errors.Is(err, graph.ErrSelfLink) {
		t.Errorf("self link error = %v, want ErrSelfLink", err)
	}
}

func TestLoad_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	nodes := filepath.Join(dir, "nodes.jsonl")
	links := filepath.Join(dir, "links.jsonl")
	writeFile(t, nodes, `{"id":"s1","label":"A","kind":"scholar","weight":20}
{"id":"s1","label":"B","kind":"scholar","weight":20}
`)

	_, err := Load(nodes, links)
	var recErr *graph.RecordError
	if !errors.As(err, &recErr) || !errors.Is(err, graph.ErrDuplicateID) {
		t.Fatalf("Load() error = %v, want duplicate RecordError", err)
	}
	if recErr.Index != 1 {
		t.Errorf("RecordError.Index = %d, want 1", recErr.Index)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	nodes := filepath.Join(dir, "nodes.jsonl")
	links := filepath.Join(dir, "links.jsonl")

	if err := Save(Demo(), nodes, links); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	g, err := Load(nodes, links)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if g.Len() != 18 || len(g.Links()) != 20 {
		t.Errorf("loaded %d nodes, %d links", g.Len(), len(g.Links()))
	}
	if g.Nodes()[0].ID != "scholar1" || g.Nodes()[17].ID != "dept3" {
		t.Error("collection order not preserved")
	}
}

func TestAppend(t *testing.T) {
	dir := t.TempDir()
	nodes := filepath.Join(dir, "nodes.jsonl")
	links := filepath.Join(dir, "links.jsonl")

	if err := AppendNode(nodes, graph.Node{ID: "s1", Label: "A", Kind: graph.KindScholar, Weight: 10}); err != nil {
		t.Fatal(err)
	}
	if err := AppendNode(nodes, graph.Node{ID: "Bad ID", Label: "B", Kind: graph.KindScholar, Weight: 10}); !errors.Is(err, graph.ErrInvalidID) {
		t.Errorf("AppendNode(bad id) = %v, want ErrInvalidID", err)
	}
	if err := AppendLink(links, graph.Link{Source: "s1", Target: "s2", Strength: 0.5, Kind: graph.LinkCollaboration}); err != nil {
		t.Fatal(err)
	}

	g, err := Load(nodes, links)
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 1 || len(g.DanglingLinks()) != 1 {
		t.Errorf("got %d nodes, %d dangling links", g.Len(), len(g.DanglingLinks()))
	}
}

func TestDemo(t *testing.T) {
	g := Demo()
	if err := g.Validate(); err != nil {
		t.Fatalf("demo graph invalid: %v", err)
	}
	if g.Len() != 18 || len(g.Links()) != 20 {
		t.Errorf("demo has %d nodes, %d links; want 18, 20", g.Len(), len(g.Links()))
	}
	if d := g.DanglingLinks(); len(d) != 0 {
		t.Errorf("demo has dangling links: %v", d)
	}
	counts := g.CountByKind()
	want := map[graph.Kind]int{
		graph.KindScholar:    5,
		graph.KindPaper:      5,
		graph.KindKeyword:    5,
		graph.KindDepartment: 3,
	}
	for k, n := range want {
		if counts[k] != n {
			t.Errorf("%s count = %d, want %d", k, counts[k], n)
		}
	}
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	nodes := filepath.Join(dir, "nodes.jsonl")
	links := filepath.Join(dir, "links.jsonl")
	if err := Save(Demo(), nodes, links); err != nil {
		t.Fatal(err)
	}

	db, err := OpenDB(filepath.Join(dir, "graph.db"))
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	stats, err := db.RebuildFromJSONL(nodes, links)
	if err != nil {
		t.Fatalf("Failed to rebuild DB: %v", err)
	}
	if stats.Nodes != 18 || stats.Links != 20 || len(stats.Dangling) != 0 {
		t.Fatalf("rebuild stats = %+v", stats)
	}
	return db
}

func TestDB_LoadGraph(t *testing.T) {
	db := setupTestDB(t)

	g, err := db.LoadGraph()
	if err != nil {
		t.Fatalf("LoadGraph() error = %v", err)
	}
	demo := Demo()
	for i, n := range demo.Nodes() {
		if g.Nodes()[i] != n {
			t.Errorf("node %d = %+v, want %+v", i, g.Nodes()[i], n)
		}
	}
	for i, l := range demo.Links() {
		if g.Links()[i] != l {
			t.Errorf("link %d = %+v, want %+v", i, g.Links()[i], l)
		}
	}
}

func TestDB_RebuildReplaces(t *testing.T) {
	db := setupTestDB(t)

	small := graph.New(
		[]graph.Node{{ID: "a", Label: "Alpha", Kind: graph.KindPaper, Weight: 5}},
		[]graph.Link{{Source: "a", Target: "zz", Strength: 0.5, Kind: graph.LinkCitation}},
	)
	stats, err := db.Rebuild(small)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats.Dangling) != 1 || stats.Dangling[0].Reason != "missing_target" {
		t.Errorf("dangling = %+v", stats.Dangling)
	}

	nodes, links, err := db.Count()
	if err != nil || nodes != 1 || links != 1 {
		t.Errorf("Count() = (%d, %d, %v), want (1, 1, nil)", nodes, links, err)
	}
	if res, _ := db.SearchNodes("learning", 10); len(res) != 0 {
		t.Errorf("stale search results after rebuild: %v", res)
	}
}

func TestDB_SearchNodes(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"learning", []string{"paper1", "keyword2", "keyword3"}},
		{"learn", []string{"paper1", "keyword2", "keyword3"}},
		{"deep learning", []string{"paper1", "keyword3"}},
		{"wang", []string{"scholar1"}},
		{"dept2", []string{"dept2"}},
		{"", nil},
		{`"quoted`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, err := db.SearchNodes(tt.query, 10)
			if err != nil {
				t.Fatalf("SearchNodes(%q) error = %v", tt.query, err)
			}
			got := make(map[string]bool)
			for _, n := range res {
				got[n.ID] = true
			}
			if len(got) != len(tt.want) {
				t.Errorf("SearchNodes(%q) = %v, want %v", tt.query, res, tt.want)
			}
			for _, id := range tt.want {
				if !got[id] {
					t.Errorf("SearchNodes(%q) missing %s", tt.query, id)
				}
			}
		})
	}
}

func TestDB_GetNodeAndLinks(t *testing.T) {
	db := setupTestDB(t)

	n, ok, err := db.GetNode("dept1")
	if err != nil || !ok {
		t.Fatalf("GetNode(dept1) = (%v, %v)", ok, err)
	}
	if n.Label != "School of Computer Science" || n.Weight != 30 || n.Kind != graph.KindDepartment {
		t.Errorf("GetNode(dept1) = %+v", n)
	}

	if _, ok, err := db.GetNode("missing"); ok || err != nil {
		t.Errorf("GetNode(missing) = (%v, %v), want (false, nil)", ok, err)
	}

	links, err := db.LinksOf("dept1")
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 3 {
		t.Errorf("LinksOf(dept1) = %d links, want 3", len(links))
	}
}

func TestWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	nodes := filepath.Join(dir, "nodes.jsonl")
	links := filepath.Join(dir, "links.jsonl")
	if err := Save(Demo(), nodes, links); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *graph.Graph, 16)
	w := NewWatcher(nodes, links, func(g *graph.Graph) {
		select {
		case reloaded <- g:
		default:
		}
	}, WithReloadLimiter(rate.NewLimiter(rate.Inf, 1)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	}()

	extra := graph.Node{ID: "scholar6", Label: "Zhao Lei", Kind: graph.KindScholar, Weight: 17}
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	// The watch may not be registered yet, so keep touching the file.
	if err := AppendNode(nodes, extra); err != nil {
		t.Fatal(err)
	}
	for {
		select {
		case g := <-reloaded:
			if _, ok := g.Node("scholar6"); ok {
				return
			}
		case <-tick.C:
			if err := WriteNodes(nodes, append(DemoNodes(), extra)); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	nodes := filepath.Join(dir, "nodes.jsonl")
	links := filepath.Join(dir, "links.jsonl")
	w := NewWatcher(nodes, links, func(*graph.Graph) {})

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"nodes write", fsnotify.Event{Name: nodes, Op: fsnotify.Write}, true},
		{"links create", fsnotify.Event{Name: links, Op: fsnotify.Create}, true},
		{"nodes replaced", fsnotify.Event{Name: nodes, Op: fsnotify.Rename}, true},
		{"other file", fsnotify.Event{Name: filepath.Join(dir, "config.json"), Op: fsnotify.Write}, false},
		{"chmod only", fsnotify.Event{Name: nodes, Op: fsnotify.Chmod}, false},
	}
	for _, tt := range tests {
		if got := w.relevant(tt.ev); got != tt.want {
			t.Errorf("%s: relevant() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWatcher_ReloadResult(t *testing.T) {
	dir := t.TempDir()
	nodes := filepath.Join(dir, "nodes.jsonl")
	links := filepath.Join(dir, "links.jsonl")
	if err := os.WriteFile(nodes, []byte("{not json\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var results []error
	reloads := 0
	w := NewWatcher(nodes, links,
		func(*graph.Graph) { reloads++ },
		WithReloadResult(func(err error) { results = append(results, err) }),
	)

	w.reload()
	if len(results) != 1 || results[0] == nil {
		t.Fatalf("results = %v, want one error", results)
	}
	if reloads != 0 {
		t.Error("onReload called for an invalid dataset")
	}

	if err := Save(Demo(), nodes, links); err != nil {
		t.Fatal(err)
	}
	w.reload()
	if len(results) != 2 || results[1] != nil {
		t.Fatalf("results = %v, want error then nil", results)
	}
	if reloads != 1 {
		t.Errorf("reloads = %d, want 1", reloads)
	}
}
