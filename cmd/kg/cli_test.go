package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/scholarnet/kgraph/internal/graph"
	"github.com/scholarnet/kgraph/internal/render"
	"github.com/scholarnet/kgraph/internal/view"
)

var (
	kgBinary     string
	kgBinaryOnce sync.Once
	kgBinaryErr  error
)

// getKGBinary builds the kg binary once and returns its path.
func getKGBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping binary tests in short mode")
	}
	kgBinaryOnce.Do(func() {
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			kgBinaryErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		tmpDir, err := os.MkdirTemp("", "kg-test-*")
		if err != nil {
			kgBinaryErr = err
			return
		}
		kgBinary = filepath.Join(tmpDir, "kg")

		cmd := exec.Command("go", "build", "-o", kgBinary, "./cmd/kg")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			kgBinaryErr = &buildError{output: string(output), err: err}
		}
	})
	if kgBinaryErr != nil {
		t.Fatalf("failed to build kg: %v", kgBinaryErr)
	}
	return kgBinary
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

// runKG executes kg in dir with an isolated global config and returns
// stdout and the exit code.
func runKG(t *testing.T, dir string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(getKGBinary(t), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(dir, "config"),
		"KG_REPO_PATH=",
		"KG_SEED=",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return stdout.String(), ExitSuccess
	case errors.As(err, &exitErr):
		return stdout.String(), exitErr.ExitCode()
	default:
		t.Fatalf("running kg %v: %v\nstderr: %s", args, err, stderr.String())
		return "", -1
	}
}

// setupDemoRepo creates a repository seeded with the demo dataset.
func setupDemoRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, code := runKG(t, dir, "init", "--demo")
	if code != ExitSuccess {
		t.Fatalf("init --demo exit %d: %s", code, out)
	}

	var result InitResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("parsing init output: %v\n%s", err, out)
	}
	if result.Nodes != 18 || result.Links != 20 {
		t.Fatalf("init --demo = %+v, want 18 nodes and 20 links", result)
	}
	return dir
}

func TestInit(t *testing.T) {
	dir := setupDemoRepo(t)

	for _, name := range []string{"nodes.jsonl", "links.jsonl", "config.json", ".gitignore", "cache"} {
		if _, err := os.Stat(filepath.Join(dir, ".kgraph", name)); err != nil {
			t.Errorf("missing .kgraph/%s: %v", name, err)
		}
	}

	out, code := runKG(t, dir, "init")
	if code != ExitError {
		t.Errorf("second init exit = %d, want %d", code, ExitError)
	}
	if !strings.Contains(out, "already contains") {
		t.Errorf("second init output = %q", out)
	}
}

func TestNoRepository(t *testing.T) {
	dir := t.TempDir()
	if _, code := runKG(t, dir, "stats"); code != ExitConfigError {
		t.Errorf("stats outside a repository exit = %d, want %d", code, ExitConfigError)
	}
}

func TestStats(t *testing.T) {
	dir := setupDemoRepo(t)

	out, code := runKG(t, dir, "stats")
	if code != ExitSuccess {
		t.Fatalf("stats exit %d: %s", code, out)
	}
	var s view.Summary
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("parsing stats: %v\n%s", err, out)
	}
	want := map[string]int{"scholar": 5, "paper": 5, "keyword": 5, "department": 3}
	for kind, n := range want {
		if got := s.ByKind[graph.Kind(kind)]; got != n {
			t.Errorf("by_kind[%s] = %d, want %d", kind, got, n)
		}
	}
	if s.Links != 20 || s.Dangling != 0 {
		t.Errorf("links = %d, dangling = %d", s.Links, s.Dangling)
	}
}

func TestRebuildAndNode(t *testing.T) {
	dir := setupDemoRepo(t)

	if out, code := runKG(t, dir, "node", "scholar1"); code != ExitConfigError {
		t.Errorf("node before rebuild exit = %d, want %d: %s", code, ExitConfigError, out)
	}

	// A dangling link is kept and reported.
	links := filepath.Join(dir, ".kgraph", "links.jsonl")
	f, err := os.OpenFile(links, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString(`{"source":"scholar1","target":"ghost","strength":0.5,"kind":"citation"}` + "\n")
	f.Close()

	out, code := runKG(t, dir, "rebuild")
	if code != ExitSuccess {
		t.Fatalf("rebuild exit %d: %s", code, out)
	}
	var rebuilt RebuildResult
	if err := json.Unmarshal([]byte(out), &rebuilt); err != nil {
		t.Fatalf("parsing rebuild: %v\n%s", err, out)
	}
	if rebuilt.Nodes != 18 || rebuilt.Links != 21 || len(rebuilt.Dangling) != 1 {
		t.Errorf("rebuild = %+v", rebuilt)
	}

	out, code = runKG(t, dir, "node", "scholar1")
	if code != ExitSuccess {
		t.Fatalf("node exit %d: %s", code, out)
	}
	var d view.Detail
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		t.Fatalf("parsing node: %v\n%s", err, out)
	}
	if d.Label != "Wang Bo" || d.Degree != 6 || len(d.Connections) != view.MaxConnections {
		t.Errorf("detail = %+v", d)
	}

	if _, code := runKG(t, dir, "node", "nobody"); code != ExitDataError {
		t.Errorf("unknown node exit = %d, want %d", code, ExitDataError)
	}

	out, code = runKG(t, dir, "node", "--search", "learn")
	if code != ExitSuccess {
		t.Fatalf("node --search exit %d: %s", code, out)
	}
	var found NodeSearchResult
	if err := json.Unmarshal([]byte(out), &found); err != nil {
		t.Fatalf("parsing search: %v\n%s", err, out)
	}
	ids := map[string]bool{}
	for _, n := range found.Nodes {
		ids[n.ID] = true
	}
	for _, id := range []string{"paper1", "keyword2", "keyword3"} {
		if !ids[id] {
			t.Errorf("search for learn missing %s (got %v)", id, ids)
		}
	}
}

func TestLayout(t *testing.T) {
	dir := setupDemoRepo(t)

	run := func() LayoutResult {
		out, code := runKG(t, dir, "layout", "--ticks", "60", "--seed", "3")
		if code != ExitSuccess {
			t.Fatalf("layout exit %d: %s", code, out)
		}
		var r LayoutResult
		if err := json.Unmarshal([]byte(out), &r); err != nil {
			t.Fatalf("parsing layout: %v\n%s", err, out)
		}
		return r
	}

	a := run()
	if a.Tick != 60 || len(a.Nodes) != 18 {
		t.Fatalf("layout tick = %d, nodes = %d", a.Tick, len(a.Nodes))
	}
	for _, n := range a.Nodes {
		if !n.Placed {
			t.Errorf("%s not placed", n.ID)
		}
		if n.Position.X < 0 || n.Position.X > a.Width || n.Position.Y < 0 || n.Position.Y > a.Height {
			t.Errorf("%s out of bounds at %v", n.ID, n.Position)
		}
	}

	b := run()
	for i := range a.Nodes {
		if a.Nodes[i].Position != b.Nodes[i].Position {
			t.Fatalf("same seed gave different layouts for %s", a.Nodes[i].ID)
		}
	}
}

func TestRender(t *testing.T) {
	dir := setupDemoRepo(t)
	png := filepath.Join(dir, "graph.png")

	out, code := runKG(t, dir, "render", "-o", png, "--ticks", "30", "--seed", "1", "--select", "scholar1")
	if code != ExitSuccess {
		t.Fatalf("render exit %d: %s", code, out)
	}
	data, err := os.ReadFile(png)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("output is not a PNG")
	}

	out, code = runKG(t, dir, "render", "--ops", "--ticks", "30", "--seed", "1", "--kind", "department")
	if code != ExitSuccess {
		t.Fatalf("render --ops exit %d: %s", code, out)
	}
	var ops []render.Op
	if err := json.Unmarshal([]byte(out), &ops); err != nil {
		t.Fatalf("parsing ops: %v\n%s", err, out)
	}
	circles := 0
	for _, op := range ops {
		if op.Kind == "circle" {
			circles++
		}
	}
	if circles != 3 {
		t.Errorf("department filter drew %d circles, want 3", circles)
	}

	if _, code := runKG(t, dir, "render", "--ops", "--kind", "planet"); code != ExitError {
		t.Errorf("invalid kind exit = %d, want %d", code, ExitError)
	}
	if _, code := runKG(t, dir, "render", "--ops", "--select", "nobody"); code != ExitDataError {
		t.Errorf("unknown --select exit = %d, want %d", code, ExitDataError)
	}
}

func TestExport(t *testing.T) {
	dir := setupDemoRepo(t)
	html := filepath.Join(dir, "graph.html")

	out, code := runKG(t, dir, "export", "--offline", "-o", html, "--ticks", "30", "--seed", "1")
	if code != ExitSuccess {
		t.Fatalf("export exit %d: %s", code, out)
	}
	data, err := os.ReadFile(html)
	if err != nil {
		t.Fatal(err)
	}
	page := string(data)
	if !strings.Contains(page, "<svg") || strings.Count(page, "<circle") != 18 {
		t.Errorf("offline export should draw 18 circles in an SVG")
	}

	out, code = runKG(t, dir, "export", "--ticks", "10")
	if code != ExitSuccess {
		t.Fatalf("export to stdout exit %d", code)
	}
	if !strings.Contains(out, "cytoscape") || !strings.Contains(out, `"id":"dept1"`) {
		t.Error("interactive export should embed Cytoscape elements")
	}
}
