package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/scholarnet/kgraph/internal/force"
)

func TestObserveTick(t *testing.T) {
	m := New()
	m.ObserveTick(force.TickStats{Tick: 1, Duration: time.Millisecond, Speed: 12.5, Nodes: 18, Links: 20})
	m.ObserveTick(force.TickStats{Tick: 2, Duration: time.Millisecond, Speed: 3, Nodes: 18, Links: 21})

	if got := testutil.ToFloat64(m.Ticks); got != 2 {
		t.Errorf("ticks = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Speed); got != 3 {
		t.Errorf("speed = %v, want last observed 3", got)
	}
	if got := testutil.ToFloat64(m.Nodes); got != 18 {
		t.Errorf("nodes = %v, want 18", got)
	}
	if got := testutil.ToFloat64(m.Links); got != 21 {
		t.Errorf("links = %v, want 21", got)
	}
}

func TestSetControlsAndReloads(t *testing.T) {
	m := New()
	m.SetControls(true, 0.7)
	if testutil.ToFloat64(m.Running) != 1 || testutil.ToFloat64(m.LinkStrength) != 0.7 {
		t.Error("controls not recorded")
	}
	m.SetControls(false, 0.7)
	if testutil.ToFloat64(m.Running) != 0 {
		t.Error("pause not recorded")
	}

	m.ObserveReload(nil)
	m.ObserveReload(nil)
	m.ObserveReload(errors.New("bad line"))
	if got := testutil.ToFloat64(m.Reloads.WithLabelValues("ok")); got != 2 {
		t.Errorf("ok reloads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Reloads.WithLabelValues("error")); got != 1 {
		t.Errorf("failed reloads = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveTick(force.TickStats{Tick: 1, Duration: time.Microsecond, Nodes: 3, Links: 2})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, name := range []string{"kg_ticks_total 1", "kg_tick_duration_seconds_bucket", "kg_nodes 3", "kg_links 2", "go_goroutines"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %q", name)
		}
	}
}

func TestObserverInterface(t *testing.T) {
	var _ force.Observer = New()
}
