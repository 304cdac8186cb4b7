package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/scholarnet/kgraph/internal/config"
	"github.com/scholarnet/kgraph/internal/dataset"
	"github.com/scholarnet/kgraph/internal/force"
	"github.com/scholarnet/kgraph/internal/graph"
	"github.com/scholarnet/kgraph/internal/metrics"
	"github.com/scholarnet/kgraph/internal/tui"
	"github.com/scholarnet/kgraph/internal/view"
)

var (
	tuiWatch       bool
	tuiPaused      bool
	tuiSeed        int64
	tuiMetricsAddr string
)

func init() {
	tuiCmd.Flags().BoolVar(&tuiWatch, "watch", false, "Reload the dataset when nodes.jsonl or links.jsonl change")
	tuiCmd.Flags().BoolVar(&tuiPaused, "paused", false, "Start with the simulation paused")
	tuiCmd.Flags().Int64Var(&tuiSeed, "seed", 0, "Seed for initial placement (default: seed from config, else random)")
	tuiCmd.Flags().StringVar(&tuiMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on ADDR, e.g. :9464 (default: from config)")
	rootCmd.AddCommand(tuiCmd)
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Explore the graph interactively in the terminal",
	Long: `Open the interactive view. The layout keeps simulating while you explore.

Mouse:
  move     hover a node
  click    select a node and show its details (click empty space to clear)

Keys:
  space    play/pause          r      reset positions
  + / -    link strength ±0.1  [ / ]  minimum link strength ±0.1
  /        search labels       tab    cycle kind filter
  y        copy selected id    esc    clear selection
  q        quit

Logs are written to .kgraph/cache/kg.log.`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	p := mustLoadParams(repoRoot)
	g := mustLoadGraph(repoRoot)
	global := mustLoadGlobalConfig()

	logger, closeLog, err := openLog(repoRoot, global.SlogLevel())
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var opts []force.Option
	switch {
	case cmd.Flags().Changed("seed"):
		opts = append(opts, force.WithSeed(tuiSeed))
	case global.Seed != nil:
		opts = append(opts, force.WithSeed(*global.Seed))
	}

	m := metrics.New()
	var program *tea.Program
	runner := force.NewRunner(force.New(g, p, opts...),
		force.OnTick(func(tick uint64) {
			program.Send(tui.TickMsg{Tick: tick})
		}),
		force.WithObserver(m),
	)
	model := tui.New(view.NewControls(runner), tui.WithMetrics(m), tui.WithLogger(logger))
	program = tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	if err := runner.Start(ctx, !tuiPaused); err != nil {
		exitWithError(ExitError, "starting simulation: %v", err)
	}
	defer runner.Stop()
	logger.Info("tui started", "repo", repoRoot, "nodes", g.Len(), "links", len(g.Links()))

	group, gctx := errgroup.WithContext(ctx)
	if tuiWatch {
		w := dataset.NewWatcher(config.NodesPath(repoRoot), config.LinksPath(repoRoot),
			func(g *graph.Graph) {
				program.Send(tui.ReloadMsg{Graph: g})
			},
			dataset.WithLogger(logger),
			dataset.WithReloadResult(m.ObserveReload),
		)
		group.Go(func() error {
			return w.Run(gctx)
		})
	}

	addr := tuiMetricsAddr
	if addr == "" {
		addr = global.MetricsAddr
	}
	if addr != "" {
		group.Go(func() error {
			if err := m.Serve(gctx, addr, logger); err != nil {
				logger.Error("metrics server failed", "addr", addr, "error", err)
			}
			return nil
		})
	}

	_, runErr := program.Run()
	stop()
	if err := group.Wait(); err != nil {
		logger.Error("background task failed", "error", err)
	}
	logger.Info("tui stopped", "ticks", runner.Engine().Ticks())

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("running tui: %w", runErr)
	}
	return nil
}

// openLog opens the TUI log file under the cache directory. The terminal
// belongs to the TUI, so nothing is logged to stderr.
func openLog(repoRoot string, level slog.Level) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		return nil, nil, fmt.Errorf("creating cache directory: %w", err)
	}
	f, err := os.OpenFile(config.LogPath(repoRoot), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}
