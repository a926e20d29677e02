package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/wardenworks/outrider/internal/agent"
	"github.com/wardenworks/outrider/internal/config"
	"github.com/wardenworks/outrider/internal/sim"
	"github.com/wardenworks/outrider/internal/store"
	"github.com/wardenworks/outrider/internal/world"
)

var (
	seed       int64
	radius     int
	baseCount  int
	harvesters int
	haulers    int
	scouts     int
	ticks      uint64
	speed      float64

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Generate a world and run the coordination loop",
		Run:   runSimulation,
	}
)

func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 0, "world seed (0 = random)")
	runCmd.Flags().IntVar(&radius, "radius", 6, "sector grid radius")
	runCmd.Flags().IntVar(&baseCount, "bases", 1, "home bases to claim")
	runCmd.Flags().IntVar(&harvesters, "harvesters", 6, "harvester agents")
	runCmd.Flags().IntVar(&haulers, "haulers", 2, "hauler agents")
	runCmd.Flags().IntVar(&scouts, "scouts", 2, "scout agents")
	runCmd.Flags().Uint64Var(&ticks, "ticks", 0, "stop after this many ticks (0 = run until signal)")
	runCmd.Flags().Float64Var(&speed, "speed", 1.0, "tick speed multiplier")
}

func runSimulation(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	cfg, problems := cfg.Sanitized()
	for _, p := range problems {
		slog.Warn("config value replaced with default", "problem", p.String())
	}

	if dir := filepath.Dir(storePath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	st, err := store.Open(backend, storePath)
	if err != nil {
		slog.Error("opening store", "error", err, "backend", backend, "path", storePath)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("store opened", "backend", backend, "path", storePath)

	// ── World ─────────────────────────────────────────────────────────
	gen := world.DefaultGenConfig()
	gen.Seed = seed
	gen.Radius = radius
	grid := world.Generate(gen)

	for band, count := range world.ThreatCounts(grid) {
		slog.Info("sectors", "band", band, "count", count)
	}

	bases := world.PlaceBases(grid, baseCount)
	if len(bases) == 0 {
		slog.Error("no viable base sites on this seed")
		os.Exit(1)
	}
	w := world.NewWorld(grid, bases, "outrider")
	for _, base := range bases {
		slog.Info("base claimed", "zone", base, "site", world.Describe(grid.Lookup(base)))
	}

	for i := 0; i < harvesters; i++ {
		w.AddAgent(fmt.Sprintf("harvester-%d", i+1), agent.RoleHarvester, bases[i%len(bases)])
	}
	for i := 0; i < haulers; i++ {
		w.AddAgent(fmt.Sprintf("hauler-%d", i+1), agent.RoleHauler, bases[i%len(bases)])
	}
	for i := 0; i < scouts; i++ {
		w.AddAgent(fmt.Sprintf("scout-%d", i+1), agent.RoleScout, bases[i%len(bases)])
	}
	slog.Info("fleet spawned", "harvesters", harvesters, "haulers", haulers, "scouts", scouts)

	// ── Coordination ──────────────────────────────────────────────────
	coord := sim.NewCoordinator(st, w, cfg)

	eng := sim.NewEngine()
	eng.Speed = speed
	eng.MaxTicks = ticks
	eng.ReportEvery = cfg.ReportEveryTicks
	eng.OnTick = func(tick uint64) {
		w.Advance(tick)
		coord.Step(tick)
	}
	eng.OnReport = coord.Report
	eng.OnCleanup = coord.Cleanup

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nOutrider: %d agents on %d sectors, %d base(s). (Ctrl+C to stop)\n",
		harvesters+haulers+scouts, grid.SectorCount(), len(bases))

	eng.Run()

	totals := coord.Totals()
	fmt.Printf("Delivered %s units over %s ticks (%d trips, %d aborts, %d retreats).\n",
		humanize.CommafWithDigits(w.Banked(), 0),
		humanize.Comma(int64(eng.Tick)),
		totals.Trips, totals.Aborts, totals.Retreats)
}
