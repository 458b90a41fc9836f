package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	persistlog "oresight.gg/internal/persistence/log"
	"oresight.gg/internal/persistence/prefsdb"
	"oresight.gg/internal/persistence/snapshot"
	"oresight.gg/internal/prefs"
	"oresight.gg/internal/sim/catalogs"
	"oresight.gg/internal/sim/overlay"
	"oresight.gg/internal/sim/overlay/drivers"
	"oresight.gg/internal/sim/tuning"
	"oresight.gg/internal/sim/world"
	"oresight.gg/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 0, "world seed (0: use tuning)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable sqlite filter persistence")

		snapPath   = flag.String("snapshot", "", "path to session snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")

		demoDrills = flag.Int("demo_drills", 6, "drills to place at startup (0 to disable the demo colony)")
		demoAgents = flag.Int("demo_agents", 3, "agents to spawn at startup")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	_ = os.MkdirAll(worldDir, 0o755)

	// Filter persistence. A failed open degrades to a session-local filter.
	var backend prefs.Backend
	if !*disableDB {
		db, err := prefsdb.Open(filepath.Join(worldDir, "index", "prefs.sqlite"), *worldID)
		if err != nil {
			logger.Fatalf("open prefs db: %v", err)
		}
		defer db.Close()
		backend = db
	}
	store, err := prefs.Open(backend)
	if err != nil {
		logger.Fatalf("load filter state: %v", err)
	}

	// Session snapshot resume: the sqlite row wins; the snapshot fills in when
	// the db is empty or disabled.
	snapToLoad := strings.TrimSpace(*snapPath)
	if snapToLoad == "" && *loadLatest {
		snapToLoad = latestSnapshot(worldDir)
	}
	if snapToLoad != "" {
		snap, err := snapshot.Read(snapToLoad)
		if err != nil {
			logger.Fatalf("load snapshot %s: %v", snapToLoad, err)
		}
		if snap.Seed != 0 {
			tune.Seed = snap.Seed
		}
		if snap.BoundaryR > 0 {
			tune.BoundaryR = snap.BoundaryR
		}
		if !store.IsInitialized() && store.EnabledCount() == 0 {
			store.Restore(snap.Filter)
		}
		logger.Printf("resumed session snapshot tick=%d deposits=%d", snap.Header.Tick, len(snap.Deposits))
	}

	w, err := world.New(world.WorldConfig{
		ID:                 *worldID,
		TickRateHz:         tune.TickRateHz,
		Seed:               tune.Seed,
		BoundaryR:          tune.BoundaryR,
		SurveyTicks:        tune.SurveyTicks,
		ScanPollTicks:      tune.ScanPollTicks,
		PanelPushTicks:     tune.PanelPushTicks,
		SnapshotEveryTicks: tune.SnapshotEveryTicks,
	}, cats)
	if err != nil {
		logger.Fatalf("create world: %v", err)
	}

	ov := overlay.New(
		overlay.Config{
			ScanPollTicks:    tune.ScanPollTicks,
			SlowRefreshTicks: tune.SlowRefreshTicks,
		},
		drivers.GridOracle{G: w.Grid()},
		drivers.ProbeDrills(w, logger),
		drivers.Agents{W: w},
		store,
		&cats.Kinds,
		logger,
	)
	scanLog := persistlog.NewScanLogger(worldDir)
	defer scanLog.Close()
	ov.SetScanLogger(scanLog)
	w.AttachOverlay(ov)

	if *demoDrills > 0 {
		seedDemoColony(w, cats, *demoDrills, *demoAgents, logger)
	}

	// Snapshot writing is off-thread.
	snapCh := make(chan snapshot.SessionV1, 4)
	w.SetSnapshotSink(snapCh)
	go func() {
		for snap := range snapCh {
			path := filepath.Join(worldDir, "snapshots", fmt.Sprintf("session-%012d.snap.zst", snap.Header.Tick))
			if err := snapshot.Write(path, snap); err != nil {
				logger.Printf("write snapshot: %v", err)
			}
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world loop: %v", err)
		}
	}()

	wsServer := ws.NewServer(w, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/panel", wsServer.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(rw, "ok tick=%d\n", w.CurrentTick())
	})
	mux.HandleFunc("/debug/pprof/", pprof.Index)

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Printf("listening on %s (world=%s seed=%d boundary=%d)", *addr, *worldID, tune.Seed, tune.BoundaryR)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("http: %v", err)
	}
	close(snapCh)
}

// latestSnapshot returns the newest session snapshot path, or "".
func latestSnapshot(worldDir string) string {
	entries, err := os.ReadDir(filepath.Join(worldDir, "snapshots"))
	if err != nil {
		return ""
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".snap.zst") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return filepath.Join(worldDir, "snapshots", names[len(names)-1])
}

// seedDemoColony places drills next to the first few mineral lodes around the
// origin and drops agents at the center, so a fresh world has something for
// the panel to show.
func seedDemoColony(w *world.World, cats *catalogs.Catalogs, drills, agents int, logger *log.Logger) {
	defs := drillDefIDs(cats)
	if len(defs) == 0 {
		logger.Printf("no drill defs in catalog; demo colony skipped")
		return
	}

	placed := 0
	b, ok := w.Grid().Bounds()
	if !ok {
		return
	}
	lastPlaced := world.Vec2i{}
	for r := 1; r <= b.Max.X && placed < drills; r++ {
		for z := -r; z <= r && placed < drills; z++ {
			for x := -r; x <= r && placed < drills; x++ {
				if maxAbs(x, z) != r {
					continue
				}
				c := world.Vec2i{X: x, Z: z}
				if _, mineral := w.Grid().KindAt(c); !mineral {
					continue
				}
				if placed > 0 && c.Dist(lastPlaced) < 6 {
					continue
				}
				defID := defs[placed%len(defs)]
				site := world.Vec2i{X: x + 1, Z: z}
				if _, err := w.SpawnBuilding(defID, site); err == nil {
					lastPlaced = c
					placed++
				}
			}
		}
	}
	for i := 0; i < agents; i++ {
		w.SpawnAgent(fmt.Sprintf("worker-%d", i+1), world.Vec2i{X: i, Z: -i})
	}
	logger.Printf("demo colony: %d drills, %d agents", placed, agents)
}

func drillDefIDs(cats *catalogs.Catalogs) []string {
	var ids []string
	for id, def := range cats.Buildings.Defs {
		if def.MiningRadius > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func maxAbs(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}
