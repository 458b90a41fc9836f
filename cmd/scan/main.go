// Command scan runs one offline deposit scan against a seeded grid and prints
// the panel view, optionally applying the filter from a session snapshot.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"oresight.gg/internal/persistence/snapshot"
	"oresight.gg/internal/prefs"
	"oresight.gg/internal/sim/catalogs"
	"oresight.gg/internal/sim/overlay"
	"oresight.gg/internal/sim/overlay/drivers"
	"oresight.gg/internal/sim/tuning"
	"oresight.gg/internal/sim/world"
)

func main() {
	var (
		configDir = flag.String("configs", "./configs", "config directory")
		seed      = flag.Int64("seed", 0, "world seed (0: use tuning)")
		boundary  = flag.Int("boundary", 0, "world boundary radius (0: use tuning)")
		snapPath  = flag.String("snapshot", "", "session snapshot to take the filter from (optional)")
		allKinds  = flag.Bool("all", false, "ignore the filter and show every kind")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[scan] ", 0)

	tune, err := tuning.Load(filepath.Join(*configDir, "tuning.yaml"))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		tune = tuning.Defaults()
	}
	if *seed != 0 {
		tune.Seed = *seed
	}
	if *boundary != 0 {
		tune.BoundaryR = *boundary
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	store, _ := prefs.Open(nil)
	if *snapPath != "" {
		snap, err := snapshot.Read(*snapPath)
		if err != nil {
			logger.Fatalf("load snapshot: %v", err)
		}
		if snap.Seed != 0 {
			tune.Seed = snap.Seed
		}
		if snap.BoundaryR > 0 {
			tune.BoundaryR = snap.BoundaryR
		}
		store.Restore(snap.Filter)
	}

	w, err := world.New(world.WorldConfig{
		ID:         "offline",
		TickRateHz: tune.TickRateHz,
		Seed:       tune.Seed,
		BoundaryR:  tune.BoundaryR,
	}, cats)
	if err != nil {
		logger.Fatalf("create world: %v", err)
	}

	ov := overlay.New(
		overlay.Config{ScanPollTicks: 1, SlowRefreshTicks: 1},
		drivers.GridOracle{G: w.Grid()},
		nil, nil,
		store,
		&cats.Kinds,
		logger,
	)
	if *allKinds {
		ov.EnableAllKinds()
	}
	ov.Step(1)

	views := ov.Views()
	fmt.Printf("seed=%d boundary=%d deposits=%d\n\n", tune.Seed, tune.BoundaryR, len(views))
	fmt.Printf("%-24s %-10s %8s %8s %12s\n", "DEPOSIT", "ANCHOR", "CELLS", "YIELD", "COMMONALITY")
	for _, v := range views {
		anchor := fmt.Sprintf("%d,%d", v.Anchor.X, v.Anchor.Z)
		fmt.Printf("%-24s %-10s %8d %8d %12.1f\n", v.Label+" "+keySuffix(v.Key), anchor, v.CellCount, v.TotalYield, v.Commonality)
	}
}

func keySuffix(key string) string {
	if i := strings.IndexByte(key, '@'); i >= 0 {
		return "(" + key[i+1:] + ")"
	}
	return ""
}
