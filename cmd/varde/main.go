package main

import (
	"flag"
	"os"
	"time"

	"github.com/mjollne/varde/internal/alert"
	"github.com/mjollne/varde/internal/api"
	"github.com/mjollne/varde/internal/config"
	"github.com/mjollne/varde/internal/database"
	"github.com/mjollne/varde/internal/enrich"
	"github.com/mjollne/varde/internal/evidence"
	"github.com/mjollne/varde/internal/fs"
	"github.com/mjollne/varde/internal/tracker"
	"github.com/mjollne/varde/internal/util"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	util.ParseFlags()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		util.PrintWarning("No configuration file found, running with defaults")
		cfg = config.Defaults()
		// Seed a starter file so the defaults are visible and editable
		if err := config.WriteConfig(cfg, *configPath); err != nil {
			util.PrintWarningf("Could not write starter configuration to %s: %v", *configPath, err)
		}
	}

	if err := fs.EnsureDir(cfg.Tracker.DataDir); err != nil {
		util.PrintErrorf("Failed to create data directory %s: %v", cfg.Tracker.DataDir, err)
		os.Exit(1)
	}

	// Store init is the one fatal failure in the pipeline
	store, err := database.NewAttackStore(cfg.DatabasePath())
	if err != nil {
		util.PrintErrorf("Failed to initialize attack store at %s: %v", cfg.DatabasePath(), err)
		os.Exit(1)
	}
	util.PrintSuccess("Attack store initialized at " + cfg.DatabasePath())

	evid, err := evidence.NewIndex(cfg.EvidencePath())
	if err != nil {
		util.PrintErrorf("Failed to initialize evidence index at %s: %v", cfg.EvidencePath(), err)
		os.Exit(1)
	}
	defer evid.Close()

	alerts, err := alert.NewDispatcher(cfg.EvidencePath())
	if err != nil {
		util.PrintErrorf("Failed to initialize alert dispatcher: %v", err)
		os.Exit(1)
	}

	enricher := enrich.New(cfg.Tracker.GeoAPIURL, time.Duration(cfg.Tracker.GeoTimeout)*time.Second, enrich.NoTorFeed)
	trk := tracker.New(store, enricher, alerts, cfg.EvidencePath(), cfg.Tracker.AlertThreshold)

	srv := api.NewServer(cfg, store, trk, evid)

	util.PrintInfo("varde tracker listening on " + cfg.Server.ListenAddr)
	if err := srv.Listen(); err != nil {
		util.PrintErrorf("Server stopped: %v", err)
		os.Exit(1)
	}
}
