// Command campaignd runs the Starfront campaign engine behind an HTTP API.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"

	"github.com/voryn/starfront/internal/api"
	"github.com/voryn/starfront/internal/campaign"
	"github.com/voryn/starfront/internal/entropy"
	"github.com/voryn/starfront/internal/persistence"
	"github.com/voryn/starfront/internal/scenario"
)

type config struct {
	Port     int    `env:"CAMPAIGND_PORT"      envDefault:"8080"`
	AdminKey string `env:"CAMPAIGND_ADMIN_KEY"`
	DBPath   string `env:"CAMPAIGND_DB_PATH"   envDefault:"data/starfront.db"`
	Seed     *int64 `env:"CAMPAIGND_SEED"`
	LogLevel string `env:"CAMPAIGND_LOG_LEVEL" envDefault:"info"`
}

// defaultScenarioSeed fixes the map layout when no seed is configured; the
// scenario must regenerate identically across restarts for restores to line
// up.
const defaultScenarioSeed = 42

// entropySource picks the roll source: a reproducible stream when
// CAMPAIGND_SEED is set, the OS entropy pool for live play without one.
func entropySource(seed *int64) entropy.Source {
	if seed != nil {
		return entropy.NewSeeded(*seed)
	}
	return entropy.Crypto{}
}

func scenarioSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return defaultScenarioSeed
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("Starfront — Campaign Simulation Engine")

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Scenario (always regenerated — deterministic from seed) ───────
	sc := scenario.Default(scenarioSeed(cfg.Seed))
	slog.Info("scenario ready", "name", sc.Name, "nodes", len(sc.Nodes), "routes", len(sc.Routes))

	// ── Load or Initialize Campaign ───────────────────────────────────
	rng := entropySource(cfg.Seed)
	slog.Info("entropy source ready", "seeded", cfg.Seed != nil)

	var state *campaign.State
	save, found, err := db.LoadCampaign()
	if err != nil {
		slog.Error("failed to load campaign", "error", err)
		os.Exit(1)
	}
	if found {
		state = campaign.Restore(sc, rng, save)
		slog.Info("campaign restored", "day", state.Day, "version", state.Version)
	} else {
		slog.Info("no saved campaign found, starting fresh")
		state = campaign.New(sc, rng)
		if err := db.SaveCampaign(state.Save()); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("CAMPAIGND_ADMIN_KEY not set — command POST endpoints will be disabled")
	}

	server := &api.Server{
		State:    state,
		DB:       db,
		Port:     cfg.Port,
		AdminKey: cfg.AdminKey,
	}
	server.Start()

	fmt.Printf("\nCampaign underway: day %d, task force of %d at %s.\n",
		state.Day, state.TaskForce.Units.Total(), state.TaskForce.Location)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	fmt.Println("Awaiting orders... (Ctrl+C to stop)")

	// The engine is turn-based: days advance only on command, so the main
	// goroutine just waits for shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	server.SaveNow()
	fmt.Println("Engine stopped. Campaign state saved.")
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
