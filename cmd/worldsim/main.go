// Command worldsim runs the authoritative multi-actor world simulation
// server: a fixed-rate tick engine exposed over a websocket transport.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/talgya/mini-world/internal/actionqueue"
	"github.com/talgya/mini-world/internal/config"
	"github.com/talgya/mini-world/internal/engine"
	"github.com/talgya/mini-world/internal/network"
	"github.com/talgya/mini-world/internal/persistence"
	"github.com/talgya/mini-world/internal/seeder"
	"github.com/talgya/mini-world/internal/worldstate"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.FromEnv()
	slog.Info("mini-world starting", "seed", cfg.Seed, "listenAddr", cfg.ListenAddr, "tickInterval", cfg.TickInterval)

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Error("failed to create database directory", "error", err)
			os.Exit(1)
		}
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Load or generate world state ───────────────────────────────────
	var w *worldstate.World
	var startTick uint64

	loaded, tick, found, err := db.LoadWorldSnapshot(cfg.Seed)
	if err != nil {
		slog.Error("failed to load world snapshot", "error", err)
		os.Exit(1)
	}
	if found {
		w = loaded
		startTick = tick
		slog.Info("world state restored",
			"tick", startTick,
			"actors", len(w.Actors),
			"npcs", len(w.NPCs),
			"behemoths", len(w.Behemoths),
		)
	} else {
		slog.Info("no saved state found, seeding new world", "seed", cfg.Seed)
		w = worldstate.New(cfg.Seed)
		seeder.Seed(w, seeder.DefaultConfig())
		slog.Info("world seeded",
			"resources", len(w.Resources),
			"npcs", len(w.NPCs),
			"behemoths", len(w.Behemoths),
			"structures", len(w.Structures),
		)
		if err := db.SnapshotWorld(w, 0); err != nil {
			slog.Error("initial snapshot failed", "error", err)
		}
	}

	// ── Engine and transport ────────────────────────────────────────────
	queue := actionqueue.New()
	hub := network.NewHub(queue)
	eng := engine.New(w, queue, db, hub)
	eng.Interval = cfg.TickInterval
	if startTick > 0 {
		eng.ResumeFrom(startTick)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := network.ListenAndServe(ctx, cfg.ListenAddr, hub); err != nil {
			slog.Error("websocket server stopped", "error", err)
		}
	}()
	slog.Info("websocket server listening", "addr", cfg.ListenAddr, "route", "/ws")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	fmt.Printf("mini-world is alive: %d actors, %d NPCs, %d behemoths.\n",
		len(w.Actors), len(w.NPCs), len(w.Behemoths))
	fmt.Printf("websocket: ws://localhost%s/ws\n", cfg.ListenAddr)
	if startTick > 0 {
		fmt.Printf("resuming from tick %d\n", startTick)
	}
	fmt.Println("starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	slog.Info("final save...")
	if err := db.SnapshotWorld(w, eng.CurrentTick()); err != nil {
		slog.Error("final save failed", "error", err)
	}
	fmt.Println("simulation stopped. world state saved.")
}
