// Package config reads the simulation's environment-variable configuration
// into one place, grounded on the teacher's os.Getenv("CORS_ORIGINS")-style
// ambient config and cmd/worldsim/main.go's flag wiring, generalized here
// into a single struct instead of scattered os.Getenv calls at each call
// site. See design doc's AMBIENT STACK / Configuration section.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is every environment-tunable knob the simulation reads at start.
type Config struct {
	// Seed is the world's deterministic PRNG seed. A fresh world generated
	// from the same seed places identical resources/NPCs/behemoths.
	Seed int64
	// DBPath is the SQLite database file for persistence.
	DBPath string
	// ListenAddr is the address the websocket server binds to.
	ListenAddr string
	// TickInterval is the wall-clock duration of one simulation tick.
	TickInterval time.Duration
}

const (
	defaultSeed       = 42
	defaultDBPath     = "data/worldsim.db"
	defaultListenAddr = ":8080"
	defaultTickMS     = 1000
)

// FromEnv reads WORLDSIM_SEED, WORLDSIM_DB_PATH, WORLDSIM_LISTEN_ADDR, and
// WORLDSIM_TICK_MS, falling back to the defaults above when unset or
// unparsable.
func FromEnv() Config {
	return Config{
		Seed:         envInt64("WORLDSIM_SEED", defaultSeed),
		DBPath:       envString("WORLDSIM_DB_PATH", defaultDBPath),
		ListenAddr:   envString("WORLDSIM_LISTEN_ADDR", defaultListenAddr),
		TickInterval: time.Duration(envInt64("WORLDSIM_TICK_MS", defaultTickMS)) * time.Millisecond,
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
