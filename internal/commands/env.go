package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/lettbooks-dev/lettbooks/internal/config"
	"github.com/lettbooks-dev/lettbooks/internal/store"
)

// configFile is the per-agency configuration file name.
const configFile = "lettbooks.yaml"

// runtime bundles the opened store, resolved system accounts and logger
// that every command needs.
type runtime struct {
	root  string
	cfg   *config.Config
	store *store.Store
	sys   store.SystemAccounts
	log   zerolog.Logger
}

// openRuntime loads .env overrides and the config from dir, opens the
// ledger database and resolves the system account registry.
func openRuntime(dir string) (*runtime, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	// Optional; the .env file only exists in deployments that need it.
	_ = godotenv.Load(filepath.Join(absDir, ".env"))

	cfg, err := config.Load(filepath.Join(absDir, configFile))
	if err != nil {
		return nil, err
	}

	dbPath := cfg.Database.Path
	if env := os.Getenv("LETTBOOKS_DB"); env != "" {
		dbPath = env
	}
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(absDir, dbPath)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	var sys store.SystemAccounts
	err = st.View(func(tx *store.Tx) error {
		sys, err = tx.System()
		return err
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	return &runtime{
		root:  absDir,
		cfg:   cfg,
		store: st,
		sys:   sys,
		log:   newLogger(),
	}, nil
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if os.Getenv("LETTBOOKS_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// Close releases the runtime's store.
func (r *runtime) Close() {
	if r.store != nil {
		r.store.Close()
	}
}
