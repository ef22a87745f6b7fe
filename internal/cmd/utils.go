package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/wikihop/wikihop/internal/config"
	"github.com/wikihop/wikihop/internal/store"
)

// resolveDBPath turns a relative database path from config into a path
// anchored at the directory holding .wikihop, so commands work from
// subdirectories the same way they do from the project root.
func resolveDBPath(cfg *config.Config) string {
	p := cfg.Database.Path
	if filepath.IsAbs(p) {
		return p
	}
	if dir, err := config.FindConfigDir("."); err == nil {
		return filepath.Join(filepath.Dir(dir), p)
	}
	return p
}

// openStore loads configuration and opens the graph database.
func openStore() (*store.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	dbPath := resolveDBPath(cfg)
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w (run 'wikihop init' first)", dbPath, err)
	}
	return st, cfg, nil
}
