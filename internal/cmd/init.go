package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wikihop/wikihop/internal/config"
	"github.com/wikihop/wikihop/internal/store"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .wikihop directory and database",
	Long: `Initialize the .wikihop directory, default config file, and graph.db
database in the current directory.

This creates the structure wikihop needs to store the page graph. The
database holds pages, adjacency lists, redirects, and recorded searches.

Examples:
  wikihop init          # Initialize in current directory
  wikihop init --force  # Reinitialize (overwrites existing database)`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even if .wikihop already exists")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	configDir, err := config.EnsureConfigDir(cwd)
	if err != nil {
		return err
	}
	dbPath := filepath.Join(configDir, "graph.db")

	_, err = os.Stat(dbPath)
	if err == nil {
		if !initForce {
			relPath, _ := filepath.Rel(cwd, configDir)
			fmt.Printf("Already initialized at %s\n", relPath)
			return nil
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("removing existing database: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking database path: %w", err)
	}

	if _, err := config.SaveDefault(cwd); err != nil {
		// An existing config file is fine.
		if _, statErr := os.Stat(filepath.Join(configDir, config.ConfigFileName)); statErr != nil {
			return err
		}
	}

	storeDB, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer storeDB.Close()

	relPath, _ := filepath.Rel(cwd, dbPath)
	fmt.Printf("Initialized wikihop database at %s\n", relPath)

	return nil
}
