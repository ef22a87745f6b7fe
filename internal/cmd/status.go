package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wikihop/wikihop/internal/store"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show graph database statistics",
	Long: `Show statistics for the graph database.

Displays the database path and the number of pages, adjacency rows,
redirects, and recorded searches.

Examples:
  wikihop status          # Show statistics
  wikihop status --json   # JSON output for scripts`,
	RunE: runStatus,
}

var statusJSON bool

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
}

// StatusOutput represents the status output structure
type StatusOutput struct {
	Database  string `json:"database" yaml:"database"`
	SizeBytes int64  `json:"size_bytes" yaml:"size_bytes"`
	Pages     int64  `json:"pages" yaml:"pages"`
	Links     int64  `json:"links" yaml:"links"`
	Redirects int64  `json:"redirects" yaml:"redirects"`
	Searches  int64  `json:"searches" yaml:"searches"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dbPath := resolveDBPath(cfg)
	st, err := store.OpenReadOnly(dbPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w (run 'wikihop init' first)", dbPath, err)
	}
	defer st.Close()

	stats, err := st.GetStats()
	if err != nil {
		return fmt.Errorf("query stats: %w", err)
	}

	output := StatusOutput{
		Database:  st.Path(),
		Pages:     stats.PageCount,
		Links:     stats.LinkCount,
		Redirects: stats.RedirectCount,
		Searches:  stats.SearchCount,
	}
	if info, err := os.Stat(st.Path()); err == nil {
		output.SizeBytes = info.Size()
	}

	if statusJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	}

	fmt.Printf("Database:  %s (%d bytes)\n", output.Database, output.SizeBytes)
	fmt.Printf("Pages:     %d\n", output.Pages)
	fmt.Printf("Links:     %d\n", output.Links)
	fmt.Printf("Redirects: %d\n", output.Redirects)
	fmt.Printf("Searches:  %d\n", output.Searches)
	return nil
}
