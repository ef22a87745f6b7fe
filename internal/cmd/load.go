package cmd

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Import pages, redirects, and links from TSV dumps",
	Long: `Import graph data into the database from tab-separated dump files.

Three file kinds are supported, loaded in this order when several are given:

  --pages      id <TAB> title <TAB> is_redirect(0|1)
  --redirects  source_id <TAB> target_id
  --links      id <TAB> outgoing ids ('|' separated) <TAB> incoming ids

Files ending in .gz are decompressed on the fly. Each file loads inside a
single transaction, so a failed import leaves the database unchanged.

Examples:
  wikihop load --pages pages.tsv.gz
  wikihop load --pages pages.tsv --redirects redirects.tsv --links links.tsv
  wikihop load --redirects redirects.tsv --prune  # Drop dangling redirects`,
	RunE: runLoad,
}

var (
	loadPages     string
	loadRedirects string
	loadLinks     string
	loadPrune     bool
)

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().StringVar(&loadPages, "pages", "", "Pages TSV file to import")
	loadCmd.Flags().StringVar(&loadRedirects, "redirects", "", "Redirects TSV file to import")
	loadCmd.Flags().StringVar(&loadLinks, "links", "", "Links TSV file to import")
	loadCmd.Flags().BoolVar(&loadPrune, "prune", false, "Remove dangling redirects after import")
}

// openDump opens a dump file, transparently decompressing .gz files.
func openDump(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &gzipDump{gz: gz, file: f}, nil
}

type gzipDump struct {
	gz   *gzip.Reader
	file *os.File
}

func (g *gzipDump) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipDump) Close() error {
	gzErr := g.gz.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return gzErr
}

func runLoad(cmd *cobra.Command, args []string) error {
	if loadPages == "" && loadRedirects == "" && loadLinks == "" && !loadPrune {
		return fmt.Errorf("nothing to do: pass --pages, --redirects, --links, or --prune")
	}

	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	type step struct {
		kind string
		path string
		load func(io.Reader) (int64, error)
	}
	steps := []step{
		{"pages", loadPages, st.LoadPages},
		{"redirects", loadRedirects, st.LoadRedirects},
		{"links", loadLinks, st.LoadLinks},
	}

	for _, s := range steps {
		if s.path == "" {
			continue
		}

		r, err := openDump(s.path)
		if err != nil {
			return err
		}

		started := time.Now()
		n, err := s.load(r)
		r.Close()
		if err != nil {
			return fmt.Errorf("load %s from %s: %w", s.kind, s.path, err)
		}

		fmt.Printf("Loaded %d %s from %s in %s\n", n, s.kind, s.path, time.Since(started).Round(time.Millisecond))
	}

	if loadPrune {
		pruned, err := st.PruneDanglingRedirects()
		if err != nil {
			return fmt.Errorf("prune redirects: %w", err)
		}
		fmt.Printf("Pruned %d dangling redirect rows\n", pruned)
	}

	return nil
}
