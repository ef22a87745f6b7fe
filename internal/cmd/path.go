package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wikihop/wikihop/internal/search"
	"github.com/wikihop/wikihop/internal/store"
)

// pathCmd represents the path command
var pathCmd = &cobra.Command{
	Use:   "path <source> <target>",
	Short: "Find every shortest path between two pages",
	Long: `Find every shortest chain of links between two pages.

Titles are matched case-insensitively and redirects are followed. The
search runs both ends toward the middle, always expanding the side with
the smaller total link count, and returns all shortest paths.

With --graph, the search runs against a plain edge-list file instead of
the database. Each line holds two numeric node IDs separated by
whitespace, and the command arguments are node IDs rather than titles.

Examples:
  wikihop path "Chess" "Photosynthesis"
  wikihop path "chess" "PHOTOSYNTHESIS" --json
  wikihop path 1 42 --graph edges.txt`,
	Args: cobra.ExactArgs(2),
	RunE: runPath,
}

var (
	pathJSON     bool
	pathGraph    string
	pathMaxPaths int
)

func init() {
	rootCmd.AddCommand(pathCmd)

	pathCmd.Flags().BoolVar(&pathJSON, "json", false, "Output in JSON format")
	pathCmd.Flags().StringVar(&pathGraph, "graph", "", "Search an edge-list file instead of the database")
	pathCmd.Flags().IntVar(&pathMaxPaths, "max-paths", 0, "Cap on returned paths (0 = config value)")
}

// pathResult is the JSON output shape of the path command.
type pathResult struct {
	Source           string     `json:"source"`
	Target           string     `json:"target"`
	SourceRedirected bool       `json:"source_redirected"`
	TargetRedirected bool       `json:"target_redirected"`
	Degrees          int        `json:"degrees"`
	Count            int        `json:"count"`
	Paths            [][]string `json:"paths"`
	Duration         string     `json:"duration"`
}

func runPath(cmd *cobra.Command, args []string) error {
	if pathGraph != "" {
		return runPathOnEdgeList(cmd.Context(), args[0], args[1])
	}
	return runPathOnStore(cmd.Context(), args[0], args[1])
}

func runPathOnStore(ctx context.Context, source, target string) error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	from, fromRedirected, err := st.ResolvePage(ctx, source)
	if err != nil {
		if errors.Is(err, store.ErrPageNotFound) {
			return fmt.Errorf("start page %q does not exist", source)
		}
		return fmt.Errorf("resolve source: %w", err)
	}

	to, toRedirected, err := st.ResolvePage(ctx, target)
	if err != nil {
		if errors.Is(err, store.ErrPageNotFound) {
			return fmt.Errorf("end page %q does not exist", target)
		}
		return fmt.Errorf("resolve target: %w", err)
	}

	started := time.Now()
	paths, err := search.ShortestPaths(ctx, st, from.ID, to.ID)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	elapsed := time.Since(started)

	maxPaths := pathMaxPaths
	if maxPaths == 0 {
		maxPaths = cfg.Search.MaxPaths
	}
	if maxPaths > 0 && len(paths) > maxPaths {
		paths = paths[:maxPaths]
	}

	titles, err := pathTitles(ctx, st, paths)
	if err != nil {
		return err
	}

	result := pathResult{
		Source:           from.Title,
		Target:           to.Title,
		SourceRedirected: fromRedirected,
		TargetRedirected: toRedirected,
		Count:            len(titles),
		Paths:            titles,
		Duration:         elapsed.Round(time.Microsecond).String(),
	}
	if len(paths) > 0 {
		result.Degrees = len(paths[0]) - 1
	}

	return printPathResult(result)
}

// pathTitles maps ID paths to title paths with one batched lookup.
func pathTitles(ctx context.Context, st *store.Store, paths [][]int64) ([][]string, error) {
	idSet := make(map[int64]struct{})
	for _, p := range paths {
		for _, id := range p {
			idSet[id] = struct{}{}
		}
	}
	ids := make([]int64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	titles, err := st.PageTitles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load titles: %w", err)
	}

	out := make([][]string, 0, len(paths))
	for _, p := range paths {
		tp := make([]string, len(p))
		for i, id := range p {
			tp[i] = titles[id]
		}
		out = append(out, tp)
	}
	return out, nil
}

func runPathOnEdgeList(ctx context.Context, source, target string) error {
	sourceID, err := strconv.ParseInt(source, 10, 64)
	if err != nil {
		return fmt.Errorf("with --graph, source must be a numeric node ID: %q", source)
	}
	targetID, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return fmt.Errorf("with --graph, target must be a numeric node ID: %q", target)
	}

	mem, err := loadEdgeList(pathGraph)
	if err != nil {
		return err
	}

	started := time.Now()
	paths, err := search.ShortestPaths(ctx, mem, sourceID, targetID)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	elapsed := time.Since(started)

	if pathMaxPaths > 0 && len(paths) > pathMaxPaths {
		paths = paths[:pathMaxPaths]
	}

	titled := make([][]string, 0, len(paths))
	for _, p := range paths {
		tp := make([]string, len(p))
		for i, id := range p {
			tp[i] = strconv.FormatInt(id, 10)
		}
		titled = append(titled, tp)
	}

	result := pathResult{
		Source:   source,
		Target:   target,
		Count:    len(titled),
		Paths:    titled,
		Duration: elapsed.Round(time.Microsecond).String(),
	}
	if len(paths) > 0 {
		result.Degrees = len(paths[0]) - 1
	}

	return printPathResult(result)
}

// loadEdgeList reads a whitespace-separated edge list into memory.
func loadEdgeList(path string) (*search.Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	mem := search.NewMemory()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: expected two node IDs, got %q", path, lineNo, line)
		}
		from, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad node ID %q", path, lineNo, fields[0])
		}
		to, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad node ID %q", path, lineNo, fields[1])
		}
		mem.AddEdge(from, to)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return mem, nil
}

func printPathResult(result pathResult) error {
	if pathJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.Count == 0 {
		fmt.Printf("No path from %s to %s\n", result.Source, result.Target)
		return nil
	}

	fmt.Printf("%d path(s) of %d degree(s) from %s to %s (%s):\n",
		result.Count, result.Degrees, result.Source, result.Target, result.Duration)
	for _, p := range result.Paths {
		fmt.Printf("  %s\n", strings.Join(p, " -> "))
	}
	return nil
}
