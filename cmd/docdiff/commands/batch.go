package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/livefir/docdiff"
	"github.com/livefir/docdiff/cmd/docdiff/internal/config"
	"github.com/livefir/docdiff/cmd/docdiff/internal/report"
	"github.com/livefir/docdiff/internal/metrics"
)

const (
	oldSuffix  = ".old.html"
	newSuffix  = ".new.html"
	diffSuffix = ".diff.html"
)

// pair is one NAME.old.html / NAME.new.html couple
type pair struct {
	name    string
	oldPath string
	newPath string
}

type pairResult struct {
	pair   pair
	stats  docdiff.Stats
	output string
	err    error
	took   time.Duration
}

// Batch diffs every pair of documents in a directory
func Batch(args []string) error {
	f, err := parseArgs(args,
		[]string{"config", "workers", "report", "out"},
		[]string{"metrics", "v", "verbose"})
	if err != nil {
		return err
	}
	if len(f.positional) != 1 {
		return fmt.Errorf("usage: docdiff batch [--config FILE] [--workers N] [--report DB] [--out DIR] [--metrics] [-v] DIR")
	}
	dir := f.positional[0]

	cfg, err := config.Load(f.value("config"))
	if err != nil {
		return err
	}
	if cfg.Workers, err = f.int("workers", cfg.Workers); err != nil {
		return err
	}
	if path := f.value("report"); path != "" {
		cfg.Report = path
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	outDir := f.value("out")
	if outDir == "" {
		outDir = dir
	} else if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	pairs, err := findPairs(dir)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return fmt.Errorf("no *%s files found in %s", oldSuffix, dir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := f.logger()
	collector := metrics.NewCollector()
	results := runPairs(ctx, pairs, cfg.Workers, cfg.Options(logger), collector, logger)

	var store *report.Store
	if cfg.Report != "" {
		if store, err = report.Open(ctx, cfg.Report); err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}
	runID := report.NewRunID()

	failed := 0
	for _, r := range results {
		row := report.Row{
			RunID:    runID,
			Name:     r.pair.name,
			Inserted: r.stats.Inserted,
			Deleted:  r.stats.Deleted,
			Modified: r.stats.Modified,
			Duration: r.took,
		}

		switch {
		case r.err != nil:
			failed++
			row.Status, row.Error = report.StatusFailed, r.err.Error()
			if errors.Is(r.err, docdiff.ErrTooComplex) {
				row.Status = report.StatusTooComplex
			}
			fmt.Fprintf(stdout, "%-24s %s: %v\n", r.pair.name, row.Status, r.err)
		default:
			row.Status = report.StatusUnchanged
			if r.stats.Inserted+r.stats.Deleted+r.stats.Modified > 0 {
				row.Status = report.StatusChanged
			}
			target := filepath.Join(outDir, r.pair.name+diffSuffix)
			if err := os.WriteFile(target, []byte(r.output+"\n"), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", target, err)
			}
			fmt.Fprintf(stdout, "%-24s %s +%d -%d ~%d\n",
				r.pair.name, row.Status, r.stats.Inserted, r.stats.Deleted, r.stats.Modified)
		}

		if store != nil {
			if err := store.Record(ctx, row); err != nil {
				return err
			}
		}
	}

	m := collector.GetMetrics()
	fmt.Fprintf(stdout, "\n%d pairs, %d changed, %d failed, +%d -%d ~%d in %v\n",
		len(results), m.PairsChanged, m.PairsFailed, m.Inserted, m.Deleted, m.Modified,
		m.Uptime.Round(time.Millisecond))

	if f.bool("metrics") {
		data, err := collector.ExportJSON()
		if err != nil {
			return fmt.Errorf("failed to export metrics: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d comparisons failed", failed, len(results))
	}
	return nil
}

// findPairs lists NAME.old.html files in dir with their NAME.new.html
// counterpart, sorted by name
func findPairs(dir string) ([]pair, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+oldSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Strings(matches)

	pairs := make([]pair, 0, len(matches))
	for _, oldPath := range matches {
		name := strings.TrimSuffix(filepath.Base(oldPath), oldSuffix)
		pairs = append(pairs, pair{
			name:    name,
			oldPath: oldPath,
			newPath: filepath.Join(dir, name+newSuffix),
		})
	}
	return pairs, nil
}

// runPairs diffs pairs on a fixed number of workers. Results keep the
// order of pairs.
func runPairs(ctx context.Context, pairs []pair, workers int, opts []docdiff.Option, collector *metrics.Collector, logger *slog.Logger) []pairResult {
	if workers > len(pairs) {
		workers = len(pairs)
	}

	results := make([]pairResult, len(pairs))
	jobs := make(chan int, len(pairs))
	for i := range pairs {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := range jobs {
				collector.Begin()
				start := time.Now()
				r := diffPair(ctx, pairs[i], opts)
				r.took = time.Since(start)

				if r.err != nil {
					collector.RecordFailure(errors.Is(r.err, docdiff.ErrTooComplex))
				} else {
					collector.Record(metrics.Outcome{
						Inserted: r.stats.Inserted,
						Deleted:  r.stats.Deleted,
						Modified: r.stats.Modified,
						Duration: r.took,
					})
				}
				if logger != nil {
					logger.Debug("pair compared", "worker", worker, "name", pairs[i].name, "took", r.took, "error", r.err)
				}
				results[i] = r
			}
		}(w)
	}
	wg.Wait()

	return results
}

func diffPair(ctx context.Context, p pair, opts []docdiff.Option) pairResult {
	r := pairResult{pair: p}

	oldHTML, err := os.ReadFile(p.oldPath)
	if err != nil {
		r.err = fmt.Errorf("failed to read old document: %w", err)
		return r
	}
	newHTML, err := os.ReadFile(p.newPath)
	if err != nil {
		r.err = fmt.Errorf("failed to read new document: %w", err)
		return r
	}

	result, err := docdiff.DiffHTMLContext(ctx, string(oldHTML), string(newHTML), opts...)
	if err != nil {
		r.err = err
		return r
	}
	r.stats = result.Stats
	r.output, r.err = docdiff.RenderHTML(result.Tree)
	return r
}
