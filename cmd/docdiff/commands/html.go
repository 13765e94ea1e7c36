package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/livefir/docdiff"
	"github.com/livefir/docdiff/cmd/docdiff/internal/config"
)

// HTML diffs two HTML files and writes the annotated document
func HTML(args []string) error {
	f, err := parseArgs(args, []string{"config", "out"}, []string{"stats", "v", "verbose"})
	if err != nil {
		return err
	}
	if len(f.positional) != 2 {
		return fmt.Errorf("usage: docdiff html [--config FILE] [--out FILE] [--stats] [-v] OLD NEW")
	}

	cfg, err := config.Load(f.value("config"))
	if err != nil {
		return err
	}

	oldHTML, err := os.ReadFile(f.positional[0])
	if err != nil {
		return fmt.Errorf("failed to read old document: %w", err)
	}
	newHTML, err := os.ReadFile(f.positional[1])
	if err != nil {
		return fmt.Errorf("failed to read new document: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := docdiff.DiffHTMLContext(ctx, string(oldHTML), string(newHTML), cfg.Options(f.logger())...)
	if err != nil {
		return err
	}
	out, err := docdiff.RenderHTML(result.Tree)
	if err != nil {
		return fmt.Errorf("failed to render diff: %w", err)
	}

	if path := f.value("out"); path != "" {
		if err := os.WriteFile(path, []byte(out+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		fmt.Fprintln(stdout, out)
	}

	if f.bool("stats") {
		printStats(result.Stats)
	}
	return nil
}

func printStats(s docdiff.Stats) {
	fmt.Fprintf(stderr, "inserted: %d\ndeleted: %d\nmodified: %d\nequal: %d\n",
		s.Inserted, s.Deleted, s.Modified, s.Equal)
	fmt.Fprintf(stderr, "containers: %d\nregions: %d\nsymbols: %d\ntime: %v\n",
		s.Containers, s.Regions, s.Symbols, s.Duration)
}
