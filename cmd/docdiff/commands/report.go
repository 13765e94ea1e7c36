package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/livefir/docdiff/cmd/docdiff/internal/report"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Report prints the comparisons recorded by batch
func Report(args []string) error {
	f, err := parseArgs(args, nil, []string{"all"})
	if err != nil {
		return err
	}
	if len(f.positional) != 1 {
		return fmt.Errorf("usage: docdiff report [--all] DB")
	}
	path := f.positional[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("report database not found: %w", err)
	}

	ctx := context.Background()
	store, err := report.Open(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rows, err := store.Rows(ctx, f.bool("all"))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(stdout, "No comparisons recorded")
		return nil
	}

	fmt.Fprintln(stdout, renderRows(rows))
	return nil
}

func renderRows(rows []report.Row) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("RUN", "NAME", "STATUS", "INS", "DEL", "MOD", "TIME").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range rows {
		status := r.Status
		if r.Error != "" {
			status += ": " + r.Error
		}
		t.Row(
			time.UnixMicro(r.RunID).Format("2006-01-02 15:04:05"),
			r.Name,
			status,
			strconv.Itoa(r.Inserted),
			strconv.Itoa(r.Deleted),
			strconv.Itoa(r.Modified),
			r.Duration.Round(time.Microsecond).String(),
		)
	}
	return t.String()
}
