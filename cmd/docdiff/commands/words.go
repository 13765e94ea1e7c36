package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/livefir/docdiff"
)

// Styles for terminal diff output
var (
	insertedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")).Underline(true)
	deletedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Strikethrough(true)
)

// Words diffs two plain-text files word by word
func Words(args []string) error {
	f, err := parseArgs(args, nil, []string{"plain", "text"})
	if err != nil {
		return err
	}
	if len(f.positional) != 2 {
		return fmt.Errorf("usage: docdiff words [--plain] [--text] OLD NEW")
	}

	oldText, newText := f.positional[0], f.positional[1]
	if !f.bool("text") {
		oldData, err := os.ReadFile(oldText)
		if err != nil {
			return fmt.Errorf("failed to read old text: %w", err)
		}
		newData, err := os.ReadFile(newText)
		if err != nil {
			return fmt.Errorf("failed to read new text: %w", err)
		}
		oldText, newText = string(oldData), string(newData)
	}

	fmt.Fprintln(stdout, formatWords(docdiff.DiffWords(oldText, newText), f.bool("plain")))
	return nil
}

// formatWords renders spans with colors, or with [-x-] and {+y+} markers
// when plain is set
func formatWords(diffs []docdiff.TextDiff, plain bool) string {
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			if plain {
				b.WriteString("[-" + d.Text + "-]")
			} else {
				b.WriteString(deletedStyle.Render(d.Text))
			}
		case diffmatchpatch.DiffInsert:
			if plain {
				b.WriteString("{+" + d.Text + "+}")
			} else {
				b.WriteString(insertedStyle.Render(d.Text))
			}
		}
	}
	return b.String()
}
