package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/livefir/docdiff/cmd/docdiff/commands"
)

// Version information (can be overridden at build time with -ldflags)
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error

	switch command {
	case "html":
		err = commands.HTML(args)
	case "words":
		err = commands.Words(args)
	case "batch":
		err = commands.Batch(args)
	case "report":
		err = commands.Report(args)
	case "config":
		err = commands.Config(args)
	case "version", "--version":
		printVersion()
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("docdiff version %s\n", version)

	if info, ok := debug.ReadBuildInfo(); ok {
		revision := commit
		if revision == "unknown" {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					revision = setting.Value
				}
			}
		}
		if len(revision) > 12 {
			revision = revision[:12]
		}
		if revision != "" && revision != "unknown" {
			fmt.Printf("commit: %s\n", revision)
		}
		fmt.Printf("go: %s\n", info.GoVersion)
	}
}

func printUsage() {
	fmt.Println("docdiff - visual diffs of HTML documents")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  docdiff html [--config FILE] [--out FILE] [--stats] [-v] OLD NEW")
	fmt.Println("                                        Diff two HTML files")
	fmt.Println("  docdiff words [--plain] [--text] OLD NEW")
	fmt.Println("                                        Diff two texts word by word")
	fmt.Println("  docdiff batch [--config FILE] [--workers N] [--report DB] [--out DIR] [--metrics] [-v] DIR")
	fmt.Println("                                        Diff every NAME.old.html/NAME.new.html pair in DIR")
	fmt.Println("  docdiff report [--all] DB             Show recorded batch results")
	fmt.Println("  docdiff config init [--force] [PATH]  Write a default docdiff.yaml")
	fmt.Println("  docdiff config show [--config FILE]   Print the effective configuration")
	fmt.Println("  docdiff version                       Show version information")
	fmt.Println("  docdiff help                          Show this help")
	fmt.Println()
	fmt.Println("Configuration is read from ./docdiff.yaml when present.")
}
