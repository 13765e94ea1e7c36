package commands

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/livefir/docdiff/cmd/docdiff/internal/config"
)

// Config manages docdiff.yaml
func Config(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: docdiff config <init|show> [options]")
	}

	switch args[0] {
	case "init":
		return configInit(args[1:])
	case "show":
		return configShow(args[1:])
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}

func configInit(args []string) error {
	f, err := parseArgs(args, nil, []string{"force"})
	if err != nil {
		return err
	}
	path := config.ConfigFileName
	if len(f.positional) > 0 {
		path = f.positional[0]
	}

	if _, err := os.Stat(path); err == nil && !f.bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}

func configShow(args []string) error {
	f, err := parseArgs(args, []string{"config"}, nil)
	if err != nil {
		return err
	}
	cfg, err := config.Load(f.value("config"))
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(stdout, string(data))
	return nil
}
