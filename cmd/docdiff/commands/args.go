package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Output destinations, replaced in tests
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// flags holds parsed command-line arguments
type flags struct {
	positional []string
	values     map[string]string
	set        map[string]bool
}

// parseArgs accepts -name, --name, --name value and --name=value. Names in
// valueFlags take a value; names in boolFlags do not. Anything else is an
// error.
func parseArgs(args []string, valueFlags, boolFlags []string) (*flags, error) {
	takesValue := make(map[string]bool, len(valueFlags))
	for _, name := range valueFlags {
		takesValue[name] = true
	}
	isBool := make(map[string]bool, len(boolFlags))
	for _, name := range boolFlags {
		isBool[name] = true
	}

	f := &flags{values: map[string]string{}, set: map[string]bool{}}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			f.positional = append(f.positional, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			f.positional = append(f.positional, arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		value, hasValue := "", false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, value, hasValue = name[:eq], name[eq+1:], true
		}

		switch {
		case takesValue[name]:
			if !hasValue {
				if i+1 >= len(args) {
					return nil, fmt.Errorf("flag --%s requires a value", name)
				}
				i++
				value = args[i]
			}
			f.values[name] = value
		case isBool[name]:
			if hasValue {
				b, err := strconv.ParseBool(value)
				if err != nil {
					return nil, fmt.Errorf("invalid value for --%s: %s", name, value)
				}
				if !b {
					delete(f.set, name)
					continue
				}
			}
			f.set[name] = true
		default:
			return nil, fmt.Errorf("unknown flag: %s", arg)
		}
	}
	return f, nil
}

func (f *flags) value(name string) string {
	return f.values[name]
}

func (f *flags) bool(name string) bool {
	return f.set[name]
}

func (f *flags) int(name string, fallback int) (int, error) {
	v, ok := f.values[name]
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value for --%s: %s", name, v)
	}
	return n, nil
}

// logger returns a debug logger on stderr when verbose is set
func (f *flags) logger() *slog.Logger {
	if !f.bool("v") && !f.bool("verbose") {
		return nil
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
