package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/livefir/docdiff"
)

const (
	// ConfigFileName is looked up in the working directory when no path
	// is given
	ConfigFileName = "docdiff.yaml"

	// CurrentVersion is the config format written by Save
	CurrentVersion = "1.0"
)

// Config represents the docdiff CLI configuration
type Config struct {
	Classes Classes `yaml:"classes"`

	// SkipModified leaves matched elements with changed text unmarked
	SkipModified bool `yaml:"skip_modified,omitempty"`

	// AtomicTags are compared as one unit in addition to the built-in media tags
	AtomicTags []string `yaml:"atomic_tags,omitempty" validate:"dive,required,alphanum"`

	// TransparentTags are treated as formatting wrappers in addition to the built-in ones
	TransparentTags []string `yaml:"transparent_tags,omitempty" validate:"dive,required,alphanum"`

	// MatchAttributes must be equal for two elements to pair
	MatchAttributes []string `yaml:"match_attributes,omitempty" validate:"dive,required"`

	Minify         bool `yaml:"minify,omitempty"`
	KeepWhitespace bool `yaml:"keep_whitespace,omitempty"`

	// Workers bounds concurrent diffs in batch mode
	Workers int `yaml:"workers" validate:"min=1,max=256"`

	// Report is the SQLite file batch results are recorded in; empty disables it
	Report string `yaml:"report,omitempty"`

	Version string `yaml:"version,omitempty"`
}

// Classes are the markers applied to changed content
type Classes struct {
	Added    string `yaml:"added" validate:"required,max=64"`
	Removed  string `yaml:"removed" validate:"required,max=64"`
	Modified string `yaml:"modified" validate:"required,max=64"`
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Classes: Classes{
			Added:    docdiff.DefaultAddedClass,
			Removed:  docdiff.DefaultRemovedClass,
			Modified: docdiff.DefaultModifiedClass,
		},
		Workers: 4,
		Version: CurrentVersion,
	}
}

// Load reads the configuration at path over the defaults. An empty path
// looks for ConfigFileName in the working directory and falls back to the
// defaults when it is absent.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = ConfigFileName
	}

	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Version == "" {
		config.Version = CurrentVersion
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

// Save writes the configuration as YAML
func Save(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints, reporting every failing field
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if fieldErrs := ValidationMessages(err); len(fieldErrs) > 0 {
			return fieldErrs
		}
		return err
	}
	return nil
}

// Options converts the configuration into diff options
func (c *Config) Options(logger *slog.Logger) []docdiff.Option {
	opts := []docdiff.Option{
		docdiff.WithAddedClass(c.Classes.Added),
		docdiff.WithRemovedClass(c.Classes.Removed),
		docdiff.WithModifiedClass(c.Classes.Modified),
		docdiff.WithSkipModified(c.SkipModified),
		docdiff.WithMinify(c.Minify),
		docdiff.WithKeepWhitespace(c.KeepWhitespace),
		docdiff.WithLogger(logger),
	}
	if len(c.AtomicTags) > 0 {
		opts = append(opts, docdiff.WithSkipChildren(docdiff.TagPredicate(c.AtomicTags...)))
	}
	if len(c.TransparentTags) > 0 {
		opts = append(opts, docdiff.WithSkipSelf(docdiff.TagPredicate(c.TransparentTags...)))
	}
	if len(c.MatchAttributes) > 0 {
		opts = append(opts, docdiff.WithMatchAttributes(c.MatchAttributes...))
	}
	return opts
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MultiError is a collection of field errors
type MultiError []FieldError

func (m MultiError) Error() string {
	msgs := make([]string, 0, len(m))
	for _, err := range m {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidationMessages converts go-playground/validator errors to MultiError
func ValidationMessages(err error) MultiError {
	var fieldErrors MultiError

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fieldErrors
	}

	for _, e := range validationErrs {
		field := strings.ToLower(e.Namespace())
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}

		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", e.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
		case "alphanum":
			message = fmt.Sprintf("%s must be a plain tag name", e.Field())
		default:
			message = fmt.Sprintf("%s is invalid", e.Field())
		}

		fieldErrors = append(fieldErrors, FieldError{
			Field:   field,
			Message: message,
		})
	}

	return fieldErrors
}
