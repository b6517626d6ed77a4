// Package config holds the settings of a manifest run: built-in defaults,
// an optional TOML file, and validation of the merged result.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"ArchiveManifest/internal/digest"
	"ArchiveManifest/internal/index"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultOutput     = "manifest.txt"
	DefaultBufferSize = 1 << 20
)

type Config struct {
	ArchivePath     string   `toml:"archive_path"`
	ArchiveName     string   `toml:"archive_name"`
	Output          string   `toml:"output"`
	Threads         int      `toml:"threads"`
	BufferSize      int      `toml:"buffer_size"`
	Algorithm       string   `toml:"algorithm"`
	Symlinks        string   `toml:"symlinks"`
	Exclude         []string `toml:"exclude"`
	SkipAppleDouble bool     `toml:"skip_appledouble"`
	Progress        bool     `toml:"progress"`
	Verbose         bool     `toml:"verbose"`
}

func Default() Config {
	return Config{
		Output:     DefaultOutput,
		Threads:    runtime.NumCPU(),
		BufferSize: DefaultBufferSize,
		Algorithm:  digest.DefaultAlgorithm,
		Symlinks:   string(index.SymlinkSkip),
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return cfg, fmt.Errorf("parse config %s:%d:%d: %w", path, row, col, err)
		}
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ValidationError names the setting that made the configuration unusable.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Err: fmt.Errorf(format, args...)}
}

// Validate checks every setting before any work starts. It touches the
// filesystem: the archive must be a directory and the output directory must
// accept new files.
func (c Config) Validate() error {
	if c.ArchivePath == "" {
		return invalid("archive_path", "required")
	}
	info, err := os.Stat(c.ArchivePath)
	if err != nil {
		return &ValidationError{Field: "archive_path", Err: err}
	}
	if !info.IsDir() {
		return invalid("archive_path", "%s is not a directory", c.ArchivePath)
	}

	if c.Output == "" {
		return invalid("output", "required")
	}
	if err := probeWritable(filepath.Dir(c.Output)); err != nil {
		return &ValidationError{Field: "output", Err: err}
	}

	if c.Threads < 1 {
		return invalid("threads", "must be at least 1, got %d", c.Threads)
	}
	if c.BufferSize < 1 {
		return invalid("buffer_size", "must be at least 1, got %d", c.BufferSize)
	}
	if _, err := digest.Lookup(c.Algorithm); err != nil {
		return &ValidationError{Field: "algorithm", Err: err}
	}
	if _, err := c.WalkOptions(); err != nil {
		return err
	}
	return nil
}

// WalkOptions parses the symlink policy and exclude patterns into walker
// options. Skip is left for the caller to fill in.
func (c Config) WalkOptions() (index.Options, error) {
	symlinks, err := index.ParseSymlinkPolicy(c.Symlinks)
	if err != nil {
		return index.Options{}, &ValidationError{Field: "symlinks", Err: err}
	}
	exclude, err := index.NewMatcher(c.Patterns())
	if err != nil {
		return index.Options{}, &ValidationError{Field: "exclude", Err: err}
	}
	return index.Options{Symlinks: symlinks, Exclude: exclude}, nil
}

// Patterns returns the exclude globs including the AppleDouble pattern when
// enabled.
func (c Config) Patterns() []string {
	patterns := append([]string(nil), c.Exclude...)
	if c.SkipAppleDouble {
		patterns = append(patterns, index.AppleDoubleGlob)
	}
	return patterns
}

func probeWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	f, err := os.CreateTemp(dir, ".manifest-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
