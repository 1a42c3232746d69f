// Package config loads .ppscope.toml project files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/arjunmahishi/ppscope/ppscope"
)

// FileName is the name of the project config file.
const FileName = ".ppscope.toml"

// Config is a decoded project config.
type Config struct {
	// Path is the config file, empty when none was found.
	Path string
	// Root is the directory holding the config file.
	Root string

	MainVersion string
	Versions    []string
	Settings    ppscope.Settings
}

type fileConfig struct {
	MainVersion string            `toml:"main_version"`
	Versions    []string          `toml:"versions"`
	Folding     foldingConfig     `toml:"folding"`
	Targets     targetsConfig     `toml:"targets"`
	Inspections inspectionsConfig `toml:"inspections"`
}

type foldingConfig struct {
	AllBlocks      bool `toml:"all_blocks"`
	InactiveBlocks bool `toml:"inactive_blocks"`
}

type targetsConfig struct {
	HideUnmatched bool `toml:"hide_unmatched"`
}

type inspectionsConfig struct {
	NonIndentedNestedIfs         bool `toml:"non_indented_nested_ifs"`
	CommentsNotMatchingIfIndents bool `toml:"comments_not_matching_if_indents"`
}

// Default returns the config used when no file is found.
func Default() Config {
	return Config{Settings: ppscope.DefaultSettings()}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and decodes the config governing startDir. A missing file is not
// an error; the defaults are returned instead.
func Load(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile decodes one config file. Keys that are not set keep their defaults.
func LoadFile(path string) (Config, error) {
	var fc fileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}

	cfg := Default()
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	cfg.MainVersion = strings.TrimSpace(fc.MainVersion)
	cfg.Versions = fc.Versions

	if cfg.MainVersion != "" {
		if _, ok := ppscope.ParseVersion(cfg.MainVersion); !ok {
			return Config{}, fmt.Errorf("%s: main_version %q is not a version", path, cfg.MainVersion)
		}
	}

	s := &cfg.Settings
	if meta.IsDefined("folding", "all_blocks") {
		s.FoldAllBlocksByDefault = fc.Folding.AllBlocks
	}
	if meta.IsDefined("folding", "inactive_blocks") {
		s.FoldInactiveBlocksByDefault = fc.Folding.InactiveBlocks
	}
	if meta.IsDefined("targets", "hide_unmatched") {
		s.HideUnmatchedVersions = fc.Targets.HideUnmatched
	}
	if meta.IsDefined("inspections", "non_indented_nested_ifs") {
		s.NonIndentedNestedIfs = fc.Inspections.NonIndentedNestedIfs
	}
	if meta.IsDefined("inspections", "comments_not_matching_if_indents") {
		s.CommentsNotMatchingIfIndents = fc.Inspections.CommentsNotMatchingIfIndents
	}
	return cfg, nil
}
