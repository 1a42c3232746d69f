package ppscope

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// defaultIgnoreDirs returns the default list of directories to ignore.
// "build" also covers preprocessed output under versions/<v>/build.
func defaultIgnoreDirs() map[string]struct{} {
	return map[string]struct{}{
		".git":         {},
		".hg":          {},
		".svn":         {},
		".jj":          {},
		".gradle":      {},
		".idea":        {},
		"node_modules": {},
		"vendor":       {},
		"dist":         {},
		"build":        {},
		"out":          {},
		"target":       {},
		".cache":       {},
	}
}

// scannerConfig holds scanner configuration.
type scannerConfig struct {
	root string
	// language restricts the scan to one language; nil accepts every
	// registered grammar-backed language.
	language   Language
	ignoreDirs map[string]struct{}
	maxBytes   int64
}

// scanner discovers files for processing.
type scanner struct {
	cfg scannerConfig
}

// newScanner creates a new scanner with the given configuration.
func newScanner(cfg scannerConfig) *scanner {
	if cfg.ignoreDirs == nil {
		cfg.ignoreDirs = defaultIgnoreDirs()
	}
	return &scanner{cfg: cfg}
}

// collect finds all matching files, sorted by display path.
func (s *scanner) collect() ([]FileJob, error) {
	absRoot, err := filepath.Abs(s.cfg.root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	var jobs []FileJob
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if s.shouldIgnoreDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.languageFor(d.Name()) == nil {
			return nil
		}

		if s.cfg.maxBytes > 0 {
			info, err := d.Info()
			if err != nil {
				// Skip files we can't stat
				return nil
			}
			if info.Size() > s.cfg.maxBytes {
				return nil
			}
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			rel = path
		}

		jobs = append(jobs, FileJob{
			AbsPath:     path,
			DisplayPath: filepath.ToSlash(rel),
		})
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].DisplayPath < jobs[j].DisplayPath })
	return jobs, nil
}

// collectSingle returns a single file as a FileJob.
func (s *scanner) collectSingle(filePath string) (FileJob, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return FileJob{}, fmt.Errorf("resolve path: %w", err)
	}

	return FileJob{
		AbsPath:     absPath,
		DisplayPath: filepath.Base(absPath),
	}, nil
}

func (s *scanner) shouldIgnoreDir(name string) bool {
	_, ok := s.cfg.ignoreDirs[name]
	return ok
}

// languageFor returns the language handling name, or nil if unsupported.
func (s *scanner) languageFor(name string) Language {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return nil
	}
	if s.cfg.language != nil {
		for _, e := range s.cfg.language.Extensions() {
			if ext == e {
				return s.cfg.language
			}
		}
		return nil
	}
	lang := ByExtension(ext)
	if lang == nil || lang.TreeSitterLang() == nil {
		return nil
	}
	return lang
}
