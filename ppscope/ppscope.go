package ppscope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

const defaultMaxBytes = 2 * 1024 * 1024

// FileReport holds the diagnostics found in one file.
type FileReport struct {
	File        string       `json:"file"`
	Language    string       `json:"language"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Check lexes, matches and inspects every supported file under a path, or a
// single file, and reports the diagnostics of each.
func Check(ctx context.Context, opts CheckOptions) ([]FileReport, error) {
	if opts.Path == "" {
		opts.Path = "."
	}
	if opts.Jobs == 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.MaxBytes == 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	logger := loggerOrDiscard(opts.Logger)

	var language Language
	if opts.Language != "" {
		language = Get(opts.Language)
		if language == nil {
			return nil, errors.New(opts.Language + " language not registered")
		}
	}

	var files []FileJob
	if opts.File != "" {
		if language == nil {
			l, err := resolveLanguage("", opts.File)
			if err != nil {
				return nil, err
			}
			language = l
		}
		sc := newScanner(scannerConfig{language: language})
		job, err := sc.collectSingle(opts.File)
		if err != nil {
			return nil, err
		}
		files = []FileJob{job}
	} else {
		sc := newScanner(scannerConfig{
			root:     opts.Path,
			language: language,
			maxBytes: opts.MaxBytes,
		})
		var err error
		files, err = sc.collect()
		if err != nil {
			return nil, err
		}
	}
	logger.Debug("collected files", "count", len(files), "jobs", opts.Jobs)

	if len(files) == 0 {
		return []FileReport{}, nil
	}

	resolve := func(job FileJob) Language {
		if language != nil {
			return language
		}
		l, _ := resolveLanguage("", job.AbsPath)
		return l
	}

	return runWorkers(ctx, files, opts.Jobs, resolve, opts.Cache, logger, func(job FileJob, a *Analysis) FileReport {
		diags := a.Diagnostics(opts.Settings)
		for i := range diags {
			diags[i].File = job.DisplayPath
		}
		return FileReport{File: job.DisplayPath, Language: a.Language.Name(), Diagnostics: diags}
	})
}

// runWorkers analyzes files on a bounded pool. Each worker owns its parsers,
// since tree-sitter parsers are not safe for concurrent use. Results keep the
// order of files; files that cannot be read or parsed are skipped.
func runWorkers[T any](
	ctx context.Context,
	files []FileJob,
	jobs int,
	resolve func(FileJob) Language,
	cache *Cache,
	logger *slog.Logger,
	process func(job FileJob, a *Analysis) T,
) ([]T, error) {
	if len(files) == 0 {
		return []T{}, nil
	}
	logger = loggerOrDiscard(logger)

	workerCount := jobs
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(files) {
		workerCount = len(files)
	}

	results := make([]T, len(files))
	done := make([]bool, len(files))
	jobQueue := make(chan int)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobQueue)
		for i := range files {
			select {
			case jobQueue <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workerCount; w++ {
		g.Go(func() error {
			parsers := make(map[string]*parser)
			for i := range jobQueue {
				if err := ctx.Err(); err != nil {
					return err
				}
				job := files[i]
				language := resolve(job)
				p, ok := parsers[language.Name()]
				if !ok {
					p = newParser(language)
					parsers[language.Name()] = p
				}
				source, err := os.ReadFile(job.AbsPath)
				if err != nil {
					logger.Debug("skipping file", "file", job.DisplayPath, "err", err)
					continue
				}
				comments, err := cache.comments(p, source)
				if err != nil {
					logger.Debug("skipping file", "file", job.DisplayPath, "err", err)
					continue
				}
				results[i] = process(job, NewAnalysis(source, comments, language))
				done[i] = true
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(files))
	for i, r := range results {
		if done[i] {
			out = append(out, r)
		}
	}
	return out, nil
}

// ContextResult is the output format for a context query.
type ContextResult struct {
	File     string          `json:"file"`
	Offset   int             `json:"offset"`
	Position Position        `json:"position"`
	Found    bool            `json:"found"`
	True     []Directive     `json:"true"`
	False    []Directive     `json:"false"`
	Versions []VersionResult `json:"versions,omitempty"`
}

// VersionResult reports whether one version satisfies a context.
type VersionResult struct {
	Name    string  `json:"name"`
	Version Version `json:"version"`
	Active  bool    `json:"active"`
}

// Context resolves the conditions governing a position and optionally tests
// versions against them. A position outside every block is active for all.
func Context(opts ContextOptions) (ContextResult, error) {
	a, err := analyzeFile(opts.FileOptions)
	if err != nil {
		return ContextResult{}, err
	}
	offset, err := a.resolve(opts.At)
	if err != nil {
		return ContextResult{}, err
	}

	cc, found := a.Context(offset)
	result := ContextResult{
		File:     opts.File,
		Offset:   offset,
		Position: a.Position(offset),
		Found:    found,
		True:     nonNil(cc.True),
		False:    nonNil(cc.False),
	}

	tester := newTester(opts.Logger, opts.UnknownIsInactive)
	for _, name := range opts.Versions {
		v := MustParseVersion(name)
		result.Versions = append(result.Versions, VersionResult{
			Name:    name,
			Version: v,
			Active:  !found || tester.Test(cc, v),
		})
	}
	return result, nil
}

// Folds returns the fold regions of a file.
func Folds(opts FoldOptions) ([]FoldRegion, error) {
	a, err := analyzeFile(opts.FileOptions)
	if err != nil {
		return nil, err
	}
	var target *Version
	if opts.Version != "" {
		v, ok := ParseVersion(opts.Version)
		if !ok {
			return nil, fmt.Errorf("invalid version %q", opts.Version)
		}
		target = &v
	}
	regions := a.Folds(opts.Settings, target, newTester(opts.Logger, false))
	if regions == nil {
		regions = []FoldRegion{}
	}
	return regions, nil
}

// BlocksResult is the output format for the block structure of a file.
type BlocksResult struct {
	File        string       `json:"file"`
	Occurrences []Occurrence `json:"occurrences"`
	Blocks      []Block      `json:"blocks"`
	Ignored     []int        `json:"ignored,omitempty"`
	Markers     []Marker     `json:"markers,omitempty"`
}

// Blocks returns the directive occurrences of a file and how they pair up.
func Blocks(opts BlocksOptions) (BlocksResult, error) {
	a, err := analyzeFile(opts.FileOptions)
	if err != nil {
		return BlocksResult{}, err
	}
	return BlocksResult{
		File:        opts.File,
		Occurrences: nonNil(a.Scan.Occurrences),
		Blocks:      nonNil(a.Matching.Blocks),
		Ignored:     a.Matching.Ignored,
		Markers:     a.Scan.Markers,
	}, nil
}

// TargetsResult is the output format for a targets query.
type TargetsResult struct {
	File    string   `json:"file"`
	Found   bool     `json:"found"`
	Targets []Target `json:"targets"`
}

// Targets sorts the candidate versions and marks those whose conditions at a
// position are satisfied. With HideUnmatchedVersions set, the rest are dropped.
func Targets(opts TargetsOptions) (TargetsResult, error) {
	a, err := analyzeFile(opts.FileOptions)
	if err != nil {
		return TargetsResult{}, err
	}
	offset, err := a.resolve(opts.At)
	if err != nil {
		return TargetsResult{}, err
	}

	cc, found := a.Context(offset)
	tester := newTester(opts.Logger, opts.UnknownIsInactive)

	targets := make([]Target, 0, len(opts.Versions))
	for _, name := range opts.Versions {
		t := NewTarget(name)
		if found {
			t.Matched = tester.Test(cc, t.Version)
		}
		if !t.Matched && opts.Settings.HideUnmatchedVersions {
			continue
		}
		targets = append(targets, t)
	}
	SortTargets(targets)
	return TargetsResult{File: opts.File, Found: found, Targets: targets}, nil
}

// ToggleBlock returns the file content with the branch at a position toggled.
func ToggleBlock(opts ToggleOptions) (string, error) {
	a, err := analyzeFile(opts.FileOptions)
	if err != nil {
		return "", err
	}
	offset, err := a.resolve(opts.At)
	if err != nil {
		return "", err
	}
	return a.ToggleBlock(offset)
}

// ToggleLines returns the file content with a line range toggled.
func ToggleLines(opts ToggleLinesOptions) (string, error) {
	a, err := analyzeFile(opts.FileOptions)
	if err != nil {
		return "", err
	}
	return a.ToggleLines(opts.StartLine, opts.EndLine)
}

// Eval evaluates a condition against a version string.
func Eval(condition, version string, logger *slog.Logger) (Tristate, error) {
	v, ok := ParseVersion(version)
	if !ok {
		return Unknown, fmt.Errorf("invalid version %q", version)
	}
	return Evaluator{Logger: logger}.Evaluate(condition, v), nil
}

func analyzeFile(opts FileOptions) (*Analysis, error) {
	if opts.File == "" {
		return nil, errors.New("file is required")
	}
	language, err := resolveLanguage(opts.Language, opts.File)
	if err != nil {
		return nil, err
	}
	source, err := os.ReadFile(opts.File)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	comments, err := opts.Cache.comments(newParser(language), source)
	if err != nil {
		return nil, err
	}
	loggerOrDiscard(opts.Logger).Debug("analyzed file",
		"file", opts.File, "language", language.Name(), "comments", len(comments))
	return NewAnalysis(source, comments, language), nil
}

// resolveLanguage picks the named language, or the one registered for the
// file's extension. Unknown extensions are treated as plain text.
func resolveLanguage(name, file string) (Language, error) {
	if name != "" {
		language := Get(name)
		if language == nil {
			return nil, errors.New(name + " language not registered")
		}
		return language, nil
	}
	if language := ByExtension(strings.ToLower(filepath.Ext(file))); language != nil {
		return language, nil
	}
	return Text{}, nil
}

// resolve turns a query location into a byte offset.
func (a *Analysis) resolve(at Location) (int, error) {
	if at.Line > 0 {
		return a.Offset(Position{Line: at.Line, Column: at.Column})
	}
	if at.Offset < 0 || at.Offset > len(a.Source) {
		return 0, fmt.Errorf("offset %d out of range (file has %d bytes)", at.Offset, len(a.Source))
	}
	return at.Offset, nil
}

func newTester(logger *slog.Logger, unknownIsInactive bool) Tester {
	return Tester{
		Evaluator:     Evaluator{Logger: logger},
		FailureResult: !unknownIsInactive,
	}
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
