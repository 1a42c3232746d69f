package ppscope

import "log/slog"

// FileOptions selects a single file to analyze.
type FileOptions struct {
	// File is the file to analyze (required).
	File string

	// Language forces a language (e.g., "java").
	// If empty, it is picked by file extension, falling back to "text".
	Language string

	// Cache memoizes comment extraction. Optional.
	Cache *Cache

	// Logger receives debug output. Optional.
	Logger *slog.Logger
}

// Location is a query position. If Line is set, Line and Column are used
// (both 1-based); otherwise Offset is a byte offset.
type Location struct {
	Offset int
	Line   int
	Column int
}

// CheckOptions configures the Check function.
type CheckOptions struct {
	// Path is the root directory to scan for files.
	// If empty, current directory is used.
	Path string

	// File is a single file to check.
	// If set, Path is ignored.
	File string

	// Language restricts the scan to one language.
	// If empty, every grammar-backed language is scanned.
	Language string

	// Settings toggles the indentation inspections.
	Settings Settings

	// Jobs is the number of parallel workers.
	// If 0, defaults to number of CPUs.
	Jobs int

	// MaxBytes skips files larger than this size.
	// If 0, Check uses a 2 MiB limit.
	MaxBytes int64

	Cache  *Cache
	Logger *slog.Logger
}

// ContextOptions configures the Context function.
type ContextOptions struct {
	FileOptions

	// At is the position to resolve.
	At Location

	// Versions are tested against the resolved context, if any.
	Versions []string

	// UnknownIsInactive makes conditions that cannot be evaluated count as
	// inactive. By default they count as active.
	UnknownIsInactive bool
}

// FoldOptions configures the Folds function.
type FoldOptions struct {
	FileOptions

	// Settings decides which regions start collapsed.
	Settings Settings

	// Version is the version the file is being edited for (e.g. the main
	// project version). Inactive branches are only known when it is set.
	Version string
}

// BlocksOptions configures the Blocks function.
type BlocksOptions struct {
	FileOptions
}

// TargetsOptions configures the Targets function.
type TargetsOptions struct {
	FileOptions

	// At is the position whose conditions the targets are tested against.
	At Location

	// Versions are the candidate version names, e.g. "1.21.2-fabric".
	Versions []string

	// Settings.HideUnmatchedVersions drops targets that fail the conditions.
	Settings Settings

	UnknownIsInactive bool
}

// ToggleOptions configures the ToggleBlock function.
type ToggleOptions struct {
	FileOptions

	// At is any position inside the branch to toggle.
	At Location
}

// ToggleLinesOptions configures the ToggleLines function.
type ToggleLinesOptions struct {
	FileOptions

	// StartLine and EndLine are 1-based and inclusive.
	StartLine int
	EndLine   int
}
