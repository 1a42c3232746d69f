package ppscope

import (
	"fmt"
	"sort"
	"strings"
)

// Settings are the user options that shape how results are interpreted.
// They never change how conditions are evaluated.
type Settings struct {
	FoldAllBlocksByDefault      bool
	FoldInactiveBlocksByDefault bool
	HideUnmatchedVersions       bool

	// Inspections
	NonIndentedNestedIfs         bool
	CommentsNotMatchingIfIndents bool
}

// DefaultSettings mirrors the defaults of the editor plugin.
func DefaultSettings() Settings {
	return Settings{
		FoldAllBlocksByDefault:       false,
		FoldInactiveBlocksByDefault:  true,
		HideUnmatchedVersions:        false,
		NonIndentedNestedIfs:         true,
		CommentsNotMatchingIfIndents: true,
	}
}

// Analysis is the directive structure of one text snapshot. It is immutable
// once built; rebuild it after every edit.
type Analysis struct {
	Source   []byte
	Language Language
	Scan     Scan
	Matching Matching

	lineStarts []int
}

// NewAnalysis lexes and matches the directives found in comments.
func NewAnalysis(source []byte, comments []Comment, language Language) *Analysis {
	scan := Lex(comments, language.LineCommentPrefix())
	a := &Analysis{
		Source:   source,
		Language: language,
		Scan:     scan,
		Matching: Match(scan.Occurrences),
	}
	a.lineStarts = append(a.lineStarts, 0)
	for i, b := range source {
		if b == '\n' {
			a.lineStarts = append(a.lineStarts, i+1)
		}
	}
	return a
}

// Analyze parses source for language and builds its Analysis.
func Analyze(source []byte, language Language) (*Analysis, error) {
	comments, err := newParser(language).comments(source)
	if err != nil {
		return nil, err
	}
	return NewAnalysis(source, comments, language), nil
}

func (a *Analysis) prefix() string {
	return a.Language.LineCommentPrefix()
}

// Context resolves the conditions governing offset.
func (a *Analysis) Context(offset int) (ConditionContext, bool) {
	return ResolveContext(offset, a.Matching.Valid(a.Scan.Occurrences))
}

// Diagnostics returns lexical, nesting and enabled inspection diagnostics
// ordered by position.
func (a *Analysis) Diagnostics(s Settings) []Diagnostic {
	out := make([]Diagnostic, 0, len(a.Scan.Diagnostics)+len(a.Matching.Diagnostics))
	out = append(out, a.Scan.Diagnostics...)
	out = append(out, a.Matching.Diagnostics...)
	out = append(out, a.inspect(s)...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Range.Start != out[j].Range.Start {
			return out[i].Range.Start < out[j].Range.Start
		}
		return out[i].Severity > out[j].Severity
	})
	return out
}

// Folds returns one region per branch of every closed block. When target is
// non-nil, inactive branches are collapsed if the settings ask for it.
func (a *Analysis) Folds(s Settings, target *Version, tester Tester) []FoldRegion {
	valid := a.Matching.Valid(a.Scan.Occurrences)
	var regions []FoldRegion
	for _, b := range a.Matching.Blocks {
		if !b.Closed() {
			continue
		}
		bounds := b.Boundaries()
		for i := 0; i+1 < len(bounds); i++ {
			from, to := a.Scan.Occurrences[bounds[i]], a.Scan.Occurrences[bounds[i+1]]
			end := to.End
			if i+2 < len(bounds) {
				end = a.trimBack(from.Start, to.Start)
			}
			region := FoldRegion{
				Start:       from.Start,
				End:         end,
				StartLine:   from.Line,
				EndLine:     a.Position(end).Line,
				Placeholder: strings.TrimPrefix(string(a.Source[from.Start:from.End]), a.prefix()),
			}
			if region.EndLine <= region.StartLine {
				continue
			}

			collapsed := s.FoldAllBlocksByDefault
			if !collapsed && s.FoldInactiveBlocksByDefault && target != nil {
				if ctx, ok := ResolveContext(from.Start, valid); ok {
					collapsed = !tester.Test(ctx, *target)
				}
			}
			region.CollapsedByDefault = collapsed
			regions = append(regions, region)
		}
	}
	sort.SliceStable(regions, func(i, j int) bool { return regions[i].Start < regions[j].Start })
	return regions
}

// trimBack moves end left past whitespace, stopping at floor.
func (a *Analysis) trimBack(floor, end int) int {
	for end > floor {
		switch a.Source[end-1] {
		case ' ', '\t', '\r', '\n':
			end--
			continue
		}
		break
	}
	return end
}

// Position converts a byte offset to a 1-based line and column.
func (a *Analysis) Position(offset int) Position {
	line := sort.Search(len(a.lineStarts), func(i int) bool { return a.lineStarts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line + 1, Column: offset - a.lineStarts[line] + 1}
}

// Offset converts a 1-based line and column to a byte offset.
func (a *Analysis) Offset(pos Position) (int, error) {
	if pos.Line < 1 || pos.Line > len(a.lineStarts) {
		return 0, fmt.Errorf("line %d out of range (file has %d lines)", pos.Line, len(a.lineStarts))
	}
	col := pos.Column
	if col < 1 {
		col = 1
	}
	lineEnd := len(a.Source)
	if pos.Line < len(a.lineStarts) {
		lineEnd = a.lineStarts[pos.Line] - 1
	}
	offset := a.lineStarts[pos.Line-1] + col - 1
	if offset > lineEnd {
		offset = lineEnd
	}
	return offset, nil
}

// LineCount returns the number of lines in the source.
func (a *Analysis) LineCount() int {
	return len(a.lineStarts)
}
