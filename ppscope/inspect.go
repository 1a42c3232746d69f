package ppscope

import "math"

// inspect runs the indentation inspections enabled in s.
func (a *Analysis) inspect(s Settings) []Diagnostic {
	var out []Diagnostic
	occs := a.Scan.Occurrences

	if s.NonIndentedNestedIfs {
		for _, b := range a.Matching.Blocks {
			if b.Parent < 0 {
				continue
			}
			inner := occs[b.Opener]
			outer := occs[a.Matching.Blocks[b.Parent].Opener]
			if inner.Column <= outer.Column {
				d := occurrenceDiagnostic(inner, CodeNestedIndent,
					`nested "`+inner.Directive.Kind.String()+`" should be indented more than its enclosing "`+outer.Directive.Kind.String()+`"`)
				d.Severity = SevWarning
				out = append(out, d)
			}
		}
	}

	if s.CommentsNotMatchingIfIndents {
		for _, m := range a.Scan.Markers {
			b := a.innermostBlock(m.Start)
			if b < 0 {
				continue
			}
			opener := occs[a.Matching.Blocks[b].Opener]
			if m.Column != opener.Column {
				out = append(out, Diagnostic{
					Severity: SevWarning,
					Code:     CodeMarkerIndent,
					Message:  `"$$" comment does not match the indent of its "` + opener.Directive.Kind.String() + `"`,
					Range:    Range{Start: m.Start, End: m.End},
					Position: Position{Line: m.Line, Column: m.Column},
				})
			}
		}
	}

	return out
}

// innermostBlock returns the deepest block spanning offset, or -1.
func (a *Analysis) innermostBlock(offset int) int {
	best := -1
	for i, b := range a.Matching.Blocks {
		end := math.MaxInt
		if b.Closed() {
			end = a.Scan.Occurrences[b.Closer].Start
		}
		if a.Scan.Occurrences[b.Opener].End > offset || offset >= end {
			continue
		}
		if best < 0 || b.Depth > a.Matching.Blocks[best].Depth {
			best = i
		}
	}
	return best
}
