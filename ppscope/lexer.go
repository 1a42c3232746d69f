package ppscope

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	directiveMark = "#"
	markerMark    = "$$"
)

var (
	termComparisonPattern = regexp.MustCompile(`^[^=!<>]*[^=!<>\s][^=!<>]*(==|!=|<=|>=|<|>)[^=!<>]*[^=!<>\s][^=!<>]*$`)
	termIdentifierPattern = regexp.MustCompile(`^!?[A-Za-z0-9-]+$`)
)

// Scan is the lexed view of one file: directives and markers in source order.
type Scan struct {
	Occurrences []Occurrence
	Markers     []Marker
	Diagnostics []Diagnostic
}

// Lex classifies comments that start with prefix+"#" or prefix+"$$".
// Other comments are skipped. Unknown directives are reported and dropped.
func Lex(comments []Comment, prefix string) Scan {
	var scan Scan
	for _, c := range comments {
		if !strings.HasPrefix(c.Text, prefix) {
			continue
		}
		rest := c.Text[len(prefix):]

		switch {
		case strings.HasPrefix(rest, directiveMark):
			d, problem, ok := ParseDirective(rest[len(directiveMark):])
			if problem != nil {
				scan.Diagnostics = append(scan.Diagnostics, commentDiagnostic(c, SevError, problem.Code, problem.Message, problem.EOL))
			}
			if !ok {
				continue
			}
			if problem == nil && (d.Kind == KindIf || d.Kind == KindElseIf) {
				scan.Diagnostics = append(scan.Diagnostics, invalidTerms(c, len(prefix)+len(directiveMark))...)
			}
			scan.Occurrences = append(scan.Occurrences, Occurrence{
				Directive: d,
				Start:     c.Start,
				End:       c.End,
				Line:      c.Line,
				Column:    c.Column,
			})
		case strings.HasPrefix(rest, markerMark):
			scan.Markers = append(scan.Markers, Marker{
				Code:   strings.TrimPrefix(rest[len(markerMark):], " "),
				Start:  c.Start,
				End:    c.End,
				Line:   c.Line,
				Column: c.Column,
			})
		}
	}
	return scan
}

func commentDiagnostic(c Comment, sev Severity, code Code, msg string, eol bool) Diagnostic {
	d := Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Range:    Range{Start: c.Start, End: c.End},
		Position: Position{Line: c.Line, Column: c.Column},
		EOL:      eol,
	}
	if eol {
		d.Range.Start = c.End
		d.Position.Column = c.Column + (c.End - c.Start)
	}
	return d
}

// invalidTerms reports each &&/|| term of an if or elseif condition that is
// neither a comparison nor an identifier. bodyStart is where the keyword
// begins in the comment text.
func invalidTerms(c Comment, bodyStart int) []Diagnostic {
	body := c.Text[bodyStart:]
	lead := len(body) - len(strings.TrimLeftFunc(body, unicode.IsSpace))
	keywordEnd := strings.IndexFunc(body[lead:], unicode.IsSpace)
	if keywordEnd < 0 {
		return nil
	}
	pos := bodyStart + lead + keywordEnd
	terms, _ := splitChain(c.Text[pos:])

	var out []Diagnostic
	for _, raw := range terms {
		term := strings.TrimSpace(raw)
		if !termComparisonPattern.MatchString(term) && !termIdentifierPattern.MatchString(term) {
			at := pos + len(raw) - len(strings.TrimLeftFunc(raw, unicode.IsSpace))
			if term == "" {
				at = pos
			}
			out = append(out, Diagnostic{
				Severity: SevError,
				Code:     CodeInvalidCondition,
				Message:  fmt.Sprintf("Invalid condition %q", term),
				Range:    Range{Start: c.Start + at, End: c.Start + at + len(term)},
				Position: Position{Line: c.Line, Column: c.Column + at},
			})
		}
		pos += len(raw) + len("&&")
	}
	return out
}
