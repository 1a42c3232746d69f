package ppscope

import "fmt"

// Position represents a location in a source file.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range represents a byte span [Start, End) in a source file.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Comment is a single line comment taken from a file's token stream.
type Comment struct {
	Text   string `json:"text" msgpack:"t"`
	Start  int    `json:"start" msgpack:"s"`
	End    int    `json:"end" msgpack:"e"`
	Line   int    `json:"line" msgpack:"l"`
	Column int    `json:"column" msgpack:"c"`
}

// Occurrence is a recognized directive together with where it was found.
type Occurrence struct {
	Directive Directive `json:"directive"`
	Start     int       `json:"start"`
	End       int       `json:"end"`
	Line      int       `json:"line"`
	Column    int       `json:"column"`
}

// Marker is a `$$` line: code that is kept commented out for the current version.
type Marker struct {
	Code   string `json:"code"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevWarning is for inspection findings.
	SevWarning Severity = iota + 1
	// SevError is for malformed directives.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// MarshalText lets severities render as words in JSON.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Code classifies diagnostics.
type Code string

const (
	CodeUnknownDirective Code = "unknown-directive"
	CodeInvalidCondition Code = "invalid-condition"
	CodeMissingArgument  Code = "missing-argument"
	CodeUnexpectedArgs   Code = "unexpected-arguments"
	CodeMisplaced        Code = "misplaced-directive"
	CodeUnterminated     Code = "unterminated-block"
	CodeNestedIndent     Code = "nested-if-indent"
	CodeMarkerIndent     Code = "marker-indent"
)

// Diagnostic reports a problem with directive usage. When EOL is set the
// diagnostic is anchored to the end of the line rather than the range.
type Diagnostic struct {
	File     string   `json:"file,omitempty"`
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
	Range    Range    `json:"range"`
	Position Position `json:"position"`
	EOL      bool     `json:"eol,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Position.Line, d.Position.Column, d.Severity, d.Message)
}

// FoldRegion is a foldable span covering one branch of a block.
type FoldRegion struct {
	Start              int    `json:"start"`
	End                int    `json:"end"`
	StartLine          int    `json:"start_line"`
	EndLine            int    `json:"end_line"`
	Placeholder        string `json:"placeholder"`
	CollapsedByDefault bool   `json:"collapsed_by_default"`
}

// FileJob represents a file to be processed.
type FileJob struct {
	AbsPath     string
	DisplayPath string
}
