package ppscope

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies a directive variant.
type Kind uint8

const (
	KindIf Kind = iota + 1
	KindIfDef
	KindElseIf
	KindElse
	KindEndIf
)

func (k Kind) String() string {
	switch k {
	case KindIf:
		return "if"
	case KindIfDef:
		return "ifdef"
	case KindElseIf:
		return "elseif"
	case KindElse:
		return "else"
	case KindEndIf:
		return "endif"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText renders the keyword.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Directive is a parsed preprocessor directive. Condition is set for
// if/elseif, Identifier for ifdef; else and endif carry no payload.
type Directive struct {
	Kind       Kind
	Condition  string
	Identifier string
}

func If(condition string) Directive     { return Directive{Kind: KindIf, Condition: condition} }
func IfDef(identifier string) Directive { return Directive{Kind: KindIfDef, Identifier: identifier} }
func ElseIf(condition string) Directive { return Directive{Kind: KindElseIf, Condition: condition} }
func Else() Directive                   { return Directive{Kind: KindElse} }
func EndIf() Directive                  { return Directive{Kind: KindEndIf} }

// Opens reports whether the directive starts a new block.
func (d Directive) Opens() bool {
	return d.Kind == KindIf || d.Kind == KindIfDef
}

func (d Directive) String() string {
	switch d.Kind {
	case KindIf, KindElseIf:
		return "#" + d.Kind.String() + " " + d.Condition
	case KindIfDef:
		return "#ifdef " + d.Identifier
	case KindElse, KindEndIf:
		return "#" + d.Kind.String()
	}
	return "#?"
}

func (d Directive) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind       Kind   `json:"kind"`
		Condition  string `json:"condition,omitempty"`
		Identifier string `json:"identifier,omitempty"`
	}{d.Kind, d.Condition, d.Identifier}
	return json.Marshal(out)
}

// Problem is a lexical issue found while classifying a directive.
type Problem struct {
	Code    Code
	Message string
	EOL     bool
}

// ParseDirective classifies the text following the directive prefix
// (e.g. "if MC>=11900"). ok is false when the keyword is not recognized;
// a directive with a Problem is still returned so block matching stays in sync.
func ParseDirective(body string) (d Directive, problem *Problem, ok bool) {
	keyword, rest := splitKeyword(body)
	switch keyword {
	case "if", "elseif":
		kind := KindIf
		if keyword == "elseif" {
			kind = KindElseIf
		}
		d = Directive{Kind: kind, Condition: rest}
		if rest == "" {
			problem = &Problem{Code: CodeMissingArgument, Message: fmt.Sprintf("%q requires a condition", keyword), EOL: true}
		}
		return d, problem, true
	case "ifdef":
		d = IfDef(rest)
		if rest == "" {
			problem = &Problem{Code: CodeMissingArgument, Message: `"ifdef" requires an identifier`, EOL: true}
		}
		return d, problem, true
	case "else", "endif":
		d = Else()
		if keyword == "endif" {
			d = EndIf()
		}
		if rest != "" {
			problem = &Problem{Code: CodeUnexpectedArgs, Message: fmt.Sprintf("%q should not have arguments", keyword)}
		}
		return d, problem, true
	}
	return Directive{}, &Problem{
		Code:    CodeUnknownDirective,
		Message: fmt.Sprintf("Unknown preprocessor directive %q", keyword),
	}, false
}

// splitKeyword splits off the first word and collapses whitespace in the rest.
func splitKeyword(body string) (string, string) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
