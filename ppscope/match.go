package ppscope

import (
	"fmt"
	"math"
)

// Block is one if/ifdef block. All fields index into the occurrence list
// (Opener, Branches, Closer) or the block list (Parent, Children).
type Block struct {
	Opener   int   `json:"opener"`
	Branches []int `json:"branches,omitempty"`
	Closer   int   `json:"closer"`
	Parent   int   `json:"parent"`
	Depth    int   `json:"depth"`
	Children []int `json:"children,omitempty"`
}

// Closed reports whether the block has a matching endif.
func (b Block) Closed() bool {
	return b.Closer >= 0
}

// Boundaries returns the opener, every elseif/else and the closer, in order.
func (b Block) Boundaries() []int {
	out := make([]int, 0, len(b.Branches)+2)
	out = append(out, b.Opener)
	out = append(out, b.Branches...)
	if b.Closed() {
		out = append(out, b.Closer)
	}
	return out
}

// Last returns the final occurrence index that belongs to the block.
func (b Block) Last() int {
	if b.Closed() {
		return b.Closer
	}
	if len(b.Branches) > 0 {
		return b.Branches[len(b.Branches)-1]
	}
	return b.Opener
}

// Matching pairs openers with their branches and closers.
type Matching struct {
	Blocks      []Block      `json:"blocks"`
	Ignored     []int        `json:"ignored,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

type scope uint8

const (
	scopeIf scope = iota + 1
	scopeElse
)

func (s scope) String() string {
	switch s {
	case scopeIf:
		return "IF"
	case scopeElse:
		return "ELSE"
	}
	return "none"
}

type openBlock struct {
	block int
	scope scope
}

// Match runs a single forward scan over occs with an explicit stack of open
// blocks. Misplaced elseif/else/endif are reported and ignored without touching
// the stack; blocks still open at the end are reported as unterminated.
func Match(occs []Occurrence) Matching {
	m := Matching{}
	var stack []openBlock

	top := func() scope {
		if len(stack) == 0 {
			return 0
		}
		return stack[len(stack)-1].scope
	}
	ignore := func(i int, msg string) {
		m.Ignored = append(m.Ignored, i)
		m.Diagnostics = append(m.Diagnostics, occurrenceDiagnostic(occs[i], CodeMisplaced, msg))
	}

	for i, occ := range occs {
		switch occ.Directive.Kind {
		case KindIf, KindIfDef:
			parent := -1
			if len(stack) > 0 {
				parent = stack[len(stack)-1].block
			}
			m.Blocks = append(m.Blocks, Block{
				Opener: i,
				Closer: -1,
				Parent: parent,
				Depth:  len(stack),
			})
			idx := len(m.Blocks) - 1
			if parent >= 0 {
				m.Blocks[parent].Children = append(m.Blocks[parent].Children, idx)
			}
			stack = append(stack, openBlock{block: idx, scope: scopeIf})

		case KindElseIf:
			if top() != scopeIf {
				ignore(i, fmt.Sprintf(`"elseif" must follow "if" or "elseif" (last in scope: %s)`, top()))
				continue
			}
			b := &m.Blocks[stack[len(stack)-1].block]
			b.Branches = append(b.Branches, i)

		case KindElse:
			if top() != scopeIf {
				ignore(i, fmt.Sprintf(`"else" must follow "if" (last in scope: %s)`, top()))
				continue
			}
			open := &stack[len(stack)-1]
			b := &m.Blocks[open.block]
			b.Branches = append(b.Branches, i)
			open.scope = scopeElse

		case KindEndIf:
			if len(stack) == 0 {
				ignore(i, fmt.Sprintf(`"endif" must follow "if" or "else" (last in scope: %s)`, top()))
				continue
			}
			m.Blocks[stack[len(stack)-1].block].Closer = i
			stack = stack[:len(stack)-1]
		}
	}

	for _, open := range stack {
		opener := occs[m.Blocks[open.block].Opener]
		m.Diagnostics = append(m.Diagnostics, occurrenceDiagnostic(opener, CodeUnterminated,
			fmt.Sprintf(`unterminated %q block`, opener.Directive.Kind)))
	}

	return m
}

// Valid returns occs without the occurrences the matcher ignored.
func (m Matching) Valid(occs []Occurrence) []Occurrence {
	if len(m.Ignored) == 0 {
		return occs
	}
	skip := make(map[int]struct{}, len(m.Ignored))
	for _, i := range m.Ignored {
		skip[i] = struct{}{}
	}
	out := make([]Occurrence, 0, len(occs)-len(m.Ignored))
	for i, occ := range occs {
		if _, ok := skip[i]; !ok {
			out = append(out, occ)
		}
	}
	return out
}

// InnerRanges returns the [opener, last] occurrence index ranges of the
// blocks nested directly inside block b.
func (m Matching) InnerRanges(b int) [][2]int {
	children := m.Blocks[b].Children
	out := make([][2]int, 0, len(children))
	for _, c := range children {
		out = append(out, [2]int{m.Blocks[c].Opener, m.Blocks[c].Last()})
	}
	return out
}

// BranchAt finds the innermost block containing offset and the branch within it.
// The branch is reported as the pair of boundary occurrence indices around offset.
// ok is false when offset is outside every block or the block has no following boundary.
func (m Matching) BranchAt(offset int, occs []Occurrence) (block int, from int, to int, ok bool) {
	block = -1
	for i, b := range m.Blocks {
		end := math.MaxInt
		if b.Closed() {
			end = occs[b.Closer].End
		}
		if occs[b.Opener].Start > offset || offset >= end {
			continue
		}
		if block < 0 || b.Depth > m.Blocks[block].Depth {
			block = i
		}
	}
	if block < 0 {
		return -1, 0, 0, false
	}

	bounds := m.Blocks[block].Boundaries()
	for i := 0; i+1 < len(bounds); i++ {
		last := i+2 == len(bounds) && m.Blocks[block].Closed()
		if occs[bounds[i+1]].Start > offset || last {
			return block, bounds[i], bounds[i+1], true
		}
	}
	return block, 0, 0, false
}

func occurrenceDiagnostic(o Occurrence, code Code, msg string) Diagnostic {
	return Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  msg,
		Range:    Range{Start: o.Start, End: o.End},
		Position: Position{Line: o.Line, Column: o.Column},
	}
}
