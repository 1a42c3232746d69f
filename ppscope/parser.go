package ppscope

import (
	"bytes"
	"fmt"
	"strings"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
)

// parser extracts line comments from source files for a specific language.
type parser struct {
	parser *sitter.Parser
	lang   Language
}

// newParser creates a new parser for the given language.
func newParser(language Language) *parser {
	p := &parser{lang: language}
	if grammar := language.TreeSitterLang(); grammar != nil {
		p.parser = sitter.NewParser()
		p.parser.SetLanguage(grammar)
	}
	return p
}

// comments returns the file's comments in source order.
func (p *parser) comments(source []byte) ([]Comment, error) {
	if p.parser == nil {
		return scanLineComments(source, p.lang.LineCommentPrefix()), nil
	}
	tree := p.parser.Parse(nil, source)
	if tree == nil {
		return nil, fmt.Errorf("parse %s source", p.lang.Name())
	}
	var out []Comment
	if err := collectComments(tree.RootNode(), source, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// collectComments walks the syntax tree depth first. Comments are extras in
// every grammar, so they can hang off any node.
func collectComments(n *sitter.Node, source []byte, out *[]Comment) error {
	if n == nil {
		return nil
	}
	if strings.Contains(n.Type(), "comment") {
		c, err := commentFromNode(n, source)
		if err != nil {
			return err
		}
		*out = append(*out, c)
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if err := collectComments(n.Child(i), source, out); err != nil {
			return err
		}
	}
	return nil
}

func commentFromNode(n *sitter.Node, source []byte) (Comment, error) {
	start, err := safecast.Conv[int](n.StartByte())
	if err != nil {
		return Comment{}, fmt.Errorf("comment start offset: %w", err)
	}
	end, err := safecast.Conv[int](n.EndByte())
	if err != nil {
		return Comment{}, fmt.Errorf("comment end offset: %w", err)
	}
	point := n.StartPoint()
	line, err := safecast.Conv[int](point.Row)
	if err != nil {
		return Comment{}, fmt.Errorf("comment line: %w", err)
	}
	col, err := safecast.Conv[int](point.Column)
	if err != nil {
		return Comment{}, fmt.Errorf("comment column: %w", err)
	}
	content := n.Content(source)
	text := strings.TrimRight(content, "\r\n")
	return Comment{
		Text:   text,
		Start:  start,
		End:    end - (len(content) - len(text)),
		Line:   line + 1,
		Column: col + 1,
	}, nil
}

// scanLineComments finds comments that start a line (after indentation).
func scanLineComments(source []byte, prefix string) []Comment {
	var out []Comment
	offset := 0
	line := 1
	for offset <= len(source) {
		next := bytes.IndexByte(source[offset:], '\n')
		lineEnd := len(source)
		if next >= 0 {
			lineEnd = offset + next
		}
		text := strings.TrimRight(string(source[offset:lineEnd]), "\r")
		trimmed := strings.TrimLeft(text, " \t")
		if strings.HasPrefix(trimmed, prefix) {
			indent := len(text) - len(trimmed)
			body := strings.TrimRight(trimmed, " \t")
			out = append(out, Comment{
				Text:   body,
				Start:  offset + indent,
				End:    offset + indent + len(body),
				Line:   line,
				Column: indent + 1,
			})
		}
		if next < 0 {
			break
		}
		offset = lineEnd + 1
		line++
	}
	return out
}
