package ppscope

import (
	"errors"
	"regexp"
	"strings"
)

var (
	errNoBlock   = errors.New("could not find a preprocessor block at the given position")
	errNoLines   = errors.New("no lines to toggle between the selected directives")
	errNoBlocks  = errors.New("could not find any preprocessor blocks in this file")
	errLineRange = errors.New("invalid line range")
)

// markerPattern matches the `$$` marker and one optional following space.
func markerPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(prefix+markerMark) + `\s?`)
}

type lines struct {
	text []string
	cr   []bool
}

func splitLines(source []byte) lines {
	raw := strings.Split(string(source), "\n")
	l := lines{text: make([]string, len(raw)), cr: make([]bool, len(raw))}
	for i, s := range raw {
		l.cr[i] = strings.HasSuffix(s, "\r")
		l.text[i] = strings.TrimSuffix(s, "\r")
	}
	return l
}

func (l lines) join() string {
	var sb strings.Builder
	for i, s := range l.text {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s)
		if l.cr[i] {
			sb.WriteByte('\r')
		}
	}
	return sb.String()
}

func leadingSpaces(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}

// ToggleBlock comments out, or restores, every line of the branch containing
// offset using `$$` markers. Lines of nested blocks are left alone so they
// keep their own state. Whether to add or remove is decided by the first line
// of the branch. Lines indented less than the opening directive are untouched.
func (a *Analysis) ToggleBlock(offset int) (string, error) {
	occs := a.Scan.Occurrences
	if len(a.Matching.Blocks) == 0 {
		return "", errNoBlocks
	}
	block, from, to, ok := a.Matching.BranchAt(offset, occs)
	if !ok {
		return "", errNoBlock
	}

	// 0-based line indices
	startLine := occs[from].Line
	endLine := occs[to].Line - 2
	if startLine > endLine {
		return "", errNoLines
	}

	var exclude [][2]int
	for _, r := range a.Matching.InnerRanges(block) {
		exclude = append(exclude, [2]int{occs[r[0]].Line - 1, occs[r[1]].Line - 1})
	}

	l := splitLines(a.Source)
	startIndent := leadingSpaces(l.text[startLine-1])
	spaces := strings.Repeat(" ", startIndent)
	spacedMarker := spaces + a.prefix() + markerMark + " "
	alreadyCommented := strings.HasPrefix(strings.TrimSpace(l.text[startLine]), a.prefix()+markerMark)
	marker := markerPattern(a.prefix())

	for line := startLine; line <= endLine; line++ {
		if excluded(exclude, line) {
			continue
		}
		text := l.text[line]
		switch {
		case alreadyCommented:
			l.text[line] = replaceFirst(marker, text, "")
		case strings.TrimSpace(text) == "":
			l.text[line] = spacedMarker
		case leadingSpaces(text) >= startIndent:
			l.text[line] = spacedMarker + text[startIndent:]
		}
	}
	return l.join(), nil
}

// ToggleLines toggles `$$` markers on each line in [startLine, endLine] (1-based):
// marked lines are restored, other lines are marked at their own indentation.
func (a *Analysis) ToggleLines(startLine, endLine int) (string, error) {
	l := splitLines(a.Source)
	if startLine < 1 || endLine < startLine || endLine > len(l.text) {
		return "", errLineRange
	}
	marker := markerPattern(a.prefix())
	for line := startLine - 1; line <= endLine-1; line++ {
		text := l.text[line]
		if strings.Contains(text, a.prefix()+markerMark) {
			l.text[line] = replaceFirst(marker, text, "")
			continue
		}
		if strings.TrimSpace(text) == "" {
			l.text[line] = a.prefix() + markerMark + " "
			continue
		}
		indent := leadingSpaces(text)
		l.text[line] = text[:indent] + a.prefix() + markerMark + " " + text[indent:]
	}
	return l.join(), nil
}

func excluded(ranges [][2]int, line int) bool {
	for _, r := range ranges {
		if line >= r[0] && line <= r[1] {
			return true
		}
	}
	return false
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}
