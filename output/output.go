// Package output provides output formatting for ppscope.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/arjunmahishi/ppscope/ppscope"
)

// Writer handles structured output.
type Writer struct {
	encoder *json.Encoder
	compact bool
}

// Config holds output configuration.
type Config struct {
	Compact bool
	Output  io.Writer
}

// New creates a new output Writer.
func New(cfg Config) *Writer {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	enc := json.NewEncoder(cfg.Output)
	enc.SetEscapeHTML(false)
	if !cfg.Compact {
		enc.SetIndent("", "  ")
	}

	return &Writer{
		encoder: enc,
		compact: cfg.Compact,
	}
}

// Write outputs a value as JSON.
func (w *Writer) Write(v any) error {
	return w.encoder.Encode(v)
}

// WriteError writes an error as a JSON object.
func WriteError(out io.Writer, err error) {
	enc := json.NewEncoder(out)
	enc.Encode(map[string]string{
		"error": err.Error(),
	})
}

// ColorEnabled resolves a --color mode (auto, on, off) for f.
func ColorEnabled(mode string, f *os.File) (bool, error) {
	switch mode {
	case "", "auto":
		return isTerminal(f), nil
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	}
	return false, fmt.Errorf("invalid color mode %q (want auto, on or off)", mode)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

type palette struct {
	file    *color.Color
	pos     *color.Color
	errSev  *color.Color
	warnSev *color.Color
	code    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		file:    color.New(color.Bold),
		pos:     color.New(color.FgCyan),
		errSev:  color.New(color.FgRed, color.Bold),
		warnSev: color.New(color.FgYellow, color.Bold),
		code:    color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.file, p.pos, p.errSev, p.warnSev, p.code} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty writes diagnostics one per line as file:line:col: severity: message [code],
// followed by a summary line.
func Pretty(out io.Writer, reports []ppscope.FileReport, colored bool) error {
	p := newPalette(colored)
	var errs, warns int
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			sev := p.warnSev
			if d.Severity == ppscope.SevError {
				sev = p.errSev
				errs++
			} else {
				warns++
			}
			_, err := fmt.Fprintf(out, "%s:%s: %s: %s %s\n",
				p.file.Sprint(r.File),
				p.pos.Sprintf("%d:%d", d.Position.Line, d.Position.Column),
				sev.Sprint(d.Severity),
				d.Message,
				p.code.Sprintf("[%s]", d.Code),
			)
			if err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(out, "%d files, %s, %s\n",
		len(reports), plural(errs, "error"), plural(warns, "warning"))
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

// TargetsTable writes targets as a table.
func TargetsTable(out io.Writer, targets []ppscope.Target) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Target", "Version", "Key", "Matched"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER,
	})
	for _, t := range targets {
		matched := ""
		if t.Matched {
			matched = "yes"
		}
		table.Append([]string{t.Name, t.Version.String(), t.Key, matched})
	}
	table.Render()
}

// BlocksTable writes one row per directive occurrence with its block depth.
func BlocksTable(out io.Writer, result ppscope.BlocksResult) {
	depth := make(map[int]int, len(result.Occurrences))
	for _, b := range result.Blocks {
		for _, i := range b.Boundaries() {
			depth[i] = b.Depth
		}
	}
	ignored := make(map[int]bool, len(result.Ignored))
	for _, i := range result.Ignored {
		ignored[i] = true
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Line", "Directive", "Depth"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})
	for i, o := range result.Occurrences {
		d := "-"
		if !ignored[i] {
			d = strconv.Itoa(depth[i])
		}
		text := strings.Repeat("  ", depth[i]) + o.Directive.String()
		table.Append([]string{strconv.Itoa(o.Line), text, d})
	}
	table.Render()
}
