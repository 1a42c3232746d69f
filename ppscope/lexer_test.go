package ppscope

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	tests := []struct {
		body    string
		want    Directive
		ok      bool
		problem Code
	}{
		{body: "if MC >= 1.20", want: If("MC >= 1.20"), ok: true},
		{body: "if   MC>=11900  &&   fabric ", want: If("MC>=11900 && fabric"), ok: true},
		{body: "ifdef DEBUG", want: IfDef("DEBUG"), ok: true},
		{body: "elseif forge", want: ElseIf("forge"), ok: true},
		{body: "else", want: Else(), ok: true},
		{body: "endif", want: EndIf(), ok: true},
		{body: "if", want: If(""), ok: true, problem: CodeMissingArgument},
		{body: "ifdef", want: IfDef(""), ok: true, problem: CodeMissingArgument},
		{body: "endif // trailing", want: EndIf(), ok: true, problem: CodeUnexpectedArgs},
		{body: "elif fabric", ok: false, problem: CodeUnknownDirective},
		{body: "", ok: false, problem: CodeUnknownDirective},
	}
	for _, tc := range tests {
		t.Run(tc.body, func(t *testing.T) {
			d, problem, ok := ParseDirective(tc.body)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, d)
			if tc.problem == "" {
				require.Nil(t, problem)
				return
			}
			require.NotNil(t, problem)
			require.Equal(t, tc.problem, problem.Code)
		})
	}
}

func TestLex(t *testing.T) {
	comments := []Comment{
		{Text: "// plain comment", Start: 0, End: 16, Line: 1, Column: 1},
		{Text: "//#if fabric", Start: 17, End: 29, Line: 2, Column: 1},
		{Text: "//$$ legacy();", Start: 34, End: 48, Line: 3, Column: 5},
		{Text: "//#bogus", Start: 49, End: 57, Line: 4, Column: 1},
		{Text: "//#if", Start: 58, End: 63, Line: 5, Column: 1},
		{Text: "/* #if block */", Start: 64, End: 79, Line: 6, Column: 1},
		{Text: "//#endif", Start: 80, End: 88, Line: 7, Column: 1},
	}
	scan := Lex(comments, "//")

	var kinds []Kind
	for _, o := range scan.Occurrences {
		kinds = append(kinds, o.Directive.Kind)
	}
	require.Equal(t, []Kind{KindIf, KindIf, KindEndIf}, kinds)
	require.Equal(t, 17, scan.Occurrences[0].Start)

	want := []Marker{{Code: "legacy();", Start: 34, End: 48, Line: 3, Column: 5}}
	if diff := cmp.Diff(want, scan.Markers); diff != "" {
		t.Fatalf("markers mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, scan.Diagnostics, 2)
	require.Equal(t, CodeUnknownDirective, scan.Diagnostics[0].Code)
	require.Equal(t, `Unknown preprocessor directive "bogus"`, scan.Diagnostics[0].Message)

	// missing arguments are anchored at the end of the line
	eol := scan.Diagnostics[1]
	require.True(t, eol.EOL)
	require.Equal(t, 63, eol.Range.Start)
	require.Equal(t, Position{Line: 5, Column: 6}, eol.Position)
}

func TestLexOtherPrefix(t *testing.T) {
	comments := []Comment{
		{Text: "#if fabric", Start: 0, End: 10, Line: 1, Column: 1},
		{Text: "##if fabric", Start: 11, End: 22, Line: 2, Column: 1},
	}
	scan := Lex(comments, "#")
	require.Len(t, scan.Occurrences, 1)
	require.Equal(t, 11, scan.Occurrences[0].Start)
}

func TestLexInvalidConditionTerms(t *testing.T) {
	comments := []Comment{
		{Text: "//#if MC >= && fabric", Start: 10, End: 31, Line: 2, Column: 5},
		{Text: "//#elseif !forge || MC>=11900", Start: 40, End: 69, Line: 4, Column: 1},
		{Text: "//#if a ||", Start: 70, End: 80, Line: 5, Column: 1},
	}
	scan := Lex(comments, "//")
	require.Len(t, scan.Occurrences, 3)

	want := []Diagnostic{
		{
			Severity: SevError,
			Code:     CodeInvalidCondition,
			Message:  `Invalid condition "MC >="`,
			Range:    Range{Start: 16, End: 21},
			Position: Position{Line: 2, Column: 11},
		},
		{
			Severity: SevError,
			Code:     CodeInvalidCondition,
			Message:  `Invalid condition ""`,
			Range:    Range{Start: 80, End: 80},
			Position: Position{Line: 5, Column: 11},
		},
	}
	if diff := cmp.Diff(want, scan.Diagnostics); diff != "" {
		t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}
