package ppscope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositionOffset(t *testing.T) {
	a := analyzeText(t, "ab\ncde\n\nf")

	require.Equal(t, Position{Line: 1, Column: 1}, a.Position(0))
	require.Equal(t, Position{Line: 2, Column: 2}, a.Position(4))
	require.Equal(t, Position{Line: 3, Column: 1}, a.Position(7))
	require.Equal(t, Position{Line: 4, Column: 2}, a.Position(9))
	require.Equal(t, 4, a.LineCount())

	off, err := a.Offset(Position{Line: 2, Column: 2})
	require.NoError(t, err)
	require.Equal(t, 4, off)

	// columns past the end are clamped to the source
	off, err = a.Offset(Position{Line: 4, Column: 50})
	require.NoError(t, err)
	require.Equal(t, 9, off)

	// columns past the end of a line stay on that line
	off, err = a.Offset(Position{Line: 2, Column: 40})
	require.NoError(t, err)
	require.Equal(t, 6, off)
	require.Equal(t, 2, a.Position(off).Line)

	_, err = a.Offset(Position{Line: 5, Column: 1})
	require.Error(t, err)
}

func TestDiagnosticsOrder(t *testing.T) {
	a := analyzeText(t, "//#if fabric\n//#if MC > 1\n//#endif\n")

	diags := a.Diagnostics(DefaultSettings())
	require.Len(t, diags, 2)
	require.Equal(t, CodeUnterminated, diags[0].Code)
	require.Equal(t, 1, diags[0].Position.Line)
	require.Equal(t, CodeNestedIndent, diags[1].Code)

	// errors sort before warnings at the same position
	a = analyzeText(t, "//#if fabric\n//#if MC > 1\n")
	diags = a.Diagnostics(DefaultSettings())
	require.Len(t, diags, 3)
	require.Equal(t, CodeUnterminated, diags[0].Code)
	require.Equal(t, 1, diags[0].Position.Line)
	require.Equal(t, SevError, diags[1].Severity)
	require.Equal(t, 2, diags[1].Position.Line)
	require.Equal(t, SevWarning, diags[2].Severity)
	require.Equal(t, CodeNestedIndent, diags[2].Code)
}

func TestDiagnosticsSettings(t *testing.T) {
	a := analyzeText(t, "//#if fabric\n//#if MC > 1\n//#endif\n//#endif\n")

	require.Len(t, a.Diagnostics(DefaultSettings()), 1)
	require.Empty(t, a.Diagnostics(Settings{}))
}

func TestContextPastEndOfLine(t *testing.T) {
	a := analyzeText(t, "//#if fabric\nx\n//#else\ny\n//#endif\n")

	off, err := a.Offset(Position{Line: 2, Column: 40})
	require.NoError(t, err)
	cc, found := a.Context(off)
	require.True(t, found)
	require.Equal(t, []Directive{If("fabric")}, cc.True)
	require.Empty(t, cc.False)
}
