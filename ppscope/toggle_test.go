package ppscope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func analyzeText(t *testing.T, source string) *Analysis {
	t.Helper()
	a, err := Analyze([]byte(source), Text{})
	require.NoError(t, err)
	return a
}

func TestToggleBlockBlankLines(t *testing.T) {
	a := analyzeText(t, "//#if fabric\na();\n\nb();\n//#endif\n")

	out, err := a.ToggleBlock(a.lineStarts[1])
	require.NoError(t, err)
	require.Equal(t, "//#if fabric\n//$$ a();\n//$$ \n//$$ b();\n//#endif\n", out)

	// toggling again restores the original text, bare markers included
	back, err := analyzeText(t, out).ToggleBlock(a.lineStarts[1])
	require.NoError(t, err)
	require.Equal(t, "//#if fabric\na();\n\nb();\n//#endif\n", back)
}

func TestToggleBlockKeepsCRLF(t *testing.T) {
	a := analyzeText(t, "//#if fabric\r\na();\r\n//#endif\r\n")

	out, err := a.ToggleBlock(a.lineStarts[1])
	require.NoError(t, err)
	require.Equal(t, "//#if fabric\r\n//$$ a();\r\n//#endif\r\n", out)
}

func TestToggleLinesBlank(t *testing.T) {
	a := analyzeText(t, "a\n\nb")

	out, err := a.ToggleLines(1, 3)
	require.NoError(t, err)
	require.Equal(t, "//$$ a\n//$$ \n//$$ b", out)
}

func TestToggleLinesEachLineDecidesForItself(t *testing.T) {
	a := analyzeText(t, "//$$ a\nb")

	out, err := a.ToggleLines(1, 2)
	require.NoError(t, err)
	require.Equal(t, "a\n//$$ b", out)
}
