package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arjunmahishi/ppscope/ppscope"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `
main_version = "1.21.2-fabric"
versions = ["1.8.9-forge", "1.21.2-fabric"]

[folding]
all_blocks = true

[inspections]
non_indented_nested_ifs = false
`)
	nested := filepath.Join(root, "src", "main", "java")
	require.NoError(t, os.MkdirAll(nested, 0755))

	cfg, err := Load(nested)
	require.NoError(t, err)
	require.Equal(t, path, cfg.Path)
	require.Equal(t, root, cfg.Root)
	require.Equal(t, "1.21.2-fabric", cfg.MainVersion)
	require.Equal(t, []string{"1.8.9-forge", "1.21.2-fabric"}, cfg.Versions)

	want := ppscope.DefaultSettings()
	want.FoldAllBlocksByDefault = true
	want.NonIndentedNestedIfs = false
	require.Equal(t, want, cfg.Settings)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, cfg.Path)
	require.Equal(t, ppscope.DefaultSettings(), cfg.Settings)
}

func TestLoadFileExplicitFalse(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[folding]
inactive_blocks = false

[targets]
hide_unmatched = true
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.False(t, cfg.Settings.FoldInactiveBlocksByDefault)
	require.True(t, cfg.Settings.HideUnmatchedVersions)
	require.True(t, cfg.Settings.CommentsNotMatchingIfIndents)
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errLike string
	}{
		{"bad_toml", `main_version = `, "failed to parse TOML"},
		{"unknown_key", "[folding]\nall = true\n", `unknown key "folding.all"`},
		{"bad_version", `main_version = "latest"`, `main_version "latest" is not a version`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tc.content)
			_, err := LoadFile(path)
			require.ErrorContains(t, err, tc.errLike)
		})
	}
}
