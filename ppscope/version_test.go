package ppscope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
		ok   bool
	}{
		{"1.21.2-fabric", Version{Numeric: 12102, Loader: "fabric"}, true},
		{"1.8.9", Version{Numeric: 10809}, true},
		{"1.12.2-Forge", Version{Numeric: 11202, Loader: "forge"}, true},
		{"1.20", Version{Numeric: 12000}, true},
		{" 1.16.5-fabric ", Version{Numeric: 11605, Loader: "fabric"}, true},
		{"1.20.1-neo-forge", Version{Numeric: 12001, Loader: "neo"}, true},
		{"1.21.2-fabric-extra", Version{Numeric: 12102, Loader: "fabric"}, true},
		{"latest", Version{}, false},
		{"", Version{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseVersion(tc.in)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestMustParseVersionFallsBackToNull(t *testing.T) {
	require.Equal(t, NullVersion, MustParseVersion("main"))
	require.Equal(t, "0null", MustParseVersion("main").SearchKey())
}

func TestComparable(t *testing.T) {
	n, ok := Comparable("1.19.4")
	require.True(t, ok)
	require.Equal(t, 11904, n)

	// the first version in the string wins
	n, ok = Comparable("versions/1.8.9-forge/1.12")
	require.True(t, ok)
	require.Equal(t, 10809, n)

	_, ok = Comparable("v1")
	require.False(t, ok)
}

func TestVersionString(t *testing.T) {
	require.Equal(t, "1.21.2-fabric", MustParseVersion("1.21.2-fabric").String())
	require.Equal(t, "1.20.0", MustParseVersion("1.20").String())
	require.Equal(t, "12102fabric", MustParseVersion("1.21.2-fabric").SearchKey())
}

func TestSortTargets(t *testing.T) {
	targets := []Target{
		NewTarget("1.21.2-fabric"),
		NewTarget("1.12.2-forge"),
		NewTarget("1.8.9-forge"),
		NewTarget("1.21.2-forge"),
		NewTarget("1.16.5-fabric"),
	}
	SortTargets(targets)

	var names []string
	for _, tg := range targets {
		names = append(names, tg.Name)
		require.True(t, tg.Matched)
	}
	require.Equal(t, []string{
		"1.8.9-forge",
		"1.12.2-forge",
		"1.16.5-fabric",
		"1.21.2-fabric",
		"1.21.2-forge",
	}, names)
}

func TestLoaderStopsAtNextDash(t *testing.T) {
	v := MustParseVersion("1.21.2-fabric-extra")
	require.Equal(t, True, Evaluate("fabric", v))
	require.Equal(t, False, Evaluate("!fabric", v))
}
