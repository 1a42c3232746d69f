package ppscope

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func occurrences(ds ...Directive) []Occurrence {
	occs := make([]Occurrence, len(ds))
	for i, d := range ds {
		occs[i] = Occurrence{Directive: d, Start: i * 10, End: i*10 + 5, Line: i + 1, Column: 1}
	}
	return occs
}

// genBlocks appends a random well-nested sequence of blocks.
func genBlocks(r *rand.Rand, depth int, out []Directive) []Directive {
	n := 1 + r.Intn(3)
	for i := 0; i < n; i++ {
		if r.Intn(4) == 0 {
			out = append(out, IfDef("X"))
		} else {
			out = append(out, If("MC >= 1.20"))
		}
		if depth < 3 && r.Intn(2) == 0 {
			out = genBlocks(r, depth+1, out)
		}
		for j := r.Intn(3); j > 0; j-- {
			out = append(out, ElseIf("fabric"))
			if depth < 3 && r.Intn(3) == 0 {
				out = genBlocks(r, depth+1, out)
			}
		}
		if r.Intn(2) == 0 {
			out = append(out, Else())
			if depth < 3 && r.Intn(3) == 0 {
				out = genBlocks(r, depth+1, out)
			}
		}
		out = append(out, EndIf())
	}
	return out
}

func TestMatchWellNested(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for iter := 0; iter < 200; iter++ {
		occs := occurrences(genBlocks(r, 0, nil)...)
		m := Match(occs)

		require.Empty(t, m.Diagnostics)
		require.Empty(t, m.Ignored)

		closers := make(map[int]bool)
		openers := 0
		for _, occ := range occs {
			if occ.Directive.Opens() {
				openers++
			}
		}
		require.Len(t, m.Blocks, openers)
		for _, b := range m.Blocks {
			require.True(t, b.Closed())
			require.Equal(t, KindEndIf, occs[b.Closer].Directive.Kind)
			require.False(t, closers[b.Closer], "closer %d shared", b.Closer)
			closers[b.Closer] = true
			if b.Parent >= 0 {
				require.Equal(t, m.Blocks[b.Parent].Depth+1, b.Depth)
				require.Contains(t, m.Blocks[b.Parent].Children, indexOf(m.Blocks, b))
			} else {
				require.Zero(t, b.Depth)
			}
		}
	}
}

func indexOf(blocks []Block, b Block) int {
	for i := range blocks {
		if blocks[i].Opener == b.Opener {
			return i
		}
	}
	return -1
}

func TestMatchLoneEndIf(t *testing.T) {
	occs := occurrences(EndIf(), If("fabric"), Else(), EndIf())
	m := Match(occs)

	require.Len(t, m.Diagnostics, 1)
	require.Equal(t, CodeMisplaced, m.Diagnostics[0].Code)
	require.Equal(t, []int{0}, m.Ignored)

	// later blocks still match
	require.Len(t, m.Blocks, 1)
	require.Equal(t, 1, m.Blocks[0].Opener)
	require.Equal(t, []int{2}, m.Blocks[0].Branches)
	require.Equal(t, 3, m.Blocks[0].Closer)
}

func TestMatchUnterminated(t *testing.T) {
	occs := occurrences(If("a"), If("b"), EndIf())
	m := Match(occs)

	require.Len(t, m.Diagnostics, 1)
	require.Equal(t, CodeUnterminated, m.Diagnostics[0].Code)
	require.Equal(t, `unterminated "if" block`, m.Diagnostics[0].Message)
	require.False(t, m.Blocks[0].Closed())
	require.Equal(t, 2, m.Blocks[1].Closer)
}

func TestBranchAt(t *testing.T) {
	// 0:if 10:elseif 20:if 30:endif 40:else 50:endif
	occs := occurrences(If("a"), ElseIf("b"), If("c"), EndIf(), Else(), EndIf())
	m := Match(occs)

	tests := []struct {
		offset   int
		block    int
		from, to int
		ok       bool
	}{
		{offset: 5, block: 0, from: 0, to: 1, ok: true},
		{offset: 12, block: 0, from: 1, to: 4, ok: true},
		{offset: 25, block: 1, from: 2, to: 3, ok: true},
		{offset: 45, block: 0, from: 4, to: 5, ok: true},
		{offset: 55, block: -1},
	}
	for _, tc := range tests {
		block, from, to, ok := m.BranchAt(tc.offset, occs)
		require.Equal(t, tc.ok, ok, "offset %d", tc.offset)
		require.Equal(t, tc.block, block, "offset %d", tc.offset)
		if ok {
			require.Equal(t, tc.from, from, "offset %d", tc.offset)
			require.Equal(t, tc.to, to, "offset %d", tc.offset)
		}
	}
}

func TestBranchAtUnclosed(t *testing.T) {
	occs := occurrences(If("a"), Else())
	m := Match(occs)

	_, from, to, ok := m.BranchAt(5, occs)
	require.True(t, ok)
	require.Equal(t, 0, from)
	require.Equal(t, 1, to)

	// the last branch of an unclosed block has no end
	_, _, _, ok = m.BranchAt(15, occs)
	require.False(t, ok)
}
