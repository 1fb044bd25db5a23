package client

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swlendrum/ChessManager/types"
)

func uid(b byte) types.UID { return types.UID{b} }

func cellAt(idx int) types.Cell { return types.Cell{Row: idx / types.Cols, Col: idx % types.Cols} }

func TestRemapPerBlock(t *testing.T) {
	var raw types.HalfBoard
	for i := 0; i < 32; i++ {
		raw.Set(cellAt(i), uid(byte(i+1)))
	}
	out := Remap(raw, RightMap)
	for i := 0; i < 32; i++ {
		base := i - i%8
		want := uid(byte(i + 1))
		assert.Equal(t, want, out.At(cellAt(base+RightMap[i%8])), "raw index %d", i)
	}
	assert.Equal(t, raw, Remap(raw, IdentityMap))
}

func TestChannelMapsArePermutations(t *testing.T) {
	require.NoError(t, IdentityMap.Validate())
	require.NoError(t, LeftMap.Validate())
	require.NoError(t, RightMap.Validate())
	assert.Error(t, ChannelMap{0, 0, 1, 2, 3, 4, 5, 6}.Validate())
	assert.Error(t, ChannelMap{0, 1, 2, 3, 4, 5, 6, 8}.Validate())
}

func TestFlipAndAssemble(t *testing.T) {
	var l, r types.HalfBoard
	l.Set(types.Cell{Row: 0, Col: 0}, uid(1))
	r.Set(types.Cell{Row: 0, Col: 3}, uid(2))
	l, r = FlipRows(l), FlipRows(r)

	b := Assemble(l, r)
	assert.Equal(t, uid(1), b[7][0]) // a1
	assert.Equal(t, uid(2), b[7][7]) // h1
	assert.Equal(t, "a1", Square(7, 0))
	assert.Equal(t, "h8", Square(0, 7))
	assert.Equal(t, "e2", Square(6, 4))
}

func TestDetectMove(t *testing.T) {
	var prev FullBoard
	prev[6][4] = uid(9) // e2
	next := prev
	next[6][4] = types.Absent
	next[4][4] = uid(9) // e4

	mv, ok := DetectMove(&prev, &next)
	require.True(t, ok)
	assert.Equal(t, "e2e4", mv)

	_, ok = DetectMove(&prev, &prev)
	assert.False(t, ok, "no change is not a move")

	lifted := prev
	lifted[6][4] = types.Absent
	_, ok = DetectMove(&prev, &lifted)
	assert.False(t, ok, "a lifted piece alone is not a move")
}

func TestRenderHalf(t *testing.T) {
	var h types.HalfBoard
	h.Set(types.Cell{Row: 0, Col: 1}, uid(0xab))
	var buf bytes.Buffer
	RenderHalf(&buf, h, "efgh")

	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 10)
	assert.True(t, strings.HasPrefix(lines[0], "8 | ."), lines[0])
	assert.Contains(t, lines[0], "ab000000000000")
	assert.True(t, strings.HasPrefix(lines[7], "1 | "), lines[7])
	assert.Contains(t, buf.String(), "e")
	assert.Contains(t, buf.String(), "h")
}
