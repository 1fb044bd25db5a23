package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/swlendrum/ChessManager/errcode"
	"github.com/swlendrum/ChessManager/types"
)

// FullBoard is the assembled 8×8 board. Row 0 is rank 8, column 0 is file a.
type FullBoard [8][8]types.UID

// ChannelMap permutes each block of eight consecutive cells of a raw
// half-board: raw index i lands at index m[i] within its block. It
// compensates for how the reader coils were soldered to each multiplexer.
type ChannelMap [8]int

var (
	IdentityMap = ChannelMap{0, 1, 2, 3, 4, 5, 6, 7}
	// LeftMap is the a–d half.
	LeftMap = ChannelMap{7, 6, 1, 0, 2, 3, 5, 4}
	// RightMap is the e–h half.
	RightMap = ChannelMap{7, 6, 5, 4, 1, 0, 2, 3}
)

// Validate reports whether m is a permutation of 0..7.
func (m ChannelMap) Validate() error {
	var seen [8]bool
	for _, v := range m {
		if v < 0 || v > 7 || seen[v] {
			return errcode.New(errcode.InvalidConfig, "channel map", "not a permutation of 0..7")
		}
		seen[v] = true
	}
	return nil
}

// Remap applies m to every eight-cell block of h in row-major order.
func Remap(h types.HalfBoard, m ChannelMap) types.HalfBoard {
	var out types.HalfBoard
	const n = types.Rows * types.Cols
	for idx := 0; idx < n; idx++ {
		base := idx - idx%8
		dst := base + m[idx%8]
		out[dst/types.Cols][dst%types.Cols] = h[idx/types.Cols][idx%types.Cols]
	}
	return out
}

// FlipRows reverses row order so that row 0 is rank 8.
func FlipRows(h types.HalfBoard) types.HalfBoard {
	var out types.HalfBoard
	for r := 0; r < types.Rows; r++ {
		out[r] = h[types.Rows-1-r]
	}
	return out
}

// Orient converts a raw GET_BLOCK half into board orientation.
func Orient(h types.HalfBoard, m ChannelMap) types.HalfBoard {
	return FlipRows(Remap(h, m))
}

// Assemble places the a–d half beside the e–h half.
func Assemble(left, right types.HalfBoard) FullBoard {
	var b FullBoard
	for r := 0; r < types.Rows; r++ {
		for c := 0; c < types.Cols; c++ {
			b[r][c] = left[r][c]
			b[r][c+types.Cols] = right[r][c]
		}
	}
	return b
}

// Square names a board position in algebraic form, e.g. (6, 4) is "e2".
func Square(row, col int) string {
	return string(rune('a'+col)) + string(rune('0'+8-row))
}

// DetectMove compares two boards and returns a from-to move ("e2e4") when
// exactly the simple lift-and-place pattern is present: one square emptied
// and one square filled.
func DetectMove(prev, next *FullBoard) (string, bool) {
	from, to := "", ""
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			o, n := prev[r][c], next[r][c]
			switch {
			case o == n:
			case o.Present() && !n.Present():
				if from != "" {
					return "", false
				}
				from = Square(r, c)
			case !o.Present() && n.Present():
				if to != "" {
					return "", false
				}
				to = Square(r, c)
			}
		}
	}
	if from == "" || to == "" {
		return "", false
	}
	return from + to, true
}

// RenderHalf prints an oriented half-board with rank labels on the left and
// the given four file letters underneath.
func RenderHalf(w io.Writer, h types.HalfBoard, files string) {
	for r := 0; r < types.Rows; r++ {
		cells := make([]string, types.Cols)
		for c := range cells {
			cells[c] = cellText(h[r][c])
		}
		fmt.Fprintf(w, "%d | %s\n", 8-r, strings.Join(cells, " "))
	}
	fmt.Fprintf(w, "\n    %s\n", spread(files))
}

// Render prints the full board the same way.
func Render(w io.Writer, b *FullBoard) {
	for r := 0; r < 8; r++ {
		cells := make([]string, 8)
		for c := range cells {
			cells[c] = cellText(b[r][c])
		}
		fmt.Fprintf(w, "%d | %s\n", 8-r, strings.Join(cells, " "))
	}
	fmt.Fprintf(w, "\n    %s\n", spread("abcdefgh"))
}

const cellWidth = types.UIDLen * 2

func cellText(u types.UID) string {
	if !u.Present() {
		return fmt.Sprintf("%-*s", cellWidth, ".")
	}
	return u.String()
}

func spread(files string) string {
	parts := make([]string, 0, len(files))
	for _, f := range files {
		parts = append(parts, fmt.Sprintf("%-*c", cellWidth, f))
	}
	return strings.TrimRight(strings.Join(parts, " "), " ")
}
