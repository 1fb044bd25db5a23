package types

import (
	"github.com/swlendrum/ChessManager/errcode"
	"github.com/swlendrum/ChessManager/x/conv"
)

// ------------------------
// Tag identifiers
// ------------------------

// UIDLen is the identifier width reported by the tag readers.
const UIDLen = 7

// UID identifies one physical tag. The all-zero value is reserved and means
// "no tag".
type UID [UIDLen]byte

// Absent is the reserved "no tag" identifier.
var Absent UID

// Present reports whether at least one byte is nonzero.
func (u UID) Present() bool { return u != Absent }

// String renders the UID as lowercase hex, or "--" when absent.
func (u UID) String() string {
	if !u.Present() {
		return "--"
	}
	var buf [UIDLen * 2]byte
	return string(conv.AppendHex(buf[:0], u[:]))
}

// ------------------------
// Half-board grid
// ------------------------

const (
	Rows = 8
	Cols = 4

	// BlockLen is the size of a GET_BLOCK reply.
	BlockLen = Rows * Cols * UIDLen
)

// Cell addresses one position on a half-board.
type Cell struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Valid reports whether the cell lies inside the grid.
func (c Cell) Valid() bool {
	return c.Row >= 0 && c.Row < Rows && c.Col >= 0 && c.Col < Cols
}

// Index is the row-major position of the cell.
func (c Cell) Index() int { return c.Row*Cols + c.Col }

// HalfBoard holds one UID per cell. The zero value is all absent.
type HalfBoard [Rows][Cols]UID

// At returns the UID at c. Out-of-grid cells read as absent.
func (h *HalfBoard) At(c Cell) UID {
	if !c.Valid() {
		return Absent
	}
	return h[c.Row][c.Col]
}

// Set replaces the UID at c. Out-of-grid cells are ignored.
func (h *HalfBoard) Set(c Cell, u UID) {
	if !c.Valid() {
		return
	}
	h[c.Row][c.Col] = u
}

// Clear marks every cell absent.
func (h *HalfBoard) Clear() { *h = HalfBoard{} }

// Occupied counts cells holding a present UID.
func (h *HalfBoard) Occupied() int {
	n := 0
	for r := range h {
		for c := range h[r] {
			if h[r][c].Present() {
				n++
			}
		}
	}
	return n
}

// AppendBytes appends the wire form (row-major, column-minor, raw UID
// bytes) to dst.
func (h *HalfBoard) AppendBytes(dst []byte) []byte {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			dst = append(dst, h[r][c][:]...)
		}
	}
	return dst
}

// DecodeHalfBoard parses a GET_BLOCK reply. p must be exactly BlockLen bytes.
func DecodeHalfBoard(p []byte) (HalfBoard, error) {
	var h HalfBoard
	switch {
	case len(p) < BlockLen:
		return h, errcode.ShortReply
	case len(p) > BlockLen:
		return h, errcode.BadReply
	}
	off := 0
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			copy(h[r][c][:], p[off:off+UIDLen])
			off += UIDLen
		}
	}
	return h, nil
}

// CellChange is one cell that differs between two passes.
type CellChange struct {
	Cell Cell `json:"cell"`
	From UID  `json:"from"`
	To   UID  `json:"to"`
}

// Diff appends the cells whose UID differs from prev to dst.
func (h *HalfBoard) Diff(prev *HalfBoard, dst []CellChange) []CellChange {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if h[r][c] != prev[r][c] {
				dst = append(dst, CellChange{
					Cell: Cell{Row: r, Col: c},
					From: prev[r][c],
					To:   h[r][c],
				})
			}
		}
	}
	return dst
}
