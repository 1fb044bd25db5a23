package scanner

import (
	"github.com/swlendrum/ChessManager/errcode"
	"github.com/swlendrum/ChessManager/types"
)

// ChannelsPerMux is fixed by the multiplexer part.
const ChannelsPerMux = 8

// LocalCell is a channel's offset inside one multiplexer's sub-block.
type LocalCell struct{ Row, Col int }

// Topology is static wiring: which multiplexers exist, in scan order, and
// where each channel lands on the grid.
//
//	row = BaseRow + muxIndex*RowsPerMux + Channels[ch].Row
//	col = Channels[ch].Col
type Topology struct {
	MuxAddrs   []uint16
	Channels   [ChannelsPerMux]LocalCell
	RowsPerMux int
	BaseRow    int
}

// DefaultChannels is the channel table shared by every multiplexer.
var DefaultChannels = [ChannelsPerMux]LocalCell{
	{0, 0}, {0, 1}, {0, 2}, {0, 3},
	{1, 0}, {1, 1}, {1, 2}, {1, 3},
}

// DefaultTopology is four multiplexers at 0x70..0x73 stacked two rows each.
func DefaultTopology() Topology {
	return Topology{
		MuxAddrs:   []uint16{0x70, 0x71, 0x72, 0x73},
		Channels:   DefaultChannels,
		RowsPerMux: 2,
	}
}

// TopologyFromConfig builds a topology from the "scanner" config section.
// Missing fields fall back to DefaultTopology.
func TopologyFromConfig(c types.ScannerConfig) (Topology, error) {
	t := DefaultTopology()
	if len(c.MuxAddrs) > 0 {
		t.MuxAddrs = append([]uint16(nil), c.MuxAddrs...)
	}
	if len(c.ChannelMap) > 0 {
		if len(c.ChannelMap) != ChannelsPerMux {
			return t, errcode.New(errcode.InvalidConfig, "topology", "channel_map needs 8 entries")
		}
		for i, lc := range c.ChannelMap {
			t.Channels[i] = LocalCell{Row: lc.Row, Col: lc.Col}
		}
	}
	if c.RowsPerMux > 0 {
		t.RowsPerMux = c.RowsPerMux
	}
	t.BaseRow = c.BaseRow
	return t, t.Validate()
}

// CellFor maps (multiplexer index, channel) to a grid cell.
func (t *Topology) CellFor(muxIdx int, ch uint8) (types.Cell, bool) {
	if muxIdx < 0 || muxIdx >= len(t.MuxAddrs) || ch >= ChannelsPerMux {
		return types.Cell{}, false
	}
	lc := t.Channels[ch]
	c := types.Cell{
		Row: t.BaseRow + muxIdx*t.RowsPerMux + lc.Row,
		Col: lc.Col,
	}
	return c, c.Valid()
}

// Slots is the number of (multiplexer, channel) pairs visited per pass.
func (t *Topology) Slots() int { return len(t.MuxAddrs) * ChannelsPerMux }

// Validate checks addresses and that the mapping is injective and in-grid.
func (t *Topology) Validate() error {
	const op = "topology"
	if len(t.MuxAddrs) == 0 {
		return errcode.New(errcode.InvalidConfig, op, "no multiplexers")
	}
	if t.RowsPerMux <= 0 {
		return errcode.New(errcode.InvalidConfig, op, "rows_per_mux must be positive")
	}
	for i, a := range t.MuxAddrs {
		if a > 0x7f {
			return errcode.New(errcode.InvalidConfig, op, "multiplexer address is not 7-bit")
		}
		for _, b := range t.MuxAddrs[:i] {
			if a == b {
				return errcode.New(errcode.InvalidConfig, op, "duplicate multiplexer address")
			}
		}
	}
	var seen [types.Rows * types.Cols]bool
	for m := range t.MuxAddrs {
		for ch := uint8(0); ch < ChannelsPerMux; ch++ {
			c, ok := t.CellFor(m, ch)
			if !ok {
				return errcode.New(errcode.InvalidConfig, op, "channel maps outside the grid")
			}
			if seen[c.Index()] {
				return errcode.New(errcode.InvalidConfig, op, "two channels map to one cell")
			}
			seen[c.Index()] = true
		}
	}
	return nil
}
