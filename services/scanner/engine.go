package scanner

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/swlendrum/ChessManager/drivers/tagreader"
	"github.com/swlendrum/ChessManager/types"
	"github.com/swlendrum/ChessManager/x/timex"
)

// Selector activates one channel on one multiplexer. Implemented by
// tca9548a.Bank.
type Selector interface {
	Select(mux uint16, channel uint8) error
}

// DefaultInterval is the pause between passes when running unattended.
const DefaultInterval = 10 * time.Millisecond

// Pass describes one completed scan pass.
type Pass struct {
	N        uint32
	Duration time.Duration
	Changes  []types.CellChange // cells that differ from the previous pass
	Board    *types.HalfBoard   // valid only during the callback
}

type Options struct {
	// Interval is the pause between passes in Run. Zero means
	// DefaultInterval; negative means no pause.
	Interval time.Duration
	// OnPass, if set, is called on the scan goroutine after each publish.
	// It must not retain Board or Changes.
	OnPass func(Pass)
}

// Engine runs scan passes: for each multiplexer in topology order and each
// channel 0..7, select, read and record. Every cell is replaced every pass;
// there is no retry and no debounce, so one missed read of a resting tag
// shows up as a present→absent→present flicker.
type Engine struct {
	topo  Topology
	sel   Selector
	rd    tagreader.Reader
	cache *Cache
	opts  Options

	last    types.HalfBoard
	changes []types.CellChange

	selErrs atomic.Uint32
	nChg    atomic.Uint32
	lastDur atomic.Int64
}

// NewEngine wires an engine. The topology must already be valid.
func NewEngine(topo Topology, sel Selector, rd tagreader.Reader, cache *Cache, opts Options) *Engine {
	if rd == nil {
		rd = tagreader.None{}
	}
	if opts.Interval == 0 {
		opts.Interval = DefaultInterval
	}
	return &Engine{
		topo:    topo,
		sel:     sel,
		rd:      rd,
		cache:   cache,
		opts:    opts,
		changes: make([]types.CellChange, 0, types.Rows*types.Cols),
	}
}

func (e *Engine) Cache() *Cache        { return e.cache }
func (e *Engine) Topology() *Topology  { return &e.topo }
func (e *Engine) SelectErrors() uint32 { return e.selErrs.Load() }
func (e *Engine) Changes() uint32      { return e.nChg.Load() }

// LastPass is the duration of the most recent pass.
func (e *Engine) LastPass() time.Duration { return time.Duration(e.lastDur.Load()) }

// ScanAll performs exactly one full pass and publishes it. It must only be
// called from one goroutine.
func (e *Engine) ScanAll() {
	start := time.Now()
	n := e.cache.Passes() + 1
	if pa, ok := e.rd.(tagreader.PassAware); ok {
		pa.BeginPass(n)
	}
	ca, _ := e.rd.(tagreader.ChannelAware)

	back := e.cache.Back()
	for m, addr := range e.topo.MuxAddrs {
		for ch := uint8(0); ch < ChannelsPerMux; ch++ {
			cell, ok := e.topo.CellFor(m, ch)
			if !ok {
				continue
			}
			// A failed select is not distinguishable from an empty square;
			// the read still happens and decides the cell.
			if err := e.sel.Select(addr, ch); err != nil {
				e.selErrs.Add(1)
			}
			if ca != nil {
				ca.Selected(addr, ch)
			}
			uid, ok := e.rd.ReadUID()
			if !ok {
				uid = types.Absent
			}
			back.Set(cell, uid)
		}
	}

	e.changes = back.Diff(&e.last, e.changes[:0])
	e.last = *back
	e.cache.Publish()

	dur := time.Since(start)
	e.lastDur.Store(int64(dur))
	e.nChg.Add(uint32(len(e.changes)))

	if e.opts.OnPass != nil {
		e.opts.OnPass(Pass{N: n, Duration: dur, Changes: e.changes, Board: &e.last})
	}
}

// Run scans until ctx is cancelled. A pass in progress always completes.
func (e *Engine) Run(ctx context.Context) {
	pause := time.NewTimer(time.Hour)
	timex.StopTimer(pause)
	defer pause.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		e.ScanAll()
		if e.opts.Interval <= 0 {
			continue
		}
		timex.ResetTimer(pause, e.opts.Interval)
		select {
		case <-ctx.Done():
			return
		case <-pause.C:
		}
	}
}
