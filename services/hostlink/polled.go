package hostlink

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/swlendrum/ChessManager/types"
	"github.com/swlendrum/ChessManager/x/timex"
)

// Port is the byte stream to the host on the polled serial transport.
type Port interface {
	// Buffered returns the number of received bytes waiting to be read.
	Buffered() int
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
}

// DefaultBanner is written once when the polled loop starts.
const DefaultBanner = "Nano Ready\r\n"

// DefaultPollInterval is the pause at the end of each loop iteration.
const DefaultPollInterval = 10 * time.Millisecond

// Polled runs scanning and command handling on one loop. A command is only
// ever handled between two complete passes, so no reply can observe a pass
// in progress.
type Polled struct {
	Scan     Scanner
	Cache    Snapshotter
	Port     Port
	Interval time.Duration // zero: DefaultPollInterval, negative: none
	Banner   string        // empty: no banner

	out []byte

	commands atomic.Uint32
	errors   atomic.Uint32
}

func NewPolled(scan Scanner, cache Snapshotter, port Port) *Polled {
	return &Polled{
		Scan:  scan,
		Cache: cache,
		Port:  port,
		out:   make([]byte, 0, types.BlockLen),
	}
}

// Commands is the number of command bytes handled.
func (p *Polled) Commands() uint32 { return p.commands.Load() }

// Errors is the number of unknown command bytes answered with 0xFF.
func (p *Polled) Errors() uint32 { return p.errors.Load() }

// Step runs one loop iteration: a full scan pass, then every command byte
// already buffered. It returns the number of commands handled.
func (p *Polled) Step() int {
	p.Scan.ScanAll()

	n := 0
	for p.Port.Buffered() > 0 {
		cmd, err := p.Port.ReadByte()
		if err != nil {
			break
		}
		p.dispatch(cmd)
		n++
	}
	return n
}

func (p *Polled) dispatch(cmd byte) {
	p.commands.Add(1)
	if !Known(cmd) {
		p.errors.Add(1)
	}
	p.out = Respond(cmd, p.Cache, types.ReplySerialError, p.out[:0])
	if _, err := p.Port.Write(p.out); err != nil {
		println("[hostlink] write failed:", err.Error())
	}
}

// Run writes the banner and loops until ctx is cancelled.
func (p *Polled) Run(ctx context.Context) {
	if p.Banner != "" {
		if _, err := p.Port.Write([]byte(p.Banner)); err != nil {
			println("[hostlink] banner:", err.Error())
		}
	}
	iv := p.Interval
	if iv == 0 {
		iv = DefaultPollInterval
	}

	pause := time.NewTimer(time.Hour)
	timex.StopTimer(pause)
	defer pause.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		p.Step()
		if iv < 0 {
			continue
		}
		timex.ResetTimer(pause, iv)
		select {
		case <-ctx.Done():
			return
		case <-pause.C:
		}
	}
}
