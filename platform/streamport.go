// Package platform supplies the per-build buses, serial ports and I²C target
// peripherals named in config.
package platform

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/swlendrum/ChessManager/errcode"
	"github.com/swlendrum/ChessManager/x/shmring"
)

// RecvFunc blocks until some bytes arrive, ctx is done or a read timeout
// passes. A timeout returns (0, nil).
type RecvFunc func(ctx context.Context, buf []byte) (int, error)

// StreamPort turns a blocking receiver into a polled hostlink.Port. A pump
// goroutine moves received bytes into an SPSC ring; the polled loop drains
// the ring between scan passes.
type StreamPort struct {
	rx    *shmring.Ring
	w     io.Writer
	drops atomic.Uint32
	done  chan struct{}
}

const rxRingSize = 256

// NewStreamPort starts the pump. It stops when ctx is done or recv fails.
func NewStreamPort(ctx context.Context, recv RecvFunc, w io.Writer) *StreamPort {
	p := &StreamPort{
		rx:   shmring.New(rxRingSize),
		w:    w,
		done: make(chan struct{}),
	}
	go p.pump(ctx, recv)
	return p
}

func (p *StreamPort) pump(ctx context.Context, recv RecvFunc) {
	defer close(p.done)
	buf := make([]byte, 64)
	for ctx.Err() == nil {
		n, err := recv(ctx, buf)
		if n > 0 {
			if w := p.rx.TryWriteFrom(buf[:n]); w < n {
				p.drops.Add(uint32(n - w))
			}
		}
		if err != nil {
			if ctx.Err() == nil {
				println("[platform] serial receive stopped:", err.Error())
			}
			return
		}
	}
}

func (p *StreamPort) Buffered() int { return p.rx.Available() }

func (p *StreamPort) ReadByte() (byte, error) {
	b, ok := p.rx.TryReadByte()
	if !ok {
		return 0, errcode.New(errcode.Timeout, "streamport", "nothing buffered")
	}
	return b, nil
}

func (p *StreamPort) Write(b []byte) (int, error) { return p.w.Write(b) }

// Drops is the number of received bytes discarded because the ring was full.
func (p *StreamPort) Drops() uint32 { return p.drops.Load() }

// Done is closed when the pump exits.
func (p *StreamPort) Done() <-chan struct{} { return p.done }
