package hostlink

import (
	"context"
	"sync/atomic"

	"github.com/swlendrum/ChessManager/types"
	"github.com/swlendrum/ChessManager/x/conv"
)

// TargetState is the I²C target's position in the command/reply cycle.
type TargetState uint32

const (
	AwaitingCommand TargetState = iota // nothing received since power-on
	Replying                           // a command is latched; requests are answered from it
)

func (s TargetState) String() string {
	if s == Replying {
		return "replying"
	}
	return "awaiting_command"
}

// Target answers a bus controller as an I²C peripheral.
//
// The receive handler and the request handler meet only through a
// one-slot mailbox. A receive replaces whatever is in the mailbox and
// never blocks; a request moves a pending command into the latch it owns
// and answers from the latch. The latch persists, so repeated requests
// without a new write repeat the last command. Before the first write the
// latch holds LatchIdle and requests are answered with 0xEE.
type Target struct {
	cache Snapshotter

	mailbox chan byte

	// Request side only.
	latch byte
	reply []byte

	state      atomic.Uint32
	received   atomic.Uint32
	overwrites atomic.Uint32
	requests   atomic.Uint32
	errors     atomic.Uint32
}

func NewTarget(cache Snapshotter) *Target {
	return &Target{
		cache:   cache,
		mailbox: make(chan byte, 1),
		latch:   types.LatchIdle,
		reply:   make([]byte, 0, types.BlockLen),
	}
}

// OnReceive handles a controller write. Only the first byte is a command;
// an empty write is ignored. Safe to call from interrupt context.
func (t *Target) OnReceive(p []byte) {
	if len(p) == 0 {
		return
	}
	select {
	case <-t.mailbox:
		t.overwrites.Add(1)
	default:
	}
	select {
	case t.mailbox <- p[0]:
	default:
		// Another receive won the slot; last write still wins.
		t.overwrites.Add(1)
	}
	t.received.Add(1)
	t.state.Store(uint32(Replying))
}

// OnRequest builds the reply for a controller read. The returned slice is
// reused by the next call.
func (t *Target) OnRequest() []byte {
	select {
	case cmd := <-t.mailbox:
		t.latch = cmd
	default:
	}
	t.requests.Add(1)
	if !Known(t.latch) {
		t.errors.Add(1)
	}
	t.reply = Respond(t.latch, t.cache, types.ReplyTargetError, t.reply[:0])
	return t.reply
}

func (t *Target) State() TargetState { return TargetState(t.state.Load()) }

// Received is the number of non-empty writes seen.
func (t *Target) Received() uint32 { return t.received.Load() }

// Overwrites counts commands replaced before any request consumed them.
func (t *Target) Overwrites() uint32 { return t.overwrites.Load() }

// Requests is the number of reads answered.
func (t *Target) Requests() uint32 { return t.requests.Load() }

// Errors is the number of reads answered with 0xEE.
func (t *Target) Errors() uint32 { return t.errors.Load() }

// TargetEvent is what a target-mode bus reports.
type TargetEvent uint8

const (
	EventReceive TargetEvent = iota + 1 // controller wrote bytes
	EventRequest                        // controller wants to read
	EventFinish                         // stop condition
)

// TargetBus is an I²C peripheral in target mode. machine.I2C satisfies it
// through a thin platform adapter.
type TargetBus interface {
	Listen(addr uint16) error
	// WaitEvent blocks for the next bus event. For EventReceive, buf holds
	// n received bytes.
	WaitEvent(buf []byte) (ev TargetEvent, n int, err error)
	Reply(p []byte) error
}

// Serve listens on addr and runs the event loop until ctx is cancelled.
// Cancellation is observed between bus events.
func (t *Target) Serve(ctx context.Context, bus TargetBus, addr uint16) error {
	if err := bus.Listen(addr); err != nil {
		return err
	}
	println("[hostlink] i2c target listening on", conv.Addr(addr))

	buf := make([]byte, 8)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		ev, n, err := bus.WaitEvent(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			println("[hostlink] target event:", err.Error())
			continue
		}
		switch ev {
		case EventReceive:
			t.OnReceive(buf[:n])
		case EventRequest:
			if err := bus.Reply(t.OnRequest()); err != nil {
				println("[hostlink] reply:", err.Error())
			}
		case EventFinish:
		}
	}
}
