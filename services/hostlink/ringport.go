package hostlink

import (
	"time"

	"github.com/swlendrum/ChessManager/errcode"
	"github.com/swlendrum/ChessManager/x/shmring"
)

// RingPort is one end of an in-memory serial line built from two SPSC
// rings. It implements Port for the device side and io.ReadWriter for a
// host client. Each direction must have a single reader and a single writer.
type RingPort struct {
	rx, tx  *shmring.Ring
	Timeout time.Duration // blocking Read/Write limit; zero means one second
}

// Pipe returns two connected ends. size is the per-direction ring size and
// must be a power of two.
func Pipe(size int) (device, host *RingPort) {
	a := shmring.New(size)
	b := shmring.New(size)
	return &RingPort{rx: a, tx: b}, &RingPort{rx: b, tx: a}
}

func (p *RingPort) timeout() time.Duration {
	if p.Timeout <= 0 {
		return time.Second
	}
	return p.Timeout
}

func (p *RingPort) Buffered() int { return p.rx.Available() }

// ReadByte pops one buffered byte without waiting.
func (p *RingPort) ReadByte() (byte, error) {
	b, ok := p.rx.TryReadByte()
	if !ok {
		return 0, errcode.New(errcode.Timeout, "ringport", "nothing buffered")
	}
	return b, nil
}

// Read waits for at least one byte.
func (p *RingPort) Read(dst []byte) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	var deadline <-chan time.Time
	for {
		if n := p.rx.TryReadInto(dst); n > 0 {
			return n, nil
		}
		if deadline == nil {
			t := time.NewTimer(p.timeout())
			defer t.Stop()
			deadline = t.C
		}
		select {
		case <-p.rx.Readable():
		case <-deadline:
			return 0, errcode.Timeout
		}
	}
}

// Write blocks until all of src is queued or the timeout passes.
func (p *RingPort) Write(src []byte) (int, error) {
	var deadline <-chan time.Time
	total := 0
	for total < len(src) {
		if n := p.tx.TryWriteFrom(src[total:]); n > 0 {
			total += n
			continue
		}
		if deadline == nil {
			t := time.NewTimer(p.timeout())
			defer t.Stop()
			deadline = t.C
		}
		select {
		case <-p.tx.Writable():
		case <-deadline:
			return total, errcode.Timeout
		}
	}
	return total, nil
}
