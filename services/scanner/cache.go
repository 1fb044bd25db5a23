package scanner

import (
	"sync"
	"sync/atomic"

	"github.com/swlendrum/ChessManager/types"
)

// Cache is the half-board cache shared between the scan loop (single writer)
// and the host link (readers).
//
// It is a triple buffer. The writer fills its private back slot and
// publishes it with one atomic exchange against the middle slot; a reader
// exchanges its front slot with the middle slot only when a fresh pass is
// waiting, then copies from front. No slot is ever written while a reader
// holds it, so every snapshot is one complete pass. The writer never waits.
type Cache struct {
	slots [3]types.HalfBoard

	// mid holds the middle slot index (bits 0..1) and the fresh flag.
	mid    atomic.Uint32
	passes atomic.Uint32

	back int // writer-owned

	rmu   sync.Mutex // serialises readers only
	front int        // reader-owned
}

const freshBit = 1 << 2

// NewCache returns a cache with every cell absent.
func NewCache() *Cache {
	c := &Cache{back: 0, front: 2}
	c.mid.Store(1)
	return c
}

// Back is the writer's private slot. Only the scan loop may touch it, and
// only until the next Publish.
func (c *Cache) Back() *types.HalfBoard { return &c.slots[c.back] }

// Publish makes the back slot visible to readers and hands the writer a
// free slot.
func (c *Cache) Publish() {
	old := c.mid.Swap(uint32(c.back) | freshBit)
	c.back = int(old &^ freshBit)
	c.passes.Add(1)
}

// Passes is the number of published passes.
func (c *Cache) Passes() uint32 { return c.passes.Load() }

// acquire moves a freshly published pass to the reader's front slot.
// Callers hold rmu.
func (c *Cache) acquire() *types.HalfBoard {
	if c.mid.Load()&freshBit != 0 {
		old := c.mid.Swap(uint32(c.front))
		c.front = int(old &^ freshBit)
	}
	return &c.slots[c.front]
}

// Snapshot copies the most recently published pass into dst.
func (c *Cache) Snapshot(dst *types.HalfBoard) {
	c.rmu.Lock()
	*dst = *c.acquire()
	c.rmu.Unlock()
}

// AppendBlock appends the GET_BLOCK wire form of one snapshot to dst.
func (c *Cache) AppendBlock(dst []byte) []byte {
	c.rmu.Lock()
	dst = c.acquire().AppendBytes(dst)
	c.rmu.Unlock()
	return dst
}
