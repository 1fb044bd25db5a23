package scanner

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/swlendrum/ChessManager/types"
)

func fill(h *types.HalfBoard, b byte) {
	for r := range h {
		for c := range h[r] {
			for i := range h[r][c] {
				h[r][c][i] = b
			}
		}
	}
}

func TestCacheStartsAbsent(t *testing.T) {
	c := NewCache()
	var h types.HalfBoard
	fill(&h, 0xAA)
	c.Snapshot(&h)
	if h.Occupied() != 0 {
		t.Fatalf("fresh cache has %d occupied cells", h.Occupied())
	}
	block := c.AppendBlock(nil)
	if len(block) != types.BlockLen {
		t.Fatalf("block len %d", len(block))
	}
	for i, b := range block {
		if b != 0 {
			t.Fatalf("byte %d = %#x", i, b)
		}
	}
}

func TestCacheUnpublishedWritesInvisible(t *testing.T) {
	c := NewCache()
	c.Back().Set(types.Cell{Row: 0, Col: 0}, types.UID{1})

	var h types.HalfBoard
	c.Snapshot(&h)
	if h.Occupied() != 0 {
		t.Fatal("reader saw a pass before it was published")
	}
	c.Publish()
	c.Snapshot(&h)
	if h.At(types.Cell{}) != (types.UID{1}) {
		t.Fatalf("published pass not visible: %v", h.At(types.Cell{}))
	}
	if c.Passes() != 1 {
		t.Fatalf("passes = %d", c.Passes())
	}
}

func TestCacheLatestWins(t *testing.T) {
	c := NewCache()
	for i := byte(1); i <= 5; i++ {
		fill(c.Back(), i)
		c.Publish()
	}
	var h types.HalfBoard
	c.Snapshot(&h)
	if h[3][2][0] != 5 {
		t.Fatalf("got pass %d, want 5", h[3][2][0])
	}
	// A second read with nothing new returns the same pass.
	c.Snapshot(&h)
	if h[7][3][6] != 5 {
		t.Fatalf("repeat read got %d", h[7][3][6])
	}
}

// A writer alternates two full boards while readers take snapshots. Every
// snapshot must be entirely one board or the other.
func TestCacheSnapshotsNeverTear(t *testing.T) {
	c := NewCache()
	const passes = 20000

	var stop atomic.Bool
	var wg sync.WaitGroup
	var torn atomic.Uint32
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.Load() {
				block := c.AppendBlock(make([]byte, 0, types.BlockLen))
				first := block[0]
				if first != 0 && first != 0xA0 && first != 0xB0 {
					torn.Add(1)
					continue
				}
				for _, b := range block {
					if b != first {
						torn.Add(1)
						break
					}
				}
			}
		}()
	}

	for i := 0; i < passes; i++ {
		if i%2 == 0 {
			fill(c.Back(), 0xA0)
		} else {
			fill(c.Back(), 0xB0)
		}
		c.Publish()
	}
	stop.Store(true)
	wg.Wait()

	if n := torn.Load(); n != 0 {
		t.Fatalf("%d torn snapshots", n)
	}
	if c.Passes() != passes {
		t.Fatalf("passes = %d", c.Passes())
	}
}
