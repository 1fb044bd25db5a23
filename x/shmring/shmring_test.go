package shmring

import (
	"testing"
)

// fakeIO models partial producer progress (accept up to k bytes).
type fakeIO struct{ k int }

func (f fakeIO) write(p []byte) int {
	if len(p) > f.k {
		return f.k
	}
	return len(p)
}

func TestOrderAcrossWrapWithPartialProgress(t *testing.T) {
	r := New(64)
	prod := fakeIO{k: 7}

	const N = 2000
	src := make([]byte, N)
	for i := range src {
		src[i] = byte(i)
	}

	p := src
	dst := make([]byte, N)
	off := 0
	for off < N {
		if len(p) > 0 {
			step := r.TryWriteFrom(p[:prod.write(p)])
			p = p[step:]
		}
		var tmp [17]byte
		n := r.TryReadInto(tmp[:])
		copy(dst[off:], tmp[:n])
		off += n
	}

	for i := 0; i < N; i++ {
		if dst[i] != src[i] {
			t.Fatalf("mismatch at %d: got=%d want=%d", i, dst[i], src[i])
		}
	}
}

func TestReadableWritableEdges(t *testing.T) {
	r := New(8)

	if n := r.TryWriteFrom([]byte{1, 2, 3}); n != 3 {
		t.Fatalf("wrote %d", n)
	}
	select {
	case <-r.Readable():
	default:
		t.Fatal("expected Readable on empty -> non-empty")
	}
	r.TryWriteFrom([]byte{4})
	select {
	case <-r.Readable():
		t.Fatal("unexpected extra Readable")
	default:
	}

	// Fill, then drain a little: full -> non-full fires Writable.
	if n := r.TryWriteFrom(make([]byte, 16)); n != 4 {
		t.Fatalf("fill wrote %d, want 4", n)
	}
	if r.Space() != 0 || r.Available() != 8 {
		t.Fatalf("space=%d avail=%d", r.Space(), r.Available())
	}
	r.TryReadInto(make([]byte, 3))
	select {
	case <-r.Writable():
	default:
		t.Fatal("expected Writable on full -> non-full")
	}
}

func TestTryReadByte(t *testing.T) {
	r := New(4)
	if _, ok := r.TryReadByte(); ok {
		t.Fatal("read from empty ring")
	}
	r.TryWriteFrom([]byte{0x02, 0x01})
	if b, ok := r.TryReadByte(); !ok || b != 0x02 {
		t.Fatalf("got %#x %v", b, ok)
	}
	if r.Available() != 1 {
		t.Fatalf("available %d", r.Available())
	}
}
