// Package tagreader defines the contract between the scan engine and a
// contactless tag reader sitting behind the currently selected multiplexer
// channel.
//
// A reader reports the identifier presented right now, or false when no tag
// is present or the read failed. The two cases are not distinguished.
package tagreader

import (
	"sync"

	"github.com/swlendrum/ChessManager/types"
)

// Reader attempts one read on the active channel.
type Reader interface {
	ReadUID() (types.UID, bool)
}

// ChannelAware readers are told which (multiplexer, channel) is active
// before each read. Hardware drivers do not need this; test doubles do.
type ChannelAware interface {
	Selected(mux uint16, channel uint8)
}

// PassAware readers are told when a new scan pass starts.
type PassAware interface {
	BeginPass(pass uint32)
}

// None never sees a tag. It stands in until a hardware driver is wired.
type None struct{}

func (None) ReadUID() (types.UID, bool) { return types.Absent, false }

// Func adapts a plain function to Reader.
type Func func() (types.UID, bool)

func (f Func) ReadUID() (types.UID, bool) { return f() }

// -----------------------------------------------------------------------------
// Scripted double
// -----------------------------------------------------------------------------

type slot struct {
	mux uint16
	ch  uint8
}

// Script is a deterministic reader for tests and bench runs. Results are
// keyed by (multiplexer address, channel); unscripted slots read as "no tag".
// A pass function, when set, overrides the static table.
type Script struct {
	mu     sync.Mutex
	table  map[slot]types.UID
	passFn func(pass uint32, mux uint16, ch uint8) (types.UID, bool)

	pass  uint32
	cur   slot
	reads uint32
}

func NewScript() *Script {
	return &Script{table: make(map[slot]types.UID)}
}

// Set scripts a UID for one slot. An absent UID clears the slot.
func (s *Script) Set(mux uint16, ch uint8, uid types.UID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !uid.Present() {
		delete(s.table, slot{mux, ch})
		return
	}
	s.table[slot{mux, ch}] = uid
}

// SetPass installs a per-pass script.
func (s *Script) SetPass(fn func(pass uint32, mux uint16, ch uint8) (types.UID, bool)) {
	s.mu.Lock()
	s.passFn = fn
	s.mu.Unlock()
}

func (s *Script) BeginPass(pass uint32) {
	s.mu.Lock()
	s.pass = pass
	s.mu.Unlock()
}

func (s *Script) Selected(mux uint16, ch uint8) {
	s.mu.Lock()
	s.cur = slot{mux, ch}
	s.mu.Unlock()
}

func (s *Script) ReadUID() (types.UID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.passFn != nil {
		return s.passFn(s.pass, s.cur.mux, s.cur.ch)
	}
	u, ok := s.table[s.cur]
	return u, ok
}

// Reads returns how many reads were attempted.
func (s *Script) Reads() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}
