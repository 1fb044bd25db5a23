package tagreader

import (
	"testing"

	"github.com/swlendrum/ChessManager/types"
)

func TestNoneNeverReads(t *testing.T) {
	u, ok := None{}.ReadUID()
	if ok || u.Present() {
		t.Fatalf("None returned %v, %v", u, ok)
	}
}

func TestScriptTable(t *testing.T) {
	s := NewScript()
	uid := types.UID{1, 2, 3, 4, 5, 6, 7}
	s.Set(0x70, 0, uid)

	s.Selected(0x70, 0)
	if got, ok := s.ReadUID(); !ok || got != uid {
		t.Fatalf("scripted slot: %v %v", got, ok)
	}
	s.Selected(0x70, 1)
	if _, ok := s.ReadUID(); ok {
		t.Fatal("unscripted slot returned a tag")
	}
	s.Set(0x70, 0, types.Absent)
	s.Selected(0x70, 0)
	if _, ok := s.ReadUID(); ok {
		t.Fatal("cleared slot returned a tag")
	}
	if s.Reads() != 3 {
		t.Fatalf("reads = %d", s.Reads())
	}
}

func TestScriptPassFunc(t *testing.T) {
	s := NewScript()
	s.SetPass(func(pass uint32, mux uint16, ch uint8) (types.UID, bool) {
		return types.UID{byte(pass), byte(mux), ch}, true
	})
	s.BeginPass(4)
	s.Selected(0x72, 6)
	got, ok := s.ReadUID()
	if !ok || got != (types.UID{4, 0x72, 6}) {
		t.Fatalf("got %v %v", got, ok)
	}
}

func TestFuncAdapter(t *testing.T) {
	var r Reader = Func(func() (types.UID, bool) { return types.UID{9}, true })
	if u, ok := r.ReadUID(); !ok || u[0] != 9 {
		t.Fatalf("got %v %v", u, ok)
	}
}
