package conv

import "testing"

func TestAppendHex(t *testing.T) {
	got := string(AppendHex([]byte("uid="), []byte{0x04, 0xa1, 0xff}))
	if got != "uid=04a1ff" {
		t.Fatalf("got %q", got)
	}
}

func TestAddr(t *testing.T) {
	cases := map[uint16]string{0x00: "0x00", 0x11: "0x11", 0x70: "0x70", 0x1234: "0x1234"}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Errorf("Addr(%#x) = %q, want %q", in, got, want)
		}
	}
	if got := Addrs([]uint16{0x70, 0x71}); got != "0x70,0x71" {
		t.Fatalf("Addrs = %q", got)
	}
	if Addrs(nil) != "" {
		t.Fatal("empty list")
	}
}
