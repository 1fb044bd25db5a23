package strx

import "testing"

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "serial", "i2c"); got != "serial" {
		t.Fatalf("got %q", got)
	}
	if got := Coalesce("i2c", "serial"); got != "i2c" {
		t.Fatalf("got %q", got)
	}
	if Coalesce() != "" || Coalesce("", "") != "" {
		t.Fatal("empty input")
	}
}
