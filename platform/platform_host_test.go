//go:build !(rp2040 || rp2350)

package platform

import (
	"context"
	"testing"

	"github.com/swlendrum/ChessManager/errcode"
)

func TestOpenTargetUnsupportedOnHost(t *testing.T) {
	if _, err := OpenTarget("i2c1"); errcode.Of(err) != errcode.Unsupported {
		t.Fatalf("err = %v", err)
	}
}

func TestOpenI2CUnknownBus(t *testing.T) {
	if _, err := OpenI2C("no-such-bus"); err == nil {
		t.Fatal("expected an error for an unregistered bus")
	}
}

func TestPortOpenerMissingDevice(t *testing.T) {
	open := PortOpener(context.Background())
	if _, err := open("/dev/no-such-tty", 115200); errcode.Of(err) != errcode.NotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestReaderNeverReads(t *testing.T) {
	if _, ok := NewReader().ReadUID(); ok {
		t.Fatal("host reader reported a tag")
	}
}
