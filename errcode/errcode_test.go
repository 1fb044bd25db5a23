package errcode

import (
	"errors"
	"testing"
)

func TestOf(t *testing.T) {
	if Of(nil) != OK {
		t.Fatal("nil should be ok")
	}
	if Of(Timeout) != Timeout {
		t.Fatal("bare code")
	}
	if Of(New(Rejected, "ping", "0xff")) != Rejected {
		t.Fatal("wrapped code")
	}
	if Of(errors.New("plain")) != Error {
		t.Fatal("plain error")
	}
}

func TestWrapAndAnnotate(t *testing.T) {
	if Wrap(BusError, "op", nil) != nil {
		t.Fatal("wrapping nil must stay nil")
	}
	cause := errors.New("nack")
	err := Wrap(BusError, "tca9548a.Select", cause)
	if !errors.Is(err, cause) || err.Error() != "tca9548a.Select: bus_error: nack" {
		t.Fatalf("err = %v", err)
	}

	if Of(Annotate(UnknownBus, "scanner", cause)) != UnknownBus {
		t.Fatal("plain cause takes the given code")
	}
	if Of(Annotate(UnknownBus, "hostlink", New(Unsupported, "platform", "i2c1"))) != Unsupported {
		t.Fatal("coded cause keeps its code")
	}
}
