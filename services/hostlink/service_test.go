package hostlink

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/swlendrum/ChessManager/bus"
	"github.com/swlendrum/ChessManager/types"
)

func waitLevel(t *testing.T, sub *bus.Subscription, level string) types.ServiceState {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case m := <-sub.Channel():
			if st := m.Payload.(types.ServiceState); st.Level == level {
				return st
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %q", level)
		}
	}
}

func TestServiceSerialTransport(t *testing.T) {
	e, rd := newRig()
	rd.Set(0x70, 0, tagA)
	dev, host := Pipe(512)

	var gotName string
	var gotBaud int
	svc := NewService(e, e.Cache(), func(name string, baud int) (Port, error) {
		gotName, gotBaud = name, baud
		return dev, nil
	}, nil)
	svc.StatsInterval = 5 * time.Millisecond

	b := bus.NewBus(32)
	conn := b.NewConnection("test")
	states := conn.Subscribe(topicState)
	stats := conn.Subscribe(topicStats)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, conn)
	conn.Publish(conn.NewMessage(topicConfigHostLink, types.HostLinkConfig{
		Transport: types.TransportSerial,
		Port:      "uart0",
		Baud:      115200,
		Banner:    DefaultBanner,
	}, true))
	waitLevel(t, states, "running")
	if gotName != "uart0" || gotBaud != 115200 {
		t.Fatalf("opened %q @ %d", gotName, gotBaud)
	}

	banner := make([]byte, len(DefaultBanner))
	if _, err := readFull(host, banner); err != nil || string(banner) != DefaultBanner {
		t.Fatalf("banner %q err %v", banner, err)
	}
	host.Write([]byte{types.CmdPing})
	reply := make([]byte, 1)
	if _, err := readFull(host, reply); err != nil || reply[0] != types.ReplyPingOK {
		t.Fatalf("ping reply % x err %v", reply, err)
	}

	deadline := time.After(time.Second)
	for {
		select {
		case m := <-stats.Channel():
			st := m.Payload.(types.LinkStats)
			if st.Transport != types.TransportSerial {
				t.Fatalf("stats %+v", st)
			}
			if st.Commands >= 1 {
				return
			}
		case <-deadline:
			t.Fatal("no stats with the ping counted")
		}
	}
}

func TestServiceI2CTransport(t *testing.T) {
	e, _ := newRig()
	tb := &fakeTargetBus{events: make(chan fakeEvent, 4), replies: make(chan []byte, 4)}
	svc := NewService(nil, e.Cache(), nil, func(name string) (TargetBus, error) {
		if name != "i2c1" {
			return nil, errors.New("no bus")
		}
		return tb, nil
	})

	b := bus.NewBus(16)
	conn := b.NewConnection("test")
	states := conn.Subscribe(topicState)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, conn)

	conn.Publish(conn.NewMessage(topicConfigHostLink, types.HostLinkConfig{
		Transport:  types.TransportI2C,
		TargetBus:  "i2c1",
		TargetAddr: 0x11,
	}, true))
	waitLevel(t, states, "running")

	tb.events <- fakeEvent{ev: EventReceive, data: []byte{types.CmdPing}}
	tb.events <- fakeEvent{ev: EventRequest}
	select {
	case got := <-tb.replies:
		if !bytes.Equal(got, []byte{0x01}) {
			t.Fatalf("reply % x", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no reply")
	}
	if tb.addr != 0x11 {
		t.Fatalf("listening on %#x", tb.addr)
	}
}

func TestServiceScansWithoutPort(t *testing.T) {
	e, _ := newRig()
	dev, _ := Pipe(512)
	var missing atomic.Bool
	missing.Store(true)
	svc := NewService(e, e.Cache(), func(string, int) (Port, error) {
		if missing.Load() {
			return nil, errors.New("no such device")
		}
		return dev, nil
	}, nil)

	b := bus.NewBus(16)
	conn := b.NewConnection("test")
	states := conn.Subscribe(topicState)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, conn)

	cfg := types.HostLinkConfig{Transport: types.TransportSerial, Port: "/dev/ttyGS0"}
	conn.Publish(conn.NewMessage(topicConfigHostLink, cfg, true))
	if st := waitLevel(t, states, "error"); st.Status != "not_found" {
		t.Fatalf("status %q", st.Status)
	}

	deadline := time.After(time.Second)
	for e.Cache().Passes() < 3 {
		select {
		case <-deadline:
			t.Fatalf("passes = %d with no port", e.Cache().Passes())
		case <-time.After(5 * time.Millisecond):
		}
	}

	missing.Store(false)
	conn.Publish(conn.NewMessage(topicConfigHostLink, cfg, true))
	waitLevel(t, states, "running")
	before := e.Cache().Passes()
	deadline = time.After(time.Second)
	for e.Cache().Passes() == before {
		select {
		case <-deadline:
			t.Fatal("no passes after the port opened")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestServiceRejectsBadConfig(t *testing.T) {
	svc := NewService(nil, nil, nil, nil)
	b := bus.NewBus(16)
	conn := b.NewConnection("test")
	states := conn.Subscribe(topicState)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, conn)

	conn.Publish(conn.NewMessage(topicConfigHostLink, types.HostLinkConfig{Transport: "can"}, true))
	if st := waitLevel(t, states, "error"); st.Status != "invalid_config" {
		t.Fatalf("status %q", st.Status)
	}
	conn.Publish(conn.NewMessage(topicConfigHostLink, types.HostLinkConfig{Transport: types.TransportI2C}, true))
	if st := waitLevel(t, states, "error"); st.Status != "unsupported" {
		t.Fatalf("status %q", st.Status)
	}
}

func readFull(p *RingPort, buf []byte) (int, error) {
	off := 0
	for off < len(buf) {
		n, err := p.Read(buf[off:])
		if err != nil {
			return off, err
		}
		off += n
	}
	return off, nil
}
