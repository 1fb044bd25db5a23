// config/config_test.go
package config

import (
	"context"
	"testing"
	"time"

	"github.com/swlendrum/ChessManager/bus"
	"github.com/swlendrum/ChessManager/errcode"
	"github.com/swlendrum/ChessManager/types"
)

func TestConfig_PublishEmbedded_RetainedPerSection(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "pico" {
			return nil, false
		}
		return []byte(`
scanner:
  bus: i2c0
  mux_addrs: [0x72, 0x73]
  base_row: 4
  channel_map:
    - {row: 0, col: 3}
    - {row: 0, col: 2}
    - {row: 0, col: 1}
    - {row: 0, col: 0}
    - {row: 1, col: 3}
    - {row: 1, col: 2}
    - {row: 1, col: 1}
    - {row: 1, col: 0}
hostlink:
  transport: i2c
  target_bus: i2c1
  target_addr: 0x10
heartbeat:
  interval: 3
`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "pico")
	svc.Start(ctx, conn)

	sub := conn.Subscribe(bus.T(configPrefix, "#"))

	got := map[string]any{}
	deadline := time.Now().Add(600 * time.Millisecond)
	for len(got) < 4 && time.Now().Before(deadline) {
		select {
		case m := <-sub.Channel():
			key, ok := m.Topic[1].(string)
			if !ok {
				t.Fatalf("topic[1] type %T, want string", m.Topic[1])
			}
			if !m.Retained {
				t.Fatalf("%s not retained", key)
			}
			got[key] = m.Payload
		case <-time.After(10 * time.Millisecond):
		}
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 retained sections, got %d (%v)", len(got), got)
	}

	if got["device"] != "pico" {
		t.Fatalf("device = %v", got["device"])
	}
	sc, ok := got["scanner"].(types.ScannerConfig)
	if !ok {
		t.Fatalf("scanner payload %T", got["scanner"])
	}
	if len(sc.MuxAddrs) != 2 || sc.MuxAddrs[0] != 0x72 || sc.BaseRow != 4 {
		t.Fatalf("scanner %+v", sc)
	}
	if len(sc.ChannelMap) != 8 || sc.ChannelMap[0] != (types.LocalCell{Row: 0, Col: 3}) {
		t.Fatalf("channel map %+v", sc.ChannelMap)
	}
	hl := got["hostlink"].(types.HostLinkConfig)
	if hl.Transport != types.TransportI2C || hl.TargetAddr != 0x10 || hl.TargetBus != "i2c1" {
		t.Fatalf("hostlink %+v", hl)
	}
	if hb := got["heartbeat"].(types.HeartbeatConfig); hb.Interval != 3 {
		t.Fatalf("heartbeat %+v", hb)
	}
}

func TestConfig_EmbeddedDevicesParse(t *testing.T) {
	for _, dev := range []string{"left", "right", "bench"} {
		cfg, err := Load(dev)
		if err != nil {
			t.Fatalf("%s: %v", dev, err)
		}
		if cfg.Device != dev {
			t.Fatalf("%s: device %q", dev, cfg.Device)
		}
		if cfg.HostLink.Transport != types.TransportSerial && cfg.HostLink.Transport != types.TransportI2C {
			t.Fatalf("%s: transport %q", dev, cfg.HostLink.Transport)
		}
	}
	left, _ := Load("left")
	if left.HostLink.Banner != "Nano Ready\r\n" {
		t.Fatalf("banner %q", left.HostLink.Banner)
	}
	right, _ := Load("right")
	if right.HostLink.TargetAddr != 0x11 {
		t.Fatalf("right target addr %#x", right.HostLink.TargetAddr)
	}
}

func TestConfig_Errors(t *testing.T) {
	if _, err := Load(""); errcode.Of(err) != errcode.InvalidConfig {
		t.Fatalf("empty device: %v", err)
	}
	if _, err := Load("nope"); errcode.Of(err) != errcode.NotFound {
		t.Fatalf("unknown device: %v", err)
	}

	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(string) ([]byte, bool) { return []byte("scanner: [unterminated"), true }
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })
	if _, err := Load("x"); errcode.Of(err) != errcode.InvalidConfig {
		t.Fatalf("bad yaml: %v", err)
	}
}

func TestConfig_FallbackKeepsScanning(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(string) ([]byte, bool) { return []byte("scanner: [unterminated"), true }
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	cfg, err := LoadOrFallback("left")
	if errcode.Of(err) != errcode.InvalidConfig {
		t.Fatalf("err = %v", err)
	}
	if cfg.Device != "left" || cfg.Scanner.Bus != "i2c0" || cfg.HostLink.Transport != types.TransportSerial {
		t.Fatalf("fallback %+v", cfg)
	}

	b := bus.NewBus(8)
	conn := b.NewConnection("test")
	ctx := context.WithValue(context.Background(), CtxDeviceKey, "left")
	NewConfigService().Start(ctx, conn)

	sub := conn.Subscribe(bus.T("config", "scanner"))
	select {
	case m := <-sub.Channel():
		if sc := m.Payload.(types.ScannerConfig); sc.Bus != "i2c0" {
			t.Fatalf("scanner section %+v", sc)
		}
	case <-time.After(time.Second):
		t.Fatal("no scanner section published")
	}
}
