package config

import (
	"context"

	"gopkg.in/yaml.v3"

	"github.com/swlendrum/ChessManager/bus"
	"github.com/swlendrum/ChessManager/errcode"
	"github.com/swlendrum/ChessManager/types"
)

// -----------------------------------------------------------------------------
// String constants (live in flash, not RAM)
// -----------------------------------------------------------------------------

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxDeviceKey = "device" // context key used for device ID
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Load parses the embedded config for device.
func Load(device string) (types.DeviceConfig, error) {
	var cfg types.DeviceConfig
	if device == "" {
		return cfg, errcode.New(errcode.InvalidConfig, serviceName, "missing device ID")
	}
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return cfg, errcode.New(errcode.NotFound, serviceName, "no embedded config for device: "+device)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errcode.Wrap(errcode.InvalidConfig, serviceName, err)
	}
	if cfg.Device == "" {
		cfg.Device = device
	}
	return cfg, nil
}

// Fallback is used when the embedded document is missing or unreadable:
// default topology on i2c0 and the polled serial link on uart0, so the
// board keeps scanning and answering.
func Fallback(device string) types.DeviceConfig {
	return types.DeviceConfig{
		Device:  device,
		Scanner: types.ScannerConfig{Bus: "i2c0"},
		HostLink: types.HostLinkConfig{
			Transport: types.TransportSerial,
			Port:      "uart0",
			Baud:      115200,
			Banner:    "Nano Ready\r\n",
		},
		Heartbeat: types.HeartbeatConfig{Interval: 10},
	}
}

// LoadOrFallback is Load, except that on failure it returns Fallback
// together with the load error.
func LoadOrFallback(device string) (types.DeviceConfig, error) {
	cfg, err := Load(device)
	if err != nil {
		return Fallback(device), err
	}
	return cfg, nil
}

// Sections splits a device config into its bus topics and payloads.
func Sections(cfg types.DeviceConfig) map[string]any {
	return map[string]any{
		"device":    cfg.Device,
		"scanner":   cfg.Scanner,
		"hostlink":  cfg.HostLink,
		"heartbeat": cfg.Heartbeat,
	}
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// publishConfig reads the device config from embedded data, or the fallback
// when that fails, and publishes each section as a retained message.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	cfg, err := LoadOrFallback(device)
	if err != nil {
		println("[config] using fallback:", err.Error())
	}
	for k, v := range Sections(cfg) {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), v, true))
	}
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		s.publishConfig(ctx, conn)
		println("[config] published")
	}()
}
