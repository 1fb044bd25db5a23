package types

// Device configuration, one document per physical half-board scanner.
// Sections are published retained on "config/<section>".

type DeviceConfig struct {
	Device    string          `yaml:"device"`
	Scanner   ScannerConfig   `yaml:"scanner"`
	HostLink  HostLinkConfig  `yaml:"hostlink"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
}

type ScannerConfig struct {
	Bus        string      `yaml:"bus"`          // "i2c0", "/dev/i2c-1", ...
	MuxAddrs   []uint16    `yaml:"mux_addrs"`    // topology order
	ChannelMap []LocalCell `yaml:"channel_map"`  // 8 entries; empty => default
	RowsPerMux int         `yaml:"rows_per_mux"` // 0 => 2
	BaseRow    int         `yaml:"base_row"`
	SettleUs   int         `yaml:"settle_us"`   // 0 => driver default
	IntervalMs int         `yaml:"interval_ms"` // pause between passes
	StatsEvery int         `yaml:"stats_every"` // passes between stats publications
}

// LocalCell is a (row, column) offset inside one multiplexer's sub-block.
type LocalCell struct {
	Row int `yaml:"row"`
	Col int `yaml:"col"`
}

type HostLinkConfig struct {
	Transport string `yaml:"transport"` // "serial" | "i2c"
	// Serial
	Port   string `yaml:"port"` // "uart0", "/dev/ttyGS0", ...
	Baud   int    `yaml:"baud"`
	Banner string `yaml:"banner"`
	// I²C target
	TargetBus  string `yaml:"target_bus"`
	TargetAddr uint16 `yaml:"target_addr"`
}

type HeartbeatConfig struct {
	Interval int `yaml:"interval"` // seconds
}

const (
	TransportSerial = "serial"
	TransportI2C    = "i2c"
)
