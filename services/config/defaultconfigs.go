package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw YAML for that device
// -----------------------------------------------------------------------------

// Files a–d. Polled serial over the USB UART.
const cfgLeft = `
device: left
scanner:
  bus: i2c0
  mux_addrs: [0x70, 0x71, 0x72, 0x73]
  rows_per_mux: 2
  base_row: 0
  settle_us: 300
  interval_ms: 10
  stats_every: 100
hostlink:
  transport: serial
  port: uart0
  baud: 115200
  banner: "Nano Ready\r\n"
heartbeat:
  interval: 10
`

// Files e–h. I²C target at 0x11 on the second controller.
const cfgRight = `
device: right
scanner:
  bus: i2c0
  mux_addrs: [0x70, 0x71, 0x72, 0x73]
  settle_us: 300
  interval_ms: 10
hostlink:
  transport: i2c
  target_bus: i2c1
  target_addr: 0x11
heartbeat:
  interval: 10
`

// Bench build on a Linux host: real multiplexers on /dev/i2c-1, commands
// over the USB gadget serial port.
const cfgBench = `
device: bench
scanner:
  bus: /dev/i2c-1
  settle_us: 300
  interval_ms: 10
hostlink:
  transport: serial
  port: /dev/ttyGS0
  baud: 115200
  banner: "Nano Ready\r\n"
heartbeat:
  interval: 5
`

var embeddedConfigs = map[string][]byte{
	"left":  []byte(cfgLeft),
	"right": []byte(cfgRight),
	"bench": []byte(cfgBench),
}
