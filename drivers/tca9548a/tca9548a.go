// Package tca9548a provides a driver for the TCA9548A / PCA9548A 1-to-8 I²C
// multiplexer.
//
// The device has no registers: a single written byte is the channel enable
// mask, and the downstream bus for every set bit is connected. This driver
// only ever enables one channel at a time:
//
//	d.Select(3)   // writes 0b00001000, then waits for the line to settle
//	d.Disable()   // writes 0x00
//
// Selection state is not cached; every Select issues a bus write.
package tca9548a

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// Default I²C address with A0..A2 tied low.
const Address = 0x70

// Channels is the number of downstream ports.
const Channels = 8

// DefaultSettle is the pause after a select before the downstream line is
// electrically stable.
const DefaultSettle = 300 * time.Microsecond

// Errors returned by the driver.
var (
	ErrChannel = errors.New("tca9548a: channel out of range")
)

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x70 if zero.
	Address uint16
	// Settle is the wait after each Select. Zero keeps DefaultSettle; a
	// negative value disables the wait (tests, buses with their own delay).
	Settle time.Duration
}

// Device wraps an I²C connection to one multiplexer.
type Device struct {
	bus     drivers.I2C
	Address uint16

	settle time.Duration
	buf    [1]byte
}

// New creates a Device. The I²C bus must already be configured.
// This function does not touch the device.
func New(bus drivers.I2C, addr uint16) Device {
	if addr == 0 {
		addr = Address
	}
	return Device{
		bus:     bus,
		Address: addr,
		settle:  DefaultSettle,
	}
}

// Configure applies optional config.
func (d *Device) Configure(cfg Config) {
	if cfg.Address != 0 {
		d.Address = cfg.Address
	}
	switch {
	case cfg.Settle < 0:
		d.settle = 0
	case cfg.Settle > 0:
		d.settle = cfg.Settle
	}
}

// Settle returns the configured post-select wait.
func (d *Device) Settle() time.Duration { return d.settle }

// Mask returns the enable byte for a single channel.
func Mask(channel uint8) byte { return 1 << channel }

// Select enables exactly one downstream channel and waits for it to settle.
// The bus error, if any, is returned after the settle wait so timing is the
// same on success and failure.
func (d *Device) Select(channel uint8) error {
	if channel >= Channels {
		return ErrChannel
	}
	d.buf[0] = Mask(channel)
	err := d.bus.Tx(d.Address, d.buf[:], nil)
	if d.settle > 0 {
		time.Sleep(d.settle)
	}
	return err
}

// Disable disconnects all downstream channels.
func (d *Device) Disable() error {
	d.buf[0] = 0
	return d.bus.Tx(d.Address, d.buf[:], nil)
}

// Bank is a set of multiplexers sharing one upstream bus, addressed by their
// bus address.
type Bank struct {
	devs []Device
}

// NewBank creates one Device per address with the same config.
func NewBank(bus drivers.I2C, addrs []uint16, cfg Config) *Bank {
	b := &Bank{devs: make([]Device, len(addrs))}
	for i, a := range addrs {
		b.devs[i] = New(bus, a)
		b.devs[i].Configure(Config{Settle: cfg.Settle})
	}
	return b
}

func (b *Bank) device(addr uint16) *Device {
	for i := range b.devs {
		if b.devs[i].Address == addr {
			return &b.devs[i]
		}
	}
	return nil
}

// Select enables channel on the multiplexer at addr.
func (b *Bank) Select(addr uint16, channel uint8) error {
	d := b.device(addr)
	if d == nil {
		return ErrUnknownAddress
	}
	return d.Select(channel)
}

// DisableAll writes 0x00 to every multiplexer. The first error is returned
// but every device is attempted.
func (b *Bank) DisableAll() error {
	var first error
	for i := range b.devs {
		if err := b.devs[i].Disable(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ErrUnknownAddress is returned by Bank.Select for an address not in the bank.
var ErrUnknownAddress = errors.New("tca9548a: unknown multiplexer address")
