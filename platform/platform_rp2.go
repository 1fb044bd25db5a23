//go:build rp2040 || rp2350

package platform

import (
	"context"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"

	"github.com/swlendrum/ChessManager/drivers/tagreader"
	"github.com/swlendrum/ChessManager/errcode"
	"github.com/swlendrum/ChessManager/services/hostlink"
)

// -----------------------------------------------------------------------------
// I²C controller
// -----------------------------------------------------------------------------

func i2cByID(id string) (*machine.I2C, machine.Pin, machine.Pin, bool) {
	switch id {
	case "i2c0":
		return machine.I2C0, machine.I2C0_SDA_PIN, machine.I2C0_SCL_PIN, true
	case "i2c1":
		return machine.I2C1, machine.I2C1_SDA_PIN, machine.I2C1_SCL_PIN, true
	}
	return nil, 0, 0, false
}

// OpenI2C configures a controller bus on its board-default pins at 400 kHz.
func OpenI2C(id string) (drivers.I2C, error) {
	hw, sda, scl, ok := i2cByID(id)
	if !ok {
		return nil, errcode.New(errcode.UnknownBus, "platform.OpenI2C", id)
	}
	if err := hw.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       sda,
		SCL:       scl,
	}); err != nil {
		return nil, errcode.Wrap(errcode.BusError, "platform.OpenI2C", err)
	}
	return hw, nil
}

// -----------------------------------------------------------------------------
// Serial
// -----------------------------------------------------------------------------

// PortOpener returns an opener for uart0/uart1. Pumps stop with ctx.
func PortOpener(ctx context.Context) hostlink.PortOpener {
	return func(name string, baud int) (hostlink.Port, error) {
		var hw *uartx.UART
		switch name {
		case "uart0":
			hw = uartx.UART0
		case "uart1":
			hw = uartx.UART1
		default:
			return nil, errcode.New(errcode.NotFound, "platform.OpenPort", name)
		}
		if err := hw.Configure(uartx.UARTConfig{BaudRate: uint32(baud)}); err != nil {
			return nil, errcode.Wrap(errcode.Error, "platform.OpenPort", err)
		}
		return NewStreamPort(ctx, hw.RecvSomeContext, hw), nil
	}
}

// -----------------------------------------------------------------------------
// I²C target
// -----------------------------------------------------------------------------

// rp2Target adapts machine.I2C target mode to hostlink.TargetBus.
type rp2Target struct{ hw *machine.I2C }

func (t *rp2Target) Listen(addr uint16) error { return t.hw.Listen(addr) }

func (t *rp2Target) WaitEvent(buf []byte) (hostlink.TargetEvent, int, error) {
	evt, n, err := t.hw.WaitForEvent(buf)
	if err != nil {
		return 0, 0, err
	}
	switch evt {
	case machine.I2CReceive:
		return hostlink.EventReceive, n, nil
	case machine.I2CRequest:
		return hostlink.EventRequest, 0, nil
	default:
		return hostlink.EventFinish, 0, nil
	}
}

func (t *rp2Target) Reply(p []byte) error { return t.hw.Reply(p) }

// OpenTarget configures a bus as an I²C target on its board-default pins.
func OpenTarget(id string) (hostlink.TargetBus, error) {
	hw, sda, scl, ok := i2cByID(id)
	if !ok {
		return nil, errcode.New(errcode.UnknownBus, "platform.OpenTarget", id)
	}
	if err := hw.Configure(machine.I2CConfig{
		Mode: machine.I2CModeTarget,
		SDA:  sda,
		SCL:  scl,
	}); err != nil {
		return nil, errcode.Wrap(errcode.BusError, "platform.OpenTarget", err)
	}
	return &rp2Target{hw: hw}, nil
}

// -----------------------------------------------------------------------------
// Tag reader
// -----------------------------------------------------------------------------

// NewReader returns the reader fitted behind the multiplexers. No RFID driver
// is linked yet, so every cell reads empty.
func NewReader() tagreader.Reader { return tagreader.None{} }
