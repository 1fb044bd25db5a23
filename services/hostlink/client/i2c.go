package client

import (
	"periph.io/x/conn/v3/i2c"

	"github.com/swlendrum/ChessManager/errcode"
	"github.com/swlendrum/ChessManager/types"
)

// I2CClient drives a scanner running the I²C target transport. Each command
// is one write transaction followed by one read transaction, so the target
// latches the command before the read arrives.
type I2CClient struct {
	dev   *i2c.Dev
	Label string

	buf [types.BlockLen]byte
}

func NewI2C(bus i2c.Bus, addr uint16, label string) *I2CClient {
	return &I2CClient{dev: &i2c.Dev{Bus: bus, Addr: addr}, Label: label}
}

func (c *I2CClient) String() string { return c.Label + "@" + c.dev.String() }

func (c *I2CClient) Ping() error {
	p, err := c.command(types.CmdPing, 1)
	if err != nil {
		return err
	}
	return checkPing(c.Label, p[0])
}

func (c *I2CClient) GetBlock() (types.HalfBoard, error) {
	p, err := c.command(types.CmdGetBlock, types.BlockLen)
	if err != nil {
		return types.HalfBoard{}, err
	}
	return types.DecodeHalfBoard(p)
}

func (c *I2CClient) command(cmd byte, n int) ([]byte, error) {
	op := c.Label + " " + types.CommandName(cmd)
	if err := c.dev.Tx([]byte{cmd}, nil); err != nil {
		return nil, errcode.Wrap(errcode.BusError, op, err)
	}
	if err := c.dev.Tx(nil, c.buf[:n]); err != nil {
		return nil, errcode.Wrap(errcode.BusError, op, err)
	}
	return c.buf[:n], nil
}
