// Package client talks to half-board scanners from the host: over a USB
// serial link (polled transport) or as I²C controller (target transport).
package client

import (
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/swlendrum/ChessManager/errcode"
	"github.com/swlendrum/ChessManager/types"
)

// Half is one scanner as seen from the host.
type Half interface {
	Ping() error
	GetBlock() (types.HalfBoard, error)
}

// inputResetter is implemented by serial ports that can discard stale
// input before a command.
type inputResetter interface {
	ResetInputBuffer() error
}

// Client speaks the command protocol over a byte stream.
//
// Reads must return (0, nil) or an error on timeout; a stream that blocks
// forever blocks the client.
type Client struct {
	rw    io.ReadWriter
	Label string

	buf [types.BlockLen]byte
}

func New(rw io.ReadWriter, label string) *Client {
	return &Client{rw: rw, Label: label}
}

// Ping sends PING and expects 0x01.
func (c *Client) Ping() error {
	p, err := c.command(types.CmdPing, 1)
	if err != nil {
		return err
	}
	return checkPing(c.Label, p[0])
}

// GetBlock fetches one complete scan pass.
func (c *Client) GetBlock() (types.HalfBoard, error) {
	p, err := c.command(types.CmdGetBlock, types.BlockLen)
	if err != nil {
		return types.HalfBoard{}, err
	}
	return types.DecodeHalfBoard(p)
}

func (c *Client) command(cmd byte, n int) ([]byte, error) {
	op := c.Label + " " + types.CommandName(cmd)
	if r, ok := c.rw.(inputResetter); ok {
		if err := r.ResetInputBuffer(); err != nil {
			return nil, errcode.Wrap(errcode.BusError, op, err)
		}
	}
	if _, err := c.rw.Write([]byte{cmd}); err != nil {
		return nil, errcode.Wrap(errcode.BusError, op, err)
	}
	got, err := readFull(c.rw, c.buf[:n])
	if err != nil {
		return nil, errcode.Wrap(errcode.BusError, op, err)
	}
	if got == 1 && n > 1 && isErrorByte(c.buf[0]) {
		return nil, errcode.New(errcode.Rejected, op, "device answered with error byte")
	}
	if got != n {
		glog.V(1).Infof("[%s] %s: expected %d bytes, got %d", c.Label, types.CommandName(cmd), n, got)
		return nil, &errcode.E{C: errcode.ShortReply, Op: op}
	}
	return c.buf[:n], nil
}

// readFull reads until buf is full, an error occurs or a read returns no
// data (serial read timeout).
func readFull(r io.Reader, buf []byte) (int, error) {
	off := 0
	for off < len(buf) {
		n, err := r.Read(buf[off:])
		off += n
		if err == io.EOF {
			return off, nil
		}
		if err != nil {
			if errcode.Of(err) == errcode.Timeout {
				return off, nil
			}
			return off, err
		}
		if n == 0 {
			return off, nil
		}
	}
	return off, nil
}

func isErrorByte(b byte) bool {
	return b == types.ReplySerialError || b == types.ReplyTargetError
}

func checkPing(label string, b byte) error {
	switch {
	case b == types.ReplyPingOK:
		return nil
	case isErrorByte(b):
		return errcode.New(errcode.Rejected, label+" ping", "device answered with error byte")
	default:
		return errcode.New(errcode.BadReply, label+" ping", "unexpected reply byte")
	}
}

// Poll pings then fetches, as the host does before each board read.
func Poll(h Half) (types.HalfBoard, error) {
	if err := h.Ping(); err != nil {
		return types.HalfBoard{}, err
	}
	return h.GetBlock()
}

// ReadBoard polls both halves, orients them and assembles the full board.
// A nil half reads as empty.
func ReadBoard(left, right Half, lm, rm ChannelMap) (FullBoard, error) {
	var l, r types.HalfBoard
	start := time.Now()
	if left != nil {
		h, err := Poll(left)
		if err != nil {
			return FullBoard{}, err
		}
		l = Orient(h, lm)
	}
	if right != nil {
		h, err := Poll(right)
		if err != nil {
			return FullBoard{}, err
		}
		r = Orient(h, rm)
	}
	glog.V(2).Infof("board read in %v", time.Since(start))
	return Assemble(l, r), nil
}
