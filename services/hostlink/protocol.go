// Package hostlink answers host commands from the half-board cache.
//
// Two transports share one command set:
//
//	0x01 GET_BLOCK  224 bytes, one complete scan pass, row-major
//	0x02 PING       0x01
//	other           error byte (0xFF polled serial, 0xEE I²C target)
//
// Serving a command never modifies the cache.
package hostlink

import (
	"github.com/swlendrum/ChessManager/types"
)

// Snapshotter hands out complete scan passes in wire form. Implemented by
// scanner.Cache.
type Snapshotter interface {
	AppendBlock(dst []byte) []byte
}

// Scanner performs one scan pass. Implemented by scanner.Engine.
type Scanner interface {
	ScanAll()
}

// Respond appends the reply for cmd to dst. Unknown commands get errByte.
func Respond(cmd byte, cache Snapshotter, errByte byte, dst []byte) []byte {
	switch cmd {
	case types.CmdGetBlock:
		return cache.AppendBlock(dst)
	case types.CmdPing:
		return append(dst, types.ReplyPingOK)
	default:
		return append(dst, errByte)
	}
}

// Known reports whether cmd is part of the command set.
func Known(cmd byte) bool {
	return cmd == types.CmdGetBlock || cmd == types.CmdPing
}
