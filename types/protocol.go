package types

// ------------------------
// Host link command set
// ------------------------

const (
	CmdGetBlock byte = 0x01
	CmdPing     byte = 0x02
)

const (
	// ReplyPingOK answers PING on both transports.
	ReplyPingOK byte = 0x01
	// ReplySerialError answers an unknown command on the polled serial link.
	ReplySerialError byte = 0xFF
	// ReplyTargetError answers an unknown or missing command on the I²C target.
	ReplyTargetError byte = 0xEE
	// LatchIdle is the power-on command latch. It is neither command.
	LatchIdle byte = 0x00
)

// CommandName returns a short label for logs.
func CommandName(cmd byte) string {
	switch cmd {
	case CmdGetBlock:
		return "get_block"
	case CmdPing:
		return "ping"
	default:
		return "unknown"
	}
}
