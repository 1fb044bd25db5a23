package client

import (
	"strings"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/swlendrum/ChessManager/errcode"
)

const (
	DefaultBaud = 115200
	// ReadTimeout bounds each reply.
	ReadTimeout = 300 * time.Millisecond
	// ResetDelay covers the bootloader pause after opening a port resets the
	// board.
	ResetDelay = 2 * time.Second
)

// PortLister lists serial ports. Replaced in tests.
var PortLister = enumerator.GetDetailedPortsList

// ResolvePort maps a USB serial number to a device path. Anything that
// looks like a path is returned unchanged.
func ResolvePort(nameOrSerial string) (string, error) {
	if strings.HasPrefix(nameOrSerial, "/") || strings.HasPrefix(strings.ToUpper(nameOrSerial), "COM") {
		return nameOrSerial, nil
	}
	ports, err := PortLister()
	if err != nil {
		return "", errcode.Wrap(errcode.NotFound, "resolve port", err)
	}
	for _, p := range ports {
		if p.IsUSB && p.SerialNumber == nameOrSerial {
			return p.Name, nil
		}
	}
	return "", errcode.New(errcode.NotFound, "resolve port", "no USB serial device with serial number "+nameOrSerial)
}

// OpenSerial resolves and opens a scanner's serial port and returns a
// client over it. The returned port must be closed by the caller.
func OpenSerial(nameOrSerial string, baud int, label string) (*Client, serial.Port, error) {
	name, err := ResolvePort(nameOrSerial)
	if err != nil {
		return nil, nil, err
	}
	if baud == 0 {
		baud = DefaultBaud
	}
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, nil, errcode.Wrap(errcode.NotFound, "open "+name, err)
	}
	if err := port.SetReadTimeout(ReadTimeout); err != nil {
		port.Close()
		return nil, nil, errcode.Wrap(errcode.BusError, "open "+name, err)
	}
	glog.Infof("[%s] connecting on %s", label, name)
	time.Sleep(ResetDelay)
	return New(port, label), port, nil
}
