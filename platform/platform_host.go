//go:build !(rp2040 || rp2350)

package platform

import (
	"context"
	"sync"
	"time"

	"go.bug.st/serial"
	"periph.io/x/conn/v3/driver/driverreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"tinygo.org/x/drivers"

	"github.com/swlendrum/ChessManager/drivers/tagreader"
	"github.com/swlendrum/ChessManager/errcode"
	"github.com/swlendrum/ChessManager/services/hostlink"
)

// serialReadTimeout bounds each pump read so cancellation is noticed.
const serialReadTimeout = 100 * time.Millisecond

var initOnce struct {
	sync.Once
	err error
}

func initDrivers() error {
	initOnce.Do(func() {
		_, initOnce.err = driverreg.Init()
	})
	return initOnce.err
}

// OpenI2C opens a registered periph bus by name ("/dev/i2c-1", "I2C1", "1").
// periph's i2c.Bus carries the same Tx signature as drivers.I2C.
func OpenI2C(id string) (drivers.I2C, error) {
	if err := initDrivers(); err != nil {
		return nil, errcode.Wrap(errcode.BusError, "platform.OpenI2C", err)
	}
	b, err := i2creg.Open(id)
	if err != nil {
		return nil, errcode.Wrap(errcode.UnknownBus, "platform.OpenI2C", err)
	}
	return b, nil
}

// PortOpener returns an opener for host serial devices. Pumps stop with ctx.
func PortOpener(ctx context.Context) hostlink.PortOpener {
	return func(name string, baud int) (hostlink.Port, error) {
		p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
		if err != nil {
			return nil, errcode.Wrap(errcode.NotFound, "platform.OpenPort", err)
		}
		if err := p.SetReadTimeout(serialReadTimeout); err != nil {
			p.Close()
			return nil, errcode.Wrap(errcode.Error, "platform.OpenPort", err)
		}
		go func() {
			<-ctx.Done()
			p.Close()
		}()
		recv := func(ctx context.Context, buf []byte) (int, error) {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			return p.Read(buf)
		}
		return NewStreamPort(ctx, recv, p), nil
	}
}

// OpenTarget is not available off-device: periph exposes no target mode.
func OpenTarget(id string) (hostlink.TargetBus, error) {
	return nil, errcode.New(errcode.Unsupported, "platform.OpenTarget", id)
}

// NewReader returns a reader that never sees a tag.
func NewReader() tagreader.Reader { return tagreader.None{} }
