package main

import (
	"context"
	"time"

	"github.com/swlendrum/ChessManager/bus"
	"github.com/swlendrum/ChessManager/platform"
	"github.com/swlendrum/ChessManager/services/config"
	"github.com/swlendrum/ChessManager/services/heartbeat"
	"github.com/swlendrum/ChessManager/services/hostlink"
	"github.com/swlendrum/ChessManager/services/scanner"
	"github.com/swlendrum/ChessManager/types"
)

// device selects the embedded config. Override with
// -ldflags "-X main.device=right".
var device = "left"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot, device", device)

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, device)

	// The transport decides who schedules scan passes, so peek at it before
	// the services start.
	cfg, err := config.LoadOrFallback(device)
	if err != nil {
		println("[main] config:", err.Error(), "(using fallback)")
	}
	serial := cfg.HostLink.Transport != types.TransportI2C

	println("[main] bootstrapping bus …")
	b := bus.NewBus(4)

	mon := b.NewConnection("monitor").Subscribe(bus.T("+", "state"))
	go func() {
		for m := range mon.Channel() {
			if st, ok := m.Payload.(types.ServiceState); ok {
				println("[monitor]", m.Topic.At(0).(string), st.Level, st.Status)
			}
		}
	}()

	scan := scanner.New(platform.OpenI2C, platform.NewReader())
	scan.Manual = serial
	scan.Start(ctx, b.NewConnection("scanner"))

	(&heartbeat.Service{}).Start(ctx, b.NewConnection("heartbeat"))

	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	eng := <-scan.Ready()
	println("[main] scanner ready,", eng.Topology().Slots(), "slots")

	link := hostlink.NewService(eng, eng.Cache(), platform.PortOpener(ctx), platform.OpenTarget)
	link.Start(ctx, b.NewConnection("hostlink"))

	select {}
}
