package heartbeat

import (
	"context"
	"time"

	"github.com/swlendrum/ChessManager/bus"
	"github.com/swlendrum/ChessManager/types"
	"github.com/swlendrum/ChessManager/x/timex"
)

var (
	topicConfigHeartbeat = bus.T("config", "heartbeat")
	topicScanStats       = bus.T("scanner", "stats")
	topicLinkStats       = bus.T("hostlink", "stats")
	topicBeat            = bus.T("heartbeat", "beat")
)

const defaultInterval = 10 * time.Second

type Service struct {
	start time.Time

	seq        uint32
	scan       types.ScanStats
	link       types.LinkStats
	lastPasses uint32
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)
	scanSub := conn.Subscribe(topicScanStats)
	defer conn.Unsubscribe(scanSub)
	linkSub := conn.Subscribe(topicLinkStats)
	defer conn.Unsubscribe(linkSub)

	interval := defaultInterval
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("[heartbeat] stopping")
			return
		case <-tick.C:
			s.beat(conn, interval)
		case msg := <-scanSub.Channel():
			if st, ok := msg.Payload.(types.ScanStats); ok {
				s.scan = st
			}
		case msg := <-linkSub.Channel():
			if st, ok := msg.Payload.(types.LinkStats); ok {
				s.link = st
			}
		case msg := <-cfgSub.Channel():
			if c, ok := msg.Payload.(types.HeartbeatConfig); ok && c.Interval > 0 {
				interval = time.Duration(c.Interval) * time.Second
				tick.Reset(interval)
				println("[heartbeat] interval set to", c.Interval, "seconds")
			}
		}
	}
}

func (s *Service) beat(conn *bus.Connection, interval time.Duration) {
	s.seq++
	hb := types.Heartbeat{
		Seq:      s.seq,
		UptimeS:  int64(time.Since(s.start) / time.Second),
		Passes:   s.scan.Passes,
		PassRate: (s.scan.Passes - s.lastPasses) / uint32(max(interval/time.Second, 1)),
		Occupied: s.scan.Occupied,
		Commands: s.link.Commands,
		TSms:     timex.NowMs(),
	}
	s.lastPasses = s.scan.Passes
	println("[heartbeat]", hb.Seq, "up", hb.UptimeS, "s passes", hb.Passes, "occupied", hb.Occupied, "cmds", hb.Commands)
	conn.Publish(conn.NewMessage(topicBeat, hb, false))
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	s.start = time.Now()
	go s.serviceLoop(ctx, conn)
	return nil
}
