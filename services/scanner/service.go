package scanner

import (
	"context"

	"github.com/swlendrum/ChessManager/bus"
	"github.com/swlendrum/ChessManager/drivers/tagreader"
	"github.com/swlendrum/ChessManager/drivers/tca9548a"
	"github.com/swlendrum/ChessManager/errcode"
	"github.com/swlendrum/ChessManager/types"
	"github.com/swlendrum/ChessManager/x/conv"
	"github.com/swlendrum/ChessManager/x/timex"

	"tinygo.org/x/drivers"
)

var (
	topicConfigScanner = bus.T("config", "scanner")
	topicState         = bus.T("scanner", "state")
	topicStats         = bus.T("scanner", "stats")
	topicCell          = bus.T("scanner", "cell")
)

// DefaultStatsEvery is the number of passes between scanner/stats updates.
const DefaultStatsEvery = 100

// BusOpener resolves a bus id from config ("i2c0", "/dev/i2c-1") to a
// configured bus.
type BusOpener func(id string) (drivers.I2C, error)

// Service owns the scan engine. It waits for the retained scanner config,
// builds the topology and multiplexer bank, then either runs the engine or
// hands it to a caller that schedules passes itself.
type Service struct {
	Open   BusOpener
	Reader tagreader.Reader

	// Manual leaves pass scheduling to the caller: Ready delivers the
	// engine and Start does not call Run.
	Manual bool

	conn       *bus.Connection
	engine     *Engine
	statsEvery uint32
	ready      chan *Engine
}

func New(open BusOpener, rd tagreader.Reader) *Service {
	return &Service{Open: open, Reader: rd, ready: make(chan *Engine, 1)}
}

// Ready yields the engine once it has been built.
func (s *Service) Ready() <-chan *Engine { return s.ready }

// Build assembles an engine from one scanner config section.
func Build(cfg types.ScannerConfig, i2c drivers.I2C, rd tagreader.Reader, opts Options) (*Engine, *tca9548a.Bank, error) {
	topo, err := TopologyFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	bank := tca9548a.NewBank(i2c, topo.MuxAddrs, tca9548a.Config{Settle: timex.Micros(cfg.SettleUs)})
	if cfg.IntervalMs != 0 {
		opts.Interval = timex.Millis(cfg.IntervalMs)
	}
	return NewEngine(topo, bank, rd, NewCache(), opts), bank, nil
}

func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	s.conn = conn
	s.publishState("idle", "awaiting_config")
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	sub := s.conn.Subscribe(topicConfigScanner)
	defer s.conn.Unsubscribe(sub)

	var cfg types.ScannerConfig
	for {
		select {
		case <-ctx.Done():
			s.publishState("stopped", "cancelled")
			return
		case m, ok := <-sub.Channel():
			if !ok {
				return
			}
			c, ok := m.Payload.(types.ScannerConfig)
			if !ok {
				println("[scanner] config payload has wrong type")
				s.publishState("error", string(errcode.InvalidPayload))
				continue
			}
			cfg = c
		}
		if err := s.build(cfg); err != nil {
			println("[scanner] build failed:", err.Error())
			s.publishState("error", string(errcode.Of(err)))
			continue
		}
		break
	}

	s.ready <- s.engine
	s.publishState("running", "ok")
	if s.Manual {
		<-ctx.Done()
	} else {
		s.engine.Run(ctx)
	}
	s.publishState("stopped", "cancelled")
}

func (s *Service) build(cfg types.ScannerConfig) error {
	if s.Open == nil {
		return errcode.New(errcode.UnknownBus, "scanner", "no bus opener")
	}
	i2c, err := s.Open(cfg.Bus)
	if err != nil {
		return errcode.Annotate(errcode.UnknownBus, "scanner", err)
	}
	e, bank, err := Build(cfg, i2c, s.Reader, Options{OnPass: s.onPass})
	if err != nil {
		return err
	}
	// Leave no channel enabled from before a warm reset.
	if err := bank.DisableAll(); err != nil {
		println("[scanner] disable all:", err.Error())
	}
	s.statsEvery = DefaultStatsEvery
	if cfg.StatsEvery > 0 {
		s.statsEvery = uint32(cfg.StatsEvery)
	}
	s.engine = e
	println("[scanner] ready: muxes", conv.Addrs(e.topo.MuxAddrs), "base row", e.topo.BaseRow)
	return nil
}

func (s *Service) onPass(p Pass) {
	for _, ch := range p.Changes {
		t := topicCell.Append(ch.Cell.Row).Append(ch.Cell.Col)
		s.conn.Publish(s.conn.NewMessage(t, ch, false))
	}
	if p.N%s.statsEvery == 0 {
		s.conn.Publish(s.conn.NewMessage(topicStats, types.ScanStats{
			Passes:       p.N,
			LastPassUs:   p.Duration.Microseconds(),
			Changes:      s.engine.Changes(),
			SelectErrors: s.engine.SelectErrors(),
			Occupied:     p.Board.Occupied(),
			TSms:         timex.NowMs(),
		}, true))
	}
}

func (s *Service) publishState(level, status string) {
	s.conn.Publish(s.conn.NewMessage(topicState, types.ServiceState{
		Level:  level,
		Status: status,
		TSms:   timex.NowMs(),
	}, true))
}
