package hostlink

import (
	"context"
	"time"

	"github.com/swlendrum/ChessManager/bus"
	"github.com/swlendrum/ChessManager/errcode"
	"github.com/swlendrum/ChessManager/types"
	"github.com/swlendrum/ChessManager/x/strx"
	"github.com/swlendrum/ChessManager/x/timex"
)

var (
	topicConfigHostLink = bus.T("config", "hostlink")
	topicState          = bus.T("hostlink", "state")
	topicStats          = bus.T("hostlink", "stats")
)

// DefaultStatsInterval is the period of hostlink/stats updates.
const DefaultStatsInterval = 5 * time.Second

// DefaultBaud applies when the serial config leaves baud unset.
const DefaultBaud = 115200

// PortOpener opens the serial port named in config.
type PortOpener func(name string, baud int) (Port, error)

// TargetOpener opens the I²C peripheral named in config in target mode.
type TargetOpener func(name string) (TargetBus, error)

// Service starts the transport selected by the hostlink config section.
//
// On the serial transport the service owns the scan loop: Scan must be the
// engine and nothing else may schedule passes. If the port cannot be opened
// the service keeps scanning without a host. On the I²C transport the
// scanner runs on its own and Scan is unused.
type Service struct {
	Scan       Scanner
	Cache      Snapshotter
	OpenPort   PortOpener
	OpenTarget TargetOpener

	StatsInterval time.Duration

	conn   *bus.Connection
	stats  func() types.LinkStats
	failed chan error

	headless     context.CancelFunc
	headlessDone chan struct{}
}

func NewService(scan Scanner, cache Snapshotter, openPort PortOpener, openTarget TargetOpener) *Service {
	return &Service{
		Scan:       scan,
		Cache:      cache,
		OpenPort:   openPort,
		OpenTarget: openTarget,
		failed:     make(chan error, 1),
	}
}

func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	s.conn = conn
	s.publishState("idle", "awaiting_config")
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	sub := s.conn.Subscribe(topicConfigHostLink)
	defer s.conn.Unsubscribe(sub)

	for s.stats == nil {
		select {
		case <-ctx.Done():
			s.publishState("stopped", "cancelled")
			return
		case m, ok := <-sub.Channel():
			if !ok {
				return
			}
			cfg, ok := m.Payload.(types.HostLinkConfig)
			if !ok {
				s.publishState("error", string(errcode.InvalidPayload))
				continue
			}
			s.stopHeadless()
			if err := s.startTransport(ctx, cfg); err != nil {
				println("[hostlink] start failed:", err.Error())
				s.publishState("error", string(errcode.Of(err)))
				if s.ownsScan(cfg) {
					s.startHeadless(ctx)
				}
			}
		}
	}
	s.publishState("running", "ok")

	iv := s.StatsInterval
	if iv <= 0 {
		iv = DefaultStatsInterval
	}
	tick := time.NewTicker(iv)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			s.publishStats()
			s.publishState("stopped", "cancelled")
			return
		case err := <-s.failed:
			println("[hostlink] transport stopped:", err.Error())
			s.publishState("error", string(errcode.Of(err)))
			return
		case <-tick.C:
			s.publishStats()
		}
	}
}

func (s *Service) startTransport(ctx context.Context, cfg types.HostLinkConfig) error {
	switch strx.Coalesce(cfg.Transport, types.TransportSerial) {
	case types.TransportSerial:
		if s.OpenPort == nil || s.Scan == nil {
			return errcode.New(errcode.Unsupported, "hostlink", "serial transport not available")
		}
		baud := cfg.Baud
		if baud <= 0 {
			baud = DefaultBaud
		}
		port, err := s.OpenPort(cfg.Port, baud)
		if err != nil {
			return errcode.Annotate(errcode.NotFound, "hostlink", err)
		}
		p := NewPolled(s.Scan, s.Cache, port)
		p.Banner = cfg.Banner
		s.stats = func() types.LinkStats {
			return types.LinkStats{
				Transport: types.TransportSerial,
				Commands:  p.Commands(),
				Errors:    p.Errors(),
			}
		}
		go p.Run(ctx)
		println("[hostlink] serial on", cfg.Port)
		return nil

	case types.TransportI2C:
		if s.OpenTarget == nil {
			return errcode.New(errcode.Unsupported, "hostlink", "i2c target not available")
		}
		if cfg.TargetAddr == 0 || cfg.TargetAddr > 0x7f {
			return errcode.New(errcode.InvalidConfig, "hostlink", "target_addr must be a 7-bit address")
		}
		tb, err := s.OpenTarget(cfg.TargetBus)
		if err != nil {
			return errcode.Annotate(errcode.UnknownBus, "hostlink", err)
		}
		t := NewTarget(s.Cache)
		s.stats = func() types.LinkStats {
			return types.LinkStats{
				Transport:  types.TransportI2C,
				Commands:   t.Received(),
				Errors:     t.Errors(),
				Overwrites: t.Overwrites(),
			}
		}
		go func() {
			if err := t.Serve(ctx, tb, cfg.TargetAddr); err != nil && ctx.Err() == nil {
				s.failed <- err
			}
		}()
		return nil
	}
	return errcode.New(errcode.InvalidConfig, "hostlink", "unknown transport "+cfg.Transport)
}

// ownsScan reports whether cfg selects the transport that schedules passes.
func (s *Service) ownsScan(cfg types.HostLinkConfig) bool {
	return s.Scan != nil && strx.Coalesce(cfg.Transport, types.TransportSerial) == types.TransportSerial
}

// noHost is a Port with nothing attached.
type noHost struct{}

func (noHost) Buffered() int               { return 0 }
func (noHost) ReadByte() (byte, error)     { return 0, errcode.NotFound }
func (noHost) Write(p []byte) (int, error) { return len(p), nil }

// startHeadless keeps passes running while the serial port cannot be opened,
// so the cache stays current until a later config brings the host link up.
func (s *Service) startHeadless(ctx context.Context) {
	hctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.headless, s.headlessDone = cancel, done
	p := NewPolled(s.Scan, s.Cache, noHost{})
	println("[hostlink] no host port, scanning headless")
	go func() {
		defer close(done)
		p.Run(hctx)
	}()
}

// stopHeadless waits for the headless loop to finish its pass.
func (s *Service) stopHeadless() {
	if s.headless == nil {
		return
	}
	s.headless()
	<-s.headlessDone
	s.headless, s.headlessDone = nil, nil
}

func (s *Service) publishStats() {
	st := s.stats()
	st.TSms = timex.NowMs()
	s.conn.Publish(s.conn.NewMessage(topicStats, st, true))
}

func (s *Service) publishState(level, status string) {
	s.conn.Publish(s.conn.NewMessage(topicState, types.ServiceState{
		Level:  level,
		Status: status,
		TSms:   timex.NowMs(),
	}, true))
}
