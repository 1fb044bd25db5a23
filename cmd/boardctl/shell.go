package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/swlendrum/ChessManager/services/bridge"
	"github.com/swlendrum/ChessManager/services/hostlink/client"
)

// Shell holds the open halves behind the ishell commands.
type Shell struct {
	Left, Right client.Half
	LeftMap     client.ChannelMap
	RightMap    client.ChannelMap
	OutputJSON  bool

	// Pub is set when a broker URL was given.
	Pub *bridge.Publisher

	Shell   *ishell.Shell
	closers []io.Closer
	prev    *client.FullBoard
}

const shellKey = "$shell"

func NewShell() *Shell {
	s := &Shell{
		LeftMap:  client.LeftMap,
		RightMap: client.RightMap,
		Shell:    ishell.New(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt("board > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

func shellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Close releases every port and bus opened for the halves.
func (s *Shell) Close() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			glog.Warningf("close: %v", err)
		}
	}
	s.closers = nil
}

// Attach opens an endpoint as the left or right half.
func (s *Shell) Attach(side string, ep Endpoint, baud int) error {
	h, cl, err := ep.Open(baud, side)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, cl)
	switch side {
	case "left":
		s.Left = h
	case "right":
		s.Right = h
	default:
		return fmt.Errorf("unknown side %q", side)
	}
	glog.Infof("%s half on %s:%s", side, ep.Kind, ep.Name)
	return nil
}

func (s *Shell) half(args []string) (string, client.Half, error) {
	side := "left"
	if len(args) > 0 {
		side = args[0]
	}
	var h client.Half
	switch side {
	case "left", "l":
		side, h = "left", s.Left
	case "right", "r":
		side, h = "right", s.Right
	default:
		return "", nil, fmt.Errorf("unknown side %q", side)
	}
	if h == nil {
		return "", nil, fmt.Errorf("%s half not attached", side)
	}
	return side, h, nil
}

// ReadBoard reads both halves and remembers the result for move detection.
// It returns the detected move, if any.
func (s *Shell) ReadBoard() (client.FullBoard, string, error) {
	b, err := client.ReadBoard(s.Left, s.Right, s.LeftMap, s.RightMap)
	if err != nil {
		return b, "", err
	}
	var mv string
	if s.prev != nil {
		mv, _ = client.DetectMove(s.prev, &b)
	}
	next := b
	s.prev = &next
	return b, mv, nil
}

func (s *Shell) printBoard(c *ishell.Context, b *client.FullBoard) {
	if s.OutputJSON {
		sq := map[string]string{}
		for r := 0; r < 8; r++ {
			for col := 0; col < 8; col++ {
				if b[r][col].Present() {
					sq[client.Square(r, col)] = b[r][col].String()
				}
			}
		}
		out, err := json.Marshal(sq)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	var w bytes.Buffer
	client.Render(&w, b)
	c.Print(w.String())
}

var commands = []*ishell.Cmd{
	&PingCmd,
	&GetCmd,
	&BoardCmd,
	&WatchCmd,
	&PublishCmd,
}

var (
	// PingCmd checks one half answers.
	PingCmd = ishell.Cmd{
		Name: "ping",
		Help: "[left|right]",
		Func: func(c *ishell.Context) {
			side, h, err := shellFrom(c).half(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			start := time.Now()
			if err := h.Ping(); err != nil {
				c.Err(err)
				return
			}
			c.Printf("%s OK %s\n", side, time.Since(start).Round(time.Millisecond))
		},
	}

	// GetCmd prints one half as stored on its scanner, before remapping.
	GetCmd = ishell.Cmd{
		Name:    "get",
		Aliases: []string{"g"},
		Help:    "[left|right]",
		Func: func(c *ishell.Context) {
			side, h, err := shellFrom(c).half(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			hb, err := client.Poll(h)
			if err != nil {
				c.Err(err)
				return
			}
			files := "abcd"
			if side == "right" {
				files = "efgh"
			}
			var w bytes.Buffer
			client.RenderHalf(&w, hb, files)
			c.Print(w.String())
		},
	}

	// BoardCmd reads and prints the assembled board.
	BoardCmd = ishell.Cmd{
		Name:    "board",
		Aliases: []string{"b"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := shellFrom(c)
			b, mv, err := s.ReadBoard()
			if err != nil {
				c.Err(err)
				return
			}
			s.printBoard(c, &b)
			if mv != "" {
				c.Println("move", mv)
			}
		},
	}

	// WatchCmd polls the board and prints moves as they happen.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "[SECONDS] [INTERVAL_MS]",
		Func: func(c *ishell.Context) {
			s := shellFrom(c)
			dur, every := 10*time.Second, 500*time.Millisecond
			if len(c.Args) > 0 {
				n, err := strconv.Atoi(c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				dur = time.Duration(n) * time.Second
			}
			if len(c.Args) > 1 {
				n, err := strconv.Atoi(c.Args[1])
				if err != nil {
					c.Err(err)
					return
				}
				every = time.Duration(n) * time.Millisecond
			}
			deadline := time.Now().Add(dur)
			for time.Now().Before(deadline) {
				if _, mv, err := s.ReadBoard(); err != nil {
					c.Err(err)
				} else if mv != "" {
					c.Println(time.Now().Format("15:04:05"), mv)
				}
				time.Sleep(every)
			}
		},
	}

	// PublishCmd sends one board snapshot to the broker.
	PublishCmd = ishell.Cmd{
		Name:    "publish",
		Aliases: []string{"pub"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := shellFrom(c)
			if s.Pub == nil {
				c.Err(fmt.Errorf("no broker configured, start with -mqtt URL"))
				return
			}
			if err := s.Pub.Poll(); err != nil {
				c.Err(err)
				return
			}
			c.Println("published to", s.Pub.Prefix)
		},
	}
)
