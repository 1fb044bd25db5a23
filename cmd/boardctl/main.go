// Command boardctl talks to the half-board scanners from a host: an
// interactive shell for bench work, a script runner, and an MQTT publisher.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/golang/glog"

	"github.com/swlendrum/ChessManager/services/bridge"
	"github.com/swlendrum/ChessManager/services/hostlink/client"
)

// rightSerial is the USB serial number of the e–h scanner on the bench board.
const rightSerial = "A5069RR4"

var (
	leftEP   = flag.String("left", "", "left half endpoint (serial:NAME|i2c:BUS@ADDR), empty to skip")
	rightEP  = flag.String("right", "serial:"+rightSerial, "right half endpoint (serial:NAME|i2c:BUS@ADDR), empty to skip")
	baud     = flag.Int("baud", client.DefaultBaud, "serial baud rate")
	mqttURL  = flag.String("mqtt", "", "broker URL, mqtt://[user:pass@]host:port/prefix")
	serve    = flag.Bool("serve", false, "publish the board to the broker until interrupted")
	script   = flag.String("script", "", "run shell commands from FILE and exit")
	evalOnly = flag.Bool("e", false, "run the command given as arguments and exit")
	jsonOut  = flag.Bool("json", false, "print boards as JSON")
	identity = flag.Bool("raw-map", false, "skip the per-half channel maps")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	s := NewShell()
	defer s.Close()
	s.OutputJSON = *jsonOut
	if *identity {
		s.LeftMap, s.RightMap = client.IdentityMap, client.IdentityMap
	}

	for _, side := range []struct {
		name, ep string
	}{{"left", *leftEP}, {"right", *rightEP}} {
		if side.ep == "" {
			continue
		}
		ep, err := ParseEndpoint(side.ep)
		if err != nil {
			glog.Exitf("%s: %v", side.name, err)
		}
		if err := s.Attach(side.name, ep, *baud); err != nil {
			glog.Exitf("%s: %v", side.name, err)
		}
	}

	if *mqttURL != "" {
		sink, prefix, err := bridge.Dial(*mqttURL)
		if err != nil {
			glog.Exitf("mqtt: %v", err)
		}
		s.Pub = bridge.NewPublisher(s.Left, s.Right, sink, prefix)
		s.Pub.LeftMap, s.Pub.RightMap = s.LeftMap, s.RightMap
	}

	switch {
	case *serve:
		if s.Pub == nil {
			glog.Exit("-serve needs -mqtt")
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		s.Pub.Run(ctx)
	case *script != "":
		f, err := os.Open(*script)
		if err != nil {
			glog.Exit(err)
		}
		defer f.Close()
		if err := RunScript(f, s.Shell.Process); err != nil {
			glog.Exit(err)
		}
	case flag.NArg() > 0:
		if err := s.Shell.Process(flag.Args()...); err != nil {
			glog.Exit(err)
		}
	case *evalOnly:
		glog.Exit("command expected")
	default:
		s.Shell.Run()
	}
}
