package main

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"periph.io/x/conn/v3/driver/driverreg"
	"periph.io/x/conn/v3/i2c/i2creg"

	"github.com/swlendrum/ChessManager/errcode"
	"github.com/swlendrum/ChessManager/services/hostlink/client"
)

// Endpoint names one half-board scanner.
//
//	serial:<device or USB serial number>
//	i2c:<bus>@<addr>
type Endpoint struct {
	Kind string // "serial" or "i2c"
	Name string
	Addr uint16
}

func ParseEndpoint(s string) (Endpoint, error) {
	kind, rest, ok := strings.Cut(s, ":")
	if !ok || rest == "" {
		return Endpoint{}, errcode.New(errcode.InvalidConfig, "endpoint", s)
	}
	switch kind {
	case "serial":
		return Endpoint{Kind: kind, Name: rest}, nil
	case "i2c":
		name, addr, ok := strings.Cut(rest, "@")
		if !ok {
			return Endpoint{}, errcode.New(errcode.InvalidConfig, "endpoint", "missing @addr in "+s)
		}
		a, err := strconv.ParseUint(addr, 0, 7)
		if err != nil || a == 0 {
			return Endpoint{}, errcode.New(errcode.InvalidConfig, "endpoint", "bad address in "+s)
		}
		return Endpoint{Kind: kind, Name: name, Addr: uint16(a)}, nil
	}
	return Endpoint{}, errcode.New(errcode.InvalidConfig, "endpoint", "unknown kind "+kind)
}

// Open connects to the endpoint. The closer releases the port or bus.
func (e Endpoint) Open(baud int, label string) (client.Half, io.Closer, error) {
	switch e.Kind {
	case "serial":
		c, p, err := client.OpenSerial(e.Name, baud, label)
		if err != nil {
			return nil, nil, err
		}
		return c, p, nil
	case "i2c":
		if _, err := driverreg.Init(); err != nil {
			return nil, nil, errcode.Wrap(errcode.BusError, "endpoint", err)
		}
		b, err := i2creg.Open(e.Name)
		if err != nil {
			return nil, nil, errcode.Wrap(errcode.UnknownBus, "endpoint", err)
		}
		return client.NewI2C(b, e.Addr, label), b, nil
	}
	return nil, nil, errcode.New(errcode.InvalidConfig, "endpoint", e.Kind)
}

// RunScript splits each non-blank, non-comment line with shell quoting rules
// and hands the words to exec. It stops at the first failure.
func RunScript(r io.Reader, exec func(args ...string) error) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		args, err := shlex.Split(text)
		if err != nil {
			return errcode.Wrap(errcode.InvalidPayload, "script line "+strconv.Itoa(line), err)
		}
		if err := exec(args...); err != nil {
			return errcode.Wrap(errcode.Of(err), "script line "+strconv.Itoa(line), err)
		}
	}
	return sc.Err()
}
