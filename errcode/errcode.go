package errcode

// Code is a stable, wire-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK             Code = "ok"
	Busy           Code = "busy"
	Unsupported    Code = "unsupported"
	InvalidConfig  Code = "invalid_config"
	InvalidChannel Code = "invalid_channel"
	InvalidPayload Code = "invalid_payload"
	NotFound       Code = "not_found"

	UnknownBus Code = "unknown_bus"
	BusError   Code = "bus_error"
	Timeout    Code = "timeout"

	// Host link replies.
	ShortReply Code = "short_reply"
	BadReply   Code = "bad_reply"
	Rejected   Code = "rejected"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap returns an *E for op carrying cause err, or nil when err is nil.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// Annotate is Wrap, except that a cause already carrying a code keeps it.
func Annotate(c Code, op string, err error) error {
	if k := Of(err); k != Error && k != OK {
		c = k
	}
	return Wrap(c, op, err)
}

// New returns an *E with a message and no cause.
func New(c Code, op, msg string) error {
	return &E{C: c, Op: op, Msg: msg}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
