package sdk

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"stuhfl_go/internal/protocol/stuhfl"
	"stuhfl_go/internal/transport"
)

const DefaultTimeout = 2 * time.Second

// Port is the byte channel a Conn talks over.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(d time.Duration) error
}

// Opener opens a named port.
type Opener interface {
	Open(ctx context.Context, name string) (transport.Port, error)
}

// Options configures a Conn.
type Options struct {
	// Timeout bounds the wait for one response frame.
	Timeout time.Duration
	// Logger receives one trace entry per command. Nil discards.
	Logger logrus.FieldLogger
	// Opener resolves port names for Connect. Nil uses the serial drivers.
	Opener Opener
}

// Conn is one connection to a reader. All commands on a Conn are serialized.
type Conn struct {
	opener  Opener
	log     logrus.FieldLogger
	timeout time.Duration

	exec sync.Mutex
	rx   []byte
	owed int

	mu       sync.RWMutex
	port     Port
	portName string
	stop     *StopToken
}

func NewConn(opts Options) *Conn {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}
	if opts.Opener == nil {
		opts.Opener = transport.Opener{Options: transport.DefaultOptions()}
	}
	return &Conn{
		opener:  opts.Opener,
		log:     opts.Logger,
		timeout: opts.Timeout,
	}
}

// Connect opens the named port and adopts it.
func (c *Conn) Connect(ctx context.Context, portName string) error {
	portName = strings.TrimSpace(portName)
	if portName == "" {
		return invalidArg("Connect", "port", "empty name")
	}
	if c.IsConnected() {
		return &TransportError{Op: "Connect", Err: ErrAlreadyConnected}
	}

	port, err := c.opener.Open(ctx, portName)
	if err != nil {
		return &TransportError{Op: "Connect", Err: err}
	}
	if err := c.adopt(port, portName); err != nil {
		_ = port.Close()
		return err
	}
	c.log.WithField("port", portName).Info("Connect")
	return nil
}

// Attach adopts an already open port.
func (c *Conn) Attach(port Port, name string) error {
	if port == nil {
		return invalidArg("Attach", "port", "nil")
	}
	return c.adopt(port, name)
}

func (c *Conn) adopt(port Port, name string) error {
	c.exec.Lock()
	defer c.exec.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port != nil {
		return &TransportError{Op: "Connect", Err: ErrAlreadyConnected}
	}
	c.owed = 0
	c.rx = c.rx[:0]
	c.port = port
	c.portName = name
	return nil
}

// Disconnect closes the port. Commands afterwards fail with ErrNotConnected.
func (c *Conn) Disconnect() error {
	c.mu.Lock()
	port := c.port
	name := c.portName
	c.port = nil
	c.portName = ""
	c.mu.Unlock()
	if port == nil {
		return nil
	}

	c.log.WithField("port", name).Info("Disconnect")
	if err := port.Close(); err != nil {
		return &TransportError{Op: "Disconnect", Err: err}
	}
	return nil
}

func (c *Conn) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.port != nil
}

// PortName returns the name given to Connect or Attach.
func (c *Conn) PortName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.portName
}

func (c *Conn) currentPort() Port {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.port
}

// maxOwedReplies bounds how many late replies a Conn expects to discard.
const maxOwedReplies = 4

// ExecuteCommand sends one request and waits for the matching response.
// The reader status comes back as a value; only link and framing failures
// are errors. Nothing is retried.
//
// A request that timed out still owes a reply. Owed replies are drained
// before the next write, or skipped if they arrive after it, so a late
// reply never answers a later request.
func (c *Conn) ExecuteCommand(ctx context.Context, group, code byte, in []byte) (Status, []byte, error) {
	op := commandName(group, code)

	c.exec.Lock()
	defer c.exec.Unlock()

	port := c.currentPort()
	if port == nil {
		return 0, nil, &TransportError{Op: op, Err: ErrNotConnected}
	}
	if err := ctx.Err(); err != nil {
		return 0, nil, &TransportError{Op: op, Err: err}
	}

	buf := make([]byte, 1024)
	if err := c.drainOwed(port, buf); err != nil {
		return 0, nil, &TransportError{Op: op, Err: errors.Wrap(err, "drain")}
	}

	packet := stuhfl.BuildRequest(group, code, in)
	if _, err := port.Write(packet); err != nil {
		return 0, nil, &TransportError{Op: op, Err: errors.Wrap(err, "write")}
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	var (
		received int
		skipped  int
		stale    int
		foreign  *stuhfl.Frame
	)
	for {
		frames, remaining := stuhfl.ParseResponses(c.rx)
		c.rx = remaining
		for i := range frames {
			f := frames[i]
			switch {
			case c.owed > 0:
				c.owed--
				stale++
				skipped += len(f.Raw)
				c.log.WithField("response", commandName(f.Group, f.Code)).Debug("discarded late response")
			case f.Group != group || f.Code != code:
				foreign = &f
				skipped += len(f.Raw)
			default:
				return Status(f.Status), f.Data, nil
			}
		}

		err := ctx.Err()
		if err == nil && !time.Now().Before(deadline) {
			err = ErrTimeout
		}
		if err != nil {
			// Nothing of ours arrived, so our reply may still come. A
			// discarded frame means the owed reply was likely our own.
			if received == skipped && stale == 0 && c.owed < maxOwedReplies {
				c.owed++
			}
			c.rx = c.rx[:0]
			switch {
			case foreign != nil:
				return 0, nil, protocolErr(op, "unexpected response %s", commandName(foreign.Group, foreign.Code))
			case received > skipped && err == ErrTimeout:
				return 0, nil, protocolErr(op, "no valid response frame in %d bytes", received-skipped)
			}
			return 0, nil, &TransportError{Op: op, Err: err}
		}

		n, err := port.Read(buf)
		if err != nil {
			return 0, nil, &TransportError{Op: op, Err: errors.Wrap(err, "read")}
		}
		received += n
		c.rx = append(c.rx, buf[:n]...)
		if len(c.rx) > 2*stuhfl.MaxFrameLength {
			c.rx = c.rx[:0]
			return 0, nil, protocolErr(op, "response exceeds %d bytes", stuhfl.MaxFrameLength)
		}
	}
}

// drainOwed reads until the port goes quiet, discarding every complete
// frame as an owed reply. Leftover bytes are dropped either way.
func (c *Conn) drainOwed(port Port, buf []byte) error {
	defer func() { c.rx = c.rx[:0] }()
	if c.owed == 0 {
		return nil
	}

	deadline := time.Now().Add(c.timeout)
	for c.owed > 0 && time.Now().Before(deadline) {
		n, err := port.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		c.rx = append(c.rx, buf[:n]...)
		frames, remaining := stuhfl.ParseResponses(c.rx)
		c.rx = remaining
		for _, f := range frames {
			if c.owed == 0 {
				break
			}
			c.owed--
			c.log.WithField("response", commandName(f.Group, f.Code)).Debug("drained late response")
		}
	}
	return nil
}

// exchange runs one command and decodes its TLV response.
func (c *Conn) exchange(ctx context.Context, group, code byte, in *stuhfl.Writer) (Status, stuhfl.Record, error) {
	st, out, err := c.ExecuteCommand(ctx, group, code, in.Encode())
	if err != nil {
		return st, nil, err
	}
	rec, err := stuhfl.Decode(out)
	if err != nil {
		return st, nil, &ProtocolError{Op: commandName(group, code), Err: err}
	}
	return st, rec, nil
}
