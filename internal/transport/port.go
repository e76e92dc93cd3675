package transport

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Port is a byte-oriented duplex channel to a reader. Read returns (0, nil)
// when the read timeout elapses without data.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(d time.Duration) error
}

// Driver names accepted by Open.
const (
	DriverBugst = "bugst"
	DriverTarm  = "tarm"
	DriverTCP   = "tcp"
)

const DefaultBaud = 115200

// Options selects how a port name is opened.
type Options struct {
	Driver      string
	Baud        int
	ReadTimeout time.Duration
	DialTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		Driver:      DriverBugst,
		Baud:        DefaultBaud,
		ReadTimeout: 50 * time.Millisecond,
		DialTimeout: 3 * time.Second,
	}
}

func normalizeOptions(opts Options) Options {
	def := DefaultOptions()
	opts.Driver = strings.ToLower(strings.TrimSpace(opts.Driver))
	switch opts.Driver {
	case DriverBugst, DriverTarm, DriverTCP:
	default:
		opts.Driver = def.Driver
	}
	if opts.Baud <= 0 {
		opts.Baud = def.Baud
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = def.ReadTimeout
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = def.DialTimeout
	}
	return opts
}

// Open opens the named port. Names with a tcp:// prefix always use the TCP
// bridge regardless of the configured driver.
func Open(ctx context.Context, name string, opts Options) (Port, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("empty port name")
	}
	opts = normalizeOptions(opts)

	if addr, ok := strings.CutPrefix(name, "tcp://"); ok {
		return dialTCP(ctx, addr, opts)
	}

	switch opts.Driver {
	case DriverTarm:
		return openTarm(name, opts)
	case DriverTCP:
		return dialTCP(ctx, name, opts)
	default:
		return openBugst(name, opts)
	}
}

// Opener adapts Open to a fixed set of options.
type Opener struct {
	Options Options
}

func (o Opener) Open(ctx context.Context, name string) (Port, error) {
	return Open(ctx, name, o.Options)
}
