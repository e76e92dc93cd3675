package transport

import (
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/tarm/serial"
)

// tarmPort fixes its read timeout at open time, so changing it reopens the port.
type tarmPort struct {
	mu   sync.Mutex
	cfg  serial.Config
	port *serial.Port
}

func openTarm(name string, opts Options) (Port, error) {
	cfg := serial.Config{
		Name:        name,
		Baud:        opts.Baud,
		ReadTimeout: opts.ReadTimeout,
	}
	p, err := serial.OpenPort(&cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "open serial %s", name)
	}
	return &tarmPort{cfg: cfg, port: p}, nil
}

func (p *tarmPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	port := p.port
	p.mu.Unlock()
	if port == nil {
		return 0, io.ErrClosedPipe
	}
	n, err := port.Read(b)
	if err == io.EOF {
		// tarm reports an elapsed read timeout as EOF.
		return n, nil
	}
	return n, err
}

func (p *tarmPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	port := p.port
	p.mu.Unlock()
	if port == nil {
		return 0, io.ErrClosedPipe
	}
	return port.Write(b)
}

func (p *tarmPort) SetReadTimeout(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cfg.ReadTimeout == d {
		return nil
	}
	if p.port != nil {
		_ = p.port.Close()
	}
	p.cfg.ReadTimeout = d
	next, err := serial.OpenPort(&p.cfg)
	if err != nil {
		p.port = nil
		return errors.Wrapf(err, "reopen serial %s", p.cfg.Name)
	}
	p.port = next
	return nil
}

func (p *tarmPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}
