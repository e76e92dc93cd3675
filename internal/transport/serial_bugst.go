package transport

import (
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

type bugstPort struct {
	serial.Port
}

func openBugst(name string, opts Options) (Port, error) {
	mode := &serial.Mode{
		BaudRate: opts.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "open serial %s", name)
	}
	if err := p.SetReadTimeout(opts.ReadTimeout); err != nil {
		_ = p.Close()
		return nil, errors.Wrap(err, "set read timeout")
	}
	return &bugstPort{Port: p}, nil
}

func (p *bugstPort) SetReadTimeout(d time.Duration) error {
	return p.Port.SetReadTimeout(d)
}
