package transport

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Endpoint describes a serial-over-TCP bridge address.
type Endpoint struct {
	Host string
	Port int
}

func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// ParseEndpoint splits host:port.
func ParseEndpoint(addr string) (Endpoint, error) {
	host, portText, err := net.SplitHostPort(addr)
	if err != nil {
		return Endpoint{}, errors.Wrapf(err, "parse endpoint %q", addr)
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port <= 0 || port > 65535 {
		return Endpoint{}, errors.Errorf("invalid port in %q", addr)
	}
	if host == "" {
		return Endpoint{}, errors.Errorf("missing host in %q", addr)
	}
	return Endpoint{Host: host, Port: port}, nil
}

type tcpPort struct {
	endpoint Endpoint
	conn     net.Conn

	mu          sync.RWMutex
	readTimeout time.Duration
}

func dialTCP(ctx context.Context, addr string, opts Options) (Port, error) {
	endpoint, err := ParseEndpoint(addr)
	if err != nil {
		return nil, err
	}

	dialer := net.Dialer{Timeout: opts.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", endpoint.Address())
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", endpoint.Address())
	}
	return &tcpPort{endpoint: endpoint, conn: conn, readTimeout: opts.ReadTimeout}, nil
}

func (p *tcpPort) Read(b []byte) (int, error) {
	p.mu.RLock()
	timeout := p.readTimeout
	p.mu.RUnlock()

	_ = p.conn.SetReadDeadline(time.Now().Add(timeout))
	n, err := p.conn.Read(b)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return n, nil
		}
	}
	return n, err
}

func (p *tcpPort) Write(b []byte) (int, error) {
	p.mu.RLock()
	timeout := p.readTimeout
	p.mu.RUnlock()
	if timeout < time.Second {
		timeout = time.Second
	}

	_ = p.conn.SetWriteDeadline(time.Now().Add(timeout))
	return p.conn.Write(b)
}

func (p *tcpPort) SetReadTimeout(d time.Duration) error {
	if d <= 0 {
		return errors.New("read timeout must be positive")
	}
	p.mu.Lock()
	p.readTimeout = d
	p.mu.Unlock()
	return nil
}

func (p *tcpPort) Close() error {
	return p.conn.Close()
}
