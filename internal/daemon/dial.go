package daemon

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"stuhfl_go/internal/config"
	"stuhfl_go/internal/simulator"
	"stuhfl_go/internal/transport"
	"stuhfl_go/sdk"
)

// Dialer returns a connected Conn.
type Dialer func(ctx context.Context) (*sdk.Conn, error)

// NewDialer connects according to cfg. An empty port is resolved by USB
// identity; the sim driver attaches a virtual reader with DemoTags.
func NewDialer(cfg config.Config, logger logrus.FieldLogger) Dialer {
	if cfg.Simulated() {
		return func(context.Context) (*sdk.Conn, error) {
			conn := sdk.NewConn(sdk.Options{Timeout: cfg.Timeout, Logger: logger})
			if err := conn.Attach(simulator.New(simulator.DemoTags()...), "sim"); err != nil {
				return nil, err
			}
			return conn, nil
		}
	}

	return func(ctx context.Context) (*sdk.Conn, error) {
		port := cfg.Port
		if port == "" {
			found, err := transport.FindReaderPort()
			if err != nil {
				return nil, errors.Wrap(err, "auto-detect port")
			}
			port = found
		}
		conn := sdk.NewConn(sdk.Options{
			Timeout: cfg.Timeout,
			Logger:  logger,
			Opener:  transport.Opener{Options: cfg.TransportOptions()},
		})
		if err := conn.Connect(ctx, port); err != nil {
			return nil, errors.Wrapf(err, "connect %s", port)
		}
		return conn, nil
	}
}
