package ipc

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stuhfl_go/internal/config"
	"stuhfl_go/internal/daemon"
	"stuhfl_go/internal/simulator"
	"stuhfl_go/sdk"
)

func startServer(t *testing.T) (string, *daemon.Manager) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Driver = config.DriverSim
	cfg.TagListSize = 8
	sim := simulator.New(simulator.Tag{EPC: []byte{0xE2, 0x00, 0x00, 0x01}}, simulator.Tag{EPC: []byte{0xE2, 0x00, 0x00, 0x02}})
	dial := func(context.Context) (*sdk.Conn, error) {
		conn := sdk.NewConn(sdk.Options{Timeout: 200 * time.Millisecond})
		return conn, conn.Attach(sim, "sim")
	}
	m := daemon.New(cfg, dial, nil)

	path := filepath.Join(t.TempDir(), "stuhfl.sock")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(path, m).Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
		_ = m.Close()
	})

	require.Eventually(t, func() bool {
		conn, err := net.Dial("unix", path)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)
	return path, m
}

func send(t *testing.T, path, typ string) Response {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := Send(ctx, path, Request{Type: typ, Source: "test"})
	require.NoError(t, err)
	return resp
}

func TestInventoryAndTags(t *testing.T) {
	path, _ := startServer(t)

	resp := send(t, path, "inventory")
	require.True(t, resp.OK, resp.Error)
	require.Equal(t, "OK", resp.ReaderStatus)
	require.ElementsMatch(t, []string{"E2:00:00:01", "E2:00:00:02"}, resp.EPCs)
	require.True(t, resp.Status.Connected)

	resp = send(t, path, "tags")
	require.True(t, resp.OK)
	require.Len(t, resp.Tags, 2)

	resp = send(t, path, "reset_tags")
	require.True(t, resp.OK)
	require.Zero(t, resp.Status.UniqueSeen)
}

func TestScanStartStop(t *testing.T) {
	path, m := startServer(t)

	resp := send(t, path, "scan_start")
	require.True(t, resp.OK)
	require.True(t, resp.Status.Running)
	require.Eventually(t, func() bool { return m.Status().Rounds > 0 }, 2*time.Second, 5*time.Millisecond)

	resp = send(t, path, "inventory")
	require.False(t, resp.OK)
	require.Equal(t, daemon.ErrBusy.Error(), resp.Error)

	resp = send(t, path, "SCAN_STOP")
	require.True(t, resp.OK)
	require.False(t, resp.Status.Running)
}

func TestUnsupportedAndInvalid(t *testing.T) {
	path, _ := startServer(t)

	resp := send(t, path, "turbo")
	require.False(t, resp.OK)
	require.Equal(t, "unsupported type: turbo", resp.Error)

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("{not json\n"))
	require.NoError(t, err)
	buf := make([]byte, 256)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Contains(t, string(buf[:n]), `"error":"invalid json"`)
}

func TestReleaseFreesReader(t *testing.T) {
	path, m := startServer(t)

	resp := send(t, path, "scan_start")
	require.True(t, resp.OK)
	require.Eventually(t, func() bool { return m.Status().Connected }, 2*time.Second, 5*time.Millisecond)

	resp = send(t, path, "release")
	require.True(t, resp.OK, resp.Error)
	require.False(t, resp.Status.Running)
	require.False(t, resp.Status.Connected)
	require.Empty(t, resp.Status.Port)
}
