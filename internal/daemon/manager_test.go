package daemon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"stuhfl_go/internal/config"
	"stuhfl_go/internal/protocol/stuhfl"
	"stuhfl_go/internal/simulator"
	"stuhfl_go/sdk"
)

var (
	epcOne = []byte{0xE2, 0x00, 0x00, 0x01}
	epcTwo = []byte{0xE2, 0x00, 0x00, 0x02}
)

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.Driver = config.DriverSim
	cfg.Timeout = 200 * time.Millisecond
	cfg.TagListSize = 8
	return cfg
}

func simDialer(sim *simulator.Reader) Dialer {
	return func(context.Context) (*sdk.Conn, error) {
		conn := sdk.NewConn(sdk.Options{Timeout: 200 * time.Millisecond})
		if err := conn.Attach(sim, "sim"); err != nil {
			return nil, err
		}
		return conn, nil
	}
}

type eventLog struct {
	mu     sync.Mutex
	events []TagEvent
}

func (l *eventLog) add(ev TagEvent) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) snapshot() []TagEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]TagEvent(nil), l.events...)
}

func TestManagerRunsUntilStopped(t *testing.T) {
	sim := simulator.New(simulator.Tag{EPC: epcOne}, simulator.Tag{EPC: epcTwo})
	var log eventLog
	m := New(testConfig(), simDialer(sim), log.add)
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Start(context.Background()))
	require.Eventually(t, func() bool { return len(log.snapshot()) >= 6 }, 2*time.Second, 5*time.Millisecond)
	m.Stop()

	st := m.Status()
	require.False(t, st.Running)
	require.True(t, st.Connected)
	require.Equal(t, "sim", st.Port)
	require.Equal(t, 2, st.UniqueSeen)
	require.Equal(t, "TUNED", st.Tuning)
	require.GreaterOrEqual(t, st.Rounds, uint64(3))

	firsts := map[string]int{}
	for _, ev := range log.snapshot() {
		if ev.First {
			firsts[ev.EPC]++
		}
	}
	require.Equal(t, map[string]int{sdk.HexID(epcOne): 1, sdk.HexID(epcTwo): 1}, firsts)
	require.Equal(t, 1, sim.Count(stuhfl.GroupTune, stuhfl.CodeTuneChannel))
}

func TestManagerFinishesAfterRounds(t *testing.T) {
	sim := simulator.New(simulator.Tag{EPC: epcOne})
	cfg := testConfig()
	cfg.Rounds = 3
	m := New(cfg, simDialer(sim), nil)
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, m.Start(context.Background()))
	require.Eventually(t, func() bool { return !m.Running() }, 2*time.Second, 5*time.Millisecond)

	st := m.Status()
	require.Equal(t, uint64(3), st.Rounds)
	require.Equal(t, uint64(3), st.TagReads)
	require.Equal(t, "OK", st.LastStatus)
	require.Equal(t, 3, sim.Count(stuhfl.GroupSL, stuhfl.CodeGen2Inventory))
	require.Len(t, m.Seen(), 1)
	require.Equal(t, 3, m.Seen()[0].Count)

	m.ResetSeen()
	require.Empty(t, m.Seen())
}

func TestManagerRecordsDialFailure(t *testing.T) {
	dial := func(context.Context) (*sdk.Conn, error) { return nil, errors.New("no reader") }
	m := New(testConfig(), dial, nil)

	require.NoError(t, m.Start(context.Background()))
	require.Eventually(t, func() bool { return m.Status().LastError != "" }, time.Second, 5*time.Millisecond)
	m.Stop()

	st := m.Status()
	require.False(t, st.Running)
	require.False(t, st.Connected)
	require.Contains(t, st.LastError, "no reader")
	require.Contains(t, m.StatusText(), "last_error=no reader")
}

func TestManagerConfigureFailureReleasesConn(t *testing.T) {
	sim := simulator.New(simulator.Tag{EPC: epcOne})
	sim.ForceStatus(stuhfl.GroupSet, stuhfl.ConfigTxRx, stuhfl.StatusParam)
	m := New(testConfig(), simDialer(sim), nil)

	_, _, err := m.InventoryOnce(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "configure reader")
	require.False(t, m.Status().Connected)
	require.Zero(t, sim.Count(stuhfl.GroupSL, stuhfl.CodeGen2Inventory))
}

func TestManagerInventoryOnce(t *testing.T) {
	sim := simulator.New(simulator.Tag{EPC: epcOne, TID: []byte{0xE2, 0x80, 0x11, 0x60}})
	var log eventLog
	m := New(testConfig(), simDialer(sim), log.add)
	t.Cleanup(func() { _ = m.Close() })

	data, st, err := m.InventoryOnce(context.Background())
	require.NoError(t, err)
	require.True(t, st.OK())
	require.Len(t, data.Tags, 1)
	require.Equal(t, epcOne, data.Tags[0].EPC)

	events := log.snapshot()
	require.Len(t, events, 1)
	require.True(t, events[0].First)
	require.Equal(t, uint64(1), events[0].Round)

	_, _, err = m.InventoryOnce(context.Background())
	require.NoError(t, err)
	events = log.snapshot()
	require.Len(t, events, 2)
	require.False(t, events[1].First)

	require.NoError(t, m.Start(context.Background()))
	_, _, err = m.InventoryOnce(context.Background())
	require.ErrorIs(t, err, ErrBusy)
	m.Stop()
}

type countingDialer struct {
	mu    sync.Mutex
	conns []*sdk.Conn
	gate  chan struct{}
	enter chan struct{}
}

func (d *countingDialer) dial(ctx context.Context) (*sdk.Conn, error) {
	if d.enter != nil {
		d.enter <- struct{}{}
	}
	if d.gate != nil {
		<-d.gate
	}
	conn, err := simDialer(simulator.New(simulator.Tag{EPC: epcOne}))(ctx)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.conns = append(d.conns, conn)
	d.mu.Unlock()
	return conn, nil
}

func (d *countingDialer) snapshot() []*sdk.Conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*sdk.Conn(nil), d.conns...)
}

func TestManagerConcurrentInventoryOnceDialsOnce(t *testing.T) {
	d := &countingDialer{}
	m := New(testConfig(), d.dial, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := m.InventoryOnce(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	conns := d.snapshot()
	require.Len(t, conns, 1)
	require.Equal(t, uint64(4), m.Status().Rounds)

	require.NoError(t, m.Close())
	for _, conn := range conns {
		require.False(t, conn.IsConnected())
	}
}

func TestManagerStartRefusedDuringInventoryOnce(t *testing.T) {
	d := &countingDialer{gate: make(chan struct{}), enter: make(chan struct{})}
	m := New(testConfig(), d.dial, nil)
	t.Cleanup(func() { _ = m.Close() })

	done := make(chan error, 1)
	go func() {
		_, _, err := m.InventoryOnce(context.Background())
		done <- err
	}()
	<-d.enter

	require.ErrorIs(t, m.Start(context.Background()), ErrBusy)
	require.False(t, m.Running())

	close(d.gate)
	require.NoError(t, <-done)
	require.NoError(t, m.Start(context.Background()))
	require.True(t, m.Running())
	m.Stop()
	require.Len(t, d.snapshot(), 1)
}

func TestManagerDropsConnOnTransportError(t *testing.T) {
	sim := simulator.New(simulator.Tag{EPC: epcOne})
	m := New(testConfig(), simDialer(sim), nil)

	_, _, err := m.InventoryOnce(context.Background())
	require.NoError(t, err)
	require.True(t, m.Status().Connected)

	sim.DropNextResponse()
	_, _, err = m.InventoryOnce(context.Background())
	require.True(t, sdk.IsTransport(err))
	require.False(t, m.Status().Connected)
}

func TestNewDialerSimulated(t *testing.T) {
	conn, err := NewDialer(testConfig(), nil)(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Disconnect() })
	require.True(t, conn.IsConnected())
	require.Equal(t, "sim", conn.PortName())

	data := sdk.NewInventoryData(8)
	st, err := conn.Gen2Inventory(context.Background(), sdk.DefaultInventoryOption(), data)
	require.NoError(t, err)
	require.True(t, st.OK())
	require.Len(t, data.Tags, len(simulator.DemoTags()))
}
