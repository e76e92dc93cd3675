package sdk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stuhfl_go/internal/protocol/stuhfl"
	"stuhfl_go/internal/simulator"
)

func runnerOptions(rounds uint32) RunnerOptions {
	opt := DefaultInventoryOption()
	opt.RoundCount = rounds
	return RunnerOptions{Protocol: ProtocolGen2, Option: opt, TagListSize: 8}
}

func TestRunInventoryRoundCount(t *testing.T) {
	conn, sim := newSimConn(t, simulator.Tag{EPC: epcA})

	cycles, finished := 0, 0
	st, err := conn.RunInventory(context.Background(), runnerOptions(3),
		func(d *InventoryData) {
			cycles++
			require.Len(t, d.Tags, 1)
		},
		func(*InventoryData) { finished++ })
	require.NoError(t, err)
	require.True(t, st.OK())
	require.Equal(t, 3, cycles)
	require.Equal(t, 1, finished)
	require.Equal(t, 3, sim.Count(stuhfl.GroupSL, stuhfl.CodeGen2Inventory))
}

func TestStopFromInsideCallback(t *testing.T) {
	conn, sim := newSimConn(t, simulator.Tag{EPC: epcA})
	stop := NewStopToken()
	opts := runnerOptions(0)
	opts.Stop = stop

	cycles, finished := 0, 0
	_, err := conn.RunInventory(context.Background(), opts,
		func(*InventoryData) {
			cycles++
			if cycles == 2 {
				stop.Stop()
				stop.Stop()
			}
		},
		func(*InventoryData) { finished++ })
	require.NoError(t, err)
	require.Equal(t, 2, cycles)
	require.Equal(t, 1, finished)
	require.Equal(t, 2, sim.Count(stuhfl.GroupSL, stuhfl.CodeGen2Inventory))
}

func TestStopRunnerThroughConn(t *testing.T) {
	conn, _ := newSimConn(t, simulator.Tag{EPC: epcA})

	cycles := 0
	_, err := conn.RunInventory(context.Background(), runnerOptions(0), func(*InventoryData) {
		cycles++
		conn.StopRunner()
	}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, cycles)
}

func TestRunnerInvalidOptionsMakeNoCallbacks(t *testing.T) {
	conn, sim := newSimConn(t)

	calls := 0
	cb := func(*InventoryData) { calls++ }

	opts := runnerOptions(1)
	opts.Protocol = Protocol(7)
	_, err := conn.RunInventory(context.Background(), opts, cb, cb)
	require.True(t, IsInvalidArgument(err))

	opts = runnerOptions(1)
	opts.TagListSize = MaxTagListSize + 1
	_, err = conn.RunInventory(context.Background(), opts, cb, cb)
	require.True(t, IsInvalidArgument(err))

	require.Zero(t, calls)
	require.Empty(t, sim.Requests())
}

func TestRunnerEndsOnFatalStatus(t *testing.T) {
	conn, sim := newSimConn(t, simulator.Tag{EPC: epcA})
	sim.ForceStatus(stuhfl.GroupSL, stuhfl.CodeGen2Inventory, stuhfl.StatusIO)

	r, err := conn.NewRunner(runnerOptions(0))
	require.NoError(t, err)
	require.False(t, r.Next(context.Background()))
	require.Equal(t, StatusIO, r.Status())
	require.NoError(t, r.Err())
	require.False(t, r.Next(context.Background()))
	require.Equal(t, 1, sim.Count(stuhfl.GroupSL, stuhfl.CodeGen2Inventory))
}

func TestRunnerContinuesOnChipStatus(t *testing.T) {
	conn, sim := newSimConn(t)
	sim.ForceStatus(stuhfl.GroupSL, stuhfl.CodeGen2Inventory, stuhfl.StatusChipNoResp)

	cycles := 0
	st, err := conn.RunInventory(context.Background(), runnerOptions(2), func(*InventoryData) { cycles++ }, nil)
	require.NoError(t, err)
	require.Equal(t, StatusChipNoResp, st)
	require.Equal(t, 2, cycles)
}

func TestRunnerTransportErrorEndsRun(t *testing.T) {
	conn, sim := newSimConn(t, simulator.Tag{EPC: epcA})
	sim.DropNextResponse()

	finished := 0
	_, err := conn.RunInventory(context.Background(), runnerOptions(0), nil, func(d *InventoryData) {
		finished++
		require.Empty(t, d.Tags)
	})
	require.True(t, IsTransport(err))
	require.Equal(t, 1, finished)
}

func TestRunnerIterator(t *testing.T) {
	conn, _ := newSimConn(t, simulator.Tag{EPC: epcA})
	r, err := conn.NewRunner(runnerOptions(0))
	require.NoError(t, err)

	var rounds []uint32
	for round, data := range r.All(context.Background()) {
		require.Len(t, data.Tags, 1)
		rounds = append(rounds, round)
		if len(rounds) == 3 {
			break
		}
	}
	require.Equal(t, []uint32{1, 2, 3}, rounds)
	require.Equal(t, uint32(3), r.Rounds())
}

func TestInventoryDelayIsInterruptible(t *testing.T) {
	conn, _ := newSimConn(t, simulator.Tag{EPC: epcA})
	opts := runnerOptions(0)
	opts.Option.InventoryDelay = 5 * time.Second
	opts.Stop = NewStopToken()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	cycles := 0
	_, err := conn.RunInventory(ctx, opts, func(*InventoryData) { cycles++ }, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 1, cycles)
	require.Less(t, time.Since(start), 2*time.Second)

	opts.Stop = NewStopToken()
	r, err := conn.NewRunner(opts)
	require.NoError(t, err)
	require.True(t, r.Next(context.Background()))
	go func() {
		time.Sleep(30 * time.Millisecond)
		opts.Stop.Stop()
	}()
	start = time.Now()
	require.False(t, r.Next(context.Background()))
	require.Less(t, time.Since(start), 2*time.Second)
	require.True(t, r.Stopped())
	require.NoError(t, r.Err())
}

func TestStopTokenZeroValue(t *testing.T) {
	var token StopToken
	require.False(t, token.Stopped())
	token.Stop()
	require.True(t, token.Stopped())
	select {
	case <-token.Done():
	default:
		t.Fatal("done channel not closed")
	}
}
