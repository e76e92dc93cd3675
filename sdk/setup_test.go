package sdk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stuhfl_go/internal/protocol/stuhfl"
	"stuhfl_go/internal/simulator"
)

type command struct{ group, code byte }

func commands(records []simulator.Record) []command {
	out := make([]command, 0, len(records))
	for _, rec := range records {
		out = append(out, command{rec.Group, rec.Code})
	}
	return out
}

func TestConfigureGen2Order(t *testing.T) {
	conn, sim := newSimConn(t)

	st, err := conn.ConfigureGen2(context.Background(), DefaultGen2Setup())
	require.NoError(t, err)
	require.True(t, st.OK())

	require.Equal(t, []command{
		{stuhfl.GroupSet, stuhfl.ConfigTxRx},
		{stuhfl.GroupSet, stuhfl.ConfigGen2Inventory},
		{stuhfl.GroupSet, stuhfl.ConfigGen2Protocol},
		{stuhfl.GroupSet, stuhfl.ConfigFreqLBT},
		{stuhfl.GroupSet, stuhfl.ConfigChannelList},
		{stuhfl.GroupSet, stuhfl.ConfigFreqHop},
		{stuhfl.GroupSL, stuhfl.CodeGen2Select},
		{stuhfl.GroupGet, stuhfl.ConfigTxRx},
		{stuhfl.GroupTune, stuhfl.CodeTuneChannel},
	}, commands(sim.Requests()))
	require.True(t, sim.Tuned())

	chans, ok := sim.LastRequest(stuhfl.GroupSet, stuhfl.ConfigChannelList)
	require.True(t, ok)
	require.Len(t, chans.Payload.All(stuhfl.FieldChannel), 4)

	tune, ok := sim.LastRequest(stuhfl.GroupTune, stuhfl.CodeTuneChannel)
	require.True(t, ok)
	require.True(t, tune.Payload.Bool(stuhfl.FieldTuneAll))
}

func TestConfigureGen2SingleTagWithoutHopping(t *testing.T) {
	conn, sim := newSimConn(t)

	setup := Gen2Setup{Antenna: Antenna2, SingleTag: true, Algorithm: TuneNone}
	st, err := conn.ConfigureGen2(context.Background(), setup)
	require.NoError(t, err)
	require.True(t, st.OK())
	require.False(t, sim.Tuned())
	require.Equal(t, uint8(2), sim.Antenna())

	inv, ok := sim.LastRequest(stuhfl.GroupSet, stuhfl.ConfigGen2Inventory)
	require.True(t, ok)
	require.Equal(t, uint8(0), inv.Payload.U8(stuhfl.FieldStartQ))
	require.False(t, inv.Payload.Bool(stuhfl.FieldAdaptiveQ))

	chans, ok := sim.LastRequest(stuhfl.GroupSet, stuhfl.ConfigChannelList)
	require.True(t, ok)
	require.Len(t, chans.Payload.All(stuhfl.FieldChannel), 1)
}

func TestConfigureGen2ReturnsFirstFailure(t *testing.T) {
	conn, sim := newSimConn(t)
	sim.ForceStatus(stuhfl.GroupSet, stuhfl.ConfigFreqLBT, stuhfl.StatusParam)
	sim.ForceStatus(stuhfl.GroupSet, stuhfl.ConfigFreqHop, stuhfl.StatusBusy)

	st, err := conn.ConfigureGen2(context.Background(), DefaultGen2Setup())
	require.NoError(t, err)
	require.Equal(t, StatusParam, st)
	require.Equal(t, 1, sim.Count(stuhfl.GroupTune, stuhfl.CodeTuneChannel))
}

func TestConfigureGen2AbortsOnTransportError(t *testing.T) {
	conn, sim := newSimConn(t)
	sim.DropNextResponse()

	_, err := conn.ConfigureGen2(context.Background(), DefaultGen2Setup())
	require.True(t, IsTransport(err))
	require.Len(t, sim.Requests(), 1)
}

func TestConfigureGen2Validation(t *testing.T) {
	conn, sim := newSimConn(t)
	_, err := conn.ConfigureGen2(context.Background(), Gen2Setup{Antenna: 5})
	require.True(t, IsInvalidArgument(err))
	require.Empty(t, sim.Requests())
}
