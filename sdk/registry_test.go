package sdk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stuhfl_go/internal/protocol/stuhfl"
)

func TestTxRxRoundTrip(t *testing.T) {
	conn, _ := newSimConn(t)
	ctx := context.Background()

	want := TxRx{TxOutputLevel: -8, RxSensitivity: -5, UsedAntenna: Antenna2, AlternateAntennaInterval: 7}
	st, err := conn.SetTxRx(ctx, want)
	require.NoError(t, err)
	require.True(t, st.OK())

	got, st, err := conn.GetTxRx(ctx)
	require.NoError(t, err)
	require.True(t, st.OK())
	require.Equal(t, want, got)
}

func TestInvalidConfigSendsNothing(t *testing.T) {
	conn, sim := newSimConn(t)
	ctx := context.Background()

	_, err := conn.SetTxRx(ctx, TxRx{TxOutputLevel: 3, UsedAntenna: Antenna1})
	require.True(t, IsInvalidArgument(err))

	_, err = conn.SetTxRx(ctx, TxRx{UsedAntenna: 9})
	require.True(t, IsInvalidArgument(err))

	list := ChannelList{Items: make([]Channel, MaxChannels+1)}
	for i := range list.Items {
		list.Items[i].Frequency = 865700
	}
	_, err = conn.SetChannelList(ctx, list)
	require.True(t, IsInvalidArgument(err))

	cfg := DefaultGen2InventoryCfg()
	cfg.AntiCollision.MaxQ = 16
	_, err = conn.SetGen2InventoryCfg(ctx, cfg)
	require.True(t, IsInvalidArgument(err))

	_, err = conn.SetFreqHop(ctx, FreqHop{MaxSendingTime: 10 * time.Millisecond, MinSendingTime: 20 * time.Millisecond})
	require.True(t, IsInvalidArgument(err))

	require.Empty(t, sim.Requests())
}

func TestGen2InventoryCfgRoundTrip(t *testing.T) {
	conn, _ := newSimConn(t)
	ctx := context.Background()

	want := DefaultGen2InventoryCfg()
	want.Options.ReadTID = true
	want.AntiCollision.StartQ = 3
	want.Query.Session = S2
	want.Query.Sel = SelSL

	_, err := conn.SetGen2InventoryCfg(ctx, want)
	require.NoError(t, err)
	got, st, err := conn.GetGen2InventoryCfg(ctx)
	require.NoError(t, err)
	require.True(t, st.OK())
	require.Equal(t, want, got)
}

func TestChannelListRoundTrip(t *testing.T) {
	conn, _ := newSimConn(t)
	ctx := context.Background()

	want, err := ChannelListForProfile(ProfileEurope)
	require.NoError(t, err)
	require.Len(t, want.Items, 4)

	_, err = conn.SetChannelList(ctx, want)
	require.NoError(t, err)
	got, _, err := conn.GetChannelList(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestProfiles(t *testing.T) {
	us, err := ChannelListForProfile(ProfileUSA)
	require.NoError(t, err)
	require.Len(t, us.Items, 50)
	require.Equal(t, uint32(902750), us.Items[0].Frequency)

	p, err := ParseProfile("cn2")
	require.NoError(t, err)
	require.Equal(t, ProfileChina2, p)

	_, err = ParseProfile("mars")
	require.Error(t, err)
}

func TestMeasurements(t *testing.T) {
	conn, sim := newSimConn(t)
	ctx := context.Background()

	rssi, st, err := conn.GetFreqRSSI(ctx, 866300)
	require.NoError(t, err)
	require.True(t, st.OK())
	require.Equal(t, uint32(866300), rssi.Frequency)

	_, _, err = conn.GetReflectedPower(ctx, 866300, 0)
	require.True(t, IsInvalidArgument(err))

	refl, _, err := conn.GetReflectedPower(ctx, 866300, Antenna1)
	require.NoError(t, err)
	require.Equal(t, int16(10), refl.ReflectedI)
	require.Equal(t, int16(-10), refl.ReflectedQ)

	caps, _, err := conn.GetTuningCaps(ctx, Antenna1, 0)
	require.NoError(t, err)
	require.Equal(t, DefaultCaps(), caps.Caps)

	rec, ok := sim.LastRequest(stuhfl.GroupGet, stuhfl.ConfigFreqReflectedPower)
	require.True(t, ok)
	require.Equal(t, uint8(1), rec.Payload.U8(stuhfl.FieldAntenna))
}
