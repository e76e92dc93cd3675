package sdk

import (
	"bytes"
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"stuhfl_go/internal/protocol/stuhfl"
	"stuhfl_go/internal/simulator"
)

func newGen2Reader(t *testing.T, tags ...simulator.Tag) (*Gen2Reader, *simulator.Reader) {
	t.Helper()
	conn, sim := newSimConn(t, tags...)
	reader, err := NewGen2Reader(context.Background(), conn, DefaultGen2Setup())
	require.NoError(t, err)
	return reader, sim
}

func TestGen2ReaderRefusesAccessUntilTuned(t *testing.T) {
	reader, sim := newGen2Reader(t, simulator.Tag{EPC: epcA})
	ctx := context.Background()

	require.False(t, reader.Tuned())
	require.False(t, sim.Tuned())
	require.Zero(t, sim.Count(stuhfl.GroupTune, stuhfl.CodeTuneChannel))

	_, _, err := reader.InventoryOnce(ctx)
	require.True(t, errors.Is(err, ErrNotTuned))
	_, _, err = reader.Read(ctx, Gen2ReadInput{Bank: BankEPC, ByteCount: 2})
	require.True(t, errors.Is(err, ErrNotTuned))
	_, err = reader.SelectEPC(ctx, epcA)
	require.True(t, errors.Is(err, ErrNotTuned))
	_, _, err = reader.ReadAlt(ctx, BankTID, 0, 1, Password{})
	require.True(t, errors.Is(err, ErrNotTuned))

	st, err := reader.Tune(ctx, TuneNone)
	require.NoError(t, err)
	require.True(t, st.OK())
	require.False(t, reader.Tuned())
	require.Zero(t, sim.Count(stuhfl.GroupTune, stuhfl.CodeTuneChannel))
	_, _, err = reader.InventoryOnce(ctx)
	require.True(t, errors.Is(err, ErrNotTuned))

	st, err = reader.Tune(ctx, TuneFast)
	require.NoError(t, err)
	require.True(t, st.OK())
	require.True(t, reader.Tuned())
	tune, ok := sim.LastRequest(stuhfl.GroupTune, stuhfl.CodeTuneChannel)
	require.True(t, ok)
	require.True(t, tune.Payload.Bool(stuhfl.FieldTuneAll))

	tags, st, err := reader.InventoryOnce(ctx)
	require.NoError(t, err)
	require.True(t, st.OK())
	require.Len(t, tags, 1)
	require.Equal(t, epcA, tags[0].EPC)
}

func TestGen2ReaderFailedSetup(t *testing.T) {
	conn, sim := newSimConn(t)
	sim.ForceStatus(stuhfl.GroupSet, stuhfl.ConfigTxRx, stuhfl.StatusParam)

	_, err := NewGen2Reader(context.Background(), conn, DefaultGen2Setup())
	require.Error(t, err)
}

func TestGen2ReaderSelectEPC(t *testing.T) {
	reader, sim := newGen2Reader(t, simulator.Tag{EPC: epcA}, simulator.Tag{EPC: epcB})
	ctx := context.Background()
	_, err := reader.Tune(ctx, TuneExact)
	require.NoError(t, err)

	_, err = reader.SelectEPC(ctx, epcB)
	require.NoError(t, err)
	res, st, err := reader.Read(ctx, Gen2ReadInput{Bank: BankEPC, WordPtr: 2, ByteCount: 12})
	require.NoError(t, err)
	require.True(t, st.OK())
	require.Equal(t, epcB, res.Data)

	rec, ok := sim.LastRequest(stuhfl.GroupSL, stuhfl.CodeGen2Select)
	require.True(t, ok)
	require.Equal(t, uint8(96), rec.Payload.U8(stuhfl.FieldMaskBitLength))
	require.Equal(t, uint32(0x20), rec.Payload.U32(stuhfl.FieldMaskBitPointer))

	_, err = reader.SelectEPC(ctx, bytes.Repeat([]byte{0xAA}, 32))
	require.NoError(t, err)
	rec, _ = sim.LastRequest(stuhfl.GroupSL, stuhfl.CodeGen2Select)
	require.Equal(t, uint8(0xFF), rec.Payload.U8(stuhfl.FieldMaskBitLength))
}

func TestGen2ReaderReadAlt(t *testing.T) {
	user := make([]byte, 420)
	for i := range user {
		user[i] = byte(i)
	}
	reader, sim := newGen2Reader(t, simulator.Tag{EPC: epcA, TID: tidA, User: user})
	ctx := context.Background()
	_, err := reader.Tune(ctx, TuneFast)
	require.NoError(t, err)

	data, st, err := reader.ReadAlt(ctx, BankTID, 0, 2, Password{})
	require.NoError(t, err)
	require.True(t, st.OK())
	require.Equal(t, tidA[:4], data)

	rec, ok := sim.LastRequest(stuhfl.GroupSL, stuhfl.CodeGen2GenericCmd)
	require.True(t, ok)
	require.Equal(t, []byte{0xC2, 0x80, 0x00, 0x80}, rec.Payload.Bytes(stuhfl.FieldData))
	require.Equal(t, uint16(26), rec.Payload.U16(stuhfl.FieldSendBitLength))
	require.Equal(t, uint16(48), rec.Payload.U16(stuhfl.FieldRcvBitLength))
	require.Equal(t, uint8(GenericCRCExpectHead), rec.Payload.U8(stuhfl.FieldGenericMode))
	require.Equal(t, uint8(0xFF), rec.Payload.U8(stuhfl.FieldNoResponseTime))
	require.True(t, rec.Payload.Bool(stuhfl.FieldAppendRN16))

	// Word 200 needs a two byte EBV.
	data, st, err = reader.ReadAlt(ctx, BankUser, 200, 2, Password{})
	require.NoError(t, err)
	require.True(t, st.OK())
	require.Equal(t, user[400:404], data)
	rec, _ = sim.LastRequest(stuhfl.GroupSL, stuhfl.CodeGen2GenericCmd)
	require.Equal(t, uint16(34), rec.Payload.U16(stuhfl.FieldSendBitLength))

	_, _, err = reader.ReadAlt(ctx, BankUser, 0, 0, Password{})
	require.True(t, IsInvalidArgument(err))
	_, _, err = reader.ReadAlt(ctx, BankUser, 0, 33, Password{})
	require.True(t, IsInvalidArgument(err))
}

func TestGen2ReaderCustomCommand(t *testing.T) {
	reader, sim := newGen2Reader(t, simulator.Tag{EPC: epcA})
	ctx := context.Background()
	_, err := reader.Tune(ctx, TuneFast)
	require.NoError(t, err)

	res, st, err := reader.CustomCommand(ctx, CustomCommandInput{
		Code: 0xE00C, Data: []byte{0x01}, DataBits: 8, ResponseBits: 8, CRC: true,
	})
	require.NoError(t, err)
	require.True(t, st.OK())
	require.Equal(t, []byte{0xE0, 0x0C, 0x01}, res.Data)

	rec, _ := sim.LastRequest(stuhfl.GroupSL, stuhfl.CodeGen2GenericCmd)
	require.Equal(t, uint8(GenericCRC), rec.Payload.U8(stuhfl.FieldGenericMode))
	require.Equal(t, uint16(24), rec.Payload.U16(stuhfl.FieldSendBitLength))
	require.Equal(t, uint16(8), rec.Payload.U16(stuhfl.FieldRcvBitLength))
	require.False(t, rec.Payload.Bool(stuhfl.FieldAppendRN16))
	require.Equal(t, uint8(0xFF), rec.Payload.U8(stuhfl.FieldNoResponseTime))

	_, _, err = reader.CustomCommand(ctx, CustomCommandInput{
		Code: 0xE00C, ResponseBits: 8, UseRN16: true, NoResponseTime: 0x40,
	})
	require.NoError(t, err)
	rec, _ = sim.LastRequest(stuhfl.GroupSL, stuhfl.CodeGen2GenericCmd)
	require.Equal(t, uint16(24), rec.Payload.U16(stuhfl.FieldRcvBitLength))
	require.True(t, rec.Payload.Bool(stuhfl.FieldAppendRN16))
	require.Equal(t, uint8(0x40), rec.Payload.U8(stuhfl.FieldNoResponseTime))

	_, _, err = reader.CustomCommand(ctx, CustomCommandInput{Code: 1, Data: []byte{1}, DataBits: 9})
	require.True(t, IsInvalidArgument(err))
}

func TestGen2ReaderInventoryRounds(t *testing.T) {
	reader, _ := newGen2Reader(t, simulator.Tag{EPC: epcA}, simulator.Tag{EPC: epcB})
	ctx := context.Background()
	_, err := reader.Tune(ctx, TuneFast)
	require.NoError(t, err)

	seen := map[string]int{}
	st, err := reader.Inventory(ctx, 2, func(tag InventoryTag) { seen[HexID(tag.EPC)]++ })
	require.NoError(t, err)
	require.True(t, st.OK())
	require.Equal(t, map[string]int{HexID(epcA): 2, HexID(epcB): 2}, seen)
}

func TestGen2ReaderInventoryRoundStatistics(t *testing.T) {
	reader, _ := newGen2Reader(t, simulator.Tag{EPC: epcA})
	ctx := context.Background()
	require.Equal(t, DefaultGen2Setup(), reader.Setup())

	_, _, err := reader.InventoryRound(ctx)
	require.True(t, errors.Is(err, ErrNotTuned))

	_, err = reader.Tune(ctx, TuneFast)
	require.NoError(t, err)
	data, st, err := reader.InventoryRound(ctx)
	require.NoError(t, err)
	require.True(t, st.OK())
	require.Len(t, data.Tags, 1)
	require.Equal(t, uint32(1), data.Statistics.RoundCount)
	require.Equal(t, Tuned, data.Statistics.TuningStatus)
}
