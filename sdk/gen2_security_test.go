package sdk

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stuhfl_go/internal/protocol/stuhfl"
	"stuhfl_go/internal/simulator"
)

func TestSecurityMessageLimits(t *testing.T) {
	conn, sim := newSimConn(t, simulator.Tag{EPC: epcA})
	ctx := context.Background()

	tooLong := SecurityMessage{Data: make([]byte, 33), BitLength: 8}
	overBits := SecurityMessage{Data: []byte{1, 2}, BitLength: 17}

	_, err := conn.Gen2Challenge(ctx, Gen2ChallengeInput{Message: tooLong})
	require.True(t, IsInvalidArgument(err))
	_, err = conn.Gen2Challenge(ctx, Gen2ChallengeInput{CSI: MaxCSI + 1})
	require.True(t, IsInvalidArgument(err))
	_, _, err = conn.Gen2Authenticate(ctx, Gen2AuthenticateInput{Message: overBits})
	require.True(t, IsInvalidArgument(err))
	_, _, err = conn.Gen2AuthComm(ctx, Gen2AuthCommInput{Message: tooLong})
	require.True(t, IsInvalidArgument(err))
	_, _, err = conn.Gen2SecureComm(ctx, Gen2SecureCommInput{Message: overBits})
	require.True(t, IsInvalidArgument(err))
	_, _, err = conn.Gen2KeyUpdate(ctx, Gen2KeyUpdateInput{Message: tooLong})
	require.True(t, IsInvalidArgument(err))
	_, _, err = conn.Gen2TagPrivilege(ctx, Gen2TagPrivilegeInput{Action: 2})
	require.True(t, IsInvalidArgument(err))
	_, _, err = conn.Gen2TagPrivilege(ctx, Gen2TagPrivilegeInput{Target: 4})
	require.True(t, IsInvalidArgument(err))
	for _, bits := range []int{0, MaxReadBufferBits + 1} {
		_, _, err = conn.Gen2ReadBuffer(ctx, Gen2ReadBufferInput{BitCount: bits})
		require.True(t, IsInvalidArgument(err))
	}
	_, _, err = conn.Gen2Untraceable(ctx, Gen2UntraceableInput{NewEPCLength: 32})
	require.True(t, IsInvalidArgument(err))

	require.Empty(t, sim.Requests())
}

func TestSecurityExchanges(t *testing.T) {
	conn, sim := newSimConn(t, simulator.Tag{EPC: epcA})
	ctx := context.Background()
	msg := SecurityMessage{Data: []byte{0x00, 0x11, 0x22, 0x33}, BitLength: 32}

	st, err := conn.Gen2Challenge(ctx, Gen2ChallengeInput{Immed: true, CSI: 1, Message: msg})
	require.NoError(t, err)
	require.True(t, st.OK())

	resp, st, err := conn.Gen2Authenticate(ctx, Gen2AuthenticateInput{SenRep: true, CSI: 1, Message: msg})
	require.NoError(t, err)
	require.True(t, st.OK())
	require.Equal(t, msg.Data, resp.Data)
	require.Equal(t, 32, resp.BitLength)

	resp, _, err = conn.Gen2KeyUpdate(ctx, Gen2KeyUpdateInput{KeyID: 2, Message: msg})
	require.NoError(t, err)
	require.Equal(t, msg.Data, resp.Data)

	resp, _, err = conn.Gen2TagPrivilege(ctx, Gen2TagPrivilegeInput{Action: 1, Target: 3, Privilege: 0xBEEF})
	require.NoError(t, err)
	require.Equal(t, []byte{0xBE, 0xEF}, resp.Data)

	resp, _, err = conn.Gen2ReadBuffer(ctx, Gen2ReadBufferInput{WordPtr: 0, BitCount: 20})
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte{0xA5}, 3), resp.Data)
	require.Equal(t, 20, resp.BitLength)

	res, st, err := conn.Gen2Untraceable(ctx, DefaultUntraceable())
	require.NoError(t, err)
	require.True(t, st.OK())
	require.Equal(t, uint8(0), res.TagErrorCode)

	rec, ok := sim.LastRequest(stuhfl.GroupSL, stuhfl.CodeGen2Untraceable)
	require.True(t, ok)
	require.Equal(t, uint8(HideTIDAll), rec.Payload.U8(stuhfl.FieldHideTID))
	require.Equal(t, uint8(RangeReduced), rec.Payload.U8(stuhfl.FieldRange))
}
