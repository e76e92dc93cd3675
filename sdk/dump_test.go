package sdk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeEBV(t *testing.T) {
	cases := []struct {
		in   uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7F}},
		{128, []byte{0x81, 0x00}},
		{200, []byte{0x81, 0x48}},
		{16383, []byte{0xFF, 0x7F}},
		{16384, []byte{0x81, 0x80, 0x00}},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, EncodeEBV(tc.in), "value %d", tc.in)
	}
}

func TestHexID(t *testing.T) {
	require.Equal(t, "", HexID(nil))
	require.Equal(t, "0A", HexID([]byte{0x0A}))
	require.Equal(t, "E2:00:34:12", HexID([]byte{0xE2, 0x00, 0x34, 0x12}))
}

func TestFormatInventory(t *testing.T) {
	data := &InventoryData{
		Tags: []InventoryTag{{AGC: 5, RSSILinI: -12, PC: []byte{0x30, 0x00}, EPC: epcA}},
		Statistics: Statistics{
			RoundCount:     1,
			TuningStatus:   Tuned,
			Frequency:      865700,
			TagCount:       1,
			EmptySlotCount: 12345,
		},
	}
	out := FormatInventory(data)

	require.True(t, strings.HasPrefix(out, "Tag 1:\n"))
	require.Contains(t, out, "  epc: E2:00:34:12:01:02:03:04:05:06:07:08\n")
	require.Contains(t, out, "  epcLen: 12\n")
	require.Contains(t, out, "  rssiLinI: -12\n")
	require.Contains(t, out, "  tidLen: 0\n")
	require.Contains(t, out, "Inventory statistics:\n")
	require.Contains(t, out, "  tuningStatus: TUNED\n")
	require.Contains(t, out, "  frequency: 865700 kHz\n")
	require.Contains(t, out, "  emptySlotCnt: 12,345\n")
	require.Equal(t, "", FormatInventory(nil))
}
