package tui

import (
	"encoding/hex"
	"fmt"
	"strings"

	"stuhfl_go/sdk"
)

// parseHexInput accepts "E2 80 11", "E2:80:11" or "0xE28011".
func parseHexInput(raw string) ([]byte, error) {
	clean := strings.NewReplacer(" ", "", ":", "", "-", "", "\t", "").Replace(strings.TrimSpace(raw))
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")
	if clean == "" {
		return nil, fmt.Errorf("empty input")
	}
	if len(clean)%2 != 0 {
		return nil, fmt.Errorf("odd number of hex digits")
	}
	out, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return out, nil
}

func firstEPCHex(epcs [][]byte) string {
	if len(epcs) == 0 {
		return ""
	}
	return strings.ReplaceAll(sdk.HexID(epcs[0]), ":", " ")
}

func errOrStatus(err error, st sdk.Status) string {
	if err != nil {
		return err.Error()
	}
	return st.String()
}

func infoLines(txrx sdk.TxRx, channels sdk.ChannelList) []string {
	lines := []string{
		"Reader settings:",
		fmt.Sprintf("  antenna: %d (alternate every %d)", txrx.UsedAntenna, txrx.AlternateAntennaInterval),
		fmt.Sprintf("  txOutputLevel: %d dB", txrx.TxOutputLevel),
		fmt.Sprintf("  rxSensitivity: %d dB", txrx.RxSensitivity),
		fmt.Sprintf("  channels: %d", len(channels.Items)),
	}
	for i, ch := range channels.Items {
		lines = append(lines, fmt.Sprintf("    %2d: %d kHz", i+1, ch.Frequency))
	}
	return lines
}

func statusTag(status string) string {
	text := strings.ToLower(status)
	switch {
	case strings.Contains(text, "failed"),
		strings.Contains(text, "error"),
		strings.Contains(text, "invalid"),
		strings.Contains(text, "not connected"):
		return "[ERR]"
	case strings.Contains(text, "no tag"),
		strings.Contains(text, "cancelled"),
		strings.Contains(text, "first"):
		return "[WARN]"
	case strings.Contains(text, "connected"),
		strings.Contains(text, "done"),
		strings.Contains(text, "selected"),
		strings.Contains(text, "received"):
		return "[OK]"
	default:
		return "[INFO ]"
	}
}

func onOff(value bool) string {
	if value {
		return "ON"
	}
	return "OFF"
}
