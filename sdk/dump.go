package sdk

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// HexID renders bytes as colon separated uppercase hex, e.g. "E2:00:34:12".
func HexID(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	const digits = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(b)*3 - 1)
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteByte(digits[v>>4])
		sb.WriteByte(digits[v&0x0F])
	}
	return sb.String()
}

func newPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

// FormatTag renders one tag the way the interactive tools print it.
func FormatTag(index int, tag InventoryTag) string {
	p := newPrinter()
	var sb strings.Builder
	sb.WriteString(p.Sprintf("Tag %d:\n", index))
	sb.WriteString(p.Sprintf("  agc: %d\n", tag.AGC))
	sb.WriteString(p.Sprintf("  rssiLogI: %d\n", tag.RSSILogI))
	sb.WriteString(p.Sprintf("  rssiLogQ: %d\n", tag.RSSILogQ))
	sb.WriteString(p.Sprintf("  rssiLinI: %d\n", tag.RSSILinI))
	sb.WriteString(p.Sprintf("  rssiLinQ: %d\n", tag.RSSILinQ))
	sb.WriteString(p.Sprintf("  pc: %s\n", HexID(tag.PC)))
	sb.WriteString(p.Sprintf("  epcLen: %d\n", len(tag.EPC)))
	sb.WriteString(p.Sprintf("  epc: %s\n", HexID(tag.EPC)))
	sb.WriteString(p.Sprintf("  tidLen: %d\n", len(tag.TID)))
	sb.WriteString(p.Sprintf("  tid: %s\n", HexID(tag.TID)))
	return sb.String()
}

// FormatStatistics renders round statistics. Counters are grouped, the
// frequency is not.
func FormatStatistics(s Statistics) string {
	p := newPrinter()
	var sb strings.Builder
	sb.WriteString("Inventory statistics:\n")
	sb.WriteString(p.Sprintf("  tuningStatus: %s\n", s.TuningStatus))
	sb.WriteString(p.Sprintf("  roundCnt: %d\n", s.RoundCount))
	sb.WriteString(p.Sprintf("  sensitivity: %d\n", s.Sensitivity))
	sb.WriteString(p.Sprintf("  Q: %d\n", s.Q))
	sb.WriteString(p.Sprintf("  adc: %d\n", s.ADC))
	sb.WriteString(fmt.Sprintf("  frequency: %d kHz\n", s.Frequency))
	sb.WriteString(p.Sprintf("  tagCnt: %d\n", s.TagCount))
	sb.WriteString(p.Sprintf("  emptySlotCnt: %d\n", s.EmptySlotCount))
	sb.WriteString(p.Sprintf("  collisionCnt: %d\n", s.CollisionCount))
	sb.WriteString(p.Sprintf("  preambleErrCnt: %d\n", s.PreambleErrCount))
	sb.WriteString(p.Sprintf("  crcErrCnt: %d\n", s.CRCErrCount))
	return sb.String()
}

// FormatInventory renders every tag followed by the round statistics.
func FormatInventory(data *InventoryData) string {
	if data == nil {
		return ""
	}
	var sb strings.Builder
	for i, tag := range data.Tags {
		sb.WriteString(FormatTag(i+1, tag))
	}
	sb.WriteString(FormatStatistics(data.Statistics))
	return sb.String()
}
