package sdk

import (
	"fmt"

	"github.com/pkg/errors"
)

type Antenna uint8

const (
	Antenna1 Antenna = 1
	Antenna2 Antenna = 2
	Antenna3 Antenna = 3
	Antenna4 Antenna = 4
)

func (a Antenna) valid() bool { return a >= Antenna1 && a <= Antenna4 }

// Password is a 32-bit access or kill password. The zero value skips the
// access step.
type Password [4]byte

func (p Password) IsZero() bool { return p == Password{} }

// MemoryBank addresses Gen2 and GB29768 tag memory.
type MemoryBank uint8

const (
	BankReserved MemoryBank = 0
	BankEPC      MemoryBank = 1
	BankTID      MemoryBank = 2
	BankUser     MemoryBank = 3
)

func (b MemoryBank) valid() bool { return b <= BankUser }

func (b MemoryBank) String() string {
	switch b {
	case BankReserved:
		return "reserved"
	case BankEPC:
		return "epc"
	case BankTID:
		return "tid"
	case BankUser:
		return "user"
	}
	return fmt.Sprintf("bank(%d)", uint8(b))
}

// Protocol selects the air interface of an inventory.
type Protocol uint8

const (
	ProtocolGen2 Protocol = iota
	ProtocolGb29768
	ProtocolIso6b
)

func (p Protocol) String() string {
	switch p {
	case ProtocolGen2:
		return "gen2"
	case ProtocolGb29768:
		return "gb29768"
	case ProtocolIso6b:
		return "iso6b"
	}
	return fmt.Sprintf("protocol(%d)", uint8(p))
}

type FreqHopMode uint8

const (
	HopIgnoreMin FreqHopMode = iota
	HopPowerSave
	HopFast
	HopFastFCC
)

type TuningAlgorithm uint8

const (
	TuneNone TuningAlgorithm = iota
	TuneFast
	TuneSlow
	TuneMedium
	TuneExact
	TuneGroupedExact
)

func (a TuningAlgorithm) valid() bool { return a <= TuneGroupedExact }

func (a TuningAlgorithm) String() string {
	switch a {
	case TuneNone:
		return "none"
	case TuneFast:
		return "fast"
	case TuneSlow:
		return "slow"
	case TuneMedium:
		return "medium"
	case TuneExact:
		return "exact"
	case TuneGroupedExact:
		return "grouped-exact"
	}
	return fmt.Sprintf("algorithm(%d)", uint8(a))
}

// ParseTuningAlgorithm accepts the names printed by String.
func ParseTuningAlgorithm(s string) (TuningAlgorithm, error) {
	for a := TuneNone; a <= TuneGroupedExact; a++ {
		if a.String() == s {
			return a, nil
		}
	}
	return TuneNone, errors.Errorf("unknown tuning algorithm %q", s)
}

type TuningStatus uint8

const (
	Untuned TuningStatus = iota
	Tuning
	Tuned
)

func (s TuningStatus) String() string {
	switch s {
	case Untuned:
		return "UNTUNED"
	case Tuning:
		return "TUNING"
	case Tuned:
		return "TUNED"
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
}

type Tari uint8

const (
	Tari6_25 Tari = iota
	Tari12_50
	Tari25_00
)

// Gen2LinkFrequency is the Gen2 backscatter link frequency.
type Gen2LinkFrequency uint8

const (
	Gen2BLF40 Gen2LinkFrequency = iota
	Gen2BLF160
	Gen2BLF213
	Gen2BLF256
	Gen2BLF320
	Gen2BLF640
)

type Coding uint8

const (
	CodingFM0 Coding = iota
	CodingMiller2
	CodingMiller4
	CodingMiller8
)

type GbTc uint8

const (
	GbTc6_25 GbTc = iota
	GbTc12_5
)

type GbLinkFrequency uint8

const (
	GbBLF64 GbLinkFrequency = iota
	GbBLF137
	GbBLF174
	GbBLF320
	GbBLF640
)

type Iso6bLinkFrequency uint8

const (
	Iso6bBLF40 Iso6bLinkFrequency = iota
	Iso6bBLF160
)

// QuerySel restricts which tags take part in a Gen2 Query.
type QuerySel uint8

const (
	SelAll   QuerySel = 0
	SelNotSL QuerySel = 2
	SelSL    QuerySel = 3
)

type Session uint8

const (
	S0 Session = iota
	S1
	S2
	S3
)

type Target uint8

const (
	TargetA Target = iota
	TargetB
)

// GbCondition restricts which tags take part in a GB29768 Query.
type GbCondition uint8

const (
	GbConditionAll GbCondition = iota
	GbConditionFlag0
	GbConditionFlag1
)

type RSSIMode uint8

const (
	RSSIRealtime     RSSIMode = 0x00
	RSSIPilotTone    RSSIMode = 0x04
	RSSISecondByte   RSSIMode = 0x06
	RSSIPeakDetector RSSIMode = 0x08
)

func (m RSSIMode) valid() bool {
	switch m {
	case RSSIRealtime, RSSIPilotTone, RSSISecondByte, RSSIPeakDetector:
		return true
	}
	return false
}

// SelectMode controls how a Select or Sort edits the reader's filter list.
type SelectMode uint8

const (
	ClearList SelectMode = iota
	AddToList
	ClearAndAdd
)

func (m SelectMode) valid() bool { return m <= ClearAndAdd }

// SelectTarget is the Gen2 Select target: an inventoried flag or SL.
type SelectTarget uint8

const (
	TargetS0 SelectTarget = iota
	TargetS1
	TargetS2
	TargetS3
	TargetSL
)

type SlotKind uint8

const (
	SlotEmpty SlotKind = iota
	SlotTag
	SlotCollision
	SlotPreambleError
	SlotCRCError
	SlotHeaderError
	SlotRxCountError
)

func (k SlotKind) String() string {
	switch k {
	case SlotEmpty:
		return "empty"
	case SlotTag:
		return "tag"
	case SlotCollision:
		return "collision"
	case SlotPreambleError:
		return "preamble-error"
	case SlotCRCError:
		return "crc-error"
	case SlotHeaderError:
		return "header-error"
	case SlotRxCountError:
		return "rx-count-error"
	}
	return fmt.Sprintf("slot(%d)", uint8(k))
}
