package sdk

import (
	"fmt"

	"stuhfl_go/internal/protocol/stuhfl"
)

// Status is the reader-reported result of a command. It is a value, not an
// error: callers branch on it.
type Status uint16

const (
	StatusNone    = Status(stuhfl.StatusNone)
	StatusGeneric = Status(stuhfl.StatusGeneric)
	StatusNoMem   = Status(stuhfl.StatusNoMem)
	StatusBusy    = Status(stuhfl.StatusBusy)
	StatusIO      = Status(stuhfl.StatusIO)
	StatusTimeout = Status(stuhfl.StatusTimeout)
	StatusRequest = Status(stuhfl.StatusRequest)
	StatusNoMsg   = Status(stuhfl.StatusNoMsg)
	StatusParam   = Status(stuhfl.StatusParam)
	StatusProto   = Status(stuhfl.StatusProto)

	StatusChipNoResp   = Status(stuhfl.StatusChipNoResp)
	StatusChipHeader   = Status(stuhfl.StatusChipHeader)
	StatusChipPreamble = Status(stuhfl.StatusChipPreamble)
	StatusChipRxCount  = Status(stuhfl.StatusChipRxCount)
	StatusChipCRC      = Status(stuhfl.StatusChipCRC)
	StatusChipFIFO     = Status(stuhfl.StatusChipFIFO)
	StatusChipColl     = Status(stuhfl.StatusChipColl)

	StatusReflectedPower = Status(stuhfl.StatusReflectedPower)

	StatusGen2Select          = Status(stuhfl.StatusGen2Select)
	StatusGen2Access          = Status(stuhfl.StatusGen2Access)
	StatusGen2ReqRN           = Status(stuhfl.StatusGen2ReqRN)
	StatusGen2ChannelTimeout  = Status(stuhfl.StatusGen2ChannelTimeout)
	StatusGen2Other           = Status(stuhfl.StatusGen2Other)
	StatusGen2NotSupported    = Status(stuhfl.StatusGen2NotSupported)
	StatusGen2Privileges      = Status(stuhfl.StatusGen2Privileges)
	StatusGen2MemOverrun      = Status(stuhfl.StatusGen2MemOverrun)
	StatusGen2MemLocked       = Status(stuhfl.StatusGen2MemLocked)
	StatusGen2Crypto          = Status(stuhfl.StatusGen2Crypto)
	StatusGen2Encapsulation   = Status(stuhfl.StatusGen2Encapsulation)
	StatusGen2RespBufOverflow = Status(stuhfl.StatusGen2RespBufOverflow)
	StatusGen2SecurityTimeout = Status(stuhfl.StatusGen2SecurityTimeout)
	StatusGen2PowerShortage   = Status(stuhfl.StatusGen2PowerShortage)
	StatusGen2NonSpecific     = Status(stuhfl.StatusGen2NonSpecific)

	StatusGbPowerShortage   = Status(stuhfl.StatusGbPowerShortage)
	StatusGbPermission      = Status(stuhfl.StatusGbPermission)
	StatusGbStorageOverflow = Status(stuhfl.StatusGbStorageOverflow)
	StatusGbStorageLocked   = Status(stuhfl.StatusGbStorageLocked)
	StatusGbPassword        = Status(stuhfl.StatusGbPassword)
	StatusGbAuth            = Status(stuhfl.StatusGbAuth)
	StatusGbAccess          = Status(stuhfl.StatusGbAccess)
	StatusGbAccessTimeout   = Status(stuhfl.StatusGbAccessTimeout)
	StatusGbOther           = Status(stuhfl.StatusGbOther)

	StatusIso6bNoTag         = Status(stuhfl.StatusIso6bNoTag)
	StatusIso6bIRQ           = Status(stuhfl.StatusIso6bIRQ)
	StatusIso6bRegFIFO       = Status(stuhfl.StatusIso6bRegFIFO)
	StatusIso6bOther         = Status(stuhfl.StatusIso6bOther)
	StatusIso6bAccessTimeout = Status(stuhfl.StatusIso6bAccessTimeout)
)

var statusNames = map[Status]string{
	StatusNone:    "OK",
	StatusGeneric: "generic error",
	StatusNoMem:   "out of memory",
	StatusBusy:    "busy",
	StatusIO:      "io error",
	StatusTimeout: "timeout",
	StatusRequest: "request error",
	StatusNoMsg:   "no message",
	StatusParam:   "bad parameter",
	StatusProto:   "protocol error",

	StatusChipNoResp:   "chip: no response",
	StatusChipHeader:   "chip: header error",
	StatusChipPreamble: "chip: preamble error",
	StatusChipRxCount:  "chip: rx count error",
	StatusChipCRC:      "chip: crc error",
	StatusChipFIFO:     "chip: fifo error",
	StatusChipColl:     "chip: collision",

	StatusReflectedPower: "reflected power too high",

	StatusGen2Select:          "gen2: select error",
	StatusGen2Access:          "gen2: access error",
	StatusGen2ReqRN:           "gen2: req_rn error",
	StatusGen2ChannelTimeout:  "gen2: channel timeout",
	StatusGen2Other:           "gen2: other error",
	StatusGen2NotSupported:    "gen2: not supported",
	StatusGen2Privileges:      "gen2: insufficient privileges",
	StatusGen2MemOverrun:      "gen2: memory overrun",
	StatusGen2MemLocked:       "gen2: memory locked",
	StatusGen2Crypto:          "gen2: crypto suite error",
	StatusGen2Encapsulation:   "gen2: command not encapsulated",
	StatusGen2RespBufOverflow: "gen2: response buffer overflow",
	StatusGen2SecurityTimeout: "gen2: security timeout",
	StatusGen2PowerShortage:   "gen2: power shortage",
	StatusGen2NonSpecific:     "gen2: non-specific error",

	StatusGbPowerShortage:   "gb29768: power shortage",
	StatusGbPermission:      "gb29768: permission error",
	StatusGbStorageOverflow: "gb29768: storage overflow",
	StatusGbStorageLocked:   "gb29768: storage locked",
	StatusGbPassword:        "gb29768: password error",
	StatusGbAuth:            "gb29768: authentication error",
	StatusGbAccess:          "gb29768: access error",
	StatusGbAccessTimeout:   "gb29768: access timeout",
	StatusGbOther:           "gb29768: other error",

	StatusIso6bNoTag:         "iso6b: no tag",
	StatusIso6bIRQ:           "iso6b: irq error",
	StatusIso6bRegFIFO:       "iso6b: register fifo error",
	StatusIso6bOther:         "iso6b: other error",
	StatusIso6bAccessTimeout: "iso6b: access timeout",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status 0x%04X", uint16(s))
}

func (s Status) OK() bool { return s == StatusNone }

// Recoverable reports whether an inventory run may continue after a round
// ended with this status. Air-interface chip errors are part of normal
// operation; everything else stops the run.
func (s Status) Recoverable() bool {
	switch s {
	case StatusNone,
		StatusChipNoResp,
		StatusChipHeader,
		StatusChipPreamble,
		StatusChipRxCount,
		StatusChipCRC,
		StatusChipFIFO,
		StatusChipColl:
		return true
	}
	return false
}

// FirstFailure returns the first non-OK status, or StatusNone.
func FirstFailure(statuses ...Status) Status {
	for _, s := range statuses {
		if !s.OK() {
			return s
		}
	}
	return StatusNone
}
