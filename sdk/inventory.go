package sdk

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"stuhfl_go/internal/protocol/stuhfl"
)

const (
	MaxPCBytes  = 2
	MaxXPCBytes = 4
	MaxEPCBytes = 62
	MaxTIDBytes = 12

	DefaultTagListSize = 64
	MaxTagListSize     = 0xFFFF
	MaxSlotInfo        = 1 << 15
)

type InventoryReport struct {
	Heartbeat bool
	SlotInfo  bool
}

type InventoryOption struct {
	RSSIMode RSSIMode
	// RoundCount is used by runners; zero runs until stopped.
	RoundCount     uint32
	InventoryDelay time.Duration
	Report         InventoryReport
}

func DefaultInventoryOption() InventoryOption {
	return InventoryOption{RSSIMode: RSSIPeakDetector}
}

func (o InventoryOption) validate(op string) error {
	if !o.RSSIMode.valid() {
		return invalidArg(op, "RSSIMode", "0x%02X unknown", uint8(o.RSSIMode))
	}
	if o.InventoryDelay < 0 || o.InventoryDelay > 0xFFFF*time.Millisecond {
		return invalidArg(op, "InventoryDelay", "%s out of range 0..65535ms", o.InventoryDelay)
	}
	return nil
}

type InventoryTag struct {
	SlotID    uint32
	Timestamp uint32
	Antenna   Antenna
	AGC       uint8
	RSSILogI  uint8
	RSSILogQ  uint8
	RSSILinI  int8
	RSSILinQ  int8
	PC        []byte
	XPC       []byte
	EPC       []byte
	TID       []byte
}

// Statistics summarizes one inventory round.
type Statistics struct {
	Timestamp           uint32
	RoundCount          uint32
	TuningStatus        TuningStatus
	RSSILogMean         uint8
	Sensitivity         int8
	Q                   uint8
	Frequency           uint32
	ADC                 uint16
	TagCount            uint32
	EmptySlotCount      uint32
	CollisionCount      uint32
	SlotCount           uint32
	PreambleErrCount    uint32
	CRCErrCount         uint32
	HeaderErrCount      uint32
	RxCountErrCount     uint32
	ResendAckCount      uint32
	NoiseSuspicionCount uint32
}

type SlotInfo struct {
	SlotID uint32
	Kind   SlotKind
}

// InventoryData is the caller-owned result buffer of an inventory round.
// cap(Tags) is the tag list size offered to the reader.
type InventoryData struct {
	Tags       []InventoryTag
	Statistics Statistics
	Slots      []SlotInfo
}

func NewInventoryData(tagListSize int) *InventoryData {
	if tagListSize <= 0 {
		tagListSize = DefaultTagListSize
	}
	return &InventoryData{Tags: make([]InventoryTag, 0, tagListSize)}
}

func (d *InventoryData) reset() {
	d.Tags = d.Tags[:0]
	d.Statistics = Statistics{}
	d.Slots = d.Slots[:0]
}

func (o InventoryOption) encode(tagListSizeMax int) *stuhfl.Writer {
	return stuhfl.NewWriter().
		U8(stuhfl.FieldRSSIMode, uint8(o.RSSIMode)).
		U32(stuhfl.FieldRoundCount, 1).
		U16(stuhfl.FieldInventoryDelay, uint16(o.InventoryDelay/time.Millisecond)).
		Bool(stuhfl.FieldReportHeartbeat, o.Report.Heartbeat).
		Bool(stuhfl.FieldReportSlotInfo, o.Report.SlotInfo).
		U16(stuhfl.FieldTagListSizeMax, uint16(tagListSizeMax))
}

func decodeInventory(op string, rec stuhfl.Record, data *InventoryData) error {
	size := int(rec.U16(stuhfl.FieldTagListSize))
	if size > cap(data.Tags) {
		return protocolErr(op, "tagListSize %d exceeds tagListSizeMax %d", size, cap(data.Tags))
	}
	raw := rec.All(stuhfl.FieldTag)
	if len(raw) != size {
		return protocolErr(op, "tagListSize %d but %d tags encoded", size, len(raw))
	}
	for _, v := range raw {
		tag, err := decodeTag(op, v)
		if err != nil {
			return err
		}
		data.Tags = append(data.Tags, tag)
	}

	stats, err := rec.Sub(stuhfl.FieldStatistics)
	if err != nil {
		return &ProtocolError{Op: op, Err: err}
	}
	data.Statistics = decodeStatistics(stats)

	slots := rec.All(stuhfl.FieldSlot)
	if len(slots) > MaxSlotInfo {
		return protocolErr(op, "%d slot entries exceed %d", len(slots), MaxSlotInfo)
	}
	for _, v := range slots {
		s, err := stuhfl.Decode(v)
		if err != nil {
			return &ProtocolError{Op: op, Err: err}
		}
		data.Slots = append(data.Slots, SlotInfo{SlotID: s.U32(stuhfl.FieldSlotID), Kind: SlotKind(s.U8(stuhfl.FieldSlotKind))})
	}
	return nil
}

func decodeTag(op string, v []byte) (InventoryTag, error) {
	r, err := stuhfl.Decode(v)
	if err != nil {
		return InventoryTag{}, &ProtocolError{Op: op, Err: err}
	}
	tag := InventoryTag{
		SlotID:    r.U32(stuhfl.FieldSlotID),
		Timestamp: r.U32(stuhfl.FieldTimestamp),
		Antenna:   Antenna(r.U8(stuhfl.FieldAntenna)),
		AGC:       r.U8(stuhfl.FieldAGC),
		RSSILogI:  r.U8(stuhfl.FieldRSSILogI),
		RSSILogQ:  r.U8(stuhfl.FieldRSSILogQ),
		RSSILinI:  r.I8(stuhfl.FieldRSSILinI),
		RSSILinQ:  r.I8(stuhfl.FieldRSSILinQ),
		PC:        r.Bytes(stuhfl.FieldPC),
		XPC:       r.Bytes(stuhfl.FieldXPC),
		EPC:       r.Bytes(stuhfl.FieldEPC),
		TID:       r.Bytes(stuhfl.FieldTID),
	}
	for _, f := range []struct {
		name  string
		value []byte
		max   int
	}{
		{"pc", tag.PC, MaxPCBytes},
		{"xpc", tag.XPC, MaxXPCBytes},
		{"epc", tag.EPC, MaxEPCBytes},
		{"tid", tag.TID, MaxTIDBytes},
	} {
		if len(f.value) > f.max {
			return InventoryTag{}, protocolErr(op, "tag %s length %d exceeds %d", f.name, len(f.value), f.max)
		}
	}
	return tag, nil
}

func decodeStatistics(r stuhfl.Record) Statistics {
	return Statistics{
		Timestamp:           r.U32(stuhfl.FieldTimestamp),
		RoundCount:          r.U32(stuhfl.FieldRoundCount),
		TuningStatus:        TuningStatus(r.U8(stuhfl.FieldTuningStatus)),
		RSSILogMean:         r.U8(stuhfl.FieldRSSILogMean),
		Sensitivity:         r.I8(stuhfl.FieldSensitivity),
		Q:                   r.U8(stuhfl.FieldQ),
		Frequency:           r.U32(stuhfl.FieldFrequency),
		ADC:                 r.U16(stuhfl.FieldADC),
		TagCount:            r.U32(stuhfl.FieldTagCount),
		EmptySlotCount:      r.U32(stuhfl.FieldEmptySlotCount),
		CollisionCount:      r.U32(stuhfl.FieldCollisionCount),
		SlotCount:           r.U32(stuhfl.FieldSlotCount),
		PreambleErrCount:    r.U32(stuhfl.FieldPreambleErrCount),
		CRCErrCount:         r.U32(stuhfl.FieldCRCErrCount),
		HeaderErrCount:      r.U32(stuhfl.FieldHeaderErrCount),
		RxCountErrCount:     r.U32(stuhfl.FieldRxCountErrCount),
		ResendAckCount:      r.U32(stuhfl.FieldResendAckCount),
		NoiseSuspicionCount: r.U32(stuhfl.FieldNoiseSuspicionCount),
	}
}

var inventoryCodes = map[Protocol]byte{
	ProtocolGen2:    stuhfl.CodeGen2Inventory,
	ProtocolGb29768: stuhfl.CodeGbInventory,
	ProtocolIso6b:   stuhfl.CodeIso6bInventory,
}

// Gen2Inventory runs one Gen2 inventory round into data.
func (c *Conn) Gen2Inventory(ctx context.Context, opt InventoryOption, data *InventoryData) (Status, error) {
	return c.Inventory(ctx, ProtocolGen2, opt, data)
}

func (c *Conn) Gb29768Inventory(ctx context.Context, opt InventoryOption, data *InventoryData) (Status, error) {
	return c.Inventory(ctx, ProtocolGb29768, opt, data)
}

func (c *Conn) Iso6bInventory(ctx context.Context, opt InventoryOption, data *InventoryData) (Status, error) {
	return c.Inventory(ctx, ProtocolIso6b, opt, data)
}

// Inventory runs one round of the given protocol. data is reset first, so
// on any error it holds no tags and zero statistics.
func (c *Conn) Inventory(ctx context.Context, p Protocol, opt InventoryOption, data *InventoryData) (Status, error) {
	code, ok := inventoryCodes[p]
	if !ok {
		return 0, invalidArg("Inventory", "Protocol", "%d unknown", p)
	}
	op := commandName(stuhfl.GroupSL, code)
	if data == nil {
		return 0, invalidArg(op, "data", "nil")
	}
	if cap(data.Tags) == 0 || cap(data.Tags) > MaxTagListSize {
		return 0, invalidArg(op, "tagListSizeMax", "%d outside 1..%d", cap(data.Tags), MaxTagListSize)
	}
	if err := opt.validate(op); err != nil {
		return 0, err
	}
	data.reset()

	st, rec, err := c.exchange(ctx, stuhfl.GroupSL, code, opt.encode(cap(data.Tags)))
	if err == nil {
		if err = decodeInventory(op, rec, data); err != nil {
			data.reset()
		}
	}
	c.trace(op, logrus.Fields{
		"rssiMode": opt.RSSIMode, "inventoryDelay": opt.InventoryDelay, "reportHeartbeat": opt.Report.Heartbeat,
		"reportSlotInfo": opt.Report.SlotInfo, "tagListSizeMax": cap(data.Tags), "tagListSize": len(data.Tags),
		"statistics": data.Statistics, "slots": len(data.Slots),
	}, st, err)
	return st, err
}
