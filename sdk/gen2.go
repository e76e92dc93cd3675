package sdk

import (
	"context"

	"github.com/sirupsen/logrus"

	"stuhfl_go/internal/protocol/stuhfl"
)

// Gen2 buffer limits.
const (
	MaxSelectMaskBytes     = 32
	MaxReadBytes           = 64
	MaxBlockWriteBytes     = 16
	MaxGenericSendBytes    = 64
	MaxGenericSendBits     = MaxGenericSendBytes * 8
	MaxGenericReceiveBytes = 128
	MaxGenericReceiveBits  = MaxGenericReceiveBytes * 8
	MaxMeasureCount        = 256
)

// Gen2SelectInput is one select list edit. Mask bits past MaskBitLength
// are ignored. The mask must fit in the Reserved bank's 64 bits; the other
// banks vary in size by tag, so there only the 32-bit address is checked.
type Gen2SelectInput struct {
	Mode           SelectMode
	InvertSL       bool
	Target         SelectTarget
	Action         uint8
	Bank           MemoryBank
	Mask           []byte
	MaskBitPointer uint32
	MaskBitLength  int
	Truncate       bool
}

// DefaultGen2Select clears the reader's select list.
func DefaultGen2Select() Gen2SelectInput {
	return Gen2SelectInput{Mode: ClearList, Target: TargetS0, Bank: BankEPC}
}

func (in Gen2SelectInput) validate(op string) error {
	if !in.Mode.valid() {
		return invalidArg(op, "Mode", "%d unknown", in.Mode)
	}
	if in.Target > TargetSL {
		return invalidArg(op, "Target", "%d unknown", in.Target)
	}
	if in.Action > 7 {
		return invalidArg(op, "Action", "%d out of range 0..7", in.Action)
	}
	if !in.Bank.valid() {
		return invalidArg(op, "Bank", "%d unknown", in.Bank)
	}
	if err := validateMask(op, in.Mask, in.MaskBitPointer, in.MaskBitLength); err != nil {
		return err
	}
	if in.Mode != ClearList && in.Bank == BankReserved && uint64(in.MaskBitPointer)+uint64(in.MaskBitLength) > reservedBankBits {
		return invalidArg(op, "MaskBitPointer", "pointer %d + length %d exceed the %d-bit Reserved bank",
			in.MaskBitPointer, in.MaskBitLength, reservedBankBits)
	}
	return nil
}

// reservedBankBits holds the kill and access passwords.
const reservedBankBits = 64

func validateMask(op string, mask []byte, ptr uint32, bitLength int) error {
	if len(mask) > MaxSelectMaskBytes {
		return invalidArg(op, "Mask", "%d bytes exceed %d", len(mask), MaxSelectMaskBytes)
	}
	if bitLength < 0 || bitLength > 0xFF {
		return invalidArg(op, "MaskBitLength", "%d out of range 0..255", bitLength)
	}
	if bitLength > len(mask)*8 {
		return invalidArg(op, "MaskBitLength", "%d bits exceed mask capacity %d", bitLength, len(mask)*8)
	}
	if uint64(ptr)+uint64(bitLength) > 0xFFFFFFFF {
		return invalidArg(op, "MaskBitPointer", "pointer %d + length %d overflows bank address", ptr, bitLength)
	}
	return nil
}

const selectInvertSL = 0x80

// Gen2Select edits the reader's select list. ClearList sends no mask.
func (c *Conn) Gen2Select(ctx context.Context, in Gen2SelectInput) (Status, error) {
	const op = "Gen2_Select"
	if err := in.validate(op); err != nil {
		return 0, err
	}

	mode := uint8(in.Mode)
	if in.InvertSL {
		mode |= selectInvertSL
	}
	w := stuhfl.NewWriter().U8(stuhfl.FieldMode, mode)
	if in.Mode != ClearList {
		w.U8(stuhfl.FieldTarget, uint8(in.Target)).
			U8(stuhfl.FieldAction, in.Action).
			U8(stuhfl.FieldBank, uint8(in.Bank)).
			Raw(stuhfl.FieldMask, in.Mask).
			U32(stuhfl.FieldMaskBitPointer, in.MaskBitPointer).
			U8(stuhfl.FieldMaskBitLength, uint8(in.MaskBitLength)).
			Bool(stuhfl.FieldTruncate, in.Truncate)
	}
	st, _, err := c.ExecuteCommand(ctx, stuhfl.GroupSL, stuhfl.CodeGen2Select, w.Encode())
	c.trace(op, logrus.Fields{
		"mode": in.Mode, "invertSL": in.InvertSL, "target": in.Target, "action": in.Action, "bank": in.Bank,
		"mask": HexID(in.Mask), "maskBitPointer": in.MaskBitPointer, "maskBitLength": in.MaskBitLength,
		"truncation": in.Truncate,
	}, st, err)
	return st, err
}

type Gen2ReadInput struct {
	Bank      MemoryBank
	WordPtr   uint32
	ByteCount int
	Password  Password
}

type Gen2ReadResult struct {
	Data []byte
}

func validateRead(op string, bank MemoryBank, byteCount int) error {
	if !bank.valid() {
		return invalidArg(op, "Bank", "%d unknown", bank)
	}
	if byteCount < 2 || byteCount > MaxReadBytes || byteCount%2 != 0 {
		return invalidArg(op, "ByteCount", "%d must be an even count in 2..%d", byteCount, MaxReadBytes)
	}
	return nil
}

func (c *Conn) Gen2Read(ctx context.Context, in Gen2ReadInput) (Gen2ReadResult, Status, error) {
	const op = "Gen2_Read"
	if err := validateRead(op, in.Bank, in.ByteCount); err != nil {
		return Gen2ReadResult{}, 0, err
	}

	w := stuhfl.NewWriter().
		U8(stuhfl.FieldBank, uint8(in.Bank)).
		U32(stuhfl.FieldWordPtr, in.WordPtr).
		U8(stuhfl.FieldByteCount, uint8(in.ByteCount)).
		Raw(stuhfl.FieldPassword, in.Password[:])
	st, rec, err := c.exchange(ctx, stuhfl.GroupSL, stuhfl.CodeGen2Read, w)
	var out Gen2ReadResult
	if err == nil {
		out.Data, err = readData(op, rec, in.ByteCount)
	}
	c.trace(op, logrus.Fields{
		"bank": in.Bank, "wordPtr": in.WordPtr, "bytes2Read": in.ByteCount, "pwd": HexID(in.Password[:]),
		"data": HexID(out.Data),
	}, st, err)
	return out, st, err
}

func readData(op string, rec stuhfl.Record, want int) ([]byte, error) {
	data := rec.Bytes(stuhfl.FieldData)
	if len(data) > want || len(data) > MaxReadBytes {
		return nil, protocolErr(op, "reader returned %d bytes for a %d byte read", len(data), want)
	}
	return data, nil
}

type Gen2WriteInput struct {
	Bank     MemoryBank
	WordPtr  uint32
	Password Password
	Data     [2]byte
}

// TagReply is the status byte a tag returns after a write-class command.
type TagReply struct {
	Code uint8
}

func (c *Conn) Gen2Write(ctx context.Context, in Gen2WriteInput) (TagReply, Status, error) {
	const op = "Gen2_Write"
	if !in.Bank.valid() {
		return TagReply{}, 0, invalidArg(op, "Bank", "%d unknown", in.Bank)
	}

	w := stuhfl.NewWriter().
		U8(stuhfl.FieldBank, uint8(in.Bank)).
		U32(stuhfl.FieldWordPtr, in.WordPtr).
		Raw(stuhfl.FieldPassword, in.Password[:]).
		Raw(stuhfl.FieldData, in.Data[:])
	return c.tagReply(ctx, op, stuhfl.CodeGen2Write, w, logrus.Fields{
		"bank": in.Bank, "wordPtr": in.WordPtr, "pwd": HexID(in.Password[:]), "data": HexID(in.Data[:]),
	})
}

type Gen2BlockWriteInput struct {
	Bank     MemoryBank
	WordPtr  uint32
	Password Password
	Data     []byte
}

func (c *Conn) Gen2BlockWrite(ctx context.Context, in Gen2BlockWriteInput) (TagReply, Status, error) {
	const op = "Gen2_BlockWrite"
	if !in.Bank.valid() {
		return TagReply{}, 0, invalidArg(op, "Bank", "%d unknown", in.Bank)
	}
	if n := len(in.Data); n < 2 || n > MaxBlockWriteBytes || n%2 != 0 {
		return TagReply{}, 0, invalidArg(op, "Data", "%d bytes must be an even count in 2..%d", n, MaxBlockWriteBytes)
	}

	w := stuhfl.NewWriter().
		U8(stuhfl.FieldBank, uint8(in.Bank)).
		U32(stuhfl.FieldWordPtr, in.WordPtr).
		Raw(stuhfl.FieldPassword, in.Password[:]).
		Raw(stuhfl.FieldData, in.Data)
	return c.tagReply(ctx, op, stuhfl.CodeGen2BlockWrite, w, logrus.Fields{
		"bank": in.Bank, "wordPtr": in.WordPtr, "pwd": HexID(in.Password[:]), "nbWords": len(in.Data) / 2,
		"data": HexID(in.Data),
	})
}

// LockTarget is a lockable Gen2 memory region.
type LockTarget uint8

const (
	LockKillPassword LockTarget = iota
	LockAccessPassword
	LockEPC
	LockTID
	LockUser
)

// LockAction is the (pwd-write, permalock) pair applied to a LockTarget.
type LockAction uint8

const (
	LockWritable      LockAction = 0b00
	LockPermaWritable LockAction = 0b01
	LockSecured       LockAction = 0b10
	LockPermaSecured  LockAction = 0b11
)

// Gen2LockPayload packs per-region actions into the 20-bit Lock payload,
// left aligned in three bytes. Regions not listed keep their current state.
func Gen2LockPayload(actions map[LockTarget]LockAction) ([3]byte, error) {
	var value uint32
	for target, action := range actions {
		if target > LockUser {
			return [3]byte{}, invalidArg("Gen2LockPayload", "LockTarget", "%d unknown", target)
		}
		if action > LockPermaSecured {
			return [3]byte{}, invalidArg("Gen2LockPayload", "LockAction", "%d unknown", action)
		}
		shift := 8 - 2*uint32(target)
		value |= 0b11 << (shift + 10)
		value |= uint32(action) << shift
	}
	value <<= 4
	return [3]byte{byte(value >> 16), byte(value >> 8), byte(value)}, nil
}

type Gen2LockInput struct {
	Payload  [3]byte
	Password Password
}

func (c *Conn) Gen2Lock(ctx context.Context, in Gen2LockInput) (TagReply, Status, error) {
	const op = "Gen2_Lock"
	if in.Payload[2]&0x0F != 0 {
		return TagReply{}, 0, invalidArg(op, "Payload", "low nibble must be zero in a 20-bit payload")
	}

	w := stuhfl.NewWriter().
		Raw(stuhfl.FieldLockMask, in.Payload[:]).
		Raw(stuhfl.FieldPassword, in.Password[:])
	return c.tagReply(ctx, op, stuhfl.CodeGen2Lock, w, logrus.Fields{"mask": HexID(in.Payload[:]), "pwd": HexID(in.Password[:])})
}

type Gen2KillInput struct {
	Password     Password
	Recommission uint8
}

// Gen2Kill permanently disables the singulated tag. It cannot be undone.
func (c *Conn) Gen2Kill(ctx context.Context, in Gen2KillInput) (TagReply, Status, error) {
	const op = "Gen2_Kill"
	if in.Password.IsZero() {
		return TagReply{}, 0, invalidArg(op, "Password", "kill requires a non-zero password")
	}
	if in.Recommission > 7 {
		return TagReply{}, 0, invalidArg(op, "Recommission", "%d out of range 0..7", in.Recommission)
	}

	w := stuhfl.NewWriter().
		Raw(stuhfl.FieldPassword, in.Password[:]).
		U8(stuhfl.FieldRecommission, in.Recommission)
	return c.tagReply(ctx, op, stuhfl.CodeGen2Kill, w, logrus.Fields{"pwd": HexID(in.Password[:]), "recom": in.Recommission})
}

// GenericMode selects CRC handling for a raw Gen2 exchange.
type GenericMode uint8

const (
	GenericCRC           GenericMode = 0x90
	GenericCRCExpectHead GenericMode = 0x91
	GenericNoCRC         GenericMode = 0x92
)

type Gen2GenericInput struct {
	Mode                 GenericMode
	Password             Password
	NoResponseTime       uint8
	SendData             []byte
	SendBitLength        int
	ExpectedRcvBitLength int
	AppendRN16           bool
}

type Gen2GenericResult struct {
	Data      []byte
	BitLength int
}

func (in Gen2GenericInput) validate(op string) error {
	switch in.Mode {
	case GenericCRC, GenericCRCExpectHead, GenericNoCRC:
	default:
		return invalidArg(op, "Mode", "0x%02X unknown", uint8(in.Mode))
	}
	if len(in.SendData) > MaxGenericSendBytes {
		return invalidArg(op, "SendData", "%d bytes exceed %d", len(in.SendData), MaxGenericSendBytes)
	}
	if in.SendBitLength <= 0 || in.SendBitLength > len(in.SendData)*8 {
		return invalidArg(op, "SendBitLength", "%d outside 1..%d", in.SendBitLength, len(in.SendData)*8)
	}
	if in.ExpectedRcvBitLength < 0 || in.ExpectedRcvBitLength > MaxGenericReceiveBits {
		return invalidArg(op, "ExpectedRcvBitLength", "%d outside 0..%d", in.ExpectedRcvBitLength, MaxGenericReceiveBits)
	}
	return nil
}

// Gen2GenericCmd exchanges raw bits with the singulated tag.
func (c *Conn) Gen2GenericCmd(ctx context.Context, in Gen2GenericInput) (Gen2GenericResult, Status, error) {
	const op = "Gen2_GenericCmd"
	if err := in.validate(op); err != nil {
		return Gen2GenericResult{}, 0, err
	}

	w := stuhfl.NewWriter().
		U8(stuhfl.FieldGenericMode, uint8(in.Mode)).
		Raw(stuhfl.FieldPassword, in.Password[:]).
		U8(stuhfl.FieldNoResponseTime, in.NoResponseTime).
		Raw(stuhfl.FieldData, in.SendData).
		U16(stuhfl.FieldSendBitLength, uint16(in.SendBitLength)).
		U16(stuhfl.FieldRcvBitLength, uint16(in.ExpectedRcvBitLength)).
		Bool(stuhfl.FieldAppendRN16, in.AppendRN16)
	st, rec, err := c.exchange(ctx, stuhfl.GroupSL, stuhfl.CodeGen2GenericCmd, w)
	var out Gen2GenericResult
	if err == nil {
		out, err = decodeBitBuffer(op, rec, stuhfl.FieldResponse, stuhfl.FieldResponseBitLength, MaxGenericReceiveBytes)
	}
	c.trace(op, logrus.Fields{
		"cmd": uint8(in.Mode), "pwd": HexID(in.Password[:]), "noResponseTime": in.NoResponseTime,
		"sndData": HexID(in.SendData), "sndDataBitLength": in.SendBitLength,
		"expectedRcvDataBitLength": in.ExpectedRcvBitLength, "appendRN16": in.AppendRN16,
		"rcvData": HexID(out.Data), "rcvDataLength": out.BitLength,
	}, st, err)
	return out, st, err
}

func decodeBitBuffer(op string, rec stuhfl.Record, dataField, bitsField stuhfl.Field, capBytes int) (Gen2GenericResult, error) {
	data := rec.Bytes(dataField)
	bits := int(rec.U16(bitsField))
	if len(data) > capBytes {
		return Gen2GenericResult{}, protocolErr(op, "%d response bytes exceed %d", len(data), capBytes)
	}
	if bits > len(data)*8 {
		return Gen2GenericResult{}, protocolErr(op, "response bit length %d exceeds %d bytes", bits, len(data))
	}
	return Gen2GenericResult{Data: data, BitLength: bits}, nil
}

type RssiMeasure struct {
	AGC      uint8
	RSSILogI uint8
	RSSILogQ uint8
	RSSILinI int8
	RSSILinQ int8
}

// Gen2QueryMeasureRssi issues Query commands at freq and samples the reply RSSI.
func (c *Conn) Gen2QueryMeasureRssi(ctx context.Context, freq uint32, measureCount int) ([]RssiMeasure, Status, error) {
	const op = "Gen2_QueryMeasureRssi"
	if measureCount < 1 || measureCount > MaxMeasureCount {
		return nil, 0, invalidArg(op, "MeasureCount", "%d outside 1..%d", measureCount, MaxMeasureCount)
	}

	w := stuhfl.NewWriter().U32(stuhfl.FieldFrequency, freq).U16(stuhfl.FieldMeasureCount, uint16(measureCount))
	st, rec, err := c.exchange(ctx, stuhfl.GroupSL, stuhfl.CodeGen2QueryMeasureRssi, w)
	var out []RssiMeasure
	if err == nil {
		out, err = decodeMeasures(op, rec, measureCount)
	}
	c.trace(op, logrus.Fields{"frequency": freq, "measureCnt": measureCount, "measures": out}, st, err)
	return out, st, err
}

func decodeMeasures(op string, rec stuhfl.Record, want int) ([]RssiMeasure, error) {
	raw := rec.All(stuhfl.FieldMeasure)
	if len(raw) > want {
		return nil, protocolErr(op, "%d measures for %d requested", len(raw), want)
	}
	out := make([]RssiMeasure, 0, len(raw))
	for _, v := range raw {
		m, err := stuhfl.Decode(v)
		if err != nil {
			return nil, &ProtocolError{Op: op, Err: err}
		}
		out = append(out, RssiMeasure{
			AGC:      m.U8(stuhfl.FieldAGC),
			RSSILogI: m.U8(stuhfl.FieldRSSILogI),
			RSSILogQ: m.U8(stuhfl.FieldRSSILogQ),
			RSSILinI: m.I8(stuhfl.FieldRSSILinI),
			RSSILinQ: m.I8(stuhfl.FieldRSSILinQ),
		})
	}
	return out, nil
}
