package sdk

import (
	"context"

	"github.com/sirupsen/logrus"

	"stuhfl_go/internal/protocol/stuhfl"
)

// GbSortRule decides how a Sort match updates the target flag.
type GbSortRule uint8

const (
	GbRuleMatch1Else0 GbSortRule = iota
	GbRuleMatch0
	GbRuleMatch1
	GbRuleMatch0Else1
)

type GbSortInput struct {
	Mode       SelectMode
	Target     uint8
	Rule       GbSortRule
	Bank       MemoryBank
	Mask       []byte
	BitPointer uint32
	BitLength  int
}

// Gb29768Sort edits the reader's GB29768 sort list, the counterpart of a Gen2 Select.
func (c *Conn) Gb29768Sort(ctx context.Context, in GbSortInput) (Status, error) {
	const op = "Gb29768_Sort"
	if !in.Mode.valid() {
		return 0, invalidArg(op, "Mode", "%d unknown", in.Mode)
	}
	if in.Target > 7 {
		return 0, invalidArg(op, "Target", "%d out of range 0..7", in.Target)
	}
	if in.Rule > GbRuleMatch0Else1 {
		return 0, invalidArg(op, "Rule", "%d out of range 0..3", in.Rule)
	}
	if !in.Bank.valid() {
		return 0, invalidArg(op, "Bank", "%d unknown", in.Bank)
	}
	if err := validateMask(op, in.Mask, in.BitPointer, in.BitLength); err != nil {
		return 0, err
	}

	w := stuhfl.NewWriter().U8(stuhfl.FieldMode, uint8(in.Mode))
	if in.Mode != ClearList {
		w.U8(stuhfl.FieldTarget, in.Target).
			U8(stuhfl.FieldRule, uint8(in.Rule)).
			U8(stuhfl.FieldBank, uint8(in.Bank)).
			Raw(stuhfl.FieldMask, in.Mask).
			U32(stuhfl.FieldMaskBitPointer, in.BitPointer).
			U8(stuhfl.FieldMaskBitLength, uint8(in.BitLength))
	}
	st, _, err := c.ExecuteCommand(ctx, stuhfl.GroupSL, stuhfl.CodeGbSort, w.Encode())
	c.trace(op, logrus.Fields{
		"mode": in.Mode, "target": in.Target, "rule": in.Rule, "bank": in.Bank,
		"mask": HexID(in.Mask), "bitPointer": in.BitPointer, "bitLength": in.BitLength,
	}, st, err)
	return st, err
}

type GbReadInput struct {
	Bank      MemoryBank
	WordPtr   uint32
	ByteCount int
	Password  Password
}

func (c *Conn) Gb29768Read(ctx context.Context, in GbReadInput) (Gen2ReadResult, Status, error) {
	const op = "Gb29768_Read"
	if err := validateRead(op, in.Bank, in.ByteCount); err != nil {
		return Gen2ReadResult{}, 0, err
	}

	w := stuhfl.NewWriter().
		U8(stuhfl.FieldBank, uint8(in.Bank)).
		U32(stuhfl.FieldWordPtr, in.WordPtr).
		U8(stuhfl.FieldByteCount, uint8(in.ByteCount)).
		Raw(stuhfl.FieldPassword, in.Password[:])
	st, rec, err := c.exchange(ctx, stuhfl.GroupSL, stuhfl.CodeGbRead, w)
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

type GbWriteInput struct {
	Bank     MemoryBank
	WordPtr  uint32
	Password Password
	Data     [2]byte
}

func (c *Conn) Gb29768Write(ctx context.Context, in GbWriteInput) (TagReply, Status, error) {
	const op = "Gb29768_Write"
	if !in.Bank.valid() {
		return TagReply{}, 0, invalidArg(op, "Bank", "%d unknown", in.Bank)
	}

	w := stuhfl.NewWriter().
		U8(stuhfl.FieldBank, uint8(in.Bank)).
		U32(stuhfl.FieldWordPtr, in.WordPtr).
		Raw(stuhfl.FieldPassword, in.Password[:]).
		Raw(stuhfl.FieldData, in.Data[:])
	return c.tagReply(ctx, op, stuhfl.CodeGbWrite, w, logrus.Fields{
		"bank": in.Bank, "wordPtr": in.WordPtr, "pwd": HexID(in.Password[:]), "data": HexID(in.Data[:]),
	})
}

type GbLockInput struct {
	Bank          MemoryBank
	Configuration uint8
	Action        uint8
	Password      Password
}

func (c *Conn) Gb29768Lock(ctx context.Context, in GbLockInput) (TagReply, Status, error) {
	const op = "Gb29768_Lock"
	if !in.Bank.valid() {
		return TagReply{}, 0, invalidArg(op, "Bank", "%d unknown", in.Bank)
	}
	if in.Configuration > 1 {
		return TagReply{}, 0, invalidArg(op, "Configuration", "%d out of range 0..1", in.Configuration)
	}
	if in.Action > 3 {
		return TagReply{}, 0, invalidArg(op, "Action", "%d out of range 0..3", in.Action)
	}

	w := stuhfl.NewWriter().
		U8(stuhfl.FieldBank, uint8(in.Bank)).
		U8(stuhfl.FieldLockConfig, in.Configuration).
		U8(stuhfl.FieldLockAction, in.Action).
		Raw(stuhfl.FieldPassword, in.Password[:])
	return c.tagReply(ctx, op, stuhfl.CodeGbLock, w, logrus.Fields{
		"memory": in.Bank, "configuration": in.Configuration, "action": in.Action, "pwd": HexID(in.Password[:]),
	})
}

// Gb29768Kill permanently disables the tag.
func (c *Conn) Gb29768Kill(ctx context.Context, password Password) (TagReply, Status, error) {
	w := stuhfl.NewWriter().Raw(stuhfl.FieldPassword, password[:])
	return c.tagReply(ctx, "Gb29768_Kill", stuhfl.CodeGbKill, w, logrus.Fields{"pwd": HexID(password[:])})
}

type GbEraseInput struct {
	Bank      MemoryBank
	BytePtr   uint32
	ByteCount int
	Password  Password
}

func (c *Conn) Gb29768Erase(ctx context.Context, in GbEraseInput) (TagReply, Status, error) {
	const op = "Gb29768_Erase"
	if !in.Bank.valid() {
		return TagReply{}, 0, invalidArg(op, "Bank", "%d unknown", in.Bank)
	}
	if in.ByteCount < 2 || in.ByteCount > MaxReadBytes || in.ByteCount%2 != 0 {
		return TagReply{}, 0, invalidArg(op, "ByteCount", "%d must be an even count in 2..%d", in.ByteCount, MaxReadBytes)
	}

	w := stuhfl.NewWriter().
		U8(stuhfl.FieldBank, uint8(in.Bank)).
		U32(stuhfl.FieldBytePtr, in.BytePtr).
		U8(stuhfl.FieldByteCount, uint8(in.ByteCount)).
		Raw(stuhfl.FieldPassword, in.Password[:])
	return c.tagReply(ctx, op, stuhfl.CodeGbErase, w, logrus.Fields{
		"bank": in.Bank, "bytePtr": in.BytePtr, "byteCount": in.ByteCount, "pwd": HexID(in.Password[:]),
	})
}

func (c *Conn) tagReply(ctx context.Context, op string, code byte, w *stuhfl.Writer, fields logrus.Fields) (TagReply, Status, error) {
	st, rec, err := c.exchange(ctx, stuhfl.GroupSL, code, w)
	var out TagReply
	if err == nil {
		out.Code = rec.U8(stuhfl.FieldTagReply)
	}
	fields["tagReply"] = out.Code
	c.trace(op, fields, st, err)
	return out, st, err
}
