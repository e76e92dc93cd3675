package sdk

import (
	"context"

	"github.com/sirupsen/logrus"

	"stuhfl_go/internal/protocol/stuhfl"
)

// Iso6bSelectGroup is the comparison an ISO 18000-6B Select applies to tag memory.
type Iso6bSelectGroup uint8

const (
	Iso6bSelectEQ Iso6bSelectGroup = iota
	Iso6bSelectNE
	Iso6bSelectGT
	Iso6bSelectLT
	Iso6bUnselectEQ
	Iso6bUnselectNE
	Iso6bUnselectGT
	Iso6bUnselectLT
)

type Iso6bSelectInput struct {
	Mode    SelectMode
	Group   Iso6bSelectGroup
	Address uint8
	BitMask uint8
	Filter  [8]byte
}

func (c *Conn) Iso6bSelect(ctx context.Context, in Iso6bSelectInput) (Status, error) {
	const op = "Iso6b_Select"
	if !in.Mode.valid() {
		return 0, invalidArg(op, "Mode", "%d unknown", in.Mode)
	}
	if in.Group > Iso6bUnselectLT {
		return 0, invalidArg(op, "Group", "%d out of range 0..7", in.Group)
	}

	w := stuhfl.NewWriter().U8(stuhfl.FieldMode, uint8(in.Mode))
	if in.Mode != ClearList {
		w.U8(stuhfl.FieldGroup, uint8(in.Group)).
			U8(stuhfl.FieldAddress, in.Address).
			U8(stuhfl.FieldBitMask, in.BitMask).
			Raw(stuhfl.FieldFilter, in.Filter[:])
	}
	st, _, err := c.ExecuteCommand(ctx, stuhfl.GroupSL, stuhfl.CodeIso6bSelect, w.Encode())
	c.trace(op, logrus.Fields{
		"mode": in.Mode, "group": in.Group, "address": in.Address, "bitMask": in.BitMask, "filter": HexID(in.Filter[:]),
	}, st, err)
	return st, err
}

type Iso6bReadResult struct {
	Data [8]byte
}

// Iso6bRead returns the eight bytes starting at address.
func (c *Conn) Iso6bRead(ctx context.Context, address uint8) (Iso6bReadResult, Status, error) {
	const op = "Iso6b_Read"
	w := stuhfl.NewWriter().U8(stuhfl.FieldAddress, address)
	st, rec, err := c.exchange(ctx, stuhfl.GroupSL, stuhfl.CodeIso6bRead, w)
	var out Iso6bReadResult
	if err == nil {
		data := rec.Bytes(stuhfl.FieldData)
		if len(data) > len(out.Data) {
			err = protocolErr(op, "%d bytes exceed %d", len(data), len(out.Data))
		} else {
			copy(out.Data[:], data)
		}
	}
	c.trace(op, logrus.Fields{"address": address, "data": HexID(out.Data[:])}, st, err)
	return out, st, err
}

type Iso6bWriteInput struct {
	Address uint8
	Data    byte
}

func (c *Conn) Iso6bWrite(ctx context.Context, in Iso6bWriteInput) (TagReply, Status, error) {
	w := stuhfl.NewWriter().U8(stuhfl.FieldAddress, in.Address).U8(stuhfl.FieldData, in.Data)
	return c.tagReply(ctx, "Iso6b_Write", stuhfl.CodeIso6bWrite, w, logrus.Fields{
		"address": in.Address, "data": in.Data,
	})
}
