package sdk

import (
	"context"

	"github.com/sirupsen/logrus"

	"stuhfl_go/internal/protocol/stuhfl"
)

const (
	MaxSecurityMessageBytes  = 32
	MaxSecurityMessageBits   = MaxSecurityMessageBytes * 8
	MaxSecurityResponseBytes = 64
	MaxReadBufferBits        = MaxSecurityResponseBytes * 8
	MaxCSI                   = 9
)

// SecurityMessage is the crypto-suite payload of a Gen2 security command.
type SecurityMessage struct {
	Data      []byte
	BitLength int
}

func (m SecurityMessage) validate(op string) error {
	if len(m.Data) > MaxSecurityMessageBytes {
		return invalidArg(op, "Message", "%d bytes exceed %d", len(m.Data), MaxSecurityMessageBytes)
	}
	if m.BitLength < 0 || m.BitLength > MaxSecurityMessageBits || m.BitLength > len(m.Data)*8 {
		return invalidArg(op, "MessageBitLength", "%d outside 0..%d", m.BitLength, min(len(m.Data)*8, MaxSecurityMessageBits))
	}
	return nil
}

func (m SecurityMessage) encode(w *stuhfl.Writer) {
	w.Raw(stuhfl.FieldMessage, m.Data).U16(stuhfl.FieldMessageBitLength, uint16(m.BitLength))
}

// SecurityResponse is the tag's reply to a security command.
type SecurityResponse struct {
	Data      []byte
	BitLength int
	HeaderBit bool
}

func decodeSecurityResponse(op string, rec stuhfl.Record) (SecurityResponse, error) {
	buf, err := decodeBitBuffer(op, rec, stuhfl.FieldResponse, stuhfl.FieldResponseBitLength, MaxSecurityResponseBytes)
	if err != nil {
		return SecurityResponse{}, err
	}
	return SecurityResponse{
		Data:      buf.Data,
		BitLength: buf.BitLength,
		HeaderBit: rec.Bool(stuhfl.FieldResponseHeaderBit),
	}, nil
}

func (c *Conn) security(ctx context.Context, op string, code byte, w *stuhfl.Writer, fields logrus.Fields) (SecurityResponse, Status, error) {
	st, rec, err := c.exchange(ctx, stuhfl.GroupSL, code, w)
	var out SecurityResponse
	if err == nil {
		out, err = decodeSecurityResponse(op, rec)
	}
	fields["rcvData"] = HexID(out.Data)
	fields["rcvDataLength"] = out.BitLength
	fields["headerBit"] = out.HeaderBit
	c.trace(op, fields, st, err)
	return out, st, err
}

type Gen2ChallengeInput struct {
	IncRepLen bool
	Immed     bool
	CSI       uint8
	Message   SecurityMessage
}

// Gen2Challenge broadcasts a crypto challenge to all tags in the field.
// Tags keep their result for a later ReadBuffer.
func (c *Conn) Gen2Challenge(ctx context.Context, in Gen2ChallengeInput) (Status, error) {
	const op = "Gen2_Challenge"
	if in.CSI > MaxCSI {
		return 0, invalidArg(op, "CSI", "%d out of range 0..%d", in.CSI, MaxCSI)
	}
	if err := in.Message.validate(op); err != nil {
		return 0, err
	}

	w := stuhfl.NewWriter().
		Bool(stuhfl.FieldIncRepLen, in.IncRepLen).
		Bool(stuhfl.FieldImmed, in.Immed).
		U8(stuhfl.FieldCSI, in.CSI)
	in.Message.encode(w)
	st, _, err := c.ExecuteCommand(ctx, stuhfl.GroupSL, stuhfl.CodeGen2Challenge, w.Encode())
	c.trace(op, logrus.Fields{
		"incRepLen": in.IncRepLen, "immed": in.Immed, "csi": in.CSI,
		"message": HexID(in.Message.Data), "messageBitLength": in.Message.BitLength,
	}, st, err)
	return st, err
}

type Gen2AuthenticateInput struct {
	Password  Password
	SenRep    bool
	IncRepLen bool
	CSI       uint8
	Message   SecurityMessage
}

func (c *Conn) Gen2Authenticate(ctx context.Context, in Gen2AuthenticateInput) (SecurityResponse, Status, error) {
	const op = "Gen2_Authenticate"
	if in.CSI > MaxCSI {
		return SecurityResponse{}, 0, invalidArg(op, "CSI", "%d out of range 0..%d", in.CSI, MaxCSI)
	}
	if err := in.Message.validate(op); err != nil {
		return SecurityResponse{}, 0, err
	}

	w := stuhfl.NewWriter().
		Raw(stuhfl.FieldPassword, in.Password[:]).
		Bool(stuhfl.FieldSenRep, in.SenRep).
		Bool(stuhfl.FieldIncRepLen, in.IncRepLen).
		U8(stuhfl.FieldCSI, in.CSI)
	in.Message.encode(w)
	return c.security(ctx, op, stuhfl.CodeGen2Authenticate, w, logrus.Fields{
		"pwd": HexID(in.Password[:]), "senRep": in.SenRep, "incRepLen": in.IncRepLen, "csi": in.CSI,
		"message": HexID(in.Message.Data), "messageBitLength": in.Message.BitLength,
	})
}

type Gen2AuthCommInput struct {
	Password  Password
	IncRepLen bool
	Message   SecurityMessage
}

func (c *Conn) Gen2AuthComm(ctx context.Context, in Gen2AuthCommInput) (SecurityResponse, Status, error) {
	const op = "Gen2_AuthComm"
	if err := in.Message.validate(op); err != nil {
		return SecurityResponse{}, 0, err
	}

	w := stuhfl.NewWriter().
		Raw(stuhfl.FieldPassword, in.Password[:]).
		Bool(stuhfl.FieldIncRepLen, in.IncRepLen)
	in.Message.encode(w)
	return c.security(ctx, op, stuhfl.CodeGen2AuthComm, w, logrus.Fields{
		"pwd": HexID(in.Password[:]), "incRepLen": in.IncRepLen,
		"message": HexID(in.Message.Data), "messageBitLength": in.Message.BitLength,
	})
}

type Gen2SecureCommInput struct {
	Password  Password
	SenRep    bool
	IncRepLen bool
	Message   SecurityMessage
}

func (c *Conn) Gen2SecureComm(ctx context.Context, in Gen2SecureCommInput) (SecurityResponse, Status, error) {
	const op = "Gen2_SecureComm"
	if err := in.Message.validate(op); err != nil {
		return SecurityResponse{}, 0, err
	}

	w := stuhfl.NewWriter().
		Raw(stuhfl.FieldPassword, in.Password[:]).
		Bool(stuhfl.FieldSenRep, in.SenRep).
		Bool(stuhfl.FieldIncRepLen, in.IncRepLen)
	in.Message.encode(w)
	return c.security(ctx, op, stuhfl.CodeGen2SecureComm, w, logrus.Fields{
		"pwd": HexID(in.Password[:]), "senRep": in.SenRep, "incRepLen": in.IncRepLen,
		"message": HexID(in.Message.Data), "messageBitLength": in.Message.BitLength,
	})
}

type Gen2KeyUpdateInput struct {
	Password  Password
	SenRep    bool
	IncRepLen bool
	KeyID     uint8
	Message   SecurityMessage
}

func (c *Conn) Gen2KeyUpdate(ctx context.Context, in Gen2KeyUpdateInput) (SecurityResponse, Status, error) {
	const op = "Gen2_KeyUpdate"
	if err := in.Message.validate(op); err != nil {
		return SecurityResponse{}, 0, err
	}

	w := stuhfl.NewWriter().
		Raw(stuhfl.FieldPassword, in.Password[:]).
		Bool(stuhfl.FieldSenRep, in.SenRep).
		Bool(stuhfl.FieldIncRepLen, in.IncRepLen).
		U8(stuhfl.FieldKeyID, in.KeyID)
	in.Message.encode(w)
	return c.security(ctx, op, stuhfl.CodeGen2KeyUpdate, w, logrus.Fields{
		"pwd": HexID(in.Password[:]), "senRep": in.SenRep, "incRepLen": in.IncRepLen, "keyId": in.KeyID,
		"message": HexID(in.Message.Data), "messageBitLength": in.Message.BitLength,
	})
}

type Gen2TagPrivilegeInput struct {
	Password  Password
	SenRep    bool
	IncRepLen bool
	Action    uint8
	Target    uint8
	KeyID     uint8
	Privilege uint16
}

func (c *Conn) Gen2TagPrivilege(ctx context.Context, in Gen2TagPrivilegeInput) (SecurityResponse, Status, error) {
	const op = "Gen2_TagPrivilege"
	if in.Action > 1 {
		return SecurityResponse{}, 0, invalidArg(op, "Action", "%d out of range 0..1", in.Action)
	}
	if in.Target > 3 {
		return SecurityResponse{}, 0, invalidArg(op, "Target", "%d out of range 0..3", in.Target)
	}

	w := stuhfl.NewWriter().
		Raw(stuhfl.FieldPassword, in.Password[:]).
		Bool(stuhfl.FieldSenRep, in.SenRep).
		Bool(stuhfl.FieldIncRepLen, in.IncRepLen).
		U8(stuhfl.FieldPrivAction, in.Action).
		U8(stuhfl.FieldPrivTarget, in.Target).
		U8(stuhfl.FieldKeyID, in.KeyID).
		U16(stuhfl.FieldPrivilege, in.Privilege)
	return c.security(ctx, op, stuhfl.CodeGen2TagPrivilege, w, logrus.Fields{
		"pwd": HexID(in.Password[:]), "senRep": in.SenRep, "incRepLen": in.IncRepLen,
		"action": in.Action, "target": in.Target, "keyId": in.KeyID, "privilege": in.Privilege,
	})
}

type Gen2ReadBufferInput struct {
	Password Password
	WordPtr  uint16
	BitCount int
}

// Gen2ReadBuffer reads back the result a tag stored after Challenge.
func (c *Conn) Gen2ReadBuffer(ctx context.Context, in Gen2ReadBufferInput) (SecurityResponse, Status, error) {
	const op = "Gen2_ReadBuffer"
	if in.BitCount < 1 || in.BitCount > MaxReadBufferBits {
		return SecurityResponse{}, 0, invalidArg(op, "BitCount", "%d outside 1..%d", in.BitCount, MaxReadBufferBits)
	}

	w := stuhfl.NewWriter().
		Raw(stuhfl.FieldPassword, in.Password[:]).
		U16(stuhfl.FieldWordPtr, in.WordPtr).
		U16(stuhfl.FieldBitCount, uint16(in.BitCount))
	return c.security(ctx, op, stuhfl.CodeGen2ReadBuffer, w, logrus.Fields{
		"pwd": HexID(in.Password[:]), "wordPtr": in.WordPtr, "bitCount": in.BitCount,
	})
}

type HideTID uint8

const (
	HideTIDNone HideTID = iota
	HideTIDSome
	HideTIDAll
)

type UntraceableRange uint8

const (
	RangeNormal UntraceableRange = iota
	RangeToggleTemporary
	RangeReduced
)

type Gen2UntraceableInput struct {
	Password     Password
	AssertU      bool
	HideEPC      bool
	NewEPCLength uint8
	HideTID      HideTID
	HideUser     bool
	Range        UntraceableRange
}

// DefaultUntraceable hides EPC, TID and User memory and reduces read range.
func DefaultUntraceable() Gen2UntraceableInput {
	return Gen2UntraceableInput{
		HideEPC:  true,
		HideTID:  HideTIDAll,
		HideUser: true,
		Range:    RangeReduced,
	}
}

type UntraceableResult struct {
	TagErrorCode uint8
}

func (c *Conn) Gen2Untraceable(ctx context.Context, in Gen2UntraceableInput) (UntraceableResult, Status, error) {
	const op = "Gen2_Untraceable"
	if in.NewEPCLength > 31 {
		return UntraceableResult{}, 0, invalidArg(op, "NewEPCLength", "%d out of range 0..31", in.NewEPCLength)
	}
	if in.HideTID > HideTIDAll {
		return UntraceableResult{}, 0, invalidArg(op, "HideTID", "%d unknown", in.HideTID)
	}
	if in.Range > RangeReduced {
		return UntraceableResult{}, 0, invalidArg(op, "Range", "%d unknown", in.Range)
	}

	w := stuhfl.NewWriter().
		Raw(stuhfl.FieldPassword, in.Password[:]).
		Bool(stuhfl.FieldAssertU, in.AssertU).
		Bool(stuhfl.FieldHideEPC, in.HideEPC).
		U8(stuhfl.FieldNewEPCLength, in.NewEPCLength).
		U8(stuhfl.FieldHideTID, uint8(in.HideTID)).
		Bool(stuhfl.FieldHideUser, in.HideUser).
		U8(stuhfl.FieldRange, uint8(in.Range))
	st, rec, err := c.exchange(ctx, stuhfl.GroupSL, stuhfl.CodeGen2Untraceable, w)
	var out UntraceableResult
	if err == nil {
		out.TagErrorCode = rec.U8(stuhfl.FieldTagErrorCode)
	}
	c.trace(op, logrus.Fields{
		"pwd": HexID(in.Password[:]), "assertU": in.AssertU, "hideEPC": in.HideEPC,
		"newEPCLength": in.NewEPCLength, "hideTID": in.HideTID, "hideUser": in.HideUser, "range": in.Range,
		"tagErrorCode": out.TagErrorCode,
	}, st, err)
	return out, st, err
}
