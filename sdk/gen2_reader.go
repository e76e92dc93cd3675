package sdk

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

const (
	readAltOpcode = 0xC2
	// epcMaskPointer skips StoredCRC and StoredPC in the EPC bank.
	epcMaskPointer  = 0x20
	rn16Bits        = 16
	maxReadAltWords = 32
	// noResponseTime is the tag reply timeout, 0xFF being about 20 ms.
	noResponseTime = 0xFF
)

// Gen2Reader wraps a Conn configured for Gen2 and refuses tag access until
// the antenna has been tuned.
type Gen2Reader struct {
	conn  *Conn
	setup Gen2Setup

	mu    sync.RWMutex
	tuned bool
}

// NewGen2Reader runs the Gen2 setup sequence without tuning.
func NewGen2Reader(ctx context.Context, conn *Conn, setup Gen2Setup) (*Gen2Reader, error) {
	cfg := setup
	cfg.Algorithm = TuneNone
	st, err := conn.ConfigureGen2(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if !st.OK() {
		return nil, errors.Errorf("gen2 setup: %s", st)
	}
	return &Gen2Reader{conn: conn, setup: setup}, nil
}

func (r *Gen2Reader) Conn() *Conn { return r.conn }

// Setup returns the configuration the reader was created with.
func (r *Gen2Reader) Setup() Gen2Setup { return r.setup }

func (r *Gen2Reader) Tuned() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tuned
}

// Tune runs the given algorithm across every channel of the list.
// TuneNone sends nothing and leaves the tuned flag as it was.
func (r *Gen2Reader) Tune(ctx context.Context, algorithm TuningAlgorithm) (Status, error) {
	st, err := r.conn.TuneChannel(ctx, TuneRequest{Algorithm: algorithm, TuneAll: true})
	if err == nil && st.OK() && algorithm != TuneNone {
		r.mu.Lock()
		r.tuned = true
		r.mu.Unlock()
	}
	return st, err
}

func (r *Gen2Reader) ready() error {
	if !r.Tuned() {
		return ErrNotTuned
	}
	return nil
}

// InventoryOnce runs a single round and returns the tags seen.
func (r *Gen2Reader) InventoryOnce(ctx context.Context) ([]InventoryTag, Status, error) {
	data, st, err := r.InventoryRound(ctx)
	if err != nil {
		return nil, st, err
	}
	return data.Tags, st, nil
}

// InventoryRound runs a single round and returns tags and statistics.
func (r *Gen2Reader) InventoryRound(ctx context.Context) (*InventoryData, Status, error) {
	if err := r.ready(); err != nil {
		return nil, 0, err
	}
	data := NewInventoryData(DefaultTagListSize)
	st, err := r.conn.Gen2Inventory(ctx, DefaultInventoryOption(), data)
	if err != nil {
		return nil, st, err
	}
	return data, st, nil
}

// Inventory runs rounds and calls onTag for every tag reported. Zero rounds
// runs until ctx is done or Conn.StopRunner is called.
func (r *Gen2Reader) Inventory(ctx context.Context, rounds uint32, onTag func(InventoryTag)) (Status, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	opt := DefaultInventoryOption()
	opt.RoundCount = rounds
	st, err := r.conn.RunInventory(ctx, RunnerOptions{Protocol: ProtocolGen2, Option: opt}, func(d *InventoryData) {
		if onTag == nil {
			return
		}
		for _, tag := range d.Tags {
			onTag(tag)
		}
	}, nil)
	return st, err
}

// SelectEPC restricts subsequent access to the tag with this EPC.
func (r *Gen2Reader) SelectEPC(ctx context.Context, epc []byte) (Status, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	bits := len(epc) * 8
	if len(epc) >= 32 {
		bits = 0xFF
	}
	return r.conn.Gen2Select(ctx, Gen2SelectInput{
		Mode:           ClearAndAdd,
		Target:         TargetSL,
		Action:         0,
		Bank:           BankEPC,
		Mask:           epc,
		MaskBitPointer: epcMaskPointer,
		MaskBitLength:  bits,
	})
}

func (r *Gen2Reader) Read(ctx context.Context, in Gen2ReadInput) (Gen2ReadResult, Status, error) {
	if err := r.ready(); err != nil {
		return Gen2ReadResult{}, 0, err
	}
	return r.conn.Gen2Read(ctx, in)
}

func (r *Gen2Reader) Write(ctx context.Context, in Gen2WriteInput) (TagReply, Status, error) {
	if err := r.ready(); err != nil {
		return TagReply{}, 0, err
	}
	return r.conn.Gen2Write(ctx, in)
}

// ReadAlt issues a raw Gen2 Read through GenericCmd. Bank, EBV word pointer
// and word count are packed after the 8-bit opcode at a 2-bit offset.
func (r *Gen2Reader) ReadAlt(ctx context.Context, bank MemoryBank, wordPtr uint32, wordCount int, password Password) ([]byte, Status, error) {
	const op = "Gen2Reader.ReadAlt"
	if err := r.ready(); err != nil {
		return nil, 0, err
	}
	if !bank.valid() {
		return nil, 0, invalidArg(op, "Bank", "%d unknown", bank)
	}
	if wordCount < 1 || wordCount > maxReadAltWords {
		return nil, 0, invalidArg(op, "wordCount", "%d outside 1..%d", wordCount, maxReadAltWords)
	}

	ebv := EncodeEBV(wordPtr)
	data := make([]byte, len(ebv)+3)
	data[0] = readAltOpcode
	data[1] = byte(bank) << 6
	i := 0
	for ; i < len(ebv); i++ {
		data[i+1] |= ebv[i] >> 2
		data[i+2] |= ebv[i] << 6
	}
	data[i+1] |= byte(wordCount) >> 2
	data[i+2] |= byte(wordCount) << 6

	res, st, err := r.conn.Gen2GenericCmd(ctx, Gen2GenericInput{
		Mode:                 GenericCRCExpectHead,
		Password:             password,
		NoResponseTime:       noResponseTime,
		SendData:             data,
		SendBitLength:        18 + 8*len(ebv),
		ExpectedRcvBitLength: rn16Bits*wordCount + rn16Bits,
		AppendRN16:           true,
	})
	if err != nil || !st.OK() {
		return nil, st, err
	}
	if len(res.Data) < 2 {
		return nil, st, protocolErr(op, "response of %d bytes has no RN16", len(res.Data))
	}
	return res.Data[:len(res.Data)-2], st, nil
}

// CustomCommandInput is a vendor command: a 16-bit code followed by
// optional payload bits. ResponseBits counts data bits only; UseRN16 asks
// the reader to append the handle and receive 16 more bits. A zero
// NoResponseTime means 0xFF.
type CustomCommandInput struct {
	Code           uint16
	Password       Password
	Data           []byte
	DataBits       int
	ResponseBits   int
	CRC            bool
	ExpectHeader   bool
	UseRN16        bool
	NoResponseTime uint8
}

func (r *Gen2Reader) CustomCommand(ctx context.Context, in CustomCommandInput) (Gen2GenericResult, Status, error) {
	const op = "Gen2Reader.CustomCommand"
	if err := r.ready(); err != nil {
		return Gen2GenericResult{}, 0, err
	}
	if in.DataBits < 0 || in.DataBits > len(in.Data)*8 {
		return Gen2GenericResult{}, 0, invalidArg(op, "DataBits", "%d outside 0..%d", in.DataBits, len(in.Data)*8)
	}

	mode := GenericNoCRC
	switch {
	case in.CRC && in.ExpectHeader:
		mode = GenericCRCExpectHead
	case in.CRC:
		mode = GenericCRC
	}

	rcvBits := in.ResponseBits
	if in.UseRN16 {
		rcvBits += rn16Bits
	}
	timeout := in.NoResponseTime
	if timeout == 0 {
		timeout = noResponseTime
	}

	send := make([]byte, 0, 2+len(in.Data))
	send = append(send, byte(in.Code>>8), byte(in.Code))
	send = append(send, in.Data...)
	return r.conn.Gen2GenericCmd(ctx, Gen2GenericInput{
		Mode:                 mode,
		Password:             in.Password,
		NoResponseTime:       timeout,
		SendData:             send,
		SendBitLength:        16 + in.DataBits,
		ExpectedRcvBitLength: rcvBits,
		AppendRN16:           in.UseRN16,
	})
}
