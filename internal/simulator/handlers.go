package simulator

import (
	"bytes"

	"stuhfl_go/internal/protocol/stuhfl"
)

const (
	readAltOpcode        = 0xC2
	genericCRCExpectHead = 0x91
	tuningStatusUntuned  = 0
	tuningStatusTuned    = 2
	slotEmpty            = 0
	slotTag              = 1
)

var rn16 = []byte{0x12, 0x34}

func (r *Reader) respond(group, code byte, in stuhfl.Record) []byte {
	if st, ok := r.forced[uint16(group)<<8|uint16(code)]; ok {
		return stuhfl.BuildResponse(group, code, st, nil)
	}

	var st uint16
	var out *stuhfl.Writer
	switch group {
	case stuhfl.GroupSet:
		st = r.set(code, in)
	case stuhfl.GroupGet:
		st, out = r.get(code, in)
	case stuhfl.GroupTune:
		st = r.tune(code)
	case stuhfl.GroupSL:
		st, out = r.sl(code, in)
	default:
		st = stuhfl.StatusRequest
	}
	return stuhfl.BuildResponse(group, code, st, out.Encode())
}

func (r *Reader) set(code byte, in stuhfl.Record) uint16 {
	r.configs[code] = append(stuhfl.Record(nil), in...)
	switch code {
	case stuhfl.ConfigTxRx:
		r.txrx = txrx{
			txOutputLevel: in.I8(stuhfl.FieldTxOutputLevel),
			rxSensitivity: in.I8(stuhfl.FieldRxSensitivity),
			antenna:       in.U8(stuhfl.FieldAntenna),
			altInterval:   in.U16(stuhfl.FieldAltAntInterval),
		}
	case stuhfl.ConfigGen2Inventory:
		r.startQ = in.U8(stuhfl.FieldStartQ)
		r.readTID = in.Bool(stuhfl.FieldReadTID)
	case stuhfl.ConfigChannelList:
		r.channels = r.channels[:0]
		for _, raw := range in.All(stuhfl.FieldChannel) {
			item, err := stuhfl.Decode(raw)
			if err != nil {
				return stuhfl.StatusParam
			}
			r.channels = append(r.channels, item.U32(stuhfl.FieldFrequency))
		}
		if r.switchTo != 0 {
			r.txrx.antenna = r.switchTo
			r.switchTo = 0
		}
	}
	return stuhfl.StatusNone
}

func (r *Reader) get(code byte, in stuhfl.Record) (uint16, *stuhfl.Writer) {
	w := stuhfl.NewWriter()
	switch code {
	case stuhfl.ConfigTxRx:
		w.I8(stuhfl.FieldTxOutputLevel, r.txrx.txOutputLevel).
			I8(stuhfl.FieldRxSensitivity, r.txrx.rxSensitivity).
			U8(stuhfl.FieldAntenna, r.txrx.antenna).
			U16(stuhfl.FieldAltAntInterval, r.txrx.altInterval)
	case stuhfl.ConfigFreqRSSI:
		w.U32(stuhfl.FieldFrequency, in.U32(stuhfl.FieldFrequency)).
			U8(stuhfl.FieldRSSILogI, 3).
			U8(stuhfl.FieldRSSILogQ, 4)
	case stuhfl.ConfigFreqReflectedPower:
		w.U32(stuhfl.FieldFrequency, in.U32(stuhfl.FieldFrequency)).
			U8(stuhfl.FieldAntenna, in.U8(stuhfl.FieldAntenna)).
			I16(stuhfl.FieldReflectedI, 10).
			I16(stuhfl.FieldReflectedQ, -10)
	case stuhfl.ConfigTuningCaps:
		caps := stuhfl.NewWriter().U8(stuhfl.FieldCin, 15).U8(stuhfl.FieldClen, 15).U8(stuhfl.FieldCout, 15)
		if stored, ok := r.configs[code]; ok && stored.U8(stuhfl.FieldAntenna) == in.U8(stuhfl.FieldAntenna) {
			if sub, err := stored.Sub(stuhfl.FieldCaps); err == nil && sub != nil {
				caps = encodeRecord(sub)
			}
		}
		w.U8(stuhfl.FieldAntenna, in.U8(stuhfl.FieldAntenna)).
			U8(stuhfl.FieldChannelListIdx, in.U8(stuhfl.FieldChannelListIdx)).
			Record(stuhfl.FieldCaps, caps)
	default:
		w = encodeRecord(r.configs[code])
	}
	return stuhfl.StatusNone, w
}

func encodeRecord(rec stuhfl.Record) *stuhfl.Writer {
	w := stuhfl.NewWriter()
	for _, e := range rec {
		w.Raw(e.Field, e.Value)
	}
	return w
}

func (r *Reader) tune(code byte) uint16 {
	if code != stuhfl.CodeTuneChannel {
		return stuhfl.StatusRequest
	}
	r.tuned = true
	return stuhfl.StatusNone
}

func (r *Reader) sl(code byte, in stuhfl.Record) (uint16, *stuhfl.Writer) {
	switch code {
	case stuhfl.CodeGen2Inventory, stuhfl.CodeGbInventory, stuhfl.CodeIso6bInventory:
		return stuhfl.StatusNone, r.inventory(in)
	case stuhfl.CodeGen2Select, stuhfl.CodeGbSort:
		return r.selectCmd(in), nil
	case stuhfl.CodeIso6bSelect:
		if in.U8(stuhfl.FieldMode) == 0 {
			r.selects = nil
		}
		return stuhfl.StatusNone, nil
	case stuhfl.CodeGen2Challenge:
		return stuhfl.StatusNone, nil
	}

	pop := r.population()
	if len(pop) == 0 {
		return stuhfl.StatusChipNoResp, nil
	}
	t := pop[0]
	pwd := in.Bytes(stuhfl.FieldPassword)

	switch code {
	case stuhfl.CodeGen2Read, stuhfl.CodeGbRead:
		return r.readCmd(t, in)
	case stuhfl.CodeGen2Write, stuhfl.CodeGen2BlockWrite, stuhfl.CodeGbWrite:
		return r.writeCmd(t, in, int(in.U32(stuhfl.FieldWordPtr))*2, in.Bytes(stuhfl.FieldData))
	case stuhfl.CodeGbErase:
		zeros := make([]byte, in.U8(stuhfl.FieldByteCount))
		return r.writeCmd(t, in, int(in.U32(stuhfl.FieldBytePtr)), zeros)
	case stuhfl.CodeGen2Lock:
		return r.lockCmd(t, in)
	case stuhfl.CodeGbLock:
		if !passwordOK(t.accessPassword(), pwd) {
			return stuhfl.StatusGbPassword, nil
		}
		return stuhfl.StatusNone, tagReply(0)
	case stuhfl.CodeGen2Kill, stuhfl.CodeGbKill:
		if isZero(t.killPassword()) || !bytes.Equal(t.killPassword(), pwd) {
			if code == stuhfl.CodeGbKill {
				return stuhfl.StatusGbPassword, nil
			}
			return stuhfl.StatusGen2Access, nil
		}
		r.removeTag(t)
		return stuhfl.StatusNone, tagReply(0)
	case stuhfl.CodeGen2GenericCmd:
		return r.genericCmd(t, in)
	case stuhfl.CodeGen2QueryMeasureRssi:
		w := stuhfl.NewWriter()
		for i := 0; i < int(in.U16(stuhfl.FieldMeasureCount)); i++ {
			w.Record(stuhfl.FieldMeasure, stuhfl.NewWriter().
				U8(stuhfl.FieldAGC, 5).
				U8(stuhfl.FieldRSSILogI, 20).
				U8(stuhfl.FieldRSSILogQ, 18).
				I8(stuhfl.FieldRSSILinI, -12).
				I8(stuhfl.FieldRSSILinQ, 9))
		}
		return stuhfl.StatusNone, w
	case stuhfl.CodeGen2Authenticate, stuhfl.CodeGen2AuthComm, stuhfl.CodeGen2SecureComm, stuhfl.CodeGen2KeyUpdate:
		return stuhfl.StatusNone, response(in.Bytes(stuhfl.FieldMessage), int(in.U16(stuhfl.FieldMessageBitLength)))
	case stuhfl.CodeGen2TagPrivilege:
		p := in.U16(stuhfl.FieldPrivilege)
		return stuhfl.StatusNone, response([]byte{byte(p >> 8), byte(p)}, 16)
	case stuhfl.CodeGen2ReadBuffer:
		bits := int(in.U16(stuhfl.FieldBitCount))
		return stuhfl.StatusNone, response(bytes.Repeat([]byte{0xA5}, (bits+7)/8), bits)
	case stuhfl.CodeGen2Untraceable:
		return stuhfl.StatusNone, stuhfl.NewWriter().U8(stuhfl.FieldTagErrorCode, 0)
	case stuhfl.CodeIso6bRead:
		data := make([]byte, 8)
		user := t.banks[bankUser]
		if addr := int(in.U8(stuhfl.FieldAddress)); addr < len(user) {
			copy(data, user[addr:])
		}
		return stuhfl.StatusNone, stuhfl.NewWriter().Raw(stuhfl.FieldData, data)
	case stuhfl.CodeIso6bWrite:
		if !t.write(bankUser, int(in.U8(stuhfl.FieldAddress)), []byte{in.U8(stuhfl.FieldData)}) {
			return stuhfl.StatusIso6bOther, nil
		}
		return stuhfl.StatusNone, tagReply(0)
	}
	return stuhfl.StatusRequest, nil
}

func (r *Reader) inventory(in stuhfl.Record) *stuhfl.Writer {
	limit := int(in.U16(stuhfl.FieldTagListSizeMax))
	pop := r.population()
	n := min(len(pop), limit)
	count := n
	if r.overReport > 0 {
		count = limit + r.overReport
	}

	w := stuhfl.NewWriter().U16(stuhfl.FieldTagListSize, uint16(count))
	for i := 0; i < count; i++ {
		rec := stuhfl.NewWriter().
			U32(stuhfl.FieldSlotID, uint32(i)).
			U32(stuhfl.FieldTimestamp, uint32(len(r.requests))*10).
			U8(stuhfl.FieldAntenna, r.txrx.antenna).
			U8(stuhfl.FieldAGC, 5).
			U8(stuhfl.FieldRSSILogI, 20).
			U8(stuhfl.FieldRSSILogQ, 18).
			I8(stuhfl.FieldRSSILinI, -12).
			I8(stuhfl.FieldRSSILinQ, 9)
		if len(pop) > 0 {
			t := pop[i%len(pop)]
			rec.Raw(stuhfl.FieldPC, t.pc()).Raw(stuhfl.FieldEPC, t.epc())
			if r.readTID {
				rec.Raw(stuhfl.FieldTID, t.tid())
			}
		}
		w.Record(stuhfl.FieldTag, rec)
	}

	slots := 1 << r.startQ
	tuning := uint8(tuningStatusUntuned)
	if r.tuned {
		tuning = tuningStatusTuned
	}
	freq := uint32(865700)
	if len(r.channels) > 0 {
		freq = r.channels[0]
	}
	w.Record(stuhfl.FieldStatistics, stuhfl.NewWriter().
		U32(stuhfl.FieldTimestamp, uint32(len(r.requests))*10).
		U32(stuhfl.FieldRoundCount, 1).
		U8(stuhfl.FieldTuningStatus, tuning).
		U8(stuhfl.FieldRSSILogMean, 19).
		I8(stuhfl.FieldSensitivity, r.txrx.rxSensitivity).
		U8(stuhfl.FieldQ, r.startQ).
		U32(stuhfl.FieldFrequency, freq).
		U16(stuhfl.FieldADC, 0x55).
		U32(stuhfl.FieldTagCount, uint32(n)).
		U32(stuhfl.FieldSlotCount, uint32(slots)).
		U32(stuhfl.FieldEmptySlotCount, uint32(max(slots-n, 0))))

	if in.Bool(stuhfl.FieldReportSlotInfo) {
		for i := 0; i < slots; i++ {
			kind := uint8(slotEmpty)
			if i < n {
				kind = slotTag
			}
			w.Record(stuhfl.FieldSlot, stuhfl.NewWriter().U32(stuhfl.FieldSlotID, uint32(i)).U8(stuhfl.FieldSlotKind, kind))
		}
	}
	return w
}

func (r *Reader) selectCmd(in stuhfl.Record) uint16 {
	mode := in.U8(stuhfl.FieldMode)
	invert := mode&0x80 != 0
	mode &^= 0x80
	switch mode {
	case 0:
		r.selects = nil
		return stuhfl.StatusNone
	case 2:
		r.selects = nil
	case 1:
	default:
		return stuhfl.StatusParam
	}
	bank := in.U8(stuhfl.FieldBank)
	if bank > bankUser {
		return stuhfl.StatusParam
	}
	r.selects = append(r.selects, selectRule{
		invert: invert,
		bank:   bank,
		ptr:    in.U32(stuhfl.FieldMaskBitPointer),
		bits:   int(in.U8(stuhfl.FieldMaskBitLength)),
		mask:   in.Bytes(stuhfl.FieldMask),
	})
	return stuhfl.StatusNone
}

func (r *Reader) readCmd(t *tag, in stuhfl.Record) (uint16, *stuhfl.Writer) {
	bank := in.U8(stuhfl.FieldBank)
	if bank > bankUser {
		return stuhfl.StatusParam, nil
	}
	if bank == bankReserved && t.locked[bank] && !bytes.Equal(in.Bytes(stuhfl.FieldPassword), t.accessPassword()) {
		return stuhfl.StatusGen2Access, nil
	}
	data, ok := t.read(bank, int(in.U32(stuhfl.FieldWordPtr))*2, int(in.U8(stuhfl.FieldByteCount)))
	if !ok {
		return stuhfl.StatusGen2MemOverrun, nil
	}
	return stuhfl.StatusNone, stuhfl.NewWriter().Raw(stuhfl.FieldData, data)
}

func (r *Reader) writeCmd(t *tag, in stuhfl.Record, offset int, data []byte) (uint16, *stuhfl.Writer) {
	bank := in.U8(stuhfl.FieldBank)
	if bank > bankUser {
		return stuhfl.StatusParam, nil
	}
	if !t.writable(bank, in.Bytes(stuhfl.FieldPassword)) {
		return stuhfl.StatusGen2Access, nil
	}
	if !t.write(bank, offset, data) {
		return stuhfl.StatusGen2MemOverrun, nil
	}
	return stuhfl.StatusNone, tagReply(0)
}

// lockTargetBanks maps the five Lock payload regions to memory banks.
var lockTargetBanks = [5]uint8{bankReserved, bankReserved, bankEPC, bankTID, bankUser}

func (r *Reader) lockCmd(t *tag, in stuhfl.Record) (uint16, *stuhfl.Writer) {
	if !passwordOK(t.accessPassword(), in.Bytes(stuhfl.FieldPassword)) {
		return stuhfl.StatusGen2Access, nil
	}
	payload := in.Bytes(stuhfl.FieldLockMask)
	if len(payload) != 3 {
		return stuhfl.StatusParam, nil
	}
	value := (uint32(payload[0])<<16 | uint32(payload[1])<<8 | uint32(payload[2])) >> 4
	for i, bank := range lockTargetBanks {
		shift := 8 - 2*uint32(i)
		mask := (value >> (shift + 10)) & 0b11
		action := (value >> shift) & 0b11
		if mask&0b10 != 0 {
			t.locked[bank] = action&0b10 != 0
		}
	}
	return stuhfl.StatusNone, tagReply(0)
}

func (r *Reader) genericCmd(t *tag, in stuhfl.Record) (uint16, *stuhfl.Writer) {
	data := in.Bytes(stuhfl.FieldData)
	if len(data) >= 3 && data[0] == readAltOpcode && in.U8(stuhfl.FieldGenericMode) == genericCRCExpectHead {
		bank := uint8(data[1] >> 6)
		pos := 10
		var ptr uint32
		for k := 0; k < 5; k++ {
			group, ok := readBits(data, pos, 8)
			if !ok {
				return stuhfl.StatusParam, nil
			}
			pos += 8
			ptr = ptr<<7 | group&0x7F
			if group&0x80 == 0 {
				break
			}
		}
		words, ok := readBits(data, pos, 8)
		if !ok || words == 0 {
			return stuhfl.StatusParam, nil
		}
		mem, ok := t.read(bank, int(ptr)*2, int(words)*2)
		if !ok {
			return stuhfl.StatusGen2MemOverrun, nil
		}
		return stuhfl.StatusNone, response(append(mem, rn16...), int(words)*16+16)
	}

	bits := min(int(in.U16(stuhfl.FieldRcvBitLength)), len(data)*8)
	return stuhfl.StatusNone, response(data, bits)
}

func response(data []byte, bits int) *stuhfl.Writer {
	return stuhfl.NewWriter().
		Raw(stuhfl.FieldResponse, data).
		U16(stuhfl.FieldResponseBitLength, uint16(bits)).
		Bool(stuhfl.FieldResponseHeaderBit, false)
}

func tagReply(code uint8) *stuhfl.Writer {
	return stuhfl.NewWriter().U8(stuhfl.FieldTagReply, code)
}

// passwordOK accepts any password when the tag has none set.
func passwordOK(want, got []byte) bool {
	return isZero(want) || bytes.Equal(want, got)
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
