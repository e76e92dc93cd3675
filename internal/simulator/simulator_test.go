package simulator

import (
	"bytes"
	"io"
	"testing"
	"time"

	"stuhfl_go/internal/protocol/stuhfl"
)

func roundTrip(t *testing.T, r *Reader, group, code byte, payload *stuhfl.Writer) stuhfl.Frame {
	t.Helper()
	if _, err := r.Write(stuhfl.BuildRequest(group, code, payload.Encode())); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	buf := make([]byte, 4096)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	frames, _ := stuhfl.ParseResponses(buf[:n])
	if len(frames) != 1 {
		t.Fatalf("frame count mismatch: got %d want 1 (%X)", len(frames), buf[:n])
	}
	return frames[0]
}

func TestRequestsAreRecorded(t *testing.T) {
	r := New()
	f := roundTrip(t, r, stuhfl.GroupGet, stuhfl.ConfigTxRx, nil)
	if f.Status != stuhfl.StatusNone {
		t.Fatalf("status mismatch: got %04X want 0000", f.Status)
	}
	if got := r.Count(stuhfl.GroupGet, stuhfl.ConfigTxRx); got != 1 {
		t.Fatalf("request count mismatch: got %d want 1", got)
	}
	r.ClearRequests()
	if len(r.Requests()) != 0 {
		t.Fatalf("requests not cleared")
	}
}

func TestSplitWritesAreReassembled(t *testing.T) {
	r := New()
	packet := stuhfl.BuildRequest(stuhfl.GroupGet, stuhfl.ConfigTxRx, nil)
	if _, err := r.Write(packet[:3]); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if got := len(r.Requests()); got != 0 {
		t.Fatalf("partial frame should not be handled: got %d requests", got)
	}
	if _, err := r.Write(packet[3:]); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if got := len(r.Requests()); got != 1 {
		t.Fatalf("request count mismatch: got %d want 1", got)
	}
}

func TestReadTimesOutEmpty(t *testing.T) {
	r := New()
	_ = r.SetReadTimeout(5 * time.Millisecond)
	n, err := r.Read(make([]byte, 16))
	if n != 0 || err != nil {
		t.Fatalf("expected empty timeout read: n=%d err=%v", n, err)
	}
	_ = r.Close()
	if _, err := r.Read(make([]byte, 16)); err != io.ErrClosedPipe {
		t.Fatalf("read after close: got %v want %v", err, io.ErrClosedPipe)
	}
}

func TestForcedStatusSkipsSideEffects(t *testing.T) {
	r := New(Tag{EPC: []byte{1, 2}})
	r.ForceStatus(stuhfl.GroupSL, stuhfl.CodeGen2Kill, stuhfl.StatusBusy)
	f := roundTrip(t, r, stuhfl.GroupSL, stuhfl.CodeGen2Kill, stuhfl.NewWriter())
	if f.Status != stuhfl.StatusBusy {
		t.Fatalf("status mismatch: got %04X want %04X", f.Status, stuhfl.StatusBusy)
	}
	r.ForceStatus(stuhfl.GroupSL, stuhfl.CodeGen2Kill, stuhfl.StatusNone)
	f = roundTrip(t, r, stuhfl.GroupSL, stuhfl.CodeGen2Kill, stuhfl.NewWriter())
	if f.Status != stuhfl.StatusGen2Access {
		t.Fatalf("status mismatch: got %04X want %04X", f.Status, stuhfl.StatusGen2Access)
	}
}

func TestCorruptResponseFailsCRC(t *testing.T) {
	r := New()
	r.CorruptNextResponse()
	if _, err := r.Write(stuhfl.BuildRequest(stuhfl.GroupGet, stuhfl.ConfigTxRx, nil)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	buf := make([]byte, 256)
	n, _ := r.Read(buf)
	if stuhfl.VerifyPacket(buf[:n]) {
		t.Fatalf("corrupted packet should not verify: %X", buf[:n])
	}
}

func TestNewTagLayout(t *testing.T) {
	tg := newTag(Tag{EPC: []byte{0xAA, 0xBB, 0xCC}, KillPassword: [4]byte{1, 2, 3, 4}})
	if !bytes.Equal(tg.pc(), []byte{0x10, 0x00}) {
		t.Fatalf("pc mismatch: got %X want 1000", tg.pc())
	}
	if !bytes.Equal(tg.epc(), []byte{0xAA, 0xBB, 0xCC, 0x00}) {
		t.Fatalf("epc mismatch: got %X", tg.epc())
	}
	if !bytes.Equal(tg.killPassword(), []byte{1, 2, 3, 4}) {
		t.Fatalf("kill password mismatch: got %X", tg.killPassword())
	}
}

func TestSelectRuleBitCompare(t *testing.T) {
	tg := newTag(Tag{EPC: []byte{0xE2, 0x00, 0x34, 0x12}})
	match := selectRule{bank: bankEPC, ptr: 32, bits: 12, mask: []byte{0xE2, 0x0F}}
	if !match.matches(tg) {
		t.Fatalf("12-bit prefix should match")
	}
	miss := selectRule{bank: bankEPC, ptr: 32, bits: 16, mask: []byte{0xE2, 0x0F}}
	if miss.matches(tg) {
		t.Fatalf("16-bit compare should not match")
	}
	miss.invert = true
	if !miss.matches(tg) {
		t.Fatalf("inverted rule should match")
	}
	long := selectRule{bank: bankEPC, ptr: 32, bits: 24, mask: []byte{0xE2}}
	if long.matches(tg) {
		t.Fatalf("bit length beyond mask must not match")
	}
}

func TestLockPayloadDecode(t *testing.T) {
	r := New(Tag{EPC: []byte{1, 2}, User: make([]byte, 4)})
	// User region secured: mask bits 11..10, action bits 1..0.
	value := uint32(0b11<<10|0b10) << 4
	payload := []byte{byte(value >> 16), byte(value >> 8), byte(value)}
	f := roundTrip(t, r, stuhfl.GroupSL, stuhfl.CodeGen2Lock, stuhfl.NewWriter().Raw(stuhfl.FieldLockMask, payload))
	if f.Status != stuhfl.StatusNone {
		t.Fatalf("lock status mismatch: got %04X", f.Status)
	}
	if !r.tags[0].locked[bankUser] || r.tags[0].locked[bankEPC] {
		t.Fatalf("lock state mismatch: %v", r.tags[0].locked)
	}
}

func TestChannelListSwitchesAntenna(t *testing.T) {
	r := New()
	r.SwitchAntennaOnChannelList(3)
	item := stuhfl.NewWriter().U32(stuhfl.FieldFrequency, 902750)
	roundTrip(t, r, stuhfl.GroupSet, stuhfl.ConfigChannelList, stuhfl.NewWriter().Record(stuhfl.FieldChannel, item))
	if r.Antenna() != 3 {
		t.Fatalf("antenna mismatch: got %d want 3", r.Antenna())
	}
	if len(r.channels) != 1 || r.channels[0] != 902750 {
		t.Fatalf("channels mismatch: got %v", r.channels)
	}
}
