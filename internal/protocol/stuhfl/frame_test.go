package stuhfl

import (
	"bytes"
	"testing"
)

func TestCRC16MCRF4XXCheckValue(t *testing.T) {
	got := crc16MCRF4XX([]byte("123456789"))
	if got != 0x6F91 {
		t.Fatalf("crc mismatch: got %04X want 6F91", got)
	}
}

func TestBuildRequestLayout(t *testing.T) {
	packet := BuildRequest(GroupSL, CodeGen2Read, []byte{0xAA, 0xBB})
	if len(packet) != 8 {
		t.Fatalf("packet length mismatch: got %d want 8", len(packet))
	}
	if packet[0] != 0x06 || packet[1] != 0x00 {
		t.Fatalf("length header mismatch: got %X", packet[:2])
	}
	if packet[2] != GroupSL || packet[3] != CodeGen2Read {
		t.Fatalf("group/code mismatch: got %X", packet[2:4])
	}
	if !VerifyPacket(packet) {
		t.Fatalf("packet crc should verify: %X", packet)
	}
}

func TestParseResponsesSingleFrame(t *testing.T) {
	raw := BuildResponse(GroupGet, ConfigTxRx, StatusChipNoResp, []byte{0x01, 0x02, 0x03})
	frames, remaining := ParseResponses(raw)
	if len(frames) != 1 {
		t.Fatalf("frame count mismatch: got %d want 1", len(frames))
	}
	if len(remaining) != 0 {
		t.Fatalf("unexpected remaining bytes: %X", remaining)
	}
	f := frames[0]
	if f.Group != GroupGet || f.Code != ConfigTxRx {
		t.Fatalf("group/code mismatch: got %02X/%02X", f.Group, f.Code)
	}
	if f.Status != StatusChipNoResp {
		t.Fatalf("status mismatch: got %04X want %04X", f.Status, StatusChipNoResp)
	}
	if !bytes.Equal(f.Data, []byte{0x01, 0x02, 0x03}) {
		t.Fatalf("data mismatch: got %X", f.Data)
	}
	if f.Command() != uint16(GroupGet)<<8|uint16(ConfigTxRx) {
		t.Fatalf("command mismatch: got %04X", f.Command())
	}
}

func TestParseResponsesKeepsPartialTail(t *testing.T) {
	first := BuildResponse(GroupSet, ConfigFreqHop, StatusNone, nil)
	second := BuildResponse(GroupSet, ConfigFreqLBT, StatusNone, []byte{0x09})
	stream := append(append([]byte{}, first...), second[:4]...)

	frames, remaining := ParseResponses(stream)
	if len(frames) != 1 {
		t.Fatalf("frame count mismatch: got %d want 1", len(frames))
	}
	if !bytes.Equal(remaining, second[:4]) {
		t.Fatalf("remaining mismatch: got %X want %X", remaining, second[:4])
	}

	frames, remaining = ParseResponses(append(remaining, second[4:]...))
	if len(frames) != 1 || frames[0].Code != ConfigFreqLBT {
		t.Fatalf("second frame not recovered: %+v", frames)
	}
	if len(remaining) != 0 {
		t.Fatalf("unexpected remaining bytes: %X", remaining)
	}
}

func TestParseResponsesResyncsAfterNoise(t *testing.T) {
	good := BuildResponse(GroupTune, CodeTuneChannel, StatusNone, nil)
	corrupt := BuildResponse(GroupGet, ConfigTxRx, StatusNone, []byte{0x01})
	corrupt[len(corrupt)-1] ^= 0xFF

	stream := append([]byte{0xFF, 0x13}, corrupt...)
	stream = append(stream, good...)

	frames, _ := ParseResponses(stream)
	if len(frames) != 1 {
		t.Fatalf("frame count mismatch: got %d want 1", len(frames))
	}
	if frames[0].Group != GroupTune {
		t.Fatalf("unexpected frame after resync: %+v", frames[0])
	}
}

func TestParseRequestsHasNoStatus(t *testing.T) {
	raw := BuildRequest(GroupSet, ConfigTxRx, []byte{0x10, 0x20})
	frames, _ := ParseRequests(raw)
	if len(frames) != 1 {
		t.Fatalf("frame count mismatch: got %d want 1", len(frames))
	}
	if frames[0].Status != 0 {
		t.Fatalf("request frame must not carry status: %04X", frames[0].Status)
	}
	if !bytes.Equal(frames[0].Data, []byte{0x10, 0x20}) {
		t.Fatalf("data mismatch: got %X", frames[0].Data)
	}
}
