package stuhfl

import "encoding/binary"

const (
	// MaxFrameLength bounds the length header; anything larger is treated as noise.
	MaxFrameLength = 8192

	requestOverhead  = 6
	responseOverhead = 8
)

// Frame is one decoded request or response frame.
type Frame struct {
	Length   uint16
	Group    byte
	Code     byte
	Status   uint16
	Data     []byte
	Raw      []byte
	CRCValid bool
}

// Command returns the combined group/code identifier.
func (f Frame) Command() uint16 {
	return uint16(f.Group)<<8 | uint16(f.Code)
}

// BuildRequest builds one host-to-reader packet.
// Packet format: Len(2) + Group(1) + Code(1) + Data(n) + CRC_L(1) + CRC_H(1)
func BuildRequest(group, code byte, payload []byte) []byte {
	length := len(payload) + 4
	packet := make([]byte, 0, length+2)
	packet = binary.LittleEndian.AppendUint16(packet, uint16(length))
	packet = append(packet, group, code)
	packet = append(packet, payload...)
	return appendCRC(packet)
}

// BuildResponse builds one reader-to-host packet.
// Packet format: Len(2) + Group(1) + Code(1) + Status(2) + Data(n) + CRC_L(1) + CRC_H(1)
func BuildResponse(group, code byte, status uint16, payload []byte) []byte {
	length := len(payload) + 6
	packet := make([]byte, 0, length+2)
	packet = binary.LittleEndian.AppendUint16(packet, uint16(length))
	packet = append(packet, group, code)
	packet = binary.LittleEndian.AppendUint16(packet, status)
	packet = append(packet, payload...)
	return appendCRC(packet)
}

// VerifyPacket checks length and CRC validity for a full packet.
func VerifyPacket(packet []byte) bool {
	if len(packet) < requestOverhead {
		return false
	}
	expectedTotal := int(binary.LittleEndian.Uint16(packet)) + 2
	if expectedTotal != len(packet) {
		return false
	}
	crc := crc16MCRF4XX(packet[:len(packet)-2])
	return byte(crc&0xFF) == packet[len(packet)-2] && byte(crc>>8) == packet[len(packet)-1]
}

// ParseResponses decodes as many valid response frames as possible from stream data.
// It returns parsed frames and remaining bytes that were not enough for a full frame.
func ParseResponses(stream []byte) (frames []Frame, remaining []byte) {
	return parseFrames(stream, true)
}

// ParseRequests is the reader-side counterpart of ParseResponses.
func ParseRequests(stream []byte) (frames []Frame, remaining []byte) {
	return parseFrames(stream, false)
}

func parseFrames(stream []byte, withStatus bool) (frames []Frame, remaining []byte) {
	if len(stream) == 0 {
		return nil, nil
	}

	minTotal := requestOverhead
	if withStatus {
		minTotal = responseOverhead
	}

	buf := stream
	frames = make([]Frame, 0, 2)

	for len(buf) > 0 {
		if len(buf) < 2 {
			break
		}

		total := int(binary.LittleEndian.Uint16(buf)) + 2
		if total < minTotal || total > MaxFrameLength {
			buf = buf[1:]
			continue
		}
		if total > len(buf) {
			// A header that claims more than is buffered may be noise; jump to
			// the next complete frame if one is already present.
			if skip := nextValidFrame(buf[1:], minTotal); skip >= 0 {
				buf = buf[1+skip:]
				continue
			}
			break
		}

		raw := buf[:total]
		if !VerifyPacket(raw) {
			buf = buf[1:]
			continue
		}

		header := 4
		frame := Frame{
			Length:   binary.LittleEndian.Uint16(raw),
			Group:    raw[2],
			Code:     raw[3],
			CRCValid: true,
		}
		if withStatus {
			frame.Status = binary.LittleEndian.Uint16(raw[4:])
			header = 6
		}

		dataEnd := total - 2
		frame.Data = make([]byte, dataEnd-header)
		copy(frame.Data, raw[header:dataEnd])
		frame.Raw = make([]byte, total)
		copy(frame.Raw, raw)

		frames = append(frames, frame)
		buf = buf[total:]
	}

	remaining = make([]byte, len(buf))
	copy(remaining, buf)
	return frames, remaining
}

func nextValidFrame(buf []byte, minTotal int) int {
	for i := 0; i+minTotal <= len(buf); i++ {
		total := int(binary.LittleEndian.Uint16(buf[i:])) + 2
		if total < minTotal || total > MaxFrameLength || i+total > len(buf) {
			continue
		}
		if VerifyPacket(buf[i : i+total]) {
			return i
		}
	}
	return -1
}

func appendCRC(packet []byte) []byte {
	crc := crc16MCRF4XX(packet)
	return append(packet, byte(crc&0xFF), byte(crc>>8))
}

// crc-16-mcrf4xx (poly 0x8408, init 0xFFFF, refin/refout true).
func crc16MCRF4XX(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&0x0001 != 0 {
				crc = (crc >> 1) ^ 0x8408
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
