package simulator

import "bytes"

const (
	bankReserved uint8 = 0
	bankEPC      uint8 = 1
	bankTID      uint8 = 2
	bankUser     uint8 = 3
)

// Tag describes a tag placed in the simulated field.
type Tag struct {
	EPC            []byte
	TID            []byte
	User           []byte
	KillPassword   [4]byte
	AccessPassword [4]byte
	// Locked banks need the access password for writes.
	Locked []uint8
}

// DemoTags is the population used when a command runs without hardware.
func DemoTags() []Tag {
	out := make([]Tag, 0, 3)
	for i := byte(1); i <= 3; i++ {
		out = append(out, Tag{
			EPC:  []byte{0xE2, 0x80, 0x11, 0x60, 0x60, 0x00, 0x02, 0x0A, 0x00, 0x00, 0x00, i},
			TID:  []byte{0xE2, 0x80, 0x11, 0x60, 0x20, 0x00, 0x70, 0x00, 0x00, 0x00, 0x00, i},
			User: make([]byte, 64),
		})
	}
	return out
}

type tag struct {
	banks  [4][]byte
	locked [4]bool
}

func newTag(t Tag) *tag {
	epc := append([]byte(nil), t.EPC...)
	if len(epc)%2 != 0 {
		epc = append(epc, 0)
	}
	pc := uint16(len(epc)/2) << 11

	out := &tag{}
	out.banks[bankReserved] = append(append([]byte(nil), t.KillPassword[:]...), t.AccessPassword[:]...)
	out.banks[bankEPC] = append([]byte{0, 0, byte(pc >> 8), byte(pc)}, epc...)
	out.banks[bankTID] = append([]byte(nil), t.TID...)
	out.banks[bankUser] = append([]byte(nil), t.User...)
	for _, b := range t.Locked {
		if b <= bankUser {
			out.locked[b] = true
		}
	}
	return out
}

func (t *tag) pc() []byte { return t.banks[bankEPC][2:4] }

func (t *tag) epc() []byte {
	words := int(t.banks[bankEPC][2] >> 3)
	end := 4 + 2*words
	if end > len(t.banks[bankEPC]) {
		end = len(t.banks[bankEPC])
	}
	return t.banks[bankEPC][4:end]
}

func (t *tag) tid() []byte {
	tid := t.banks[bankTID]
	if len(tid) > 12 {
		tid = tid[:12]
	}
	return tid
}

func (t *tag) killPassword() []byte   { return t.banks[bankReserved][0:4] }
func (t *tag) accessPassword() []byte { return t.banks[bankReserved][4:8] }

// writable reports whether bank may be written with pwd.
func (t *tag) writable(bank uint8, pwd []byte) bool {
	if !t.locked[bank] {
		return true
	}
	return bytes.Equal(pwd, t.accessPassword())
}

func (t *tag) read(bank uint8, offset, n int) ([]byte, bool) {
	mem := t.banks[bank]
	if offset < 0 || offset+n > len(mem) {
		return nil, false
	}
	return append([]byte(nil), mem[offset:offset+n]...), true
}

func (t *tag) write(bank uint8, offset int, data []byte) bool {
	mem := t.banks[bank]
	if offset < 0 || offset+len(data) > len(mem) {
		return false
	}
	copy(mem[offset:], data)
	return true
}

type selectRule struct {
	invert bool
	bank   uint8
	ptr    uint32
	bits   int
	mask   []byte
}

func (s selectRule) matches(t *tag) bool {
	return s.invert != bitsEqual(t.banks[s.bank], int(s.ptr), s.mask, s.bits)
}

// bitsEqual compares n bits of mem starting at bit ptr with the leading n
// bits of mask.
func bitsEqual(mem []byte, ptr int, mask []byte, n int) bool {
	if ptr+n > len(mem)*8 || n > len(mask)*8 {
		return false
	}
	for i := 0; i < n; i++ {
		if bitAt(mem, ptr+i) != bitAt(mask, i) {
			return false
		}
	}
	return true
}

func bitAt(b []byte, i int) byte {
	return (b[i/8] >> (7 - uint(i%8))) & 1
}

// readBits reads n bits MSB first starting at bit i.
func readBits(b []byte, i, n int) (uint32, bool) {
	if i+n > len(b)*8 {
		return 0, false
	}
	var v uint32
	for k := 0; k < n; k++ {
		v = v<<1 | uint32(bitAt(b, i+k))
	}
	return v, true
}

func (r *Reader) population() []*tag {
	if len(r.selects) == 0 {
		return r.tags
	}
	var out []*tag
	for _, t := range r.tags {
		ok := true
		for _, s := range r.selects {
			if !s.matches(t) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, t)
		}
	}
	return out
}

func (r *Reader) removeTag(t *tag) {
	for i, v := range r.tags {
		if v == t {
			r.tags = append(r.tags[:i], r.tags[i+1:]...)
			return
		}
	}
}
