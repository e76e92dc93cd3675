package stuhfl

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Writer appends TLV fields: Tag(1) + Len(2) + Value(Len).
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

// Encode returns the accumulated payload.
func (w *Writer) Encode() []byte {
	if w == nil {
		return nil
	}
	return w.buf
}

func (w *Writer) Raw(f Field, value []byte) *Writer {
	w.buf = append(w.buf, byte(f))
	w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(len(value)))
	w.buf = append(w.buf, value...)
	return w
}

func (w *Writer) U8(f Field, v uint8) *Writer {
	return w.Raw(f, []byte{v})
}

func (w *Writer) I8(f Field, v int8) *Writer {
	return w.Raw(f, []byte{byte(v)})
}

func (w *Writer) Bool(f Field, v bool) *Writer {
	if v {
		return w.U8(f, 1)
	}
	return w.U8(f, 0)
}

func (w *Writer) U16(f Field, v uint16) *Writer {
	return w.Raw(f, binary.LittleEndian.AppendUint16(nil, v))
}

func (w *Writer) I16(f Field, v int16) *Writer {
	return w.U16(f, uint16(v))
}

func (w *Writer) U32(f Field, v uint32) *Writer {
	return w.Raw(f, binary.LittleEndian.AppendUint32(nil, v))
}

// Record nests another field sequence as the value of f.
func (w *Writer) Record(f Field, nested *Writer) *Writer {
	return w.Raw(f, nested.Encode())
}

// Entry is one decoded field.
type Entry struct {
	Field Field
	Value []byte
}

// Record is a decoded field sequence. Lookups return the first occurrence;
// missing fields read as zero.
type Record []Entry

// Decode splits payload into fields. A truncated field is an error.
func Decode(payload []byte) (Record, error) {
	rec := make(Record, 0, 8)
	buf := payload
	for len(buf) > 0 {
		if len(buf) < 3 {
			return nil, errors.Errorf("truncated field header: %d bytes left", len(buf))
		}
		f := Field(buf[0])
		n := int(binary.LittleEndian.Uint16(buf[1:]))
		if len(buf) < 3+n {
			return nil, errors.Errorf("truncated field 0x%02X: need %d bytes, have %d", byte(f), n, len(buf)-3)
		}
		rec = append(rec, Entry{Field: f, Value: buf[3 : 3+n]})
		buf = buf[3+n:]
	}
	return rec, nil
}

func (r Record) Lookup(f Field) ([]byte, bool) {
	for _, e := range r {
		if e.Field == f {
			return e.Value, true
		}
	}
	return nil, false
}

func (r Record) Has(f Field) bool {
	_, ok := r.Lookup(f)
	return ok
}

// All returns every occurrence of f in order.
func (r Record) All(f Field) [][]byte {
	var out [][]byte
	for _, e := range r {
		if e.Field == f {
			out = append(out, e.Value)
		}
	}
	return out
}

func (r Record) U8(f Field) uint8 {
	v, _ := r.Lookup(f)
	if len(v) == 0 {
		return 0
	}
	return v[0]
}

func (r Record) I8(f Field) int8 {
	return int8(r.U8(f))
}

func (r Record) Bool(f Field) bool {
	return r.U8(f) != 0
}

func (r Record) U16(f Field) uint16 {
	v, _ := r.Lookup(f)
	return uint16(littleEndian(v, 2))
}

func (r Record) I16(f Field) int16 {
	return int16(r.U16(f))
}

func (r Record) U32(f Field) uint32 {
	v, _ := r.Lookup(f)
	return uint32(littleEndian(v, 4))
}

// Bytes returns a copy of the raw value of f.
func (r Record) Bytes(f Field) []byte {
	v, ok := r.Lookup(f)
	if !ok {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

// Sub decodes the value of f as a nested record.
func (r Record) Sub(f Field) (Record, error) {
	v, ok := r.Lookup(f)
	if !ok {
		return nil, nil
	}
	return Decode(v)
}

func littleEndian(v []byte, width int) uint64 {
	if len(v) < width {
		width = len(v)
	}
	var out uint64
	for i := width - 1; i >= 0; i-- {
		out = out<<8 | uint64(v[i])
	}
	return out
}
