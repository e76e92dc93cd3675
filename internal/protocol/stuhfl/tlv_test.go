package stuhfl

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestWriterFieldLayout(t *testing.T) {
	got := NewWriter().U8(FieldAntenna, 2).U16(FieldTimeout, 0x0102).Encode()
	want := []byte{
		byte(FieldAntenna), 0x01, 0x00, 0x02,
		byte(FieldTimeout), 0x02, 0x00, 0x02, 0x01,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("payload mismatch: got %X want %X", got, want)
	}
}

func TestDecodeTypedValues(t *testing.T) {
	payload := NewWriter().
		I8(FieldTxOutputLevel, -19).
		Bool(FieldSkipLBTCheck, true).
		U32(FieldFrequency, 865700).
		I16(FieldReflectedI, -300).
		Raw(FieldEPC, []byte{0xE2, 0x00, 0x34}).
		Encode()

	rec, err := Decode(payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got := rec.I8(FieldTxOutputLevel); got != -19 {
		t.Fatalf("tx level mismatch: got %d want -19", got)
	}
	if !rec.Bool(FieldSkipLBTCheck) {
		t.Fatalf("skip lbt flag lost")
	}
	if got := rec.U32(FieldFrequency); got != 865700 {
		t.Fatalf("frequency mismatch: got %d want 865700", got)
	}
	if got := rec.I16(FieldReflectedI); got != -300 {
		t.Fatalf("reflected I mismatch: got %d want -300", got)
	}
	if got := rec.Bytes(FieldEPC); !bytes.Equal(got, []byte{0xE2, 0x00, 0x34}) {
		t.Fatalf("epc mismatch: got %X", got)
	}
	if rec.Has(FieldTID) {
		t.Fatalf("unexpected tid field")
	}
	if got := rec.U16(FieldTID); got != 0 {
		t.Fatalf("missing field must read as zero: got %d", got)
	}
}

func TestDecodeNestedAndRepeated(t *testing.T) {
	w := NewWriter().U16(FieldTagListSize, 2)
	for i := 0; i < 2; i++ {
		w.Record(FieldTag, NewWriter().U32(FieldSlotID, uint32(i)).Raw(FieldEPC, []byte{byte(i)}))
	}

	rec, err := Decode(w.Encode())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	tags := rec.All(FieldTag)
	if len(tags) != 2 {
		t.Fatalf("tag count mismatch: got %d want 2", len(tags))
	}
	second, err := Decode(tags[1])
	if err != nil {
		t.Fatalf("nested decode failed: %v", err)
	}
	if second.U32(FieldSlotID) != 1 {
		t.Fatalf("slot id mismatch: got %d want 1", second.U32(FieldSlotID))
	}
}

func TestDecodeRejectsTruncatedField(t *testing.T) {
	payload := NewWriter().Raw(FieldEPC, []byte{1, 2, 3, 4}).Encode()
	if _, err := Decode(payload[:5]); err == nil {
		t.Fatal("expected truncated field error, got nil")
	}
	if _, err := Decode([]byte{byte(FieldEPC), 0x01}); err == nil {
		t.Fatal("expected truncated header error, got nil")
	}
}

func TestDecodeErrorCarriesStack(t *testing.T) {
	_, err := Decode([]byte{byte(FieldEPC), 0x05, 0x00, 0x01})
	if err == nil {
		t.Fatal("expected truncated field error, got nil")
	}
	if _, ok := err.(interface{ StackTrace() errors.StackTrace }); !ok {
		t.Fatalf("error %T has no stack trace", err)
	}
	if !strings.Contains(fmt.Sprintf("%+v", err), "stuhfl.Decode") {
		t.Fatalf("stack does not name Decode:\n%+v", err)
	}
}
