package strtensor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func packManual(strs []string) []byte {
	n := int32(len(strs))
	var chars []byte
	offsets := make([]int32, n+1)
	offsets[0] = 0
	for i, s := range strs {
		chars = append(chars, s...)
		offsets[i+1] = int32(len(chars))
	}

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, n)
	for _, o := range offsets {
		_ = binary.Write(&buf, binary.LittleEndian, o)
	}
	buf.Write(chars)
	return buf.Bytes()
}

func TestUnpack(t *testing.T) {
	buf := packManual([]string{"a", "bb", "", "ccc"})
	s, err := Unpack(buf)
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	if s.Len() != 4 {
		t.Fatalf("expected 4 elements, got %d", s.Len())
	}
	want := []string{"a", "bb", "", "ccc"}
	for i, w := range want {
		if string(s.At(i)) != w {
			t.Errorf("element %d: got %q, want %q", i, s.At(i), w)
		}
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestUnpack_Malformed(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"tooShortForHeader", []byte{1, 0, 0, 0}},
		{"truncatedPayload", packManual([]string{"hello"})[:14]},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Unpack(c.buf); !errors.Is(err, ErrMalformedPackedBuffer) {
				t.Errorf("expected ErrMalformedPackedBuffer, got %v", err)
			}
		})
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	strs := []string{"hello", "world", "", "a b c"}
	buf := packManual(strs)
	s, err := Unpack(buf)
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}

	repacked, err := Pack(s)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	s2, err := Unpack(repacked)
	if err != nil {
		t.Fatalf("Unpack(Pack(...)) failed: %v", err)
	}
	if s2.Len() != len(strs) {
		t.Fatalf("round trip changed element count: got %d, want %d", s2.Len(), len(strs))
	}
	for i, w := range strs {
		if string(s2.At(i)) != w {
			t.Errorf("round trip element %d: got %q, want %q", i, s2.At(i), w)
		}
	}
}

func TestPack_CanonicalizedGapsRoundTrip(t *testing.T) {
	// Deliberately construct a String with a gap between element 0 and 1:
	// chars has an unreferenced byte at index 1.
	s := String{
		Begins: []int32{0, 2},
		Ends:   []int32{1, 3},
		Chars:  []byte("aXb"),
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	canon := Canonicalize(s)
	buf, err := Pack(canon)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	s2, err := Unpack(buf)
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	if string(s2.At(0)) != "a" || string(s2.At(1)) != "b" {
		t.Errorf("canonicalized round trip mismatch: %q %q", s2.At(0), s2.At(1))
	}
}

func TestFlatString(t *testing.T) {
	s := String{Begins: []int32{0, 1}, Ends: []int32{1, 2}, Chars: []byte("ab")}
	r := FlatString(s)
	if r.Rows() != 2 {
		t.Fatalf("expected 2 rows, got %d", r.Rows())
	}
	for i := 0; i < 2; i++ {
		b, e := r.Row(i)
		if b != int32(i) || e != int32(i+1) {
			t.Errorf("row %d: got [%d,%d), want [%d,%d)", i, b, e, i, i+1)
		}
	}
	if err := r.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestRagged_RowAndValidate(t *testing.T) {
	r := Ragged[int32]{
		RagBegins: []int32{0, 3},
		RagEnds:   []int32{3, 5},
		Elems:     []int32{7, 8, 9, 10, 11},
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	row0 := r.Row(0)
	if len(row0) != 3 || row0[0] != 7 || row0[2] != 9 {
		t.Errorf("row 0 mismatch: %v", row0)
	}
	row1 := r.Row(1)
	if len(row1) != 2 || row1[0] != 10 || row1[1] != 11 {
		t.Errorf("row 1 mismatch: %v", row1)
	}
}

func TestRagged_ValidateRejectsOutOfRange(t *testing.T) {
	r := Ragged[int32]{
		RagBegins: []int32{0},
		RagEnds:   []int32{5},
		Elems:     []int32{1, 2},
	}
	if err := r.Validate(); err == nil {
		t.Error("expected validation error for out-of-range rag_ends")
	}
}
