// Package strtensor implements the decomposed string and ragged tensor
// representations shared by every tokenization operator: a packed byte
// buffer for graph boundaries, and flat (begins, ends, chars) triples used
// internally so that operators never box individual strings.
package strtensor

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformedPackedBuffer is returned by Unpack when the input buffer is
// too short to contain a valid batch-size/offsets header.
var ErrMalformedPackedBuffer = errors.New("strtensor: malformed packed string buffer")

// String is the decomposed string triple of spec §3: begins[i]/ends[i] are
// byte offsets into chars describing string i. The logical batch shape is
// carried by the caller; String itself is always flat, of length M.
type String struct {
	Begins []int32
	Ends   []int32
	Chars  []byte
}

// Len returns the flat element count M.
func (s String) Len() int { return len(s.Begins) }

// At returns the substring for element i as a byte slice view into Chars.
// The returned slice aliases Chars and must not be retained past a mutation
// of Chars.
func (s String) At(i int) []byte {
	return s.Chars[s.Begins[i]:s.Ends[i]]
}

// Validate checks the invariants of spec §3: 0 <= begins[i] <= ends[i] <=
// len(chars), and begins/ends have equal length.
func (s String) Validate() error {
	if len(s.Begins) != len(s.Ends) {
		return fmt.Errorf("strtensor: begins/ends length mismatch: %d != %d", len(s.Begins), len(s.Ends))
	}
	n := len(s.Chars)
	for i := range s.Begins {
		if s.Begins[i] < 0 || s.Begins[i] > s.Ends[i] || int(s.Ends[i]) > n {
			return fmt.Errorf("strtensor: invariant violated at element %d: begins=%d ends=%d len(chars)=%d",
				i, s.Begins[i], s.Ends[i], n)
		}
	}
	return nil
}

// RaggedString is the decomposed ragged-string quintuple of spec §3: row j
// holds the string elements in [RagBegins[j], RagEnds[j]) of the embedded
// String.
type RaggedString struct {
	RagBegins []int32
	RagEnds   []int32
	String
}

// Rows returns the number of ragged rows B.
func (r RaggedString) Rows() int { return len(r.RagBegins) }

// Row returns the flat element index range [begin, end) for row j.
func (r RaggedString) Row(j int) (begin, end int32) {
	return r.RagBegins[j], r.RagEnds[j]
}

// Validate checks the invariants of spec §3 for both the ragged index
// arrays and the embedded String.
func (r RaggedString) Validate() error {
	if err := r.String.Validate(); err != nil {
		return err
	}
	if len(r.RagBegins) != len(r.RagEnds) {
		return fmt.Errorf("strtensor: rag_begins/rag_ends length mismatch: %d != %d", len(r.RagBegins), len(r.RagEnds))
	}
	m := int32(r.String.Len())
	for j := range r.RagBegins {
		if r.RagBegins[j] < 0 || r.RagBegins[j] > r.RagEnds[j] || r.RagEnds[j] > m {
			return fmt.Errorf("strtensor: ragged invariant violated at row %d: rag_begins=%d rag_ends=%d M=%d",
				j, r.RagBegins[j], r.RagEnds[j], m)
		}
	}
	return nil
}

// FlatString promotes a flat String into a ragged one with one string per
// row — the promotion spec §4.3 requires RegexSplit to accept.
func FlatString(s String) RaggedString {
	n := int32(s.Len())
	ragBegins := make([]int32, n)
	ragEnds := make([]int32, n)
	for i := int32(0); i < n; i++ {
		ragBegins[i] = i
		ragEnds[i] = i + 1
	}
	return RaggedString{RagBegins: ragBegins, RagEnds: ragEnds, String: s}
}

// Ragged is the decomposed ragged tensor of spec §3 over any POD element
// type, commonly int32 token IDs.
type Ragged[T any] struct {
	RagBegins []int32
	RagEnds   []int32
	Elems     []T
}

// Rows returns the number of ragged rows.
func (r Ragged[T]) Rows() int { return len(r.RagBegins) }

// Row returns the element slice for row j, a view into Elems.
func (r Ragged[T]) Row(j int) []T {
	return r.Elems[r.RagBegins[j]:r.RagEnds[j]]
}

// Validate checks 0 <= rag_begins[j] <= rag_ends[j] <= len(elems).
func (r Ragged[T]) Validate() error {
	if len(r.RagBegins) != len(r.RagEnds) {
		return fmt.Errorf("strtensor: rag_begins/rag_ends length mismatch: %d != %d", len(r.RagBegins), len(r.RagEnds))
	}
	m := int32(len(r.Elems))
	for j := range r.RagBegins {
		if r.RagBegins[j] < 0 || r.RagBegins[j] > r.RagEnds[j] || r.RagEnds[j] > m {
			return fmt.Errorf("strtensor: ragged invariant violated at row %d: rag_begins=%d rag_ends=%d M=%d",
				j, r.RagBegins[j], r.RagEnds[j], m)
		}
	}
	return nil
}

// PassthroughRagged rewires the given ragged index arrays onto an already
// validated flat element buffer without copying it, mirroring
// RaggedTensorPack in the original OpenVINO extension: the base tensor is
// passed through untouched and only the ragged structure is new.
func PassthroughRagged[T any](ragBegins, ragEnds []int32, elems []T) Ragged[T] {
	return Ragged[T]{RagBegins: ragBegins, RagEnds: ragEnds, Elems: elems}
}

// Packed is the wire layout of spec §3/§6:
//
//	int32 N (little-endian), int32 offsets[N+1] (little-endian), byte payload[...]
//
// It is used only at graph boundaries; internal operators pass String/
// RaggedString/Ragged directly.
type Packed struct {
	Offsets []int32
	Chars   []byte
}

// Unpack decodes a packed string tensor into a flat String of shape [N].
// It fails with ErrMalformedPackedBuffer if the buffer is too short to hold
// its own declared header, per spec §4.1 and §6.
func Unpack(buf []byte) (String, error) {
	if len(buf) < 4 {
		return String{}, fmt.Errorf("%w: buffer shorter than batch-size header (%d bytes)", ErrMalformedPackedBuffer, len(buf))
	}
	n := int32(binary.LittleEndian.Uint32(buf[0:4]))
	if n < 0 {
		return String{}, fmt.Errorf("%w: negative batch size %d", ErrMalformedPackedBuffer, n)
	}
	headerLen := 4 + 4*(int64(n)+1)
	if int64(len(buf)) < headerLen {
		return String{}, fmt.Errorf("%w: buffer too short for %d offsets (need >= %d bytes, have %d)",
			ErrMalformedPackedBuffer, n+1, headerLen, len(buf))
	}

	offsets := make([]int32, n+1)
	for i := int32(0); i <= n; i++ {
		off := 4 + 4*i
		offsets[i] = int32(binary.LittleEndian.Uint32(buf[off : off+4]))
	}
	for i := int32(1); i <= n; i++ {
		if offsets[i] < offsets[i-1] {
			return String{}, fmt.Errorf("%w: offsets not non-decreasing at index %d", ErrMalformedPackedBuffer, i)
		}
	}

	total := int64(len(buf)) - headerLen
	if int64(offsets[n]) != total {
		return String{}, fmt.Errorf("%w: offsets[N]=%d does not match payload length %d", ErrMalformedPackedBuffer, offsets[n], total)
	}

	chars := buf[headerLen:]
	begins := make([]int32, n)
	ends := make([]int32, n)
	base := offsets[0]
	for i := int32(0); i < n; i++ {
		begins[i] = offsets[i] - base
		ends[i] = offsets[i+1] - base
	}

	return String{Begins: begins, Ends: ends, Chars: chars}, nil
}

// Pack encodes a String back into the wire layout. Per spec §4.1, only
// ends (plus a leading zero) are emitted: this relies on the canonical,
// gap-free invariant begins[i] == ends[i-1]. If s has gaps between strings
// the packing is lossy — callers must canonicalize first (see Canonicalize)
// or accept re-layout; this is a documented limitation inherited from the
// reference implementation, not a bug in this function.
func Pack(s String) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	m := int32(s.Len())
	out := make([]byte, 4+4*(1+int64(m))+int64(len(s.Chars)))
	binary.LittleEndian.PutUint32(out[0:4], uint32(m))
	binary.LittleEndian.PutUint32(out[4:8], 0)
	for i := int32(0); i < m; i++ {
		off := 8 + 4*i
		binary.LittleEndian.PutUint32(out[off:off+4], uint32(s.Ends[i]))
	}
	copy(out[8+4*int64(m):], s.Chars)
	return out, nil
}

// Canonicalize rewrites s into a gap-free layout (begins[i] == ends[i-1])
// so that Pack ∘ Unpack round-trips even when the input carries gaps
// between adjacent strings.
func Canonicalize(s String) String {
	chars := make([]byte, 0, len(s.Chars))
	begins := make([]int32, s.Len())
	ends := make([]int32, s.Len())
	for i := range s.Begins {
		begins[i] = int32(len(chars))
		chars = append(chars, s.At(i)...)
		ends[i] = int32(len(chars))
	}
	return String{Begins: begins, Ends: ends, Chars: chars}
}
