// Package chartable implements the fixed 256-entry byte-to-printable-UTF-8
// remap table described in spec §4.4/§6 (the GPT-2 byte-level scheme): every
// raw byte value maps to either itself (if it already falls in a printable,
// unambiguous range) or to a two-byte UTF-8 sequence in 0x100..0x143, so
// that arbitrary binary data can flow through text-oriented tokenizers
// without ever producing whitespace, control characters, or invalid UTF-8.
package chartable

import "unicode/utf8"

// Table is the process-wide immutable byte->printable-UTF-8 mapping
// (spec §5: "a process-wide immutable constant").
var Table [256]string

// Inverse is the bijective inverse of Table, keyed by the printable rune.
var Inverse map[rune]byte

func init() {
	// Bytes that are already printable, single-byte UTF-8 and unambiguous:
	// 33..126 (visible ASCII, excluding space), 161..172, 174..255.
	printable := make(map[int]bool)
	for b := 33; b <= 126; b++ {
		printable[b] = true
	}
	for b := 161; b <= 172; b++ {
		printable[b] = true
	}
	for b := 174; b <= 255; b++ {
		printable[b] = true
	}

	Inverse = make(map[rune]byte, 256)

	next := rune(0x100)
	for b := 0; b < 256; b++ {
		if printable[b] {
			Table[b] = string(rune(b))
			Inverse[rune(b)] = byte(b)
			continue
		}
		r := next
		next++
		Table[b] = string(r)
		Inverse[r] = byte(b)
	}
}

// Encode remaps each byte of src into its printable-UTF-8 replacement and
// appends the result to dst, returning the extended slice. Output length is
// at most 2*len(src), per spec §4.4.
func Encode(dst []byte, src []byte) []byte {
	for _, b := range src {
		dst = append(dst, Table[b]...)
	}
	return dst
}

// Decode reverses Encode: it walks src as a sequence of runes produced by
// Table and appends the original byte for each to dst. It returns an error
// if src contains a rune outside the table's range (not valid encoded
// output).
func Decode(dst []byte, src []byte) ([]byte, error) {
	for len(src) > 0 {
		r, size := utf8.DecodeRune(src)
		b, ok := Inverse[r]
		if !ok {
			return dst, errUnmappedRune(r)
		}
		dst = append(dst, b)
		src = src[size:]
	}
	return dst, nil
}

type errUnmappedRune rune

func (e errUnmappedRune) Error() string {
	return "chartable: rune not produced by the byte-to-char table: " + string(rune(e))
}
