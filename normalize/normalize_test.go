package normalize

import (
	"errors"
	"testing"

	"github.com/openvino-tokenizers/tokengraph/strtensor"
)

func mustPack(strs ...string) strtensor.String {
	var begins, ends []int32
	var chars []byte
	for _, s := range strs {
		begins = append(begins, int32(len(chars)))
		chars = append(chars, s...)
		ends = append(ends, int32(len(chars)))
	}
	return strtensor.String{Begins: begins, Ends: ends, Chars: chars}
}

func values(s strtensor.String) []string {
	out := make([]string, s.Len())
	for i := range out {
		out[i] = string(s.At(i))
	}
	return out
}

func TestCaseFold(t *testing.T) {
	in := mustPack("Hello", "WORLD", "MiXeD")
	out := CaseFold(in)
	got := values(out)
	want := []string{"hello", "world", "mixed"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCaseFold_Idempotent(t *testing.T) {
	in := mustPack("Already Folded")
	once := CaseFold(in)
	twice := CaseFold(once)
	if values(once)[0] != values(twice)[0] {
		t.Errorf("CaseFold not idempotent: %q vs %q", values(once)[0], values(twice)[0])
	}
}

func TestNormalizeUnicode_UnknownForm(t *testing.T) {
	in := mustPack("abc")
	_, err := NormalizeUnicode(in, Form("NFZ"))
	if !errors.Is(err, ErrUnknownNormalizationForm) {
		t.Fatalf("got err %v, want ErrUnknownNormalizationForm", err)
	}
}

func TestNormalizeUnicode_NFDThenNFC(t *testing.T) {
	// é as a single precomposed codepoint (U+00E9).
	in := mustPack("café")
	nfd, err := NormalizeUnicode(in, NFD)
	if err != nil {
		t.Fatalf("NFD failed: %v", err)
	}
	nfc, err := NormalizeUnicode(nfd, NFC)
	if err != nil {
		t.Fatalf("NFC failed: %v", err)
	}
	if values(nfc)[0] != "café" {
		t.Errorf("NFC(NFD(x)) = %q, want %q", values(nfc)[0], "café")
	}
}

func TestRegexNormalization_SimpleReplace(t *testing.T) {
	in := mustPack("a,b,,c")
	out, err := RegexNormalization(in, ",", "-")
	if err != nil {
		t.Fatalf("RegexNormalization failed: %v", err)
	}
	if got := values(out)[0]; got != "a-b--c" {
		t.Errorf("got %q, want %q", got, "a-b--c")
	}
}

func TestRegexNormalization_Backreference(t *testing.T) {
	in := mustPack("2026-08-03")
	out, err := RegexNormalization(in, `(\d+)-(\d+)-(\d+)`, `\3/\2/\1`)
	if err != nil {
		t.Fatalf("RegexNormalization failed: %v", err)
	}
	if got := values(out)[0]; got != "03/08/2026" {
		t.Errorf("got %q, want %q", got, "03/08/2026")
	}
}

func TestRegexNormalization_InvalidPattern(t *testing.T) {
	in := mustPack("abc")
	_, err := RegexNormalization(in, "(unterminated", "x")
	if err == nil {
		t.Fatal("expected error for invalid regex, got nil")
	}
}

func TestRegexNormalization_Idempotent(t *testing.T) {
	in := mustPack("hello world")
	out, err := RegexNormalization(in, "o", "0")
	if err != nil {
		t.Fatalf("RegexNormalization failed: %v", err)
	}
	again, err := RegexNormalization(out, "o", "0")
	if err != nil {
		t.Fatalf("RegexNormalization failed: %v", err)
	}
	if values(out)[0] != values(again)[0] {
		t.Errorf("not idempotent: %q vs %q", values(out)[0], values(again)[0])
	}
}
