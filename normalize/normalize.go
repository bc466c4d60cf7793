// Package normalize implements the per-string text transforms of spec §4.2:
// CaseFold, NormalizeUnicode, and RegexNormalization. All three share a
// helper that walks the flat (begins, ends, chars) triple, applies a pure
// string->string function to each element, and reassembles a fresh triple
// with a growing byte buffer — preserving the logical shape of the input.
package normalize

import (
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/openvino-tokenizers/tokengraph/strtensor"
)

// ErrUnknownNormalizationForm is returned when NormalizeUnicode is asked
// for a form outside {NFD, NFC, NFKD, NFKC}.
var ErrUnknownNormalizationForm = errors.New("normalize: unknown normalization form")

// apply runs fn over every element of s and rebuilds begins/ends against a
// fresh chars buffer, mirroring evaluate_normalization_helper in the
// original OpenVINO extension.
func apply(s strtensor.String, fn func(string) string) strtensor.String {
	n := s.Len()
	begins := make([]int32, n)
	ends := make([]int32, n)
	var buf []byte

	for i := 0; i < n; i++ {
		begins[i] = int32(len(buf))
		out := fn(string(s.At(i)))
		buf = append(buf, out...)
		ends[i] = int32(len(buf))
	}

	return strtensor.String{Begins: begins, Ends: ends, Chars: buf}
}

var foldCaser = cases.Fold(cases.Compact)

// CaseFold lowercases every string using Unicode full case folding
// (locale-independent); ASCII lowercasing is a strict subset of its
// behavior. CaseFold is idempotent: folding an already-folded string is a
// no-op.
func CaseFold(s strtensor.String) strtensor.String {
	return apply(s, foldCaser.String)
}

// Form names a Unicode normalization form.
type Form string

const (
	NFD  Form = "NFD"
	NFC  Form = "NFC"
	NFKD Form = "NFKD"
	NFKC Form = "NFKC"
)

var forms = map[Form]norm.Form{
	NFD:  norm.NFD,
	NFC:  norm.NFC,
	NFKD: norm.NFKD,
	NFKC: norm.NFKC,
}

// NormalizeUnicode applies one of the four standard Unicode normalization
// forms to every string. It returns ErrUnknownNormalizationForm for any
// other form name.
func NormalizeUnicode(s strtensor.String, form Form) (strtensor.String, error) {
	f, ok := forms[form]
	if !ok {
		return strtensor.String{}, fmt.Errorf("%w: %q", ErrUnknownNormalizationForm, form)
	}
	return apply(s, f.String), nil
}

// backrefPattern rewrites RE2Go-incompatible backreferences \1..\9 in a
// replacement template into Go's ${1}..${9} syntax, per spec §4.2's note
// that backreferences in `replace` are expressed as \1..\9.
var backrefPattern = regexp.MustCompile(`\\([1-9])`)

func toGoReplacement(replace string) string {
	return backrefPattern.ReplaceAllString(replace, `$${$1}`)
}

// RegexNormalization performs a global regex replace using RE2 syntax
// (Go's regexp package already implements RE2; no third-party engine is
// needed). search/replace are supplied as scalar UTF-8 byte buffers with
// their exact length — unlike the original OpenVINO extension, this
// implementation does not strip a trailing padding byte (spec §9's open
// question is resolved explicitly: no padding convention is inherited).
func RegexNormalization(s strtensor.String, search, replace string) (strtensor.String, error) {
	re, err := regexp.Compile(search)
	if err != nil {
		return strtensor.String{}, fmt.Errorf("normalize: invalid search pattern %q: %w", search, err)
	}
	goReplace := toGoReplacement(replace)
	return apply(s, func(str string) string {
		return re.ReplaceAllString(str, goReplace)
	}), nil
}
