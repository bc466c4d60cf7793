// Package wordpiece implements the WordPiece tokenizer of spec §4.6:
// greedy longest-match subword encoding per pre-split word against a fixed
// vocabulary, with ## suffix continuation pieces.
package wordpiece

import (
	"errors"
	"fmt"

	"github.com/openvino-tokenizers/tokengraph/strtensor"
)

// ErrVocabOutOfRange is returned when unkTokenID resolves outside
// [0, vocab_size), per spec §7.
var ErrVocabOutOfRange = errors.New("wordpiece: vocab index out of range")

// DefaultSuffixIndicator and DefaultMaxBytesPerWord are the attribute
// defaults named in spec §4.6.
const (
	DefaultSuffixIndicator = "##"
	DefaultMaxBytesPerWord = 100
)

// Vocab is the constructed lookup table over a decomposed string triple
// (row i is the token string for id i). It is built once at construction
// and is read-only thereafter, satisfying spec §5's shared-immutable-
// configuration and §9's cache-at-construction resolution.
type Vocab struct {
	ids map[string]int32
	size int
}

// NewVocab builds a Vocab from the vocab string triple.
func NewVocab(vocab strtensor.String) *Vocab {
	v := &Vocab{ids: make(map[string]int32, vocab.Len()), size: vocab.Len()}
	for i := 0; i < vocab.Len(); i++ {
		v.ids[string(vocab.At(i))] = int32(i)
	}
	return v
}

func (v *Vocab) lookup(s string) (int32, bool) {
	id, ok := v.ids[s]
	return id, ok
}

// Tokenizer is the immutable, constructed WordPiece encoder.
type Tokenizer struct {
	vocab             *Vocab
	unkTokenID        int32
	suffixIndicator   string
	maxBytesPerWord   int
}

// New builds a Tokenizer. unkTokenID follows spec §4.6: negative values
// count back from vocab size.
func New(vocab *Vocab, unkTokenID int32, suffixIndicator string, maxBytesPerWord int) (*Tokenizer, error) {
	if suffixIndicator == "" {
		suffixIndicator = DefaultSuffixIndicator
	}
	if maxBytesPerWord <= 0 {
		maxBytesPerWord = DefaultMaxBytesPerWord
	}
	resolved := unkTokenID
	if resolved < 0 {
		resolved += int32(vocab.size)
	}
	if resolved < 0 || int(resolved) >= vocab.size {
		return nil, fmt.Errorf("%w: unk_token_id %d resolves to %d, vocab size %d", ErrVocabOutOfRange, unkTokenID, resolved, vocab.size)
	}
	return &Tokenizer{
		vocab:           vocab,
		unkTokenID:      resolved,
		suffixIndicator: suffixIndicator,
		maxBytesPerWord: maxBytesPerWord,
	}, nil
}

// tokenizeWord greedily matches the longest vocab entry from the left,
// prefixing continuation pieces with suffixIndicator, per spec §4.6.
func (t *Tokenizer) tokenizeWord(word string) []int32 {
	if len(word) > t.maxBytesPerWord {
		return []int32{t.unkTokenID}
	}

	var out []int32
	start := 0
	for start < len(word) {
		end := len(word)
		var matched int32 = -1
		for end > start {
			candidate := word[start:end]
			if start > 0 {
				candidate = t.suffixIndicator + candidate
			}
			if id, ok := t.vocab.lookup(candidate); ok {
				matched = id
				break
			}
			end--
		}
		if matched < 0 {
			return []int32{t.unkTokenID}
		}
		out = append(out, matched)
		start = end
	}
	return out
}

// Encode tokenizes every word in in (a pre-split ragged-string quintuple)
// and returns a ragged i32 tensor parallel to in's row structure: row j
// holds the concatenated token ids for all words in row j, per spec §4.6.
func (t *Tokenizer) Encode(in strtensor.RaggedString) strtensor.Ragged[int32] {
	ragBegins := make([]int32, in.Rows())
	ragEnds := make([]int32, in.Rows())
	var elems []int32

	for row := 0; row < in.Rows(); row++ {
		ragBegins[row] = int32(len(elems))
		wordBegin, wordEnd := in.Row(row)
		for word := wordBegin; word < wordEnd; word++ {
			elems = append(elems, t.tokenizeWord(string(in.At(int(word))))...)
		}
		ragEnds[row] = int32(len(elems))
	}

	return strtensor.Ragged[int32]{RagBegins: ragBegins, RagEnds: ragEnds, Elems: elems}
}
