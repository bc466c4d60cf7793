// Package bpe implements the byte-pair-encoding subword tokenizer of spec
// §4.7: per-word merge-rank tokenization against a fixed vocabulary and
// ordered merge-rule list.
package bpe

import (
	"strings"

	"github.com/openvino-tokenizers/tokengraph/strtensor"
)

// pairKey identifies a candidate merge by its two current symbol strings.
type pairKey struct{ left, right string }

// Vocab maps a token string to its id, built once at construction from the
// vocab string triple (row i is the token string for id i).
type Vocab struct {
	ids map[string]int32
}

// NewVocab builds a Vocab from a decomposed string triple.
func NewVocab(vocab strtensor.String) *Vocab {
	v := &Vocab{ids: make(map[string]int32, vocab.Len())}
	for i := 0; i < vocab.Len(); i++ {
		v.ids[string(vocab.At(i))] = int32(i)
	}
	return v
}

// Merges is the ordered merge-rule table: rank(left, right) = row index,
// lower wins, built once from the merges triple (each row "left right").
type Merges struct {
	ranks map[pairKey]int
}

// NewMerges parses the merges string triple, splitting each row on its
// single separating space into (left, right).
func NewMerges(merges strtensor.String) *Merges {
	m := &Merges{ranks: make(map[pairKey]int, merges.Len())}
	for i := 0; i < merges.Len(); i++ {
		row := string(merges.At(i))
		sep := strings.IndexByte(row, ' ')
		if sep < 0 {
			continue
		}
		m.ranks[pairKey{left: row[:sep], right: row[sep+1:]}] = i
	}
	return m
}

func (m *Merges) lookup(left, right string) (int, bool) {
	r, ok := m.ranks[pairKey{left, right}]
	return r, ok
}

// Tokenizer is the immutable, constructed BPE encoder.
type Tokenizer struct {
	vocab           *Vocab
	merges          *Merges
	unkToken        string
	fuseUnk         bool
	suffixIndicator string
	endSuffix       string
	byteFallback    bool
}

// Option configures optional BPE attributes (spec §4.7).
type Option func(*Tokenizer)

func WithUnkToken(tok string) Option        { return func(t *Tokenizer) { t.unkToken = tok } }
func WithFuseUnk(fuse bool) Option          { return func(t *Tokenizer) { t.fuseUnk = fuse } }
func WithSuffixIndicator(s string) Option   { return func(t *Tokenizer) { t.suffixIndicator = s } }
func WithEndSuffix(s string) Option         { return func(t *Tokenizer) { t.endSuffix = s } }
func WithByteFallback(enabled bool) Option  { return func(t *Tokenizer) { t.byteFallback = enabled } }

// New builds a Tokenizer from a vocab and merge table plus options.
func New(vocab *Vocab, merges *Merges, opts ...Option) *Tokenizer {
	t := &Tokenizer{vocab: vocab, merges: merges}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// initialSymbols decomposes word into its starting BPE symbols: raw bytes
// under byteFallback, or individual UTF-8 characters otherwise (spec
// §4.7 step 1).
func (t *Tokenizer) initialSymbols(word string) []string {
	if t.byteFallback {
		out := make([]string, len(word))
		for i := 0; i < len(word); i++ {
			out[i] = word[i : i+1]
		}
		return out
	}
	out := make([]string, 0, len(word))
	for _, r := range word {
		out = append(out, string(r))
	}
	return out
}

// mergeSymbols repeatedly merges the adjacent pair of lowest rank until no
// applicable merge rule remains (spec §4.7 step 2), using a doubly linked
// list over symbol positions and a rank-bucketed priority queue so each
// merge touches only its two neighbors instead of rescanning the word.
func (t *Tokenizer) mergeSymbols(symbols []string) []string {
	n := len(symbols)
	if n <= 1 {
		return symbols
	}

	tokens := make([]string, n)
	copy(tokens, symbols)
	prev := make([]int, n)
	next := make([]int, n)
	live := make([]int, n)
	for i := 0; i < n; i++ {
		prev[i] = i - 1
		next[i] = i + 1
	}
	next[n-1] = -1

	maxRank := 0
	for _, r := range t.merges.ranks {
		if r > maxRank {
			maxRank = r
		}
	}
	q := newBucketQueue(maxRank)

	pushIfMergeable := func(i int) {
		if i == -1 {
			return
		}
		j := next[i]
		if j == -1 {
			return
		}
		if rank, ok := t.merges.lookup(tokens[i], tokens[j]); ok {
			q.push(candidate{pos: i, rank: rank, leftVersion: live[i], rightVersion: live[j]})
		}
	}

	for i := 0; next[i] != -1; i = next[i] {
		pushIfMergeable(i)
	}

	for {
		c, ok := q.pop()
		if !ok {
			break
		}
		i := c.pos
		j := next[i]
		if j == -1 || live[i] != c.leftVersion || live[j] != c.rightVersion {
			continue
		}
		rankNow, ok := t.merges.lookup(tokens[i], tokens[j])
		if !ok || rankNow != c.rank {
			continue
		}

		tokens[i] = tokens[i] + tokens[j]
		nj := next[j]
		next[i] = nj
		if nj != -1 {
			prev[nj] = i
		}
		live[i]++
		live[j]++

		if pi := prev[i]; pi != -1 {
			pushIfMergeable(pi)
		}
		pushIfMergeable(i)
	}

	out := make([]string, 0, n)
	for i := 0; i != -1; i = next[i] {
		out = append(out, tokens[i])
	}
	return out
}

// resolveIDs maps merged pieces to vocab ids, applying suffixIndicator to
// intermediate pieces and endSuffix to the final piece (spec §4.7 step 3),
// falling back to unkToken (fused if configured) on a miss.
func (t *Tokenizer) resolveIDs(pieces []string) []int32 {
	var ids []int32
	lastUnk := false

	for i, piece := range pieces {
		lookup := piece
		if i > 0 && i < len(pieces)-1 && t.suffixIndicator != "" {
			lookup = t.suffixIndicator + piece
		}
		if i == len(pieces)-1 && t.endSuffix != "" {
			lookup = lookup + t.endSuffix
		}

		id, ok := t.vocab.ids[lookup]
		if !ok {
			id, ok = t.vocab.ids[piece]
		}
		if !ok {
			if t.unkToken == "" {
				continue
			}
			unkID, hasUnk := t.vocab.ids[t.unkToken]
			if !hasUnk {
				continue
			}
			if t.fuseUnk && lastUnk {
				continue
			}
			ids = append(ids, unkID)
			lastUnk = true
			continue
		}
		ids = append(ids, id)
		lastUnk = false
	}

	return ids
}

// EncodeWord runs the full per-word algorithm of spec §4.7.
func (t *Tokenizer) EncodeWord(word string) []int32 {
	symbols := t.initialSymbols(word)
	merged := t.mergeSymbols(symbols)
	return t.resolveIDs(merged)
}

// Encode tokenizes every word in in and returns a ragged i32 tensor
// parallel to in's row structure, as in wordpiece.Tokenizer.Encode.
func (t *Tokenizer) Encode(in strtensor.RaggedString) strtensor.Ragged[int32] {
	ragBegins := make([]int32, in.Rows())
	ragEnds := make([]int32, in.Rows())
	var elems []int32

	for row := 0; row < in.Rows(); row++ {
		ragBegins[row] = int32(len(elems))
		wordBegin, wordEnd := in.Row(row)
		for word := wordBegin; word < wordEnd; word++ {
			elems = append(elems, t.EncodeWord(string(in.At(int(word))))...)
		}
		ragEnds[row] = int32(len(elems))
	}

	return strtensor.Ragged[int32]{RagBegins: ragBegins, RagEnds: ragEnds, Elems: elems}
}
