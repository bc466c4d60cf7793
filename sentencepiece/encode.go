package sentencepiece

import (
	"math"
	"strings"
)

const (
	negInf = -math.MaxFloat32
	// wordStart is SentencePiece's conventional word-start marker (▁,
	// U+2581 LOWER ONE EIGHTH BLOCK); the reference prepends it to every
	// sentence and substitutes it for whitespace.
	wordStart = "▁"
)

// lattice cell: best score reaching byte offset i, and the piece id/start
// offset that achieves it.
type cell struct {
	score float32
	start int
	id    int32
}

// pretokenize applies SentencePiece's conventional whitespace handling:
// every whitespace character (space, tab, newline, carriage return) becomes
// one word-start marker, so a run of whitespace is not collapsed, and the
// sentence is prefixed with one if it doesn't already start with it.
func pretokenize(s string) string {
	var b strings.Builder
	if !strings.HasPrefix(s, wordStart) {
		b.WriteString(wordStart)
	}
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			b.WriteString(wordStart)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// viterbi runs the forward pass of the Viterbi algorithm over the byte
// positions of text, returning the best-score lattice (one cell per byte
// offset, 0..len(text)), mirroring viterbiForward in the reference
// implementation but keyed on bytes rather than runes so multi-byte UTF-8
// pieces compose without re-decoding.
func (m *Model) viterbi(text string) []cell {
	n := len(text)
	lattice := make([]cell, n+1)
	for i := 1; i <= n; i++ {
		lattice[i].score = negInf
		lattice[i].start = -1
	}

	for i := 0; i < n; i++ {
		if lattice[i].score == negInf && i > 0 {
			continue
		}
		for _, node := range m.root.commonPrefixPieces(text[i:]) {
			end := i + node.depth
			cand := lattice[i].score + node.score
			if cand > lattice[end].score {
				lattice[end] = cell{score: cand, start: i, id: node.id}
			}
		}
		// No piece reaches i+1: fall back to a single-byte unknown token
		// so the lattice never gets permanently stuck.
		if lattice[i+1].score == negInf {
			lattice[i+1] = cell{score: lattice[i].score + m.scores[m.unkID], start: i, id: m.unkID}
		}
	}

	return lattice
}

// backtrack walks a completed lattice from the end back to the start,
// collapsing consecutive unknown-piece runs into a single unknown token
// (mirroring the reference's prevUnknown merge).
func (m *Model) backtrack(lattice []cell) []int32 {
	var rev []int32
	pos := len(lattice) - 1
	for pos > 0 {
		c := lattice[pos]
		if len(rev) > 0 && rev[len(rev)-1] == m.unkID && c.id == m.unkID {
			pos = c.start
			continue
		}
		rev = append(rev, c.id)
		pos = c.start
	}
	ids := make([]int32, len(rev))
	for i, id := range rev {
		ids[len(rev)-1-i] = id
	}
	return ids
}

// Encode performs deterministic Viterbi (best-path) tokenization of text,
// equivalent to SampleEncode with nbest_size <= 1.
func (m *Model) Encode(text string) []int32 {
	if text == "" {
		return nil
	}
	lattice := m.viterbi(pretokenize(text))
	return m.backtrack(lattice)
}

// rng is the minimal interface SampleEncode needs from a random source;
// satisfied by *rand.Rand without pulling math/rand into this file's
// signature, so callers can inject a seeded generator for reproducible
// sampling in tests.
type rng interface {
	Float64() float64
}

// SampleEncode implements spec §4.5's "SampleEncode(sentence, nbest_size,
// alpha) -> [i32]": nbest_size <= 1 (or alpha == 0) returns the
// deterministic Viterbi best path; nbest_size > 1 performs
// forward-filtering / backward-sampling over the top-nbest_size lattice
// alternatives at each step, weighted by exp(alpha * score), matching the
// reference's SampleEncode semantics for add_bos/add_eos-driven batches.
func (m *Model) SampleEncode(text string, nbestSize int32, alpha float32, r rng) []int32 {
	if text == "" {
		return nil
	}
	if nbestSize <= 1 || alpha == 0 {
		return m.Encode(text)
	}

	normalized := pretokenize(text)
	lattice := m.viterbiNBest(normalized, int(nbestSize))
	return m.sampleBacktrack(lattice, alpha, r)
}

// nbestCell tracks up to nbestSize distinct (score, start, id) arrivals at
// each byte offset, sorted by descending score.
type nbestCell struct {
	score []float32
	start []int
	id    []int32
}

func (m *Model) viterbiNBest(text string, nbestSize int) []nbestCell {
	n := len(text)
	lattice := make([]nbestCell, n+1)

	insert := func(c *nbestCell, score float32, start int, id int32) {
		pos := len(c.score)
		for pos > 0 && c.score[pos-1] < score {
			pos--
		}
		if pos >= nbestSize {
			return
		}
		c.score = append(c.score, 0)
		c.start = append(c.start, 0)
		c.id = append(c.id, 0)
		copy(c.score[pos+1:], c.score[pos:])
		copy(c.start[pos+1:], c.start[pos:])
		copy(c.id[pos+1:], c.id[pos:])
		c.score[pos], c.start[pos], c.id[pos] = score, start, id
		if len(c.score) > nbestSize {
			c.score = c.score[:nbestSize]
			c.start = c.start[:nbestSize]
			c.id = c.id[:nbestSize]
		}
	}

	insert(&lattice[0], 0, -1, -1)

	for i := 0; i < n; i++ {
		cur := lattice[i]
		if len(cur.score) == 0 {
			continue
		}
		for _, node := range m.root.commonPrefixPieces(text[i:]) {
			end := i + node.depth
			for k := range cur.score {
				insert(&lattice[end], cur.score[k]+node.score, i, node.id)
			}
		}
		if len(lattice[i+1].score) == 0 {
			for k := range cur.score {
				insert(&lattice[i+1], cur.score[k]+m.scores[m.unkID], i, m.unkID)
			}
		}
	}

	return lattice
}

func (m *Model) sampleBacktrack(lattice []nbestCell, alpha float32, r rng) []int32 {
	var rev []int32
	pos := len(lattice) - 1

	for pos > 0 {
		c := lattice[pos]
		if len(c.score) == 0 {
			break
		}
		idx := weightedPick(c.score, alpha, r)
		rev = append(rev, c.id[idx])
		pos = c.start[idx]
	}

	ids := make([]int32, len(rev))
	for i, id := range rev {
		ids[len(rev)-1-i] = id
	}
	return ids
}

// weightedPick samples an index from scores with probability proportional
// to exp(alpha * score), the softmax-with-temperature rule SentencePiece
// applies in SampleEncode.
func weightedPick(scores []float32, alpha float32, r rng) int {
	if len(scores) == 1 {
		return 0
	}
	max := scores[0]
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	weights := make([]float64, len(scores))
	var total float64
	for i, s := range scores {
		w := math.Exp(float64(alpha) * float64(s-max))
		weights[i] = w
		total += w
	}
	target := r.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if target <= cum {
			return i
		}
	}
	return len(scores) - 1
}
