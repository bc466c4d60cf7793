// Package sentencepiece implements the SentencePiece unigram subword
// encoder of spec §4.5: model deserialization, Viterbi/nbest encoding, and
// the sparse (indices, values, dense_shape) output operator.
package sentencepiece

import (
	"errors"
	"fmt"

	gosp "github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"
	"google.golang.org/protobuf/proto"
)

// ErrSentencePieceLoad wraps any failure to deserialize a model proto,
// fatal at operator construction per spec §7.
var ErrSentencePieceLoad = errors.New("sentencepiece: failed to load model")

// ErrSentencePieceEncode marks an internal encode failure for a single
// sentence; callers must degrade to an empty token list rather than abort
// the batch (spec §7).
var ErrSentencePieceEncode = errors.New("sentencepiece: failed to encode sentence")

// pieceKind mirrors the ModelProto_SentencePiece.Type enum values this
// package cares about.
type pieceKind int

const (
	kindNormal pieceKind = iota
	kindUnknown
	kindControl
)

// Model is the deserialized, immutable unigram vocabulary: a byte trie over
// piece strings plus their log-probability scores, built once at
// construction and safe for concurrent read-only use thereafter (spec §5).
type Model struct {
	root         *trieNode
	unkID        int32
	bosID        int32
	eosID        int32
	padID        int32
	pieces       []string
	scores       []float32
}

// Load deserializes a SentencePiece ModelProto from raw bytes (the
// serialized proto supplied as a constant input per spec §6) and builds
// the trie used for Viterbi search.
func Load(data []byte) (*Model, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty model proto", ErrSentencePieceLoad)
	}

	var proto_ gosp.ModelProto
	if err := proto.Unmarshal(data, &proto_); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSentencePieceLoad, err)
	}

	m := &Model{
		root:  newTrieNode(),
		unkID: -1, bosID: -1, eosID: -1, padID: -1,
	}

	pieces := proto_.GetPieces()
	m.pieces = make([]string, len(pieces))
	m.scores = make([]float32, len(pieces))

	for i, p := range pieces {
		m.pieces[i] = p.GetPiece()
		m.scores[i] = p.GetScore()

		switch p.GetType() {
		case gosp.ModelProto_SentencePiece_UNKNOWN:
			m.unkID = int32(i)
		case gosp.ModelProto_SentencePiece_CONTROL:
			switch p.GetPiece() {
			case "<s>":
				m.bosID = int32(i)
			case "</s>":
				m.eosID = int32(i)
			case "<pad>":
				m.padID = int32(i)
			}
		case gosp.ModelProto_SentencePiece_NORMAL, gosp.ModelProto_SentencePiece_USER_DEFINED:
			m.root.insert(p.GetPiece(), p.GetScore(), int32(i))
		}
	}

	if ts := proto_.GetTrainerSpec(); ts != nil {
		if id := ts.GetUnkId(); id >= 0 {
			m.unkID = id
		}
		if id := ts.GetBosId(); id >= 0 {
			m.bosID = id
		}
		if id := ts.GetEosId(); id >= 0 {
			m.eosID = id
		}
		if id := ts.GetPadId(); id >= 0 {
			m.padID = id
		}
	}

	if m.unkID < 0 {
		return nil, fmt.Errorf("%w: model has no UNKNOWN piece", ErrSentencePieceLoad)
	}

	return m, nil
}

// VocabSize reports the number of pieces in the model.
func (m *Model) VocabSize() int { return len(m.pieces) }

// Piece returns the literal text of piece id.
func (m *Model) Piece(id int32) string {
	if id < 0 || int(id) >= len(m.pieces) {
		return ""
	}
	return m.pieces[id]
}

// trieNode is a byte-keyed trie node over piece strings, mirroring the
// rune-keyed trie in the upstream wasm build's spTrie but keyed on raw
// UTF-8 bytes so arbitrary piece boundaries (including byte-fallback
// single-byte pieces) are representable.
type trieNode struct {
	children map[byte]*trieNode
	isPiece  bool
	score    float32
	id       int32
	depth    int
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[byte]*trieNode)}
}

func (n *trieNode) insert(piece string, score float32, id int32) {
	node := n
	for i := 0; i < len(piece); i++ {
		b := piece[i]
		child, ok := node.children[b]
		if !ok {
			child = newTrieNode()
			child.depth = node.depth + 1
			node.children[b] = child
		}
		node = child
	}
	node.isPiece = true
	node.score = score
	node.id = id
}

// commonPrefixPieces returns every trie node marking a complete piece
// along the byte path starting at s, in increasing length order.
func (n *trieNode) commonPrefixPieces(s string) []*trieNode {
	var out []*trieNode
	node := n
	for i := 0; i < len(s); i++ {
		child, ok := node.children[s[i]]
		if !ok {
			break
		}
		if child.isPiece {
			out = append(out, child)
		}
		node = child
	}
	return out
}
