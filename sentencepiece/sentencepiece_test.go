package sentencepiece

import (
	"math/rand"
	"testing"

	"github.com/openvino-tokenizers/tokengraph/strtensor"
)

// buildTestModel constructs a tiny in-memory Model without going through
// proto deserialization, exercising the trie/Viterbi machinery directly.
func buildTestModel() *Model {
	m := &Model{
		root:  newTrieNode(),
		unkID: 0, bosID: 1, eosID: 2, padID: -1,
	}
	pieces := []struct {
		text  string
		score float32
	}{
		{"<unk>", 0},
		{"<s>", 0},
		{"</s>", 0},
		{"▁He", -1.0},
		{"llo", -0.5},
		{"▁", -2.0},
		{"H", -3.0},
		{"e", -3.0},
		{"l", -3.0},
		{"o", -3.0},
	}
	m.pieces = make([]string, len(pieces))
	m.scores = make([]float32, len(pieces))
	for i, p := range pieces {
		m.pieces[i] = p.text
		m.scores[i] = p.score
		if i >= 3 {
			m.root.insert(p.text, p.score, int32(i))
		}
	}
	return m
}

func TestEncode_PrefersLongerPieces(t *testing.T) {
	m := buildTestModel()
	ids := m.Encode("Hello")
	if len(ids) == 0 {
		t.Fatal("expected at least one token")
	}
	// "▁He" + "llo" should beat single-byte pieces on total score.
	if m.pieces[ids[0]] != "▁He" {
		t.Errorf("first piece: got %q, want %q", m.pieces[ids[0]], "▁He")
	}
}

func TestEncode_EmptyInput(t *testing.T) {
	m := buildTestModel()
	if ids := m.Encode(""); ids != nil {
		t.Errorf("got %v, want nil", ids)
	}
}

func TestSampleEncode_DeterministicWhenNBestLEOne(t *testing.T) {
	m := buildTestModel()
	a := m.SampleEncode("Hello", 0, 0.0, rand.New(rand.NewSource(1)))
	b := m.Encode("Hello")
	if len(a) != len(b) {
		t.Fatalf("got %v, want %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("index %d: got %d, want %d", i, a[i], b[i])
		}
	}
}

func TestOperator_EncodeBatch_AddBOS(t *testing.T) {
	m := buildTestModel()
	op := New(m, 0, 0.0, true, false, false, 1)

	in := strtensor.String{
		Begins: []int32{0},
		Ends:   []int32{5},
		Chars:  []byte("Hello"),
	}
	indices, values, denseShape := op.EncodeBatch(in)

	if len(values) == 0 {
		t.Fatal("expected at least one token")
	}
	if values[0] != m.bosID {
		t.Errorf("values[0] = %d, want bosID %d", values[0], m.bosID)
	}
	if indices[0] != [2]int64{0, 0} {
		t.Errorf("indices[0] = %v, want (0,0)", indices[0])
	}
	if denseShape[0] != 1 {
		t.Errorf("dense_shape[0] = %d, want 1", denseShape[0])
	}
}

func TestLoad_RejectsEmptyProto(t *testing.T) {
	if _, err := Load(nil); err == nil {
		t.Fatal("expected error for empty model proto")
	}
}
