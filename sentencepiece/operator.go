package sentencepiece

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"github.com/openvino-tokenizers/tokengraph/internal/parallel"
	"github.com/openvino-tokenizers/tokengraph/operator"
	"github.com/openvino-tokenizers/tokengraph/strtensor"
)

// Operator wraps a Model as the SentencePiece tokenizer operator of spec
// §4.5: for each sentence in a packed-string batch it samples/encodes a
// token sequence and emits the batch as sparse (indices, values,
// dense_shape) tensors.
//
// rng is the only mutable field; it is guarded by rngMu so that one
// Operator instance stays safely invokable concurrently on disjoint tensor
// sets, per spec §5.
type Operator struct {
	model       *Model
	nbestSize   int32
	alpha       float32
	addBOS      bool
	addEOS      bool
	reverse     bool // accepted but unused, per spec §9 open question
	concurrency int

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New builds a SentencePiece operator around an already-loaded model.
// rngSeed is used only when nbestSize > 1 and alpha != 0 (sampled
// encoding); deterministic Viterbi encoding never consults it.
func New(model *Model, nbestSize int32, alpha float32, addBOS, addEOS, reverse bool, rngSeed int64) *Operator {
	return &Operator{
		model:       model,
		nbestSize:   nbestSize,
		alpha:       alpha,
		addBOS:      addBOS,
		addEOS:      addEOS,
		reverse:     reverse,
		concurrency: runtime.NumCPU(),
		rng:         rand.New(rand.NewSource(rngSeed)),
	}
}

// lockedRNG draws a float64 from the shared generator under lock, satisfying
// the rng interface used by Model.SampleEncode.
type lockedRNG struct {
	op *Operator
}

func (l lockedRNG) Float64() float64 {
	l.op.rngMu.Lock()
	defer l.op.rngMu.Unlock()
	return l.op.rng.Float64()
}

// EncodeBatch tokenizes every string in in, returning the sparse output of
// spec §3/§4.5. Ordering is row-major by batch index then token position.
// A single sentence's encode failure degrades to an empty token list
// rather than aborting the batch (spec §7).
func (op *Operator) EncodeBatch(in strtensor.String) (indices [][2]int64, values []int32, denseShape [2]int64) {
	n := in.Len()
	perRow := make([][]int32, n)

	// Row encodes are independent (spec §5); fan them out across a bounded
	// worker pool. SampleEncode has no failure path for a single sentence
	// (unknown bytes fall back to the unknown piece), so fn always returns
	// nil and the error path here is unreachable in practice.
	_ = parallel.ForEachRow(context.Background(), n, op.concurrency, func(i int) error {
		ids := op.model.SampleEncode(string(in.At(i)), op.nbestSize, op.alpha, lockedRNG{op})
		if op.addBOS && op.model.bosID >= 0 {
			ids = append([]int32{op.model.bosID}, ids...)
		}
		if op.addEOS && op.model.eosID >= 0 {
			ids = append(ids, op.model.eosID)
		}
		perRow[i] = ids
		return nil
	})

	maxLen := 0
	for _, ids := range perRow {
		if len(ids) > maxLen {
			maxLen = len(ids)
		}
	}

	for i, ids := range perRow {
		for pos, id := range ids {
			indices = append(indices, [2]int64{int64(i), int64(pos)})
			values = append(values, id)
		}
	}

	return indices, values, [2]int64{int64(n), int64(maxLen)}
}

// Validate implements operator.Operator.
func (op *Operator) Validate(inputs []operator.TensorSpec) ([]operator.TensorSpec, error) {
	if len(inputs) < 1 || inputs[0].Type != operator.U8 {
		return nil, fmt.Errorf("sentencepiece: expected u8 packed-string input")
	}
	return []operator.TensorSpec{
		{Type: operator.I64, Shape: []int{-1, 2}},
		{Type: operator.I32, Shape: []int{-1}},
		{Type: operator.I64, Shape: []int{2}},
	}, nil
}

// Evaluate implements operator.Operator: inputs[0] must be a packed-string
// u8 tensor; it is unpacked, encoded, and repacked as sparse tensors.
func (op *Operator) Evaluate(inputs []operator.Tensor) ([]operator.Tensor, error) {
	buf, ok := inputs[0].Data.([]byte)
	if !ok {
		return nil, fmt.Errorf("sentencepiece: input 0 is not a []byte packed-string buffer")
	}
	s, err := strtensor.Unpack(buf)
	if err != nil {
		return nil, fmt.Errorf("sentencepiece: %w", err)
	}

	indices, values, denseShape := op.EncodeBatch(s)
	return []operator.Tensor{
		{Type: operator.I64, Data: indices},
		{Type: operator.I32, Data: values},
		{Type: operator.I64, Data: denseShape},
	}, nil
}

// Attributes implements operator.Operator.
func (op *Operator) Attributes() []operator.Attribute {
	return []operator.Attribute{
		{Name: "nbest_size", Value: op.nbestSize},
		{Name: "alpha", Value: op.alpha},
		{Name: "add_bos", Value: op.addBOS},
		{Name: "add_eos", Value: op.addEOS},
		{Name: "reverse", Value: op.reverse},
	}
}

// Clone implements operator.Operator. The cloned operator shares the
// immutable Model but gets its own random source so sampled encoding
// streams don't interleave across concurrent clones.
func (op *Operator) Clone() operator.Operator {
	return &Operator{
		model:       op.model,
		nbestSize:   op.nbestSize,
		alpha:       op.alpha,
		addBOS:      op.addBOS,
		addEOS:      op.addEOS,
		reverse:     op.reverse,
		concurrency: op.concurrency,
		rng:         rand.New(rand.NewSource(rand.Int63())),
	}
}
