package tokengraph

import (
	"context"
	"fmt"

	"github.com/openvino-tokenizers/tokengraph/internal/parallel"
	"github.com/openvino-tokenizers/tokengraph/normalize"
	"github.com/openvino-tokenizers/tokengraph/raggedops"
	"github.com/openvino-tokenizers/tokengraph/strtensor"
)

// Encoder is the batch subword-encoding contract a Pipeline drives: given
// a flat string triple it returns the sparse (indices, values,
// dense_shape) tensors of spec §3/§4.5. *sentencepiece.Operator satisfies
// this directly.
type Encoder interface {
	EncodeBatch(in strtensor.String) (indices [][2]int64, values []int32, denseShape [2]int64)
}

// Pipeline composes normalization, a subword Encoder, and ragged-to-dense
// packing into the single-call batch API described in this package's doc
// comment.
type Pipeline struct {
	encoder Encoder
	cfg     config
}

// New builds a Pipeline around encoder with the given options applied
// over the defaults (pad id 0, concurrency runtime.NumCPU(), no case
// folding or Unicode normalization).
func New(encoder Encoder, opts ...Option) (*Pipeline, error) {
	if encoder == nil {
		return nil, ErrNoEncoder
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Pipeline{encoder: encoder, cfg: cfg}, nil
}

// toString packs texts into a flat strtensor.String, one row per input
// string.
func toString(texts []string) strtensor.String {
	begins := make([]int32, len(texts))
	ends := make([]int32, len(texts))
	var chars []byte
	for i, s := range texts {
		begins[i] = int32(len(chars))
		chars = append(chars, s...)
		ends[i] = int32(len(chars))
	}
	return strtensor.String{Begins: begins, Ends: ends, Chars: chars}
}

// sparseToRagged reconstructs a ragged i32 tensor from sparse output,
// relying on the row-major (batch, position) ordering spec §4.5 mandates.
func sparseToRagged(indices [][2]int64, values []int32, numRows int) strtensor.Ragged[int32] {
	ragBegins := make([]int32, numRows)
	ragEnds := make([]int32, numRows)
	elems := make([]int32, len(values))

	pos := 0
	for row := 0; row < numRows; row++ {
		ragBegins[row] = int32(pos)
		for pos < len(indices) && indices[pos][0] == int64(row) {
			elems[pos] = values[pos]
			pos++
		}
		ragEnds[row] = int32(pos)
	}

	return strtensor.Ragged[int32]{RagBegins: ragBegins, RagEnds: ragEnds, Elems: elems}
}

// normalizeRows applies the Pipeline's configured case folding and Unicode
// normalization to each text independently, fanned out across at most
// cfg.concurrency workers via internal/parallel — the same bounded row
// fan-out the SentencePiece operator uses for encoding, applied here to
// normalization instead.
func (p *Pipeline) normalizeRows(ctx context.Context, texts []string) ([]string, error) {
	if !p.cfg.caseFold && p.cfg.unicodeForm == "" {
		return texts, nil
	}

	out := make([]string, len(texts))
	err := parallel.ForEachRow(ctx, len(texts), p.cfg.concurrency, func(i int) error {
		row := toString(texts[i : i+1])
		if p.cfg.caseFold {
			row = normalize.CaseFold(row)
		}
		if p.cfg.unicodeForm != "" {
			var err error
			row, err = normalize.NormalizeUnicode(row, normalize.Form(p.cfg.unicodeForm))
			if err != nil {
				return err
			}
		}
		out[i] = string(row.At(0))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("tokengraph: %w", err)
	}
	return out, nil
}

// EncodeDense normalizes, encodes, and pads texts into a dense [len(texts),
// targetDim] token id matrix plus boolean mask, applying the Pipeline's
// configured normalization, concurrency bound, and pad id.
func (p *Pipeline) EncodeDense(ctx context.Context, texts []string, targetDim int) (ids [][]int32, mask [][]bool, err error) {
	if len(texts) == 0 {
		return nil, nil, ErrEmptyBatch
	}

	p.cfg.logger.DebugContext(ctx, "tokengraph: encoding batch",
		"rows", len(texts), "target_dim", targetDim, "concurrency", p.cfg.concurrency)

	texts, err = p.normalizeRows(ctx, texts)
	if err != nil {
		return nil, nil, err
	}
	s := toString(texts)

	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	indices, values, _ := p.encoder.EncodeBatch(s)
	ragged := sparseToRagged(indices, values, len(texts))
	ids, mask = raggedops.RaggedToDense(ragged, targetDim, p.cfg.padID)

	p.cfg.logger.DebugContext(ctx, "tokengraph: encoded batch", "tokens", len(values))
	return ids, mask, nil
}
