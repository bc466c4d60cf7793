// Package tokengraph implements a composable text tokenization pipeline.
//
// Raw UTF-8 batches flow through a directed graph of primitive operators —
// normalization, regex splitting, byte-to-character remapping, subword
// encoding, and ragged-to-dense packing — all speaking a uniform decomposed
// string/ragged tensor representation (package strtensor). The operator
// suite lives in dedicated packages (normalize, regexsplit, bytestochars,
// sentencepiece, wordpiece, bpe, raggedops) and can be driven directly, or
// composed through the Pipeline type in this package.
//
// # Quick Start
//
//	pipe, err := tokengraph.New(spTokenizer, tokengraph.WithPadID(0))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ids, mask, err := pipe.EncodeDense(ctx, []string{"Hello world."}, 16)
//
// # Thread Safety
//
// A Pipeline and every operator it wires together are safe for concurrent
// use: construction reads configuration (models, vocab, merges, tables)
// once, and Evaluate never mutates that configuration afterward.
package tokengraph
