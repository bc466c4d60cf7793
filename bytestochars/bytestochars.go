// Package bytestochars implements the BytesToChars operator of spec §4.4:
// it remaps every byte of every ragged substring through the fixed
// chartable table, producing a fresh chars buffer while leaving the ragged
// row structure (rag_begins/rag_ends) untouched.
package bytestochars

import (
	"github.com/openvino-tokenizers/tokengraph/chartable"
	"github.com/openvino-tokenizers/tokengraph/strtensor"
)

// Apply remaps every byte of every string referenced by in through the
// byte-to-char table. rag_begins/rag_ends pass through unchanged; begins/
// ends are recomputed against the new chars buffer, mirroring
// BytesToChars::evaluate in the original OpenVINO extension.
func Apply(in strtensor.RaggedString) strtensor.RaggedString {
	numElems := in.String.Len()
	newBegins := make([]int32, numElems)
	newEnds := make([]int32, numElems)
	newChars := make([]byte, 0, len(in.Chars)*2)

	for i := 0; i < numElems; i++ {
		newBegins[i] = int32(len(newChars))
		newChars = chartable.Encode(newChars, in.String.At(i))
		newEnds[i] = int32(len(newChars))
	}

	return strtensor.RaggedString{
		RagBegins: in.RagBegins,
		RagEnds:   in.RagEnds,
		String: strtensor.String{
			Begins: newBegins,
			Ends:   newEnds,
			Chars:  newChars,
		},
	}
}
