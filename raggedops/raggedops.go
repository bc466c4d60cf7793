// Package raggedops implements the ragged-tensor combinators of spec
// §4.8/§4.9: padding a ragged tensor to a fixed width with a mask
// (RaggedToDense), and concatenating multiple ragged tensors per row with
// segment-id tagging (CombineSegments).
package raggedops

import (
	"errors"
	"fmt"

	"github.com/openvino-tokenizers/tokengraph/strtensor"
)

// ErrShapeMismatch is returned by CombineSegments when its ragged inputs
// don't share a common row count (after broadcasting shape-[1] inputs).
var ErrShapeMismatch = errors.New("raggedops: ragged tensor shape mismatch")

// RaggedToDense pads ragged to targetDim columns per row, filling unused
// slots with defaultValue and marking the real region in mask. Truncation
// of rows longer than targetDim is silent, per spec §4.8.
func RaggedToDense[T any](ragged strtensor.Ragged[T], targetDim int, defaultValue T) (dense [][]T, mask [][]bool) {
	rows := ragged.Rows()
	dense = make([][]T, rows)
	mask = make([][]bool, rows)

	for i := 0; i < rows; i++ {
		row := ragged.Row(i)
		denseRow := make([]T, targetDim)
		maskRow := make([]bool, targetDim)

		n := len(row)
		if n > targetDim {
			n = targetDim
		}
		for j := 0; j < n; j++ {
			denseRow[j] = row[j]
			maskRow[j] = true
		}
		for j := n; j < targetDim; j++ {
			denseRow[j] = defaultValue
		}

		dense[i] = denseRow
		mask[i] = maskRow
	}

	return dense, mask
}

// CombineSegments concatenates R ragged tensors per row, in input order,
// and produces a parallel segment-id ragged tensor tagging each output
// element with segmentIDs[r], where r is the index of the input it came
// from. Every input must have shape [1] (broadcast to every row) or a
// common row count S (spec §4.9).
func CombineSegments[T any](segments []strtensor.Ragged[T], segmentIDs []int32) (combined strtensor.Ragged[T], tags strtensor.Ragged[int32], err error) {
	if len(segments) != len(segmentIDs) {
		return strtensor.Ragged[T]{}, strtensor.Ragged[int32]{}, fmt.Errorf(
			"%w: %d segments but %d segment ids", ErrShapeMismatch, len(segments), len(segmentIDs))
	}

	rows := 1
	for _, s := range segments {
		r := s.Rows()
		if r == 1 {
			continue
		}
		if rows == 1 {
			rows = r
		} else if r != rows {
			return strtensor.Ragged[T]{}, strtensor.Ragged[int32]{}, fmt.Errorf(
				"%w: row counts %d and %d", ErrShapeMismatch, rows, r)
		}
	}

	ragBegins := make([]int32, rows)
	ragEnds := make([]int32, rows)
	var elems []T
	var tagElems []int32

	rowOf := func(s strtensor.Ragged[T], i int) []T {
		if s.Rows() == 1 {
			return s.Row(0)
		}
		return s.Row(i)
	}

	for i := 0; i < rows; i++ {
		ragBegins[i] = int32(len(elems))
		for r, seg := range segments {
			for _, v := range rowOf(seg, i) {
				elems = append(elems, v)
				tagElems = append(tagElems, segmentIDs[r])
			}
		}
		ragEnds[i] = int32(len(elems))
	}

	combined = strtensor.Ragged[T]{RagBegins: ragBegins, RagEnds: ragEnds, Elems: elems}
	tags = strtensor.Ragged[int32]{RagBegins: ragBegins, RagEnds: ragEnds, Elems: tagElems}
	return combined, tags, nil
}
