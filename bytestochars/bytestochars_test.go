package bytestochars

import (
	"reflect"
	"testing"

	"github.com/openvino-tokenizers/tokengraph/chartable"
	"github.com/openvino-tokenizers/tokengraph/strtensor"
)

func TestApply_RemapsBytesPreservesRaggedStructure(t *testing.T) {
	chars := []byte("ab")
	in := strtensor.RaggedString{
		RagBegins: []int32{0},
		RagEnds:   []int32{2},
		String: strtensor.String{
			Begins: []int32{0, 1},
			Ends:   []int32{1, 2},
			Chars:  chars,
		},
	}

	out := Apply(in)

	if !reflect.DeepEqual(out.RagBegins, in.RagBegins) || !reflect.DeepEqual(out.RagEnds, in.RagEnds) {
		t.Fatalf("rag bounds changed: got begins=%v ends=%v", out.RagBegins, out.RagEnds)
	}

	want0 := chartable.Table['a']
	want1 := chartable.Table['b']
	if got := string(out.String.At(0)); got != want0 {
		t.Errorf("element 0 = %q, want %q", got, want0)
	}
	if got := string(out.String.At(1)); got != want1 {
		t.Errorf("element 1 = %q, want %q", got, want1)
	}
}

func TestApply_NonPrintableByteExpandsToTwoBytes(t *testing.T) {
	in := strtensor.RaggedString{
		RagBegins: []int32{0},
		RagEnds:   []int32{1},
		String: strtensor.String{
			Begins: []int32{0},
			Ends:   []int32{1},
			Chars:  []byte{0x00},
		},
	}

	out := Apply(in)

	want := chartable.Table[0x00]
	if got := string(out.String.At(0)); got != want {
		t.Errorf("element 0 = %q, want %q", got, want)
	}
	if len(out.String.Chars) != len(want) {
		t.Errorf("chars length = %d, want %d", len(out.String.Chars), len(want))
	}
}

func TestApply_EmptyInput(t *testing.T) {
	in := strtensor.RaggedString{}
	out := Apply(in)
	if out.String.Len() != 0 {
		t.Errorf("expected zero elements, got %d", out.String.Len())
	}
}

