package tokengraph

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/openvino-tokenizers/tokengraph/strtensor"
)

// stubEncoder tokenizes each row into one token per rune (the rune's code
// point as the id), purely
// to exercise Pipeline's normalization/dense-packing plumbing without a
// real SentencePiece model.
type stubEncoder struct{}

func (stubEncoder) EncodeBatch(in strtensor.String) (indices [][2]int64, values []int32, denseShape [2]int64) {
	maxLen := 0
	for i := 0; i < in.Len(); i++ {
		row := string(in.At(i))
		for pos, r := range row {
			indices = append(indices, [2]int64{int64(i), int64(pos)})
			values = append(values, int32(r))
		}
		if len(row) > maxLen {
			maxLen = len(row)
		}
	}
	return indices, values, [2]int64{int64(in.Len()), int64(maxLen)}
}

func TestNew_RejectsNilEncoder(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNoEncoder) {
		t.Fatalf("got %v, want ErrNoEncoder", err)
	}
}

func TestEncodeDense_RejectsEmptyBatch(t *testing.T) {
	pipe, err := New(stubEncoder{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, _, err = pipe.EncodeDense(context.Background(), nil, 4)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("got %v, want ErrEmptyBatch", err)
	}
}

func TestEncodeDense_PadsAndMasks(t *testing.T) {
	pipe, err := New(stubEncoder{}, WithPadID(-1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ids, mask, err := pipe.EncodeDense(context.Background(), []string{"ab", "a"}, 3)
	if err != nil {
		t.Fatalf("EncodeDense failed: %v", err)
	}
	if len(ids) != 2 || len(ids[0]) != 3 {
		t.Fatalf("got shape %v", ids)
	}
	if ids[0][2] != -1 || mask[0][2] != false {
		t.Errorf("row 0 padding: ids=%v mask=%v", ids[0], mask[0])
	}
	if !mask[1][0] || mask[1][1] {
		t.Errorf("row 1 mask: %v", mask[1])
	}
}

func TestEncodeDense_CaseFold(t *testing.T) {
	pipe, err := New(stubEncoder{}, WithCaseFold(true))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ids, _, err := pipe.EncodeDense(context.Background(), []string{"AB"}, 2)
	if err != nil {
		t.Fatalf("EncodeDense failed: %v", err)
	}
	got := string(rune(ids[0][0])) + string(rune(ids[0][1]))
	if strings.ToUpper(got) != "AB" || got != "ab" {
		t.Errorf("got %q, want case-folded %q", got, "ab")
	}
}

func TestEncodeDense_UsesConfiguredConcurrencyForNormalization(t *testing.T) {
	pipe, err := New(stubEncoder{}, WithCaseFold(true), WithConcurrency(1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ids, _, err := pipe.EncodeDense(context.Background(), []string{"AB", "CD", "EF"}, 2)
	if err != nil {
		t.Fatalf("EncodeDense failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("got %d rows, want 3", len(ids))
	}
	got := string(rune(ids[2][0])) + string(rune(ids[2][1]))
	if got != "ef" {
		t.Errorf("row 2 = %q, want case-folded %q", got, "ef")
	}
}

func TestEncodeDense_LogsThroughConfiguredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	pipe, err := New(stubEncoder{}, WithLogger(logger))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, _, err := pipe.EncodeDense(context.Background(), []string{"ab"}, 2); err != nil {
		t.Fatalf("EncodeDense failed: %v", err)
	}
	if !strings.Contains(buf.String(), "encoding batch") {
		t.Errorf("expected log output on configured logger, got %q", buf.String())
	}
}
