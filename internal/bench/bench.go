// Package bench measures tokenization throughput and packing efficiency of
// a Pipeline over a text corpus: load samples, run the thing under test,
// aggregate metrics.
package bench

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Encoder is the subset of tokengraph.Pipeline this package drives.
type Encoder interface {
	EncodeDense(ctx context.Context, texts []string, targetDim int) (ids [][]int32, mask [][]bool, err error)
}

// Config controls one benchmark run.
type Config struct {
	TargetDim int
}

// Report is the aggregate result of one RunBenchmark call, tagged with a
// fresh run ID so that repeated runs against the same corpus can be told
// apart in saved output.
type Report struct {
	RunID           string
	NumTexts        int
	TotalTokens     int
	TruncatedRows   int
	Elapsed         time.Duration
	TokensPerSecond float64
}

// LoadCorpus reads every regular file directly under dir as one sample
// text, sorted by filename for reproducible ordering.
func LoadCorpus(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("bench: read corpus dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	texts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("bench: read %s: %w", name, err)
		}
		texts = append(texts, string(data))
	}
	return texts, nil
}

// RunBenchmark encodes texts once through enc and reports throughput and
// how many rows were truncated to fit cfg.TargetDim.
func RunBenchmark(ctx context.Context, enc Encoder, texts []string, cfg Config) (Report, error) {
	start := time.Now()
	ids, mask, err := enc.EncodeDense(ctx, texts, cfg.TargetDim)
	elapsed := time.Since(start)
	if err != nil {
		return Report{}, err
	}

	total := 0
	truncated := 0
	// A fully-true mask row means the row filled every column; an
	// exact-length row looks identical to a truncated one from the mask
	// alone, so this over-counts truncation in exchange for needing no
	// access to pre-padding row lengths.
	for i, row := range ids {
		total += len(row)
		if i < len(mask) {
			allSet := true
			for _, m := range mask[i] {
				if !m {
					allSet = false
					break
				}
			}
			if allSet && len(mask[i]) == cfg.TargetDim {
				truncated++
			}
		}
	}

	rate := 0.0
	if elapsed > 0 {
		rate = float64(total) / elapsed.Seconds()
	}

	return Report{
		RunID:           uuid.NewString(),
		NumTexts:        len(texts),
		TotalTokens:     total,
		TruncatedRows:   truncated,
		Elapsed:         elapsed,
		TokensPerSecond: rate,
	}, nil
}

// SweepTargetDims generates candidate target-dim values from min to max
// (inclusive) stepping by step.
func SweepTargetDims(min, max, step int) []int {
	var dims []int
	for d := min; d <= max; d += step {
		dims = append(dims, d)
	}
	return dims
}

// SweepResult pairs one target-dim candidate with its report.
type SweepResult struct {
	TargetDim int
	Report    Report
}

// Sweep runs RunBenchmark once per candidate dim and returns results sorted
// by ascending truncation count, so the first entry is the smallest
// target-dim that loses the fewest rows to truncation.
func Sweep(ctx context.Context, enc Encoder, texts []string, dims []int) ([]SweepResult, error) {
	results := make([]SweepResult, 0, len(dims))
	for _, dim := range dims {
		rep, err := RunBenchmark(ctx, enc, texts, Config{TargetDim: dim})
		if err != nil {
			return nil, err
		}
		results = append(results, SweepResult{TargetDim: dim, Report: rep})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Report.TruncatedRows != results[j].Report.TruncatedRows {
			return results[i].Report.TruncatedRows < results[j].Report.TruncatedRows
		}
		return results[i].TargetDim < results[j].TargetDim
	})
	return results, nil
}
