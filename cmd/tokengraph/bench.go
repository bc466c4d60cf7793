package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openvino-tokenizers/tokengraph"
	"github.com/openvino-tokenizers/tokengraph/internal/bench"
	"github.com/openvino-tokenizers/tokengraph/sentencepiece"
)

func newBenchCmd() *cobra.Command {
	var (
		modelPath string
		corpusDir string
		targetDim int
		sweep     bool
		sweepMin  int
		sweepMax  int
		sweepStep int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure tokenization throughput and packing efficiency over a text corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(modelPath)
			if err != nil {
				return fmt.Errorf("read model: %w", err)
			}
			model, err := sentencepiece.Load(data)
			if err != nil {
				return err
			}
			enc := sentencepiece.New(model, 0, 0.0, false, false, false, 1)
			pipe, err := tokengraph.New(enc)
			if err != nil {
				return err
			}

			texts, err := bench.LoadCorpus(corpusDir)
			if err != nil {
				return err
			}

			ctx := context.Background()
			if sweep {
				dims := bench.SweepTargetDims(sweepMin, sweepMax, sweepStep)
				results, err := bench.Sweep(ctx, pipe, texts, dims)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-10s %-12s %-10s\n", "target-dim", "tokens/s", "truncated", "elapsed")
				for _, r := range results {
					fmt.Fprintf(cmd.OutOrStdout(), "%-10d %-10.1f %-12d %-10s\n",
						r.TargetDim, r.Report.TokensPerSecond, r.Report.TruncatedRows, r.Report.Elapsed)
				}
				return nil
			}

			rep, err := bench.RunBenchmark(ctx, pipe, texts, bench.Config{TargetDim: targetDim})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run=%s texts=%d tokens=%d truncated=%d elapsed=%s tokens/s=%.1f\n",
				rep.RunID, rep.NumTexts, rep.TotalTokens, rep.TruncatedRows, rep.Elapsed, rep.TokensPerSecond)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "path to a serialized SentencePiece model proto")
	cmd.Flags().StringVar(&corpusDir, "corpus", "", "directory of text files to benchmark")
	cmd.Flags().IntVar(&targetDim, "target-dim", 32, "dense row width")
	cmd.Flags().BoolVar(&sweep, "sweep", false, "sweep target-dim instead of running once")
	cmd.Flags().IntVar(&sweepMin, "sweep-min", 8, "sweep minimum target-dim")
	cmd.Flags().IntVar(&sweepMax, "sweep-max", 64, "sweep maximum target-dim")
	cmd.Flags().IntVar(&sweepStep, "sweep-step", 8, "sweep step size")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("corpus")

	return cmd
}
