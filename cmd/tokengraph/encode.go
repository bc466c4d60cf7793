package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openvino-tokenizers/tokengraph"
	"github.com/openvino-tokenizers/tokengraph/sentencepiece"
)

func newEncodeCmd() *cobra.Command {
	var (
		modelPath string
		targetDim int
		addBOS    bool
		addEOS    bool
		padID     int32
	)

	cmd := &cobra.Command{
		Use:   "encode [text...]",
		Short: "Encode text(s) through a SentencePiece model into a dense id matrix",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(modelPath)
			if err != nil {
				return fmt.Errorf("read model: %w", err)
			}
			model, err := sentencepiece.Load(data)
			if err != nil {
				return err
			}
			enc := sentencepiece.New(model, 0, 0.0, addBOS, addEOS, false, 1)

			pipe, err := tokengraph.New(enc, tokengraph.WithPadID(padID))
			if err != nil {
				return err
			}

			ids, mask, err := pipe.EncodeDense(context.Background(), args, targetDim)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(map[string]any{"ids": ids, "mask": mask}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "path to a serialized SentencePiece model proto")
	cmd.Flags().IntVar(&targetDim, "target-dim", 32, "dense row width")
	cmd.Flags().BoolVar(&addBOS, "add-bos", false, "prepend the model's <s> token")
	cmd.Flags().BoolVar(&addEOS, "add-eos", false, "append the model's </s> token")
	cmd.Flags().Int32Var(&padID, "pad-id", 0, "padding token id")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}
