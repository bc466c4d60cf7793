package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openvino-tokenizers/tokengraph/strtensor"
)

func newPackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pack [text...]",
		Short: "Pack text arguments into the wire string format and write it to stdout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			begins := make([]int32, len(args))
			ends := make([]int32, len(args))
			var chars []byte
			for i, s := range args {
				begins[i] = int32(len(chars))
				chars = append(chars, s...)
				ends[i] = int32(len(chars))
			}
			s := strtensor.Canonicalize(strtensor.String{Begins: begins, Ends: ends, Chars: chars})
			buf, err := strtensor.Pack(s)
			if err != nil {
				return err
			}
			w := bufio.NewWriter(os.Stdout)
			defer w.Flush()
			_, err = w.Write(buf)
			return err
		},
	}
}

func newUnpackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpack [file]",
		Short: "Unpack a wire-format string buffer and print each row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			s, err := strtensor.Unpack(buf)
			if err != nil {
				return err
			}
			for i := 0; i < s.Len(); i++ {
				fmt.Fprintln(cmd.OutOrStdout(), string(s.At(i)))
			}
			return nil
		},
	}
}
