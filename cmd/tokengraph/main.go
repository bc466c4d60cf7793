// Command tokengraph is a thin CLI wrapper around the tokengraph pipeline:
// it packs/unpacks the wire string format, drives SentencePiece encoding
// from the shell, and benchmarks throughput over a text corpus, mainly for
// manual inspection and scripting.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
