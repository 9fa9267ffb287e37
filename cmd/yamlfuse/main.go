// Command yamlfuse exercises the yamlfuse engine end to end: parse a
// file tree, resolve its includes/overrides/variables, and either
// inspect the result or repack it.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
