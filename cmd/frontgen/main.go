package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dotcommander/frontgen/internal/core"
)

func main() {
	if err := execute(); err != nil {
		report(os.Stderr, err)
		os.Exit(1)
	}
}

func report(w io.Writer, err error) {
	fmt.Fprintf(w, "❌ %v\n", err)
	if core.IsValidationError(err) {
		fmt.Fprintln(w, "Run with --help to see the accepted flags.")
	}
}
