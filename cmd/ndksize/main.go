package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "analyze":
		err = cmdAnalyze(ctx, os.Args[2:])
	case "sections":
		err = cmdSections(ctx, os.Args[2:])
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "cancelled")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `ndksize — NDK shared-library size analyzer

Usage:
  ndksize analyze  --lib <path> [--symbols <n>] [--json]   Report size distribution and top symbols
  ndksize sections --lib <path> [--json]                   List sections and their accounting bucket

Flags:
  --lib <path>             Path to the .so file
  --symbols <n>            Number of top symbols to list (default 200)
  --json                   Machine-readable JSON on stdout
  --no-color               Disable colors and syntax highlighting
  --demangler <mode>       auto, cppfilt, native, or none (default auto)
  --demangle-timeout <d>   Bound on one c++filt run (default 10s)

Accounting covers symbol sizes, non-debug string tables, and the .rodata
section only; the reported filesize approximates the shipped binary rather
than the file length.
`)
}
