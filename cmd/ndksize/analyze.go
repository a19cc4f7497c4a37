package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"

	"ndksize/internal/demangle"
	"ndksize/internal/elfx"
	"ndksize/internal/render"
	"ndksize/internal/sizes"
)

func cmdAnalyze(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	lib := fs.String("lib", "", "path to the .so file")
	symbols := fs.Int("symbols", sizes.DefaultTopCount, "number of top symbols to list")
	jsonOut := fs.Bool("json", false, "output as JSON")
	noColor := fs.Bool("no-color", false, "disable colors and highlighting")
	demangler := fs.String("demangler", "auto", "auto, cppfilt, native, or none")
	demangleTimeout := fs.Duration("demangle-timeout", demangle.DefaultTimeout, "bound on one c++filt run")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *lib == "" {
		return fmt.Errorf("--lib is required")
	}
	if *symbols < 0 {
		return fmt.Errorf("--symbols must be >= 0")
	}
	if *noColor {
		color.NoColor = true
	}

	dem, err := demangle.Resolve(*demangler, *demangleTimeout)
	if err != nil {
		return err
	}

	ef, err := elfx.Open(*lib)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer ef.Close()

	opts := sizes.Options{TopCount: *symbols, Demangler: dem}
	if !*jsonOut {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.GreenString("Processing"), color.YellowString(*lib))
		fmt.Fprintf(os.Stderr, "%s %s\n\n",
			color.GreenString("Architecture:"), color.YellowString(ef.Architecture().String()))
		opts.Progress = progressBar()
	}

	rep, err := sizes.Analyze(ctx, ef, opts)
	if err != nil {
		return err
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	fmt.Fprintf(os.Stderr, "%s\n\n", color.GreenString("Done!"))
	r := render.Renderer{Highlight: !color.NoColor}
	r.Report(os.Stdout, rep)
	return nil
}

// progressBar returns a Progress hook keeping one bar per symbol-table
// section, finished before the next section starts.
func progressBar() sizes.Progress {
	var (
		bar     *pb.ProgressBar
		current string
	)
	return func(section string, done, total int) {
		if bar == nil || section != current {
			if bar != nil {
				bar.Finish()
			}
			current = section
			fmt.Fprintf(os.Stderr, "Processing %s\n", section)
			bar = pb.New(total).SetWriter(os.Stderr).Start()
		}
		bar.SetCurrent(int64(done))
		if done == total {
			bar.Finish()
			bar = nil
		}
	}
}
