package sizes

import (
	"context"

	"ndksize/internal/demangle"
	"ndksize/internal/elfx"
)

// Report is the immutable result of one analysis run, the single value
// handed to the presentation layer.
type Report struct {
	Architecture elfx.Architecture `json:"architecture"`
	Accounting
	TopSymbols []Symbol `json:"top_symbols"`
}

// ApproxFileSize is the sum of the three totals. It understates the true
// file length: code bytes, dynamic-linking metadata, and debug sections
// other than .strtab are not accounted.
func (r *Report) ApproxFileSize() uint64 {
	return r.TotalSymbolSize + r.TotalStringSize + r.TotalConstantSize
}

// Options configures one analysis run.
type Options struct {
	// TopCount is the number of ranked symbols to keep. Callers wanting
	// the conventional default pass DefaultTopCount explicitly.
	TopCount int

	// Demangler rewrites the ranked symbol names. Nil skips demangling.
	// Demangler failures degrade to raw names and never fail the run.
	Demangler demangle.Demangler

	// Progress, when set, observes per-symbol scan progress.
	Progress Progress
}

// Analyze runs the full pipeline: scan, rank, demangle, assemble. The same
// TopCount entries are ranked, demangled, and reported; list lengths never
// diverge between stages.
func Analyze(ctx context.Context, f *elfx.File, opts Options) (*Report, error) {
	scan, err := Scan(ctx, f, opts.Progress)
	if err != nil {
		return nil, err
	}

	top := TopN(scan.Symbols, opts.TopCount)
	if opts.Demangler != nil && len(top) > 0 {
		names := make([]string, len(top))
		for i, s := range top {
			names[i] = s.Name
		}
		if out, err := opts.Demangler.Demangle(ctx, names); err == nil && len(out) == len(names) {
			for i := range top {
				top[i].Name = out[i]
			}
		}
		// Cancellation during demangling is cancellation, not a fallback.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	return &Report{
		Architecture: f.Architecture(),
		Accounting:   scan.Accounting,
		TopSymbols:   top,
	}, nil
}
