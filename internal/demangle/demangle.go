// Package demangle turns mangled linker symbol names into readable
// source-level signatures.
package demangle

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	itanium "github.com/ianlancetaylor/demangle"
)

// Demangler maps a list of raw symbol names to an equal-length list of
// readable names, preserving positional correspondence.
type Demangler interface {
	Demangle(ctx context.Context, names []string) ([]string, error)
}

// DefaultTimeout bounds a single c++filt invocation.
const DefaultTimeout = 10 * time.Second

// Filt shells out to c++filt with the names as arguments. The run is
// bounded by Timeout; a hung demangler fails the call instead of blocking
// the analysis forever.
type Filt struct {
	Path    string        // binary to run; "c++filt" when empty
	Timeout time.Duration // per-invocation bound; DefaultTimeout when zero
}

func (f Filt) Demangle(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	path := f.Path
	if path == "" {
		path = "c++filt"
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string{"-n"}, names...)
	out, err := exec.CommandContext(ctx, path, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("demangle: %s: %w", path, err)
	}

	// One line per name; the trailing newline makes the final split
	// element empty.
	lines := strings.Split(string(out), "\n")
	if len(lines) != len(names)+1 || lines[len(lines)-1] != "" {
		return nil, fmt.Errorf("demangle: %s returned %d lines for %d names",
			path, len(lines)-1, len(names))
	}
	return lines[:len(names)], nil
}

// Native demangles in-process. Names that are not mangled pass through
// unchanged, so the output always maps 1:1 to the input.
type Native struct{}

func (Native) Demangle(_ context.Context, names []string) ([]string, error) {
	out := make([]string, len(names))
	for i, n := range names {
		s, err := itanium.ToString(n)
		if err != nil {
			s = n
		}
		out[i] = s
	}
	return out, nil
}

// None returns the raw names unchanged.
type None struct{}

func (None) Demangle(_ context.Context, names []string) ([]string, error) {
	return names, nil
}

// Resolve picks a demangler by mode: "cppfilt", "native", "none", or
// "auto" (c++filt when on PATH, otherwise in-process).
func Resolve(mode string, timeout time.Duration) (Demangler, error) {
	switch mode {
	case "auto", "":
		if _, err := exec.LookPath("c++filt"); err == nil {
			return Filt{Timeout: timeout}, nil
		}
		return Native{}, nil
	case "cppfilt":
		return Filt{Timeout: timeout}, nil
	case "native":
		return Native{}, nil
	case "none":
		return None{}, nil
	}
	return nil, fmt.Errorf("demangle: unknown demangler %q", mode)
}
