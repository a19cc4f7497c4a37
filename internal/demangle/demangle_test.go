package demangle

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func fakeFilt(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fakefilt")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFiltDemangle(t *testing.T) {
	// Echo one line per name, dropping the -n flag.
	path := fakeFilt(t, `shift
for n in "$@"; do echo "D:$n"; done
`)
	d := Filt{Path: path}
	out, err := d.Demangle(context.Background(), []string{"_Z1av", "_Z1bv"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0] != "D:_Z1av" || out[1] != "D:_Z1bv" {
		t.Fatalf("out = %v", out)
	}
}

func TestFiltLineCountMismatch(t *testing.T) {
	path := fakeFilt(t, "echo only-one-line\n")
	d := Filt{Path: path}
	_, err := d.Demangle(context.Background(), []string{"_Z1av", "_Z1bv"})
	if err == nil {
		t.Fatal("expected error for mismatched line count")
	}
}

func TestFiltMissingBinary(t *testing.T) {
	d := Filt{Path: filepath.Join(t.TempDir(), "no-such-filt")}
	_, err := d.Demangle(context.Background(), []string{"_Z1av"})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestFiltTimeout(t *testing.T) {
	// exec so the killed process is the sleep itself, not its shell.
	path := fakeFilt(t, "exec sleep 10\n")
	d := Filt{Path: path, Timeout: 50 * time.Millisecond}
	start := time.Now()
	_, err := d.Demangle(context.Background(), []string{"_Z1av"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("demangle blocked for %v despite timeout", elapsed)
	}
}

func TestFiltEmptyInput(t *testing.T) {
	// No subprocess should run for an empty name list.
	d := Filt{Path: filepath.Join(t.TempDir(), "never-executed")}
	out, err := d.Demangle(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("out = %v", out)
	}
}

func TestNative(t *testing.T) {
	out, err := Native{}.Demangle(context.Background(), []string{"_Z4funcv", "plain_c_symbol"})
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != "func()" {
		t.Errorf("out[0] = %q, want func()", out[0])
	}
	if out[1] != "plain_c_symbol" {
		t.Errorf("out[1] = %q, want raw pass-through", out[1])
	}
}

func TestNone(t *testing.T) {
	names := []string{"_Z1av", "x"}
	out, err := None{}.Demangle(context.Background(), names)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0] != "_Z1av" || out[1] != "x" {
		t.Fatalf("out = %v", out)
	}
}

func TestResolve(t *testing.T) {
	if _, err := Resolve("bogus", 0); err == nil {
		t.Error("expected error for unknown mode")
	}
	d, err := Resolve("none", 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := d.(None); !ok {
		t.Errorf("Resolve(none) = %T", d)
	}
	d, err = Resolve("native", 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := d.(Native); !ok {
		t.Errorf("Resolve(native) = %T", d)
	}
	d, err = Resolve("auto", 0)
	if err != nil {
		t.Fatal(err)
	}
	if d == nil {
		t.Error("Resolve(auto) returned nil demangler")
	}
}
