package elfx

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ndksize/internal/elfx/elftest"
)

func openImage(t *testing.T, img []byte) *File {
	t.Helper()
	f, err := New(bytes.NewReader(img), int64(len(img)))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.so"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestOpenRejectsNonELF(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "notelf")
	if err := os.WriteFile(tmp, []byte("not an ELF file at all"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(tmp)
	if !errors.Is(err, ErrNotELF) {
		t.Fatalf("err = %v, want ErrNotELF", err)
	}
}

func TestOpenValid(t *testing.T) {
	img := elftest.New64(elf.EM_AARCH64).
		Section(".rodata", elf.SHT_PROGBITS, 64).
		Build()
	tmp := filepath.Join(t.TempDir(), "lib.so")
	if err := os.WriteFile(tmp, img, 0644); err != nil {
		t.Fatal(err)
	}

	f, err := Open(tmp)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if f.FileSize() != int64(len(img)) {
		t.Errorf("FileSize = %d, want %d", f.FileSize(), len(img))
	}
	if f.Architecture() != ArchARM64 {
		t.Errorf("Architecture = %v, want ARM64", f.Architecture())
	}
	if f.ELF.Section(".rodata") == nil {
		t.Error("missing .rodata section")
	}
}

func TestSymbols64(t *testing.T) {
	img := elftest.New64(elf.EM_AARCH64).
		Symtab(".symtab", elf.SHT_SYMTAB,
			elftest.Sym{},              // reserved null entry
			elftest.Sym{Name: "_Z3foov", Size: 100},
			elftest.Sym{Name: "", Size: 8}, // sized but nameless
			elftest.Sym{Name: "bar", Size: 0},
		).
		Build()
	f := openImage(t, img)

	syms, err := f.Symbols(f.ELF.Section(".symtab"))
	if err != nil {
		t.Fatal(err)
	}
	want := []Sym{{}, {Name: "_Z3foov", Size: 100}, {Name: "", Size: 8}, {Name: "bar", Size: 0}}
	if len(syms) != len(want) {
		t.Fatalf("got %d symbols, want %d", len(syms), len(want))
	}
	for i, s := range syms {
		if s != want[i] {
			t.Errorf("symbol %d = %+v, want %+v", i, s, want[i])
		}
	}
}

func TestSymbols32(t *testing.T) {
	img := elftest.New32(elf.EM_ARM).
		Symtab(".dynsym", elf.SHT_DYNSYM,
			elftest.Sym{},
			elftest.Sym{Name: "mul", Size: 48},
		).
		Build()
	f := openImage(t, img)

	if f.Architecture() != ArchARM32 {
		t.Fatalf("Architecture = %v, want ARM32", f.Architecture())
	}
	syms, err := f.Symbols(f.ELF.Section(".dynsym"))
	if err != nil {
		t.Fatal(err)
	}
	if len(syms) != 2 || syms[1].Name != "mul" || syms[1].Size != 48 {
		t.Fatalf("syms = %+v", syms)
	}
}

func TestSymbolsTruncated(t *testing.T) {
	// 23 bytes is not a whole Elf64_Sym. The shared string table lands at
	// index 2, after the NULL section and this one.
	img := elftest.New64(elf.EM_AARCH64).
		Raw(".symtab", elf.SHT_SYMTAB, 2, make([]byte, 23)).
		Build()
	f := openImage(t, img)

	_, err := f.Symbols(f.ELF.Section(".symtab"))
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("err = %v, want ErrTruncated", err)
	}
}

func TestSymbolsBadNameOffset(t *testing.T) {
	entry := make([]byte, 24)
	binary.LittleEndian.PutUint32(entry[0:4], 9999)
	img := elftest.New64(elf.EM_AARCH64).
		Raw(".symtab", elf.SHT_SYMTAB, 2, entry).
		Build()
	f := openImage(t, img)

	_, err := f.Symbols(f.ELF.Section(".symtab"))
	if !errors.Is(err, ErrBadName) {
		t.Fatalf("err = %v, want ErrBadName", err)
	}
}

func TestSymbolsBadLink(t *testing.T) {
	img := elftest.New64(elf.EM_AARCH64).
		Raw(".symtab", elf.SHT_SYMTAB, 99, make([]byte, 24)).
		Build()
	f := openImage(t, img)

	_, err := f.Symbols(f.ELF.Section(".symtab"))
	if !errors.Is(err, ErrBadLink) {
		t.Fatalf("err = %v, want ErrBadLink", err)
	}
}

func FuzzOpen(f *testing.F) {
	f.Add(elftest.New64(elf.EM_AARCH64).
		Symtab(".symtab", elf.SHT_SYMTAB, elftest.Sym{Name: "f", Size: 4}).
		Section(".rodata", elf.SHT_PROGBITS, 16).
		Build())
	f.Add([]byte("\x7fELF\x02\x01\x01\x00\x00\x00\x00\x00\x00\x00\x00\x00"))
	f.Add([]byte("not an elf at all"))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		ef, err := New(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return // expected for most inputs
		}
		defer ef.Close()
		ef.Architecture()
		ef.FileSize()
		for _, s := range ef.ELF.Sections {
			if IsSymtab(s) {
				ef.Symbols(s) // must not panic, errors are fine
			}
		}
	})
}
