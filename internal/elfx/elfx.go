// Package elfx provides ELF loading helpers for NDK shared-library size
// analysis.
package elfx

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrNotELF    = errors.New("elfx: not an ELF file")
	ErrTruncated = errors.New("elfx: truncated symbol table")
	ErrBadName   = errors.New("elfx: symbol name out of range")
	ErrBadLink   = errors.New("elfx: invalid string table link")
)

// File wraps a debug/elf.File with what the size accounting needs.
type File struct {
	ELF    *elf.File
	closer io.Closer
	size   int64
}

// Open opens path and validates it parses as ELF.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("elfx: open: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("elfx: stat: %w", err)
	}

	ef, err := elf.NewFile(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrNotELF, err)
	}

	return &File{ELF: ef, closer: f, size: info.Size()}, nil
}

// New wraps an in-memory ELF image.
func New(r io.ReaderAt, size int64) (*File, error) {
	ef, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotELF, err)
	}
	return &File{ELF: ef, size: size}, nil
}

// Close releases resources.
func (f *File) Close() error {
	err := f.ELF.Close()
	if f.closer != nil {
		if cerr := f.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// FileSize returns the size of the underlying file.
func (f *File) FileSize() int64 { return f.size }

// Architecture classifies the file's target CPU.
func (f *File) Architecture() Architecture {
	return Classify(f.ELF.Class, f.ELF.Machine)
}

// IsSymtab reports whether s holds symbol-table entries.
func IsSymtab(s *elf.Section) bool {
	return s.Type == elf.SHT_SYMTAB || s.Type == elf.SHT_DYNSYM
}

// Sym is one decoded symbol-table entry. Name may be empty.
type Sym struct {
	Name string
	Size uint64
}

// Symbols decodes every entry of the given symbol-table section, including
// the reserved index-0 entry. Truncated entries and out-of-range name
// offsets are structural errors; there is no partial recovery.
func (f *File) Symbols(s *elf.Section) ([]Sym, error) {
	data, err := s.Data()
	if err != nil {
		return nil, fmt.Errorf("elfx: read %s: %w", s.Name, err)
	}
	strs, err := f.linkedStrings(s)
	if err != nil {
		return nil, err
	}

	entsize := 24 // Elf64_Sym
	if f.ELF.Class == elf.ELFCLASS32 {
		entsize = 16 // Elf32_Sym
	}
	if len(data)%entsize != 0 {
		return nil, fmt.Errorf("%w: %s is %d bytes, entry size %d",
			ErrTruncated, s.Name, len(data), entsize)
	}

	bo := f.ELF.ByteOrder
	syms := make([]Sym, 0, len(data)/entsize)
	for off := 0; off < len(data); off += entsize {
		e := data[off : off+entsize]
		nameOff := bo.Uint32(e[0:4])
		var size uint64
		if f.ELF.Class == elf.ELFCLASS32 {
			size = uint64(bo.Uint32(e[8:12]))
		} else {
			size = bo.Uint64(e[16:24])
		}
		name, err := getString(strs, nameOff)
		if err != nil {
			return nil, fmt.Errorf("%w (section %s)", err, s.Name)
		}
		syms = append(syms, Sym{Name: name, Size: size})
	}
	return syms, nil
}

// linkedStrings loads the string table the symbol-table section links to.
func (f *File) linkedStrings(s *elf.Section) ([]byte, error) {
	link := int(s.Link)
	if link <= 0 || link >= len(f.ELF.Sections) {
		return nil, fmt.Errorf("%w: %s links to section %d", ErrBadLink, s.Name, link)
	}
	data, err := f.ELF.Sections[link].Data()
	if err != nil {
		return nil, fmt.Errorf("elfx: read string table for %s: %w", s.Name, err)
	}
	return data, nil
}

func getString(strs []byte, off uint32) (string, error) {
	if int64(off) >= int64(len(strs)) {
		return "", fmt.Errorf("%w: offset %d in table of %d bytes", ErrBadName, off, len(strs))
	}
	end := bytes.IndexByte(strs[off:], 0)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated string at offset %d", ErrBadName, off)
	}
	return string(strs[off : int(off)+end]), nil
}
