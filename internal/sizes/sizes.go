// Package sizes accounts how a shared library's bytes are distributed
// among machine-code symbols, string data, and read-only constants.
package sizes

import (
	"context"
	"debug/elf"
	"fmt"
	"sort"

	"ndksize/internal/elfx"
)

// debugStrtab is the symbol-name string table emitted for unstripped debug
// builds. Its size is excluded because it does not ship in a stripped
// release library. The check is literal by name; other naming conventions
// are not matched.
const debugStrtab = ".strtab"

// constData is the only section counted as constant data. Variants such as
// .rodata.cst8 or .data.rel.ro are deliberately not matched.
const constData = ".rodata"

// DefaultTopCount is the number of ranked symbols reported when the caller
// does not ask for a specific count.
const DefaultTopCount = 200

// Symbol is one symbol-table entry retained for ranking. Name holds the
// raw mangled name until demangling replaces it.
type Symbol struct {
	Name string `json:"name"`
	Size uint64 `json:"size"`
}

// Accounting holds the running totals of one scan. A fresh value is
// created per run and owned by the single analysis pass.
type Accounting struct {
	TotalSymbolSize   uint64 `json:"total_symbol_size"`
	TotalStringSize   uint64 `json:"total_string_size"`
	TotalConstantSize uint64 `json:"total_constant_size"`
}

// Progress is called after each symbol processed in a symbol-table
// section, so a caller can drive a progress display without the scan
// knowing about presentation.
type Progress func(section string, done, total int)

// ScanResult is the outcome of one section walk.
type ScanResult struct {
	Accounting
	Symbols []Symbol // every entry with Size > 0, in encounter order
}

// Bucket names the accounting bucket a section lands in: "symbols",
// "strings", "constants", or "" for sections outside the accounting.
func Bucket(s *elf.Section) string {
	switch {
	case elfx.IsSymtab(s):
		return "symbols"
	case s.Type == elf.SHT_STRTAB:
		if s.Name == debugStrtab {
			return ""
		}
		return "strings"
	case s.Name == constData:
		return "constants"
	}
	return ""
}

// Scan walks the sections of f in file order and accumulates size totals.
// Every symbol-table section is processed; zero-size symbols count toward
// the total but are not retained for ranking. Structural errors abort the
// scan with no partial result.
func Scan(ctx context.Context, f *elfx.File, progress Progress) (*ScanResult, error) {
	res := &ScanResult{}
	for _, s := range f.ELF.Sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch {
		case elfx.IsSymtab(s):
			syms, err := f.Symbols(s)
			if err != nil {
				return nil, fmt.Errorf("sizes: %w", err)
			}
			for i, sym := range syms {
				res.TotalSymbolSize += sym.Size
				if sym.Size > 0 {
					res.Symbols = append(res.Symbols, Symbol{Name: sym.Name, Size: sym.Size})
				}
				if progress != nil {
					progress(s.Name, i+1, len(syms))
				}
			}
		case s.Type == elf.SHT_STRTAB:
			if s.Name == debugStrtab {
				continue
			}
			res.TotalStringSize += s.Size
		case s.Name == constData:
			res.TotalConstantSize += s.Size
		}
	}
	return res, nil
}

// TopN returns the n largest symbols, stable-sorted descending by size so
// equal sizes keep their encounter order. The input is not modified.
func TopN(symbols []Symbol, n int) []Symbol {
	if n < 0 {
		n = 0
	}
	top := make([]Symbol, len(symbols))
	copy(top, symbols)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Size > top[j].Size })
	if len(top) > n {
		top = top[:n]
	}
	return top
}
