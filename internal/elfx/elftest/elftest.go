// Package elftest assembles minimal ELF images in memory for tests.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
)

// Sym is a symbol-table entry to encode.
type Sym struct {
	Name string
	Size uint64
}

type section struct {
	name     string
	typ      elf.SectionType
	link     uint32
	entsize  uint64
	size     uint64 // declared size; len(data) when 0
	data     []byte
	syms     []Sym
	autoLink bool // link to the shared string table
}

// Builder accumulates sections for one synthetic image.
type Builder struct {
	class   elf.Class
	machine elf.Machine
	secs    []*section
}

// New64 starts a little-endian 64-bit shared-object image.
func New64(machine elf.Machine) *Builder {
	return &Builder{class: elf.ELFCLASS64, machine: machine}
}

// New32 starts a little-endian 32-bit shared-object image.
func New32(machine elf.Machine) *Builder {
	return &Builder{class: elf.ELFCLASS32, machine: machine}
}

// Symtab appends a symbol-table section. Entries are encoded at build time
// and the section links to the image's shared string table.
func (b *Builder) Symtab(name string, typ elf.SectionType, syms ...Sym) *Builder {
	entsize := uint64(24)
	if b.class == elf.ELFCLASS32 {
		entsize = 16
	}
	b.secs = append(b.secs, &section{
		name:     name,
		typ:      typ,
		entsize:  entsize,
		syms:     syms,
		autoLink: true,
	})
	return b
}

// Section appends a section with the given declared size and zero-filled
// contents.
func (b *Builder) Section(name string, typ elf.SectionType, size uint64) *Builder {
	b.secs = append(b.secs, &section{name: name, typ: typ, size: size})
	return b
}

// Raw appends a section with explicit contents and link, for malformed
// fixtures.
func (b *Builder) Raw(name string, typ elf.SectionType, link uint32, data []byte) *Builder {
	b.secs = append(b.secs, &section{name: name, typ: typ, link: link, data: data})
	return b
}

// Build assembles the image. The shared string table holding section and
// symbol names is appended last and named ".strtab", keeping the fixture's
// own bookkeeping out of the string accounting under test.
func (b *Builder) Build() []byte {
	// Intern all names up front so symbol entries can be encoded.
	strtab := []byte{0}
	offsets := map[string]uint32{"": 0}
	intern := func(s string) uint32 {
		if off, ok := offsets[s]; ok {
			return off
		}
		off := uint32(len(strtab))
		strtab = append(strtab, s...)
		strtab = append(strtab, 0)
		offsets[s] = off
		return off
	}
	for _, s := range b.secs {
		intern(s.name)
		for _, sym := range s.syms {
			intern(sym.Name)
		}
	}
	intern(".strtab")

	strtabIdx := uint32(len(b.secs) + 1) // after the NULL section

	// Encode symbol tables now that name offsets are known.
	le := binary.LittleEndian
	for _, s := range b.secs {
		if s.autoLink {
			s.link = strtabIdx
		}
		if s.syms == nil {
			continue
		}
		var buf bytes.Buffer
		for _, sym := range s.syms {
			if b.class == elf.ELFCLASS32 {
				var e [16]byte
				le.PutUint32(e[0:4], offsets[sym.Name])
				le.PutUint32(e[8:12], uint32(sym.Size))
				buf.Write(e[:])
			} else {
				var e [24]byte
				le.PutUint32(e[0:4], offsets[sym.Name])
				le.PutUint64(e[16:24], sym.Size)
				buf.Write(e[:])
			}
		}
		s.data = buf.Bytes()
	}

	all := append(append([]*section{}, b.secs...), &section{
		name: ".strtab",
		typ:  elf.SHT_STRTAB,
		data: strtab,
	})

	ehsize, shentsize := 64, 64
	if b.class == elf.ELFCLASS32 {
		ehsize, shentsize = 52, 40
	}

	// Lay out section contents after the header.
	type placed struct {
		*section
		off  uint64
		size uint64
	}
	var img bytes.Buffer
	img.Write(make([]byte, ehsize)) // patched below
	var laid []placed
	for _, s := range all {
		data := s.data
		if data == nil && s.size > 0 {
			data = make([]byte, s.size)
		}
		declared := s.size
		if declared == 0 {
			declared = uint64(len(data))
		}
		laid = append(laid, placed{section: s, off: uint64(img.Len()), size: declared})
		img.Write(data)
	}
	for img.Len()%8 != 0 {
		img.WriteByte(0)
	}
	shoff := uint64(img.Len())

	writeShdr := func(nameOff uint32, s placed) {
		if b.class == elf.ELFCLASS32 {
			var h [40]byte
			le.PutUint32(h[0:4], nameOff)
			le.PutUint32(h[4:8], uint32(s.typ))
			le.PutUint32(h[16:20], uint32(s.off))
			le.PutUint32(h[20:24], uint32(s.size))
			le.PutUint32(h[24:28], s.link)
			le.PutUint32(h[36:40], uint32(s.entsize))
			img.Write(h[:])
			return
		}
		var h [64]byte
		le.PutUint32(h[0:4], nameOff)
		le.PutUint32(h[4:8], uint32(s.typ))
		le.PutUint64(h[24:32], s.off)
		le.PutUint64(h[32:40], s.size)
		le.PutUint32(h[40:44], s.link)
		le.PutUint64(h[56:64], s.entsize)
		img.Write(h[:])
	}

	img.Write(make([]byte, shentsize)) // NULL section header
	for _, s := range laid {
		writeShdr(offsets[s.name], s)
	}

	out := img.Bytes()
	shnum := len(laid) + 1

	// Patch the ELF header in place.
	copy(out[0:4], "\x7fELF")
	out[4] = byte(b.class)
	out[5] = byte(elf.ELFDATA2LSB)
	out[6] = byte(elf.EV_CURRENT)
	le.PutUint16(out[16:18], uint16(elf.ET_DYN))
	le.PutUint16(out[18:20], uint16(b.machine))
	le.PutUint32(out[20:24], uint32(elf.EV_CURRENT))
	if b.class == elf.ELFCLASS32 {
		le.PutUint32(out[32:36], uint32(shoff))
		le.PutUint16(out[40:42], uint16(ehsize))
		le.PutUint16(out[46:48], uint16(shentsize))
		le.PutUint16(out[48:50], uint16(shnum))
		le.PutUint16(out[50:52], uint16(strtabIdx))
	} else {
		le.PutUint64(out[40:48], shoff)
		le.PutUint16(out[52:54], uint16(ehsize))
		le.PutUint16(out[58:60], uint16(shentsize))
		le.PutUint16(out[60:62], uint16(shnum))
		le.PutUint16(out[62:64], uint16(strtabIdx))
	}
	return out
}
