package elfx

import "debug/elf"

// Architecture identifies the CPU target of an analyzed library.
type Architecture int

const (
	ArchUnknown Architecture = iota
	ArchARM32
	ArchARM64
	ArchX86_32
	ArchX86_64
)

func (a Architecture) String() string {
	switch a {
	case ArchARM32:
		return "ARM32"
	case ArchARM64:
		return "ARM64"
	case ArchX86_32:
		return "X86_32"
	case ArchX86_64:
		return "X86_64"
	}
	return "Unknown"
}

// MarshalText renders the architecture label for JSON output.
func (a Architecture) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Classify maps the ELF header's bit class and machine type to an
// Architecture. Total over its inputs: any combination outside the NDK
// targets is ArchUnknown, never an error.
func Classify(class elf.Class, machine elf.Machine) Architecture {
	arm := machine == elf.EM_ARM || machine == elf.EM_AARCH64
	x86 := machine == elf.EM_386 || machine == elf.EM_X86_64

	switch class {
	case elf.ELFCLASS64:
		switch {
		case arm:
			return ArchARM64
		case x86:
			return ArchX86_64
		}
	case elf.ELFCLASS32:
		switch {
		case arm:
			return ArchARM32
		case x86:
			return ArchX86_32
		}
	}
	return ArchUnknown
}
