package opcode

import (
	"strings"

	"github.com/zurustar/hackvm/pkg/asm"
)

// Segment is one of the eight memory segments addressable by push and pop.
type Segment int

const (
	SegmentNone Segment = iota
	SegmentLocal
	SegmentArgument
	SegmentThis
	SegmentThat
	SegmentConstant
	SegmentStatic
	SegmentTemp
	SegmentPointer
)

// Addressing is the strategy used to reach a segment's cells.
type Addressing int

const (
	AddressingNone Addressing = iota
	// AddressingIndirect: RAM[base register] + offset.
	AddressingIndirect
	// AddressingImmediate: the offset itself is the value.
	AddressingImmediate
	// AddressingFixedBase: literal base address + offset.
	AddressingFixedBase
	// AddressingDirectAlias: offset selects one of two register cells.
	AddressingDirectAlias
	// AddressingFileGlobal: a symbol named <file>.<offset>.
	AddressingFileGlobal
)

var segmentNames = map[Segment]string{
	SegmentLocal:    "local",
	SegmentArgument: "argument",
	SegmentThis:     "this",
	SegmentThat:     "that",
	SegmentConstant: "constant",
	SegmentStatic:   "static",
	SegmentTemp:     "temp",
	SegmentPointer:  "pointer",
}

var segmentLookup = func() map[string]Segment {
	m := make(map[string]Segment, len(segmentNames))
	for s, name := range segmentNames {
		m[name] = s
	}
	return m
}()

// LookupSegment matches a token against the segment names, ignoring case.
func LookupSegment(token string) (Segment, bool) {
	s, ok := segmentLookup[strings.ToLower(token)]
	return s, ok
}

// String returns the VM spelling of the segment.
func (s Segment) String() string {
	if name, ok := segmentNames[s]; ok {
		return name
	}
	return ""
}

// Addressing returns how the segment is reached.
func (s Segment) Addressing() Addressing {
	switch s {
	case SegmentLocal, SegmentArgument, SegmentThis, SegmentThat:
		return AddressingIndirect
	case SegmentConstant:
		return AddressingImmediate
	case SegmentTemp:
		return AddressingFixedBase
	case SegmentPointer:
		return AddressingDirectAlias
	case SegmentStatic:
		return AddressingFileGlobal
	default:
		return AddressingNone
	}
}

// BaseRegister returns the register holding the base address of an
// indirectly addressed segment, or "" for the others.
func (s Segment) BaseRegister() string {
	switch s {
	case SegmentLocal:
		return asm.LCL
	case SegmentArgument:
		return asm.ARG
	case SegmentThis:
		return asm.THIS
	case SegmentThat:
		return asm.THAT
	default:
		return ""
	}
}

// PointerCell returns the register aliased by pointer 0 or pointer 1.
func PointerCell(offset int) string {
	if offset == 0 {
		return asm.THIS
	}
	return asm.THAT
}

// Segments returns every segment in declaration order.
func Segments() []Segment {
	return []Segment{
		SegmentLocal, SegmentArgument, SegmentThis, SegmentThat,
		SegmentConstant, SegmentStatic, SegmentTemp, SegmentPointer,
	}
}
