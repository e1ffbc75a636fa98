package opcode

import "fmt"

// Instruction is one parsed VM line. It is produced by the parser, read by
// the code generator and never modified in between.
type Instruction struct {
	Opcode Opcode

	// Segment and Value are set for push/pop. Value is also the locals
	// count of function and the argument count of call.
	Segment  Segment
	Value    int
	HasValue bool

	// Label is the target of label, goto and if-goto.
	Label string

	// FunctionName is the declared or called function. For return it is
	// the enclosing function.
	FunctionName string

	// Caller is the function enclosing the line, empty at file level.
	Caller string

	SourceFile string
	LineNumber int
	SourceText string

	// Error is non-empty when the line failed validation.
	Error string
}

// Category derives the instruction's category from its opcode.
func (i *Instruction) Category() Category {
	return i.Opcode.Category()
}

// Valid reports whether the instruction passed validation.
func (i *Instruction) Valid() bool {
	return i.Error == ""
}

// String renders the instruction in canonical VM syntax.
func (i *Instruction) String() string {
	switch i.Category() {
	case CategoryArithmetic:
		return i.Opcode.String()
	case CategoryStack:
		return fmt.Sprintf("%s %s %d", i.Opcode, i.Segment, i.Value)
	case CategoryBranching:
		return fmt.Sprintf("%s %s", i.Opcode, i.Label)
	case CategoryFunction:
		if i.Opcode == OpReturn {
			return i.Opcode.String()
		}
		return fmt.Sprintf("%s %s %d", i.Opcode, i.FunctionName, i.Value)
	default:
		return i.SourceText
	}
}
