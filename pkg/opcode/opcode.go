// Package opcode defines the instruction set of the stack-based VM language.
// This package is the foundation that both the parser and the code generator
// depend on: the parser produces Instructions, the code generator consumes them.
package opcode

import "strings"

// Opcode identifies a VM command.
type Opcode int

// VM commands. OpUnknown is the zero value and marks an unrecognised token.
const (
	OpUnknown Opcode = iota

	// OpAdd pops y then x and pushes x+y.
	OpAdd
	// OpSub pops y then x and pushes x-y.
	OpSub
	// OpNeg replaces the top of the stack with its negation.
	OpNeg
	// OpEq pops y then x and pushes true (-1) if x == y, else false (0).
	OpEq
	// OpGt pops y then x and pushes true if x > y.
	OpGt
	// OpLt pops y then x and pushes true if x < y.
	OpLt
	// OpAnd pops y then x and pushes the bitwise x&y.
	OpAnd
	// OpOr pops y then x and pushes the bitwise x|y.
	OpOr
	// OpNot replaces the top of the stack with its bitwise complement.
	OpNot

	// OpPush pushes segment[value].
	// Args: segment, value
	OpPush
	// OpPop pops into segment[value].
	// Args: segment, value
	OpPop

	// OpLabel marks a jump target inside the current file.
	// Args: label
	OpLabel
	// OpGoto jumps unconditionally.
	// Args: label
	OpGoto
	// OpIfGoto pops a value and jumps if it is not false.
	// Args: label
	OpIfGoto

	// OpFunction declares a function and its number of locals.
	// Args: name, locals
	OpFunction
	// OpCall calls a function after its arguments have been pushed.
	// Args: name, arguments
	OpCall
	// OpReturn returns to the caller of the enclosing function.
	OpReturn
)

// Category groups opcodes by the fields they require.
type Category int

const (
	CategoryUnrecognised Category = iota
	CategoryArithmetic            // arithmetic and logical commands
	CategoryStack
	CategoryBranching
	CategoryFunction
)

var opcodeNames = map[Opcode]string{
	OpAdd:      "add",
	OpSub:      "sub",
	OpNeg:      "neg",
	OpEq:       "eq",
	OpGt:       "gt",
	OpLt:       "lt",
	OpAnd:      "and",
	OpOr:       "or",
	OpNot:      "not",
	OpPush:     "push",
	OpPop:      "pop",
	OpLabel:    "label",
	OpGoto:     "goto",
	OpIfGoto:   "if-goto",
	OpFunction: "function",
	OpCall:     "call",
	OpReturn:   "return",
}

// lookup maps lower-cased spellings to opcodes. "ifgoto" is accepted
// alongside "if-goto".
var lookup = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames)+1)
	for op, name := range opcodeNames {
		m[name] = op
	}
	m["ifgoto"] = OpIfGoto
	return m
}()

// String returns the canonical VM spelling of the opcode.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Lookup matches a token against the opcode set, ignoring case.
// It returns OpUnknown if nothing matches.
func Lookup(token string) Opcode {
	if op, ok := lookup[strings.ToLower(token)]; ok {
		return op
	}
	return OpUnknown
}

// Category derives the opcode's category. Every opcode must be listed here;
// TestEveryOpcodeHasACategory fails when one is added without a case.
func (o Opcode) Category() Category {
	switch o {
	case OpAdd, OpSub, OpNeg, OpEq, OpGt, OpLt, OpAnd, OpOr, OpNot:
		return CategoryArithmetic
	case OpPush, OpPop:
		return CategoryStack
	case OpLabel, OpGoto, OpIfGoto:
		return CategoryBranching
	case OpFunction, OpCall, OpReturn:
		return CategoryFunction
	case OpUnknown:
		return CategoryUnrecognised
	default:
		return CategoryUnrecognised
	}
}

// IsComparison reports whether the opcode is eq, gt or lt.
func (o Opcode) IsComparison() bool {
	return o == OpEq || o == OpGt || o == OpLt
}

// String returns a readable category name.
func (c Category) String() string {
	switch c {
	case CategoryArithmetic:
		return "arithmetic"
	case CategoryStack:
		return "stack"
	case CategoryBranching:
		return "branching"
	case CategoryFunction:
		return "function"
	default:
		return "unrecognised"
	}
}

// All returns every known opcode in declaration order.
func All() []Opcode {
	ops := make([]Opcode, 0, OpReturn)
	for op := OpAdd; op <= OpReturn; op++ {
		ops = append(ops, op)
	}
	return ops
}
