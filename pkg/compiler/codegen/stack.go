package codegen

import (
	"github.com/zurustar/hackvm/pkg/asm"
	"github.com/zurustar/hackvm/pkg/opcode"
)

// generatePush loads the segment cell into D and pushes it.
func (g *Generator) generatePush(b *asm.Builder, inst *opcode.Instruction) {
	switch inst.Segment.Addressing() {
	case opcode.AddressingImmediate:
		loadConstant(b, inst.Value)
	case opcode.AddressingIndirect:
		b.At(inst.Segment.BaseRegister()).Set(asm.DestD, asm.CompM)
		addOffset(b, asm.DestA, inst.Value)
		b.Set(asm.DestD, asm.CompM)
	case opcode.AddressingFixedBase:
		b.AtInt(asm.TempBase+inst.Value).Set(asm.DestD, asm.CompM)
	case opcode.AddressingDirectAlias:
		b.At(opcode.PointerCell(inst.Value)).Set(asm.DestD, asm.CompM)
	case opcode.AddressingFileGlobal:
		b.At(staticSymbol(inst.SourceFile, inst.Value)).Set(asm.DestD, asm.CompM)
	default:
		return
	}
	pushD(b)
}

// generatePop pops into the segment cell. For indirect segments the target
// address is computed into R13 before SP is touched.
func (g *Generator) generatePop(b *asm.Builder, inst *opcode.Instruction) {
	switch inst.Segment.Addressing() {
	case opcode.AddressingIndirect:
		b.At(inst.Segment.BaseRegister()).Set(asm.DestD, asm.CompM)
		addOffset(b, asm.DestD, inst.Value)
		b.At(asm.R13).Set(asm.DestM, asm.CompD)
		popD(b)
		b.At(asm.R13).Set(asm.DestA, asm.CompM).Set(asm.DestM, asm.CompD)
	case opcode.AddressingFixedBase:
		popD(b)
		b.AtInt(asm.TempBase+inst.Value).Set(asm.DestM, asm.CompD)
	case opcode.AddressingDirectAlias:
		popD(b)
		b.At(opcode.PointerCell(inst.Value)).Set(asm.DestM, asm.CompD)
	case opcode.AddressingFileGlobal:
		popD(b)
		b.At(staticSymbol(inst.SourceFile, inst.Value)).Set(asm.DestM, asm.CompD)
	case opcode.AddressingImmediate:
		// rejected by the parser; discard the value
		popD(b)
	}
}

var binaryComps = map[opcode.Opcode]asm.Comp{
	opcode.OpAdd: asm.CompDPlusM,
	opcode.OpSub: asm.CompMMinusD,
	opcode.OpAnd: asm.CompDAndM,
	opcode.OpOr:  asm.CompDOrM,
}

var unaryComps = map[opcode.Opcode]asm.Comp{
	opcode.OpNeg: asm.CompNegM,
	opcode.OpNot: asm.CompNotM,
}

var comparisonJumps = map[opcode.Opcode]asm.Jump{
	opcode.OpEq: asm.JEQ,
	opcode.OpGt: asm.JGT,
	opcode.OpLt: asm.JLT,
}

// generateArithmetic pops y, then combines it with x in place, which leaves
// exactly one result where x was.
func (g *Generator) generateArithmetic(b *asm.Builder, inst *opcode.Instruction) {
	if comp, ok := binaryComps[inst.Opcode]; ok {
		popD(b)
		b.Set(asm.DestA, asm.CompAMinus1).Set(asm.DestM, comp)
		return
	}
	if comp, ok := unaryComps[inst.Opcode]; ok {
		b.At(asm.SP).Set(asm.DestA, asm.CompMMinus1).Set(asm.DestM, comp)
		return
	}
	if inst.Opcode.IsComparison() {
		jump := comparisonJumps[inst.Opcode]
		label := comparisonLabel(inst)
		popD(b)
		b.Set(asm.DestA, asm.CompAMinus1)
		b.Set(asm.DestD, asm.CompMMinusD)
		b.Set(asm.DestM, asm.CompNegOne)
		b.At(label).Jump(asm.CompD, jump)
		b.At(asm.SP).Set(asm.DestA, asm.CompMMinus1).Set(asm.DestM, asm.CompZero)
		b.Label(label)
	}
}
