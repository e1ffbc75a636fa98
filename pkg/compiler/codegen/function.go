package codegen

import (
	"github.com/zurustar/hackvm/pkg/asm"
	"github.com/zurustar/hackvm/pkg/opcode"
)

// savedRegisters is the order in which call pushes the caller's frame.
// return restores them in reverse.
var savedRegisters = []string{asm.LCL, asm.ARG, asm.THIS, asm.THAT}

func (g *Generator) generateBranching(b *asm.Builder, inst *opcode.Instruction) {
	target := fileLabel(inst.SourceFile, inst.Label)
	switch inst.Opcode {
	case opcode.OpLabel:
		b.Label(target)
	case opcode.OpGoto:
		b.At(target).Jump(asm.CompZero, asm.JMP)
	case opcode.OpIfGoto:
		popD(b)
		b.At(target).Jump(asm.CompD, asm.JNE)
	}
}

// generateFunction emits the entry label and zeroes the locals. More than
// one local uses a counting loop rather than unrolled pushes.
func (g *Generator) generateFunction(b *asm.Builder, inst *opcode.Instruction) {
	b.Label(inst.FunctionName)
	switch {
	case inst.Value == 1:
		pushZero(b)
	case inst.Value > 1:
		loop := initLabel(inst.FunctionName)
		b.AtInt(inst.Value).Set(asm.DestD, asm.CompA)
		b.Label(loop)
		pushZero(b)
		b.Set(asm.DestD, asm.CompDMinus1)
		b.At(loop).Jump(asm.CompD, asm.JNE)
	}
}

// generateCall pushes the return address and the caller's frame, moves ARG
// and LCL to the callee's view and jumps.
func (g *Generator) generateCall(b *asm.Builder, inst *opcode.Instruction) {
	ret := returnLabel(inst)

	b.At(ret).Set(asm.DestD, asm.CompA)
	pushD(b)
	for _, reg := range savedRegisters {
		b.At(reg).Set(asm.DestD, asm.CompM)
		pushD(b)
	}

	// ARG = SP - 5 - nArgs
	b.At(asm.SP).Set(asm.DestD, asm.CompM)
	b.AtInt(asm.FrameSize+inst.Value).Set(asm.DestD, asm.CompDMinusA)
	b.At(asm.ARG).Set(asm.DestM, asm.CompD)
	// LCL = SP
	b.At(asm.SP).Set(asm.DestD, asm.CompM)
	b.At(asm.LCL).Set(asm.DestM, asm.CompD)

	b.At(inst.FunctionName).Jump(asm.CompZero, asm.JMP)
	b.Label(ret)
}

// generateReturn unwinds the frame found below LCL. The return address is
// read before the return value is stored, because with no arguments ARG[0]
// and the saved return address share a cell.
func (g *Generator) generateReturn(b *asm.Builder) {
	// R13 = frame
	b.At(asm.LCL).Set(asm.DestD, asm.CompM)
	b.At(asm.R13).Set(asm.DestM, asm.CompD)
	// R14 = RAM[frame-5]
	b.AtInt(asm.FrameSize).Set(asm.DestA, asm.CompDMinusA).Set(asm.DestD, asm.CompM)
	b.At(asm.R14).Set(asm.DestM, asm.CompD)
	// RAM[ARG] = pop()
	popD(b)
	b.At(asm.ARG).Set(asm.DestA, asm.CompM).Set(asm.DestM, asm.CompD)
	// SP = ARG + 1
	b.At(asm.ARG).Set(asm.DestD, asm.CompMPlus1)
	b.At(asm.SP).Set(asm.DestM, asm.CompD)

	for i := len(savedRegisters) - 1; i >= 0; i-- {
		b.At(asm.R13).Set(asm.DestAM, asm.CompMMinus1).Set(asm.DestD, asm.CompM)
		b.At(savedRegisters[i]).Set(asm.DestM, asm.CompD)
	}

	b.At(asm.R14).Set(asm.DestA, asm.CompM).Jump(asm.CompZero, asm.JMP)
}
