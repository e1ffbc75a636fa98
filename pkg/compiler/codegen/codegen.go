// Package codegen translates VM instructions into Hack assembly.
//
// Translation is a pure function of one Instruction: every label the
// generated code defines is derived from the instruction's source file,
// line number and names, never from a counter.
package codegen

import (
	"github.com/zurustar/hackvm/pkg/asm"
	"github.com/zurustar/hackvm/pkg/opcode"
)

// BootstrapFile is the source file stamped on the synthetic Sys.init call.
const BootstrapFile = "Bootstrap"

// Generator converts Instructions to assembly blocks.
type Generator struct{}

// New creates a new code generator.
func New() *Generator {
	return &Generator{}
}

// Generate translates the instructions in order and concatenates the blocks.
func (g *Generator) Generate(insts []*opcode.Instruction) string {
	var out asm.Block
	for _, inst := range insts {
		out = append(out, g.Block(inst)...)
	}
	return out.String()
}

// Translate returns the assembly text for one instruction. Unrecognised
// or missing instructions produce no output.
func (g *Generator) Translate(inst *opcode.Instruction) string {
	return g.Block(inst).String()
}

// Block returns the structured assembly for one instruction, prefixed by a
// comment echoing its source text.
func (g *Generator) Block(inst *opcode.Instruction) asm.Block {
	if inst == nil {
		return nil
	}

	b := asm.NewBuilder()
	if inst.SourceText != "" {
		b.Comment(inst.SourceText)
	}

	switch inst.Category() {
	case opcode.CategoryArithmetic:
		g.generateArithmetic(b, inst)
	case opcode.CategoryStack:
		if inst.Opcode == opcode.OpPush {
			g.generatePush(b, inst)
		} else {
			g.generatePop(b, inst)
		}
	case opcode.CategoryBranching:
		g.generateBranching(b, inst)
	case opcode.CategoryFunction:
		switch inst.Opcode {
		case opcode.OpFunction:
			g.generateFunction(b, inst)
		case opcode.OpCall:
			g.generateCall(b, inst)
		case opcode.OpReturn:
			g.generateReturn(b)
		}
	default:
		return nil
	}
	return b.Block()
}

// Bootstrap returns the program preamble: SP = 256, then call Sys.init.
func (g *Generator) Bootstrap() asm.Block {
	b := asm.NewBuilder()
	b.AtInt(asm.StackBase).Set(asm.DestD, asm.CompA)
	b.At(asm.SP).Set(asm.DestM, asm.CompD)
	g.generateCall(b, &opcode.Instruction{
		Opcode:       opcode.OpCall,
		FunctionName: asm.EntryPoint,
		HasValue:     true,
		SourceFile:   BootstrapFile,
	})
	return b.Block()
}

// pushD stores D at RAM[SP] and increments SP.
func pushD(b *asm.Builder) {
	b.At(asm.SP).Set(asm.DestA, asm.CompM).Set(asm.DestM, asm.CompD)
	b.At(asm.SP).Set(asm.DestM, asm.CompMPlus1)
}

// popD decrements SP, then loads RAM[SP] into D. A is left at the popped cell.
func popD(b *asm.Builder) {
	b.At(asm.SP).Set(asm.DestAM, asm.CompMMinus1).Set(asm.DestD, asm.CompM)
}

// pushZero pushes 0 without touching D.
func pushZero(b *asm.Builder) {
	b.At(asm.SP).Set(asm.DestA, asm.CompM).Set(asm.DestM, asm.CompZero)
	b.At(asm.SP).Set(asm.DestM, asm.CompMPlus1)
}

// addOffset adds a signed literal to D and stores the sum in dest.
func addOffset(b *asm.Builder, dest asm.Dest, offset int) {
	if offset < 0 {
		b.AtInt(-offset).Set(dest, asm.CompDMinusA)
		return
	}
	b.AtInt(offset).Set(dest, asm.CompDPlusA)
}

// loadConstant sets D to a signed literal.
func loadConstant(b *asm.Builder, value int) {
	if value < 0 {
		b.AtInt(-value).Set(asm.DestD, asm.CompNegA)
		return
	}
	b.AtInt(value).Set(asm.DestD, asm.CompA)
}
