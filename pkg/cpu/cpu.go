// Package cpu assembles and executes Hack assembly. It exists to run the
// translator's output: tests drive it directly and the run command uses it
// to execute a translated program.
package cpu

import (
	"errors"
	"fmt"

	"github.com/zurustar/hackvm/pkg/asm"
)

// ErrStepLimit is returned by Run when the program is still going after
// the allowed number of steps.
var ErrStepLimit = errors.New("step limit reached")

type aluFunc func(d, a, m int16) int16

// alu holds every canonical computation.
var alu = map[asm.Comp]aluFunc{
	asm.CompZero:    func(d, a, m int16) int16 { return 0 },
	asm.CompOne:     func(d, a, m int16) int16 { return 1 },
	asm.CompNegOne:  func(d, a, m int16) int16 { return -1 },
	asm.CompD:       func(d, a, m int16) int16 { return d },
	asm.CompA:       func(d, a, m int16) int16 { return a },
	asm.CompM:       func(d, a, m int16) int16 { return m },
	asm.CompNotD:    func(d, a, m int16) int16 { return ^d },
	asm.CompNotA:    func(d, a, m int16) int16 { return ^a },
	asm.CompNotM:    func(d, a, m int16) int16 { return ^m },
	asm.CompNegD:    func(d, a, m int16) int16 { return -d },
	asm.CompNegA:    func(d, a, m int16) int16 { return -a },
	asm.CompNegM:    func(d, a, m int16) int16 { return -m },
	asm.CompDPlus1:  func(d, a, m int16) int16 { return d + 1 },
	asm.CompAPlus1:  func(d, a, m int16) int16 { return a + 1 },
	asm.CompMPlus1:  func(d, a, m int16) int16 { return m + 1 },
	asm.CompDMinus1: func(d, a, m int16) int16 { return d - 1 },
	asm.CompAMinus1: func(d, a, m int16) int16 { return a - 1 },
	asm.CompMMinus1: func(d, a, m int16) int16 { return m - 1 },
	asm.CompDPlusA:  func(d, a, m int16) int16 { return d + a },
	asm.CompDPlusM:  func(d, a, m int16) int16 { return d + m },
	asm.CompDMinusA: func(d, a, m int16) int16 { return d - a },
	asm.CompDMinusM: func(d, a, m int16) int16 { return d - m },
	asm.CompAMinusD: func(d, a, m int16) int16 { return a - d },
	asm.CompMMinusD: func(d, a, m int16) int16 { return m - d },
	asm.CompDAndA:   func(d, a, m int16) int16 { return d & a },
	asm.CompDAndM:   func(d, a, m int16) int16 { return d & m },
	asm.CompDOrA:    func(d, a, m int16) int16 { return d | a },
	asm.CompDOrM:    func(d, a, m int16) int16 { return d | m },
}

func readsM(c asm.Comp) bool {
	switch c {
	case asm.CompM, asm.CompNotM, asm.CompNegM, asm.CompMPlus1, asm.CompMMinus1,
		asm.CompDPlusM, asm.CompDMinusM, asm.CompMMinusD, asm.CompDAndM, asm.CompDOrM:
		return true
	}
	return false
}

func jumpTaken(j asm.Jump, out int16) bool {
	switch j {
	case asm.JGT:
		return out > 0
	case asm.JEQ:
		return out == 0
	case asm.JGE:
		return out >= 0
	case asm.JLT:
		return out < 0
	case asm.JNE:
		return out != 0
	case asm.JLE:
		return out <= 0
	case asm.JMP:
		return true
	}
	return false
}

// CPU is a Hack computer: 32K words of RAM, a ROM of decoded instructions
// and the A, D and PC registers.
type CPU struct {
	RAM [asm.RAMSize]int16
	A   int16
	D   int16
	PC  int

	program *Program
	halted  bool
}

// New creates a CPU with the program loaded at ROM address 0.
func New(prog *Program) *CPU {
	return &CPU{program: prog}
}

// Load assembles text and returns a CPU ready to run it.
func Load(text string) (*CPU, error) {
	prog, err := Assemble(text)
	if err != nil {
		return nil, err
	}
	return New(prog), nil
}

// Halted reports whether execution has finished, either because PC left
// the ROM or because the program entered a jump-to-self loop.
func (c *CPU) Halted() bool {
	return c.halted || c.PC < 0 || c.PC >= len(c.program.Code)
}

// Symbol returns the address bound to a label or variable.
func (c *CPU) Symbol(name string) (int, bool) {
	addr, ok := c.program.Symbols[name]
	return addr, ok
}

// Peek reads a RAM word.
func (c *CPU) Peek(addr int) int16 {
	return c.RAM[addr]
}

// Poke writes a RAM word.
func (c *CPU) Poke(addr int, value int16) {
	c.RAM[addr] = value
}

// Top returns the word just below the stack pointer.
func (c *CPU) Top() int16 {
	sp := int(c.RAM[0])
	if sp <= 0 || sp > asm.RAMSize {
		return 0
	}
	return c.RAM[sp-1]
}

func (c *CPU) memory(addr int16) (int, error) {
	if addr < 0 {
		return 0, fmt.Errorf("pc %d: memory access at %d", c.PC, addr)
	}
	return int(addr), nil
}

// Step executes one instruction.
func (c *CPU) Step() error {
	if c.Halted() {
		return nil
	}
	pc := c.PC
	inst := c.program.Code[pc]

	if inst.Address {
		c.A = inst.Value
		c.PC++
		return nil
	}

	a := c.A
	var m int16
	if readsM(inst.Comp) {
		addr, err := c.memory(a)
		if err != nil {
			return err
		}
		m = c.RAM[addr]
	}
	out := alu[inst.Comp](c.D, a, m)

	// M is written at the address A held before this instruction.
	if inst.DestM {
		addr, err := c.memory(a)
		if err != nil {
			return err
		}
		c.RAM[addr] = out
	}
	if inst.DestA {
		c.A = out
	}
	if inst.DestD {
		c.D = out
	}

	if !jumpTaken(inst.Jump, out) {
		c.PC++
		return nil
	}
	target := int(a)
	if c.selfLoop(pc, target, inst) {
		c.halted = true
		return nil
	}
	c.PC = target
	return nil
}

// selfLoop detects the conventional halt idiom, (END) @END 0;JMP, and the
// single-instruction form. Both repeat forever without changing state.
func (c *CPU) selfLoop(pc, target int, inst Instruction) bool {
	if inst.DestA || inst.DestD || inst.DestM {
		return false
	}
	if target == pc {
		return true
	}
	if target == pc-1 {
		prev := c.program.Code[target]
		return prev.Address && int(prev.Value) == target
	}
	return false
}

// Run steps until the program halts or maxSteps instructions have run.
// It returns the number of steps executed.
func (c *CPU) Run(maxSteps int) (int, error) {
	steps := 0
	for !c.Halted() {
		if steps >= maxSteps {
			return steps, ErrStepLimit
		}
		if err := c.Step(); err != nil {
			return steps, err
		}
		steps++
	}
	return steps, nil
}
