// Package asm describes Hack assembly lines as typed values.
// Code generators build a Block line by line instead of formatting
// template strings, so every operand is supplied explicitly.
package asm

import (
	"strconv"
	"strings"
)

// Kind distinguishes the four line shapes the Hack assembler accepts.
type Kind int

const (
	KindAddress Kind = iota // @symbol or @number
	KindCompute             // dest=comp;jump
	KindLabel               // (LABEL)
	KindComment             // // text
)

// Dest is the destination part of a compute instruction.
type Dest string

const (
	DestNone Dest = ""
	DestM    Dest = "M"
	DestD    Dest = "D"
	DestA    Dest = "A"
	DestMD   Dest = "MD"
	DestAM   Dest = "AM"
	DestAD   Dest = "AD"
	DestAMD  Dest = "AMD"
)

// Comp is the computation part of a compute instruction.
type Comp string

// Canonical computations of the Hack ALU.
const (
	CompZero     Comp = "0"
	CompOne      Comp = "1"
	CompNegOne   Comp = "-1"
	CompD        Comp = "D"
	CompA        Comp = "A"
	CompM        Comp = "M"
	CompNotD     Comp = "!D"
	CompNotA     Comp = "!A"
	CompNotM     Comp = "!M"
	CompNegD     Comp = "-D"
	CompNegA     Comp = "-A"
	CompNegM     Comp = "-M"
	CompDPlus1   Comp = "D+1"
	CompAPlus1   Comp = "A+1"
	CompMPlus1   Comp = "M+1"
	CompDMinus1  Comp = "D-1"
	CompAMinus1  Comp = "A-1"
	CompMMinus1  Comp = "M-1"
	CompDPlusA   Comp = "D+A"
	CompDPlusM   Comp = "D+M"
	CompDMinusA  Comp = "D-A"
	CompDMinusM  Comp = "D-M"
	CompAMinusD  Comp = "A-D"
	CompMMinusD  Comp = "M-D"
	CompDAndA    Comp = "D&A"
	CompDAndM    Comp = "D&M"
	CompDOrA     Comp = "D|A"
	CompDOrM     Comp = "D|M"
)

// Jump is the jump part of a compute instruction.
type Jump string

const (
	JumpNone Jump = ""
	JGT      Jump = "JGT"
	JEQ      Jump = "JEQ"
	JGE      Jump = "JGE"
	JLT      Jump = "JLT"
	JNE      Jump = "JNE"
	JLE      Jump = "JLE"
	JMP      Jump = "JMP"
)

// Line is one line of Hack assembly.
type Line struct {
	Kind   Kind
	Symbol string // address symbol, label name or comment text
	Dest   Dest
	Comp   Comp
	Jump   Jump
}

// String renders the line the way the Hack assembler reads it.
func (l Line) String() string {
	switch l.Kind {
	case KindAddress:
		return "@" + l.Symbol
	case KindLabel:
		return "(" + l.Symbol + ")"
	case KindComment:
		return "// " + l.Symbol
	case KindCompute:
		var sb strings.Builder
		if l.Dest != DestNone {
			sb.WriteString(string(l.Dest))
			sb.WriteByte('=')
		}
		sb.WriteString(string(l.Comp))
		if l.Jump != JumpNone {
			sb.WriteByte(';')
			sb.WriteString(string(l.Jump))
		}
		return sb.String()
	}
	return ""
}

// Block is an ordered run of assembly lines.
type Block []Line

// String joins the lines, each terminated by a newline.
func (b Block) String() string {
	var sb strings.Builder
	for _, l := range b {
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Labels returns the names of every label defined in the block.
func (b Block) Labels() []string {
	var labels []string
	for _, l := range b {
		if l.Kind == KindLabel {
			labels = append(labels, l.Symbol)
		}
	}
	return labels
}

// Builder accumulates lines. Methods return the builder so short
// sequences read top to bottom like the emitted assembly.
type Builder struct {
	lines Block
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// At emits @symbol.
func (b *Builder) At(symbol string) *Builder {
	b.lines = append(b.lines, Line{Kind: KindAddress, Symbol: symbol})
	return b
}

// AtInt emits @n. n must be non-negative.
func (b *Builder) AtInt(n int) *Builder {
	return b.At(strconv.Itoa(n))
}

// Set emits dest=comp.
func (b *Builder) Set(dest Dest, comp Comp) *Builder {
	b.lines = append(b.lines, Line{Kind: KindCompute, Dest: dest, Comp: comp})
	return b
}

// Jump emits comp;jump.
func (b *Builder) Jump(comp Comp, jump Jump) *Builder {
	b.lines = append(b.lines, Line{Kind: KindCompute, Comp: comp, Jump: jump})
	return b
}

// Label emits (name).
func (b *Builder) Label(name string) *Builder {
	b.lines = append(b.lines, Line{Kind: KindLabel, Symbol: name})
	return b
}

// Comment emits // text.
func (b *Builder) Comment(text string) *Builder {
	b.lines = append(b.lines, Line{Kind: KindComment, Symbol: text})
	return b
}

// Block returns the accumulated lines.
func (b *Builder) Block() Block {
	return b.lines
}
