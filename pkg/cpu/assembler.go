package cpu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zurustar/hackvm/pkg/asm"
)

// AssemblyError reports a line the assembler could not accept.
type AssemblyError struct {
	Line    int    // 1-based line in the assembly text
	Text    string // the offending line, trimmed
	Message string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Message, e.Text)
}

// Instruction is one decoded machine instruction.
type Instruction struct {
	// Address instructions load Value into A. All other fields are unused.
	Address bool
	Value   int16

	// Compute instructions.
	Comp  asm.Comp
	DestA bool
	DestD bool
	DestM bool
	Jump  asm.Jump
}

// Program is assembled code plus the symbol table it was resolved with.
type Program struct {
	Code    []Instruction
	Symbols map[string]int
	// Lines maps a ROM address back to its line in the source text.
	Lines []int
}

// compAliases maps commutative spellings onto the canonical form.
var compAliases = map[string]asm.Comp{
	"A+D": asm.CompDPlusA,
	"M+D": asm.CompDPlusM,
	"A&D": asm.CompDAndA,
	"M&D": asm.CompDAndM,
	"A|D": asm.CompDOrA,
	"M|D": asm.CompDOrM,
	"1+D": asm.CompDPlus1,
	"1+A": asm.CompAPlus1,
	"1+M": asm.CompMPlus1,
}

var jumps = map[string]asm.Jump{
	"JGT": asm.JGT,
	"JEQ": asm.JEQ,
	"JGE": asm.JGE,
	"JLT": asm.JLT,
	"JNE": asm.JNE,
	"JLE": asm.JLE,
	"JMP": asm.JMP,
}

type sourceLine struct {
	number int
	text   string
}

// Assemble resolves symbolic Hack assembly in two passes: the first
// assigns ROM addresses to labels, the second decodes instructions and
// allocates variables from RAM[16] upwards.
func Assemble(text string) (*Program, error) {
	symbols := asm.Predefined()
	labels := make(map[string]bool)

	var lines []sourceLine
	for i, raw := range strings.Split(text, "\n") {
		line := raw
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.Join(strings.Fields(line), "")
		if line == "" {
			continue
		}
		lines = append(lines, sourceLine{number: i + 1, text: line})
	}

	// pass 1
	pc := 0
	for _, l := range lines {
		if !strings.HasPrefix(l.text, "(") {
			pc++
			continue
		}
		if !strings.HasSuffix(l.text, ")") || len(l.text) < 3 {
			return nil, &AssemblyError{Line: l.number, Text: l.text, Message: "malformed label"}
		}
		name := l.text[1 : len(l.text)-1]
		if labels[name] {
			return nil, &AssemblyError{Line: l.number, Text: l.text, Message: "duplicate label"}
		}
		if _, predefined := symbols[name]; predefined {
			return nil, &AssemblyError{Line: l.number, Text: l.text, Message: "label shadows a predefined symbol"}
		}
		labels[name] = true
		symbols[name] = pc
	}
	if pc > asm.RAMSize {
		return nil, fmt.Errorf("program too large: %d instructions", pc)
	}

	// pass 2
	prog := &Program{Symbols: symbols}
	nextVar := asm.VarBase
	for _, l := range lines {
		if strings.HasPrefix(l.text, "(") {
			continue
		}
		var inst Instruction
		var err error
		if strings.HasPrefix(l.text, "@") {
			inst, nextVar, err = decodeAddress(l.text[1:], symbols, nextVar)
		} else {
			inst, err = decodeCompute(l.text)
		}
		if err != nil {
			return nil, &AssemblyError{Line: l.number, Text: l.text, Message: err.Error()}
		}
		prog.Code = append(prog.Code, inst)
		prog.Lines = append(prog.Lines, l.number)
	}
	return prog, nil
}

func decodeAddress(operand string, symbols map[string]int, nextVar int) (Instruction, int, error) {
	if operand == "" {
		return Instruction{}, nextVar, fmt.Errorf("missing address")
	}
	if operand[0] == '-' || (operand[0] >= '0' && operand[0] <= '9') {
		n, err := strconv.Atoi(operand)
		if err != nil || n < 0 || n >= asm.RAMSize {
			return Instruction{}, nextVar, fmt.Errorf("address out of range")
		}
		return Instruction{Address: true, Value: int16(n)}, nextVar, nil
	}
	addr, ok := symbols[operand]
	if !ok {
		addr = nextVar
		symbols[operand] = addr
		nextVar++
	}
	return Instruction{Address: true, Value: int16(addr)}, nextVar, nil
}

func decodeCompute(text string) (Instruction, error) {
	var inst Instruction
	rest := text
	if dest, after, found := strings.Cut(rest, "="); found {
		if dest == "" {
			return inst, fmt.Errorf("empty destination")
		}
		for _, r := range dest {
			var slot *bool
			switch r {
			case 'A':
				slot = &inst.DestA
			case 'D':
				slot = &inst.DestD
			case 'M':
				slot = &inst.DestM
			default:
				return inst, fmt.Errorf("unknown destination %q", dest)
			}
			if *slot {
				return inst, fmt.Errorf("repeated destination %q", dest)
			}
			*slot = true
		}
		rest = after
	}
	if comp, jump, found := strings.Cut(rest, ";"); found {
		j, ok := jumps[jump]
		if !ok {
			return inst, fmt.Errorf("unknown jump %q", jump)
		}
		inst.Jump = j
		rest = comp
	}
	comp := asm.Comp(rest)
	if alias, ok := compAliases[rest]; ok {
		comp = alias
	}
	if _, ok := alu[comp]; !ok {
		return inst, fmt.Errorf("unknown computation %q", rest)
	}
	inst.Comp = comp
	return inst, nil
}
