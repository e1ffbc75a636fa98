// Package parser validates VM source one line at a time.
//
// A Parser belongs to a single source file. It counts lines and remembers
// the most recently declared function so that a bare return can be tied to
// its enclosing function. Validation failures are recorded on the returned
// Instruction instead of aborting, so a whole file is always scanned.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zurustar/hackvm/pkg/opcode"
)

const commentMarker = "//"

// Validation messages.
const (
	msgArithmeticArgs = "Arithmetic instructions cannot include any additional arguments"
	msgStackSegment   = "Stack instructions must include a segment"
	msgStackValue     = "Stack instructions must include a value"
	msgPopConstant    = "pop cannot be performed on a constant"
	msgPointerRange   = "pointer value can only be 0 or 1"
	msgBranchLabel    = "Branching instructions must have a label"
	msgFunctionName   = "Function must have a name"
	msgFunctionLocals = "Function must specify the number of local variables"
	msgCallArguments  = "Call must specify the number of arguments"
	msgReturnNamed    = "Return cannot have a name"
	fmtUnknownCommand = "Command '%s' not recognised"
	fmtUnknownSegment = "Segment '%s' not recognised"
	fmtInvalidInteger = "Value '%s' is not a valid integer"
)

// Parser turns raw lines of one file into Instructions.
type Parser struct {
	fileName        string
	lineNumber      int
	currentFunction string
}

// New creates a Parser for the file with the given base name. The name
// namespaces static variables and labels in the generated code.
func New(fileName string) *Parser {
	return &Parser{fileName: fileName}
}

// FileName returns the base name the parser stamps on instructions.
func (p *Parser) FileName() string {
	return p.fileName
}

// LineNumber returns the number of lines consumed so far.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// CurrentFunction returns the name of the last successfully parsed
// function declaration.
func (p *Parser) CurrentFunction() string {
	return p.currentFunction
}

// Parse consumes one raw line. It returns ok == false for blank and
// comment-only lines. Otherwise the returned Instruction is either valid or
// carries an Error.
func (p *Parser) Parse(line string) (inst *opcode.Instruction, ok bool) {
	p.lineNumber++

	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, commentMarker) {
		return nil, false
	}

	// A comment marker after the opcode is just another token.
	fields := strings.Fields(line)

	inst = &opcode.Instruction{
		Opcode:     opcode.Lookup(fields[0]),
		Caller:     p.currentFunction,
		SourceFile: p.fileName,
		LineNumber: p.lineNumber,
		SourceText: line,
	}

	switch inst.Category() {
	case opcode.CategoryArithmetic:
		parseArithmetic(inst, fields)
	case opcode.CategoryStack:
		parseStack(inst, fields)
	case opcode.CategoryBranching:
		parseBranching(inst, fields)
	case opcode.CategoryFunction:
		p.parseFunction(inst, fields)
	case opcode.CategoryUnrecognised:
		inst.Error = fmt.Sprintf(fmtUnknownCommand, fields[0])
	}
	return inst, true
}

func parseArithmetic(inst *opcode.Instruction, fields []string) {
	if len(fields) > 1 {
		inst.Error = msgArithmeticArgs
	}
}

func parseStack(inst *opcode.Instruction, fields []string) {
	if len(fields) < 2 {
		inst.Error = msgStackSegment
		return
	}
	if len(fields) < 3 {
		inst.Error = msgStackValue
		return
	}

	seg, ok := opcode.LookupSegment(fields[1])
	if !ok {
		inst.Error = fmt.Sprintf(fmtUnknownSegment, fields[1])
		return
	}
	inst.Segment = seg

	value, err := strconv.Atoi(fields[2])
	if err != nil {
		inst.Error = fmt.Sprintf(fmtInvalidInteger, fields[2])
		return
	}
	inst.Value = value
	inst.HasValue = true

	switch {
	case inst.Opcode == opcode.OpPop && seg == opcode.SegmentConstant:
		inst.Error = msgPopConstant
	case seg == opcode.SegmentPointer && (value < 0 || value > 1):
		inst.Error = msgPointerRange
	}
}

func parseBranching(inst *opcode.Instruction, fields []string) {
	if len(fields) < 2 {
		inst.Error = msgBranchLabel
		return
	}
	inst.Label = fields[1]
}

func (p *Parser) parseFunction(inst *opcode.Instruction, fields []string) {
	if inst.Opcode == opcode.OpReturn {
		if len(fields) > 1 {
			inst.Error = msgReturnNamed
			return
		}
		inst.FunctionName = p.currentFunction
		return
	}

	if len(fields) < 2 {
		inst.Error = msgFunctionName
		return
	}
	inst.FunctionName = fields[1]

	if len(fields) < 3 {
		if inst.Opcode == opcode.OpFunction {
			inst.Error = msgFunctionLocals
		} else {
			inst.Error = msgCallArguments
		}
		return
	}

	value, err := strconv.Atoi(fields[2])
	if err != nil {
		inst.Error = fmt.Sprintf(fmtInvalidInteger, fields[2])
		return
	}
	inst.Value = value
	inst.HasValue = true

	if inst.Opcode == opcode.OpFunction {
		p.currentFunction = inst.FunctionName
		inst.Caller = inst.FunctionName
	}
}
