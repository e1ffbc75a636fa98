package parser

import (
	"testing"

	"github.com/zurustar/hackvm/pkg/opcode"
)

func mustParse(t *testing.T, p *Parser, line string) *opcode.Instruction {
	t.Helper()
	inst, ok := p.Parse(line)
	if !ok {
		t.Fatalf("Parse(%q) skipped the line", line)
	}
	return inst
}

func TestParse_IncrementsLineNumberOnEveryCall(t *testing.T) {
	p := New("Foo")
	if got := mustParse(t, p, "add").LineNumber; got != 1 {
		t.Errorf("line number = %d; want 1", got)
	}
	p.Parse("// something")
	p.Parse("")
	p.Parse("blah")
	if got := mustParse(t, p, "push constant 17").LineNumber; got != 5 {
		t.Errorf("line number = %d; want 5", got)
	}
	if p.LineNumber() != 5 {
		t.Errorf("LineNumber() = %d; want 5", p.LineNumber())
	}
}

func TestParse_SkipsBlankAndCommentLines(t *testing.T) {
	lines := []string{
		"",
		"   ",
		"\t\t",
		"// does stuff n things",
		"   \t\t// comments etc",
		"//",
	}
	p := New("Foo")
	for _, line := range lines {
		if inst, ok := p.Parse(line); ok || inst != nil {
			t.Errorf("Parse(%q) = %+v, %v; want skip", line, inst, ok)
		}
	}
}

func TestParse_StampsSourceInformation(t *testing.T) {
	p := New("Foo")
	inst := mustParse(t, p, "  push constant 17  ")
	if inst.SourceText != "push constant 17" {
		t.Errorf("SourceText = %q", inst.SourceText)
	}
	if inst.SourceFile != "Foo" {
		t.Errorf("SourceFile = %q", inst.SourceFile)
	}
	if p.FileName() != "Foo" {
		t.Errorf("FileName() = %q", p.FileName())
	}
}

func TestParse_ArithmeticCommands(t *testing.T) {
	tests := []struct {
		line string
		want opcode.Opcode
	}{
		{"add", opcode.OpAdd},
		{"neg", opcode.OpNeg},
		{"eq", opcode.OpEq},
		{"or", opcode.OpOr},
		{"sub", opcode.OpSub},
		{"gt", opcode.OpGt},
		{"lt", opcode.OpLt},
		{"and", opcode.OpAnd},
		{"not", opcode.OpNot},
		{"ADD", opcode.OpAdd},
		{"Not", opcode.OpNot},
	}
	p := New("Foo")
	for _, tt := range tests {
		inst := mustParse(t, p, tt.line)
		if inst.Opcode != tt.want {
			t.Errorf("Parse(%q).Opcode = %s; want %s", tt.line, inst.Opcode, tt.want)
		}
		if !inst.Valid() {
			t.Errorf("Parse(%q) error = %q", tt.line, inst.Error)
		}
		if inst.Segment != opcode.SegmentNone || inst.HasValue {
			t.Errorf("Parse(%q) should leave segment and value empty", tt.line)
		}
	}
}

func TestParse_StackCommands(t *testing.T) {
	tests := []struct {
		line    string
		op      opcode.Opcode
		segment opcode.Segment
		value   int
	}{
		{"push constant 17", opcode.OpPush, opcode.SegmentConstant, 17},
		{"pop local 2", opcode.OpPop, opcode.SegmentLocal, 2},
		{"push argument 3", opcode.OpPush, opcode.SegmentArgument, 3},
		{"PUSH THIS 5", opcode.OpPush, opcode.SegmentThis, 5},
		{"pop that 6", opcode.OpPop, opcode.SegmentThat, 6},
		{"push static 8", opcode.OpPush, opcode.SegmentStatic, 8},
		{"pop temp 7", opcode.OpPop, opcode.SegmentTemp, 7},
		{"push pointer 0", opcode.OpPush, opcode.SegmentPointer, 0},
		{"pop pointer 1", opcode.OpPop, opcode.SegmentPointer, 1},
		{"push constant -4", opcode.OpPush, opcode.SegmentConstant, -4},
		{"push\tconstant \t 9", opcode.OpPush, opcode.SegmentConstant, 9},
		{"pop local 0 trailing tokens are ignored", opcode.OpPop, opcode.SegmentLocal, 0},
	}
	p := New("Foo")
	for _, tt := range tests {
		inst := mustParse(t, p, tt.line)
		if !inst.Valid() {
			t.Errorf("Parse(%q) error = %q", tt.line, inst.Error)
			continue
		}
		if inst.Opcode != tt.op || inst.Segment != tt.segment || inst.Value != tt.value || !inst.HasValue {
			t.Errorf("Parse(%q) = %s %s %d; want %s %s %d",
				tt.line, inst.Opcode, inst.Segment, inst.Value, tt.op, tt.segment, tt.value)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"mult", "Command 'mult' not recognised"},
		{"Mult 1 2", "Command 'Mult' not recognised"},
		{"if--goto x", "Command 'if--goto' not recognised"},
		{"add argument 3", "Arithmetic instructions cannot include any additional arguments"},
		{"not 1", "Arithmetic instructions cannot include any additional arguments"},
		{"push", "Stack instructions must include a segment"},
		{"pop local", "Stack instructions must include a value"},
		{"push somewhere 3", "Segment 'somewhere' not recognised"},
		{"push somewhere blah", "Segment 'somewhere' not recognised"},
		{"push local blah", "Value 'blah' is not a valid integer"},
		{"push local 1.5", "Value '1.5' is not a valid integer"},
		{"pop constant 17", "pop cannot be performed on a constant"},
		{"pop constant 5", "pop cannot be performed on a constant"},
		{"push pointer 2", "pointer value can only be 0 or 1"},
		{"pop pointer 2", "pointer value can only be 0 or 1"},
		{"pop pointer -1", "pointer value can only be 0 or 1"},
		{"goto", "Branching instructions must have a label"},
		{"if-goto", "Branching instructions must have a label"},
		{"label", "Branching instructions must have a label"},
		{"function", "Function must have a name"},
		{"call", "Function must have a name"},
		{"function Foo.bar", "Function must specify the number of local variables"},
		{"call Foo.bar", "Call must specify the number of arguments"},
		{"function Foo.bar x", "Value 'x' is not a valid integer"},
		{"call Foo.bar two", "Value 'two' is not a valid integer"},
		{"return Foo.bar", "Return cannot have a name"},
		{"add // done", "Arithmetic instructions cannot include any additional arguments"},
		{"neg//", "Command 'neg//' not recognised"},
		{"return // end", "Return cannot have a name"},
	}
	p := New("Foo")
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			inst := mustParse(t, p, tt.line)
			if inst.Error != tt.want {
				t.Errorf("Parse(%q).Error = %q; want %q", tt.line, inst.Error, tt.want)
			}
		})
	}
}

func TestParse_PointerInRangeIsValid(t *testing.T) {
	p := New("Foo")
	for _, line := range []string{"push pointer 0", "push pointer 1", "pop pointer 0", "pop pointer 1"} {
		if inst := mustParse(t, p, line); !inst.Valid() {
			t.Errorf("Parse(%q) error = %q", line, inst.Error)
		}
	}
}

func TestParse_UnrecognisedCommandParsesNothingElse(t *testing.T) {
	inst := mustParse(t, New("Foo"), "mult local 3")
	if inst.Category() != opcode.CategoryUnrecognised {
		t.Errorf("Category() = %s", inst.Category())
	}
	if inst.Segment != opcode.SegmentNone || inst.HasValue || inst.Label != "" {
		t.Errorf("unrecognised command should carry no fields: %+v", inst)
	}
}

func TestParse_BranchingCommands(t *testing.T) {
	tests := []struct {
		line string
		op   opcode.Opcode
	}{
		{"goto myLabel", opcode.OpGoto},
		{"if-goto myLabel", opcode.OpIfGoto},
		{"ifgoto myLabel", opcode.OpIfGoto},
		{"IF-GOTO myLabel", opcode.OpIfGoto},
		{"label myLabel", opcode.OpLabel},
	}
	p := New("Foo")
	for _, tt := range tests {
		inst := mustParse(t, p, tt.line)
		if inst.Opcode != tt.op {
			t.Errorf("Parse(%q).Opcode = %s; want %s", tt.line, inst.Opcode, tt.op)
		}
		if inst.Label != "myLabel" {
			t.Errorf("Parse(%q).Label = %q; want myLabel", tt.line, inst.Label)
		}
	}
}

func TestParse_TrailingCommentIsTokenised(t *testing.T) {
	inst := mustParse(t, New("Foo"), "goto LOOP//x")
	if !inst.Valid() {
		t.Fatalf("error = %q", inst.Error)
	}
	if inst.Label != "LOOP//x" {
		t.Errorf("Label = %q; want LOOP//x", inst.Label)
	}
	if inst.SourceText != "goto LOOP//x" {
		t.Errorf("SourceText = %q", inst.SourceText)
	}
}

func TestParse_GotoWithoutMatchingLabelIsValid(t *testing.T) {
	if inst := mustParse(t, New("Foo"), "goto there"); !inst.Valid() {
		t.Errorf("goto there: unexpected error %q", inst.Error)
	}
}

func TestParse_FunctionCommands(t *testing.T) {
	p := New("Foo")

	fn := mustParse(t, p, "function Foo.bar 2")
	if !fn.Valid() || fn.Opcode != opcode.OpFunction || fn.FunctionName != "Foo.bar" || fn.Value != 2 {
		t.Fatalf("function parsed as %+v", fn)
	}
	if p.CurrentFunction() != "Foo.bar" {
		t.Errorf("CurrentFunction() = %q", p.CurrentFunction())
	}

	call := mustParse(t, p, "call Math.max 2")
	if !call.Valid() || call.Opcode != opcode.OpCall || call.FunctionName != "Math.max" || call.Value != 2 {
		t.Fatalf("call parsed as %+v", call)
	}
	if call.Caller != "Foo.bar" {
		t.Errorf("call.Caller = %q; want Foo.bar", call.Caller)
	}

	ret := mustParse(t, p, "return")
	if !ret.Valid() || ret.Opcode != opcode.OpReturn {
		t.Fatalf("return parsed as %+v", ret)
	}
	if ret.FunctionName != "Foo.bar" {
		t.Errorf("return.FunctionName = %q; want Foo.bar", ret.FunctionName)
	}
}

func TestParse_ReturnInheritsNearestFunction(t *testing.T) {
	p := New("Foo")
	mustParse(t, p, "function Foo.a 0")
	mustParse(t, p, "return")
	mustParse(t, p, "function Foo.b 1")
	mustParse(t, p, "push constant 1")
	if got := mustParse(t, p, "return").FunctionName; got != "Foo.b" {
		t.Errorf("return.FunctionName = %q; want Foo.b", got)
	}
}

func TestParse_InvalidFunctionDoesNotChangeContext(t *testing.T) {
	p := New("Foo")
	mustParse(t, p, "function Foo.a 0")
	mustParse(t, p, "function Foo.b x")
	if got := mustParse(t, p, "return").FunctionName; got != "Foo.a" {
		t.Errorf("return.FunctionName = %q; want Foo.a", got)
	}
}

func TestParse_ReturnOutsideFunction(t *testing.T) {
	inst := mustParse(t, New("Foo"), "return")
	if !inst.Valid() {
		t.Errorf("unexpected error %q", inst.Error)
	}
	if inst.FunctionName != "" {
		t.Errorf("FunctionName = %q; want empty", inst.FunctionName)
	}
}

func TestParse_ContinuesAfterErrors(t *testing.T) {
	p := New("Foo")
	lines := []string{"push", "bogus", "add", "pop constant 1", "sub"}
	var valid, invalid int
	for _, line := range lines {
		inst := mustParse(t, p, line)
		if inst.Valid() {
			valid++
		} else {
			invalid++
		}
	}
	if valid != 2 || invalid != 3 {
		t.Errorf("valid=%d invalid=%d; want 2 and 3", valid, invalid)
	}
}
