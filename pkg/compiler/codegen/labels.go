package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zurustar/hackvm/pkg/opcode"
)

// Generated symbol shapes:
//
//	Foo$LOOP             label LOOP in Foo.vm
//	Foo.7                static 7 in Foo.vm
//	Foo.EQ$true.12       eq on line 12 of Foo.vm
//	Main.fib.init        locals loop of function Main.fib
//	Main.fib$ret.Foo.30  return address of the call on line 30 of Foo.vm
//
// A user label can only collide with a comparison or return label if it
// itself contains "$true." or "$ret.".

func fileLabel(file, label string) string {
	return file + "$" + label
}

func staticSymbol(file string, offset int) string {
	return file + "." + strconv.Itoa(offset)
}

func comparisonLabel(inst *opcode.Instruction) string {
	return fmt.Sprintf("%s.%s$true.%d", inst.SourceFile, strings.ToUpper(inst.Opcode.String()), inst.LineNumber)
}

func initLabel(function string) string {
	return function + ".init"
}

// returnLabel is unique per call site: callee, calling file and line.
func returnLabel(inst *opcode.Instruction) string {
	return fmt.Sprintf("%s$ret.%s.%d", inst.FunctionName, inst.SourceFile, inst.LineNumber)
}
