// Package compiler provides the translation pipeline for VM programs.
// It turns loaded source files into Hack assembly in two phases:
// 1. Parser: every line becomes an Instruction or a validation error
// 2. Codegen: valid Instructions become assembly blocks
//
// Validation errors from every file are collected before any code is
// generated, so one run reports all of them.
package compiler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/zurustar/hackvm/pkg/compiler/codegen"
	"github.com/zurustar/hackvm/pkg/compiler/parser"
	"github.com/zurustar/hackvm/pkg/logger"
	"github.com/zurustar/hackvm/pkg/opcode"
	"github.com/zurustar/hackvm/pkg/source"
)

// Options configures translation.
type Options struct {
	// Bootstrap prepends SP initialisation and a call to Sys.init.
	Bootstrap bool
}

// Result is the outcome of a successful compilation.
type Result struct {
	Assembly     string
	Instructions []*opcode.Instruction
	Files        int
}

// Parse runs the parser over every file in order. Instructions from all
// files are returned in sequence; validation errors are returned alongside
// and reference the file and line they came from.
//
// Parameters:
//   - files: Loaded sources, in translation order
//
// Returns:
//   - []*opcode.Instruction: Every non-skipped line, valid or not
//   - []*CompileError: One entry per invalid line (empty if all valid)
func Parse(files []source.File) ([]*opcode.Instruction, []*CompileError) {
	log := logger.GetLogger()

	var insts []*opcode.Instruction
	var errs []*CompileError

	for _, f := range files {
		p := parser.New(f.Name)
		count := 0
		for _, line := range f.Lines() {
			inst, ok := p.Parse(line)
			if !ok {
				continue
			}
			count++
			insts = append(insts, inst)
			if !inst.Valid() {
				log.Debug("Invalid line", "file", f.Name, "line", inst.LineNumber, "function", inst.Caller)
				errs = append(errs, NewParserErrorWithContext(f.Name, inst.Error, inst.LineNumber, f.Content))
			}
		}
		log.Debug("Parsed file", "file", f.Name, "lines", p.LineNumber(), "instructions", count)
	}

	return insts, errs
}

// Translate generates assembly for already validated instructions.
func Translate(insts []*opcode.Instruction, opts Options) string {
	g := codegen.New()

	var sb strings.Builder
	if opts.Bootstrap {
		sb.WriteString(g.Bootstrap().String())
	}
	sb.WriteString(g.Generate(insts))
	return sb.String()
}

// Compile parses every file and, when all lines are valid, translates them.
// If any line is invalid, it returns the collected errors joined under
// ErrValidation and no assembly.
//
// Parameters:
//   - files: Loaded sources, in translation order
//   - opts: Translation options
//
// Returns:
//   - *Result: Assembly text and the instructions it came from
//   - []*CompileError: Validation errors (nil on success)
//   - error: ErrValidation wrapped with the error count, or nil
func Compile(files []source.File, opts Options) (*Result, []*CompileError, error) {
	log := logger.GetLogger()

	insts, errs := Parse(files)
	if len(errs) > 0 {
		for _, e := range errs {
			log.Error(fmt.Sprintf("Line %d: %s", e.Line, e.Message), "file", e.File)
		}
		return nil, errs, fmt.Errorf("%w: %d error(s)", ErrValidation, len(errs))
	}

	asmText := Translate(insts, opts)
	log.Info("Translated",
		slog.Int("files", len(files)),
		slog.Int("instructions", len(insts)),
		slog.Bool("bootstrap", opts.Bootstrap),
	)

	return &Result{
		Assembly:     asmText,
		Instructions: insts,
		Files:        len(files),
	}, nil, nil
}
