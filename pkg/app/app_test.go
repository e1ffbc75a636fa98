package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zurustar/hackvm/pkg/cli"
	"github.com/zurustar/hackvm/pkg/compiler"
	"github.com/zurustar/hackvm/pkg/cpu"
	"github.com/zurustar/hackvm/pkg/source"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func config(path string) *cli.Config {
	return &cli.Config{
		Source:    path,
		LogLevel:  "error",
		Bootstrap: cli.BootstrapAuto,
		Encoding:  "utf-8",
		Steps:     cli.DefaultSteps,
	}
}

const simpleAdd = `// Pushes and adds two constants.
push constant 7
push constant 8
add
`

func TestTranslate_SingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "SimpleAdd.vm")
	writeFile(t, src, simpleAdd)

	if err := New(nil).Translate(config(src)); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "SimpleAdd.asm"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	out := string(data)
	if strings.HasPrefix(out, "@256") {
		t.Error("single file in auto mode should not get a bootstrap")
	}
	if !strings.Contains(out, "// push constant 7\n@7\nD=A\n") {
		t.Errorf("unexpected output:\n%s", out)
	}

	// no temp files left behind
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestTranslate_DirectoryGetsBootstrap(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Prog")
	writeFile(t, filepath.Join(dir, "Sys.vm"), "function Sys.init 0\nlabel END\ngoto END\n")
	writeFile(t, filepath.Join(dir, "Main.VM"), "function Main.main 0\npush constant 0\nreturn\n")
	writeFile(t, filepath.Join(dir, "README.txt"), "not source")

	if err := New(nil).Translate(config(dir)); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "Prog.asm"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "@256\nD=A\n@SP\nM=D\n") {
		t.Errorf("directory build should start with the bootstrap:\n%s", out)
	}
	// Main sorts before Sys.
	if strings.Index(out, "(Main.main)") > strings.Index(out, "(Sys.init)") {
		t.Error("files should be translated in name order")
	}
	if _, err := cpu.Assemble(out); err != nil {
		t.Errorf("output does not assemble: %v", err)
	}
}

func TestTranslate_OutputOverrideAndBootstrapNever(t *testing.T) {
	dir := t.TempDir()
	prog := filepath.Join(dir, "Prog")
	writeFile(t, filepath.Join(prog, "Sys.vm"), "function Sys.init 0\n")
	out := filepath.Join(dir, "custom.asm")

	cfg := config(prog)
	cfg.Output = out
	cfg.Bootstrap = cli.BootstrapNever
	if err := New(nil).Translate(cfg); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if strings.HasPrefix(string(data), "@256") {
		t.Error("bootstrap=never should suppress the bootstrap")
	}
	if _, err := os.Stat(filepath.Join(prog, "Prog.asm")); !os.IsNotExist(err) {
		t.Error("default output path should not be written when --output is given")
	}
}

func TestTranslate_ValidationErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Bad.vm")
	writeFile(t, src, "push constant 1\npop constant 5\n")

	err := New(nil).Translate(config(src))
	if !errors.Is(err, compiler.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Bad.asm")); !os.IsNotExist(err) {
		t.Error("no output should be written when validation fails")
	}
}

func TestTranslate_MissingSource(t *testing.T) {
	err := New(nil).Translate(config(filepath.Join(t.TempDir(), "Nope.vm")))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestTranslate_RejectsNonSourceFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.txt")
	writeFile(t, src, "push constant 1\n")

	err := New(nil).Translate(config(src))
	if !errors.Is(err, source.ErrNotSource) {
		t.Fatalf("err = %v, want ErrNotSource", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "foo.asm")); !os.IsNotExist(err) {
		t.Error("no output should be written for a non-.vm file")
	}
}

func TestTranslate_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"), "nothing")
	if err := New(nil).Translate(config(dir)); err == nil {
		t.Fatal("expected error for directory without .vm files")
	}
}

func TestRun_SingleFileWithoutEntryPoint(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "SimpleAdd.vm")
	writeFile(t, src, simpleAdd)

	var stdout bytes.Buffer
	cfg := config(src)
	cfg.Execute = true
	if err := New(&stdout).Run(cfg); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "SP=257 top=15") {
		t.Errorf("stdout = %q, want SP=257 top=15", stdout.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "SimpleAdd.asm")); !os.IsNotExist(err) {
		t.Error("run should not write output unless --output is given")
	}
}

func TestRun_ProgramWithBootstrap(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Sys.vm")
	writeFile(t, src, `function Sys.init 0
push constant 3
push constant 4
call Sys.mul 2
label END
goto END
function Sys.mul 1
push constant 0
pop local 0
label LOOP
push argument 1
if-goto BODY
push local 0
return
label BODY
push local 0
push argument 0
add
pop local 0
push argument 1
push constant 1
sub
pop argument 1
goto LOOP
`)

	var stdout bytes.Buffer
	cfg := config(src)
	cfg.Execute = true
	cfg.Output = filepath.Join(dir, "out.asm")
	if err := New(&stdout).Run(cfg); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// Sys.init's frame starts at 261 and the result replaces the arguments.
	if !strings.Contains(stdout.String(), "SP=262 top=12") {
		t.Errorf("stdout = %q, want SP=262 top=12", stdout.String())
	}
	if _, err := os.Stat(cfg.Output); err != nil {
		t.Errorf("--output should be written by run: %v", err)
	}
}

func TestRun_StepLimit(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Spin.vm")
	writeFile(t, src, "label A\ngoto B\nlabel B\ngoto A\n")

	cfg := config(src)
	cfg.Execute = true
	cfg.Steps = 100
	err := New(&bytes.Buffer{}).Run(cfg)
	if !errors.Is(err, cpu.ErrStepLimit) {
		t.Errorf("err = %v, want ErrStepLimit", err)
	}
}

func TestWriteOutput_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.asm")
	writeFile(t, path, "old")
	if err := writeOutput(path, "new"); err != nil {
		t.Fatalf("writeOutput failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "new" {
		t.Errorf("content = %q, want new", data)
	}
}

func TestWriteOutput_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "x.asm")
	if err := writeOutput(path, "x"); err == nil {
		t.Error("expected error for missing directory")
	}
}
