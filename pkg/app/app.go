package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tebeka/atexit"

	"github.com/zurustar/hackvm/pkg/asm"
	"github.com/zurustar/hackvm/pkg/cli"
	"github.com/zurustar/hackvm/pkg/compiler"
	"github.com/zurustar/hackvm/pkg/cpu"
	"github.com/zurustar/hackvm/pkg/fileutil"
	"github.com/zurustar/hackvm/pkg/logger"
	"github.com/zurustar/hackvm/pkg/opcode"
	"github.com/zurustar/hackvm/pkg/source"
)

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config *cli.Config
	log    *slog.Logger
	stdout io.Writer
}

// New Applicationを作成
func New(stdout io.Writer) *Application {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Application{stdout: stdout}
}

// Translate は入力を翻訳して .asm ファイルに書き出す
func (app *Application) Translate(cfg *cli.Config) error {
	if err := app.init(cfg); err != nil {
		return err
	}

	// 1. ソースの読み込み
	files, isDir, err := app.loadSources()
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}

	// 2. 翻訳
	result, err := app.compile(files, app.config.WantsBootstrap(isDir))
	if err != nil {
		return err
	}

	// 3. 出力
	outPath := app.config.Output
	if outPath == "" {
		outPath = fileutil.OutputPath(app.config.Source, isDir)
	}
	if err := writeOutput(outPath, result.Assembly); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	app.log.Info("Output written", "path", outPath, "bytes", len(result.Assembly))
	return nil
}

// Run は入力を翻訳してエミュレータで実行する
func (app *Application) Run(cfg *cli.Config) error {
	if err := app.init(cfg); err != nil {
		return err
	}

	files, isDir, err := app.loadSources()
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}

	// auto の場合、run では Sys.init があればブートストラップを付ける
	bootstrap := app.config.WantsBootstrap(isDir)
	result, err := app.compile(files, false)
	if err != nil {
		return err
	}
	if app.config.Bootstrap == cli.BootstrapAuto {
		bootstrap = definesEntryPoint(result.Instructions)
	}
	if bootstrap {
		result.Assembly = compiler.Translate(result.Instructions, compiler.Options{Bootstrap: true})
	}

	if app.config.Output != "" {
		if err := writeOutput(app.config.Output, result.Assembly); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		app.log.Info("Output written", "path", app.config.Output)
	}

	machine, err := cpu.Load(result.Assembly)
	if err != nil {
		return fmt.Errorf("failed to assemble: %w", err)
	}
	if !bootstrap {
		machine.Poke(0, asm.StackBase)
	}

	app.log.Info("Starting emulator", "max_steps", app.config.Steps)
	steps, runErr := machine.Run(app.config.Steps)

	sp := machine.Peek(0)
	top := machine.Top()
	app.log.Info("Emulator stopped", "steps", steps, "sp", sp, "top", top, "halted", machine.Halted())
	fmt.Fprintf(app.stdout, "steps=%d SP=%d top=%d\n", steps, sp, top)

	if runErr != nil {
		if errors.Is(runErr, cpu.ErrStepLimit) {
			return fmt.Errorf("program did not halt within %d steps: %w", app.config.Steps, runErr)
		}
		return fmt.Errorf("emulator failed after %d steps: %w", steps, runErr)
	}
	return nil
}

// init 設定を保持してロガーを初期化
func (app *Application) init(cfg *cli.Config) error {
	app.config = cfg
	if err := logger.InitLogger(cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.log = logger.GetLogger()
	return nil
}

// loadSources 入力パスの親ディレクトリを fs.FS として開き、ファイルまたはディレクトリを読み込む
func (app *Application) loadSources() ([]source.File, bool, error) {
	abs, err := filepath.Abs(app.config.Source)
	if err != nil {
		return nil, false, err
	}

	loader, err := source.NewLoader(os.DirFS(filepath.Dir(abs)), app.config.Encoding)
	if err != nil {
		return nil, false, err
	}

	files, isDir, err := loader.Load(filepath.Base(abs))
	if err != nil {
		return nil, false, err
	}

	app.log.Info("Sources loaded", "path", app.config.Source, "files", len(files), "directory", isDir)
	for _, f := range files {
		app.log.Debug("Source file", "name", f.Name, "size", f.Size)
	}
	return files, isDir, nil
}

// compile ソースを翻訳する。検証エラーはコンパイラがすべてログに出す
func (app *Application) compile(files []source.File, bootstrap bool) (*compiler.Result, error) {
	result, _, err := compiler.Compile(files, compiler.Options{Bootstrap: bootstrap})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// definesEntryPoint reports whether any file declares Sys.init.
func definesEntryPoint(insts []*opcode.Instruction) bool {
	for _, inst := range insts {
		if inst.Opcode == opcode.OpFunction && inst.FunctionName == asm.EntryPoint {
			return true
		}
	}
	return false
}

// writeOutput は一時ファイルに書いてから rename する。途中で終了した場合は
// atexit のハンドラが一時ファイルを消す
func writeOutput(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".vmtranslator-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	atexit.Register(func() {
		os.Remove(tmpName)
	})

	if _, err := io.WriteString(tmp, content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
