package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zurustar/hackvm/pkg/logger"
	"github.com/zurustar/hackvm/pkg/source"
)

// ブートストラップの出力モード
const (
	BootstrapAuto   = "auto"   // ディレクトリ入力のときだけ出力
	BootstrapAlways = "always" // 常に出力
	BootstrapNever  = "never"  // 出力しない
)

// DefaultSteps は run サブコマンドの既定ステップ上限
const DefaultSteps = 1000000

// 環境変数名
const (
	EnvLogLevel  = "LOG_LEVEL"
	EnvEncoding  = "VMTRANSLATOR_ENCODING"
	EnvBootstrap = "VMTRANSLATOR_BOOTSTRAP"
)

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	Source    string // 入力 .vm ファイルまたはディレクトリ
	Output    string // 出力 .asm パス（空なら入力から決める）
	LogLevel  string // ログレベル（debug, info, warn, error）
	Bootstrap string // auto, always, never
	Encoding  string // ソースの文字コード（WHATWGラベル）
	Steps     int    // run のステップ上限
	Execute   bool   // run サブコマンドが指定された
}

// Handler は解析済みの設定を受け取って処理を行う
type Handler func(cfg *Config) error

// WantsBootstrap reports whether the preamble should be emitted for a
// source that is (or is not) a directory.
func (c *Config) WantsBootstrap(isDir bool) bool {
	switch c.Bootstrap {
	case BootstrapAlways:
		return true
	case BootstrapNever:
		return false
	default:
		return isDir
	}
}

// Validate 設定値を検証する
func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source path is required")
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w (must be %s)", err, strings.Join(logger.Levels, ", "))
	}
	switch c.Bootstrap {
	case BootstrapAuto, BootstrapAlways, BootstrapNever:
	default:
		return fmt.Errorf("invalid bootstrap mode: %s (must be auto, always, or never)", c.Bootstrap)
	}
	if _, err := source.LookupEncoding(c.Encoding); err != nil {
		return err
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", c.Steps)
	}
	return nil
}

// applyEnv 環境変数からの設定（コマンドラインフラグが優先）
func (c *Config) applyEnv(changed func(name string) bool) {
	if !changed("log-level") {
		if v := os.Getenv(EnvLogLevel); v != "" {
			c.LogLevel = strings.ToLower(v)
		}
	}
	if !changed("encoding") {
		if v := os.Getenv(EnvEncoding); v != "" {
			c.Encoding = v
		}
	}
	if !changed("bootstrap") {
		if v := os.Getenv(EnvBootstrap); v != "" {
			c.Bootstrap = strings.ToLower(v)
		}
	}
}

// NewRootCommand builds the command tree. translate handles the root
// command, run handles the run subcommand.
func NewRootCommand(translate, run Handler) *cobra.Command {
	cfg := &Config{}

	root := &cobra.Command{
		Use:   "vmtranslator [flags] <source.vm | directory>",
		Short: "Translate Hack VM code into Hack assembly",
		Long: `vmtranslator translates a .vm file, or every .vm file in a directory,
into a single .asm file for the Hack platform.

Environment Variables:
  LOG_LEVEL=<level>                 ログレベル
  VMTRANSLATOR_ENCODING=<label>     ソースの文字コード
  VMTRANSLATOR_BOOTSTRAP=<mode>     auto, always, never`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatch(cmd, cfg, args, false, translate)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cfg.Output, "output", "o", "", "出力 .asm ファイル（デフォルト: 入力から決定）")
	flags.StringVarP(&cfg.LogLevel, "log-level", "l", "info", "ログレベル: debug, info, warn, error")
	flags.StringVar(&cfg.Bootstrap, "bootstrap", BootstrapAuto, "ブートストラップ: auto, always, never")
	flags.StringVar(&cfg.Encoding, "encoding", source.DefaultEncoding, "ソースの文字コード（例: utf-8, utf-16le, shift_jis）")

	runCmd := &cobra.Command{
		Use:   "run [flags] <source.vm | directory>",
		Short: "Translate and execute on the Hack emulator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatch(cmd, cfg, args, true, run)
		},
	}
	runCmd.Flags().IntVar(&cfg.Steps, "steps", DefaultSteps, "実行する最大ステップ数")

	root.AddCommand(runCmd)
	return root
}

func dispatch(cmd *cobra.Command, cfg *Config, args []string, execute bool, h Handler) error {
	cfg.Source = args[0]
	cfg.Execute = execute
	if !execute {
		// --steps は run にしかない
		cfg.Steps = 0
	}
	cfg.applyEnv(func(name string) bool {
		return cmd.Flags().Changed(name)
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	return h(cfg)
}
