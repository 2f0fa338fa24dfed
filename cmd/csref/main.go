// Package main implements csref, the command-line driver for the
// refactoring engine. It exposes a single generic entry point, `csref
// call <operation>`, that accepts a JSON request on --json (or stdin) and
// prints a JSON response shaped per the tool-surface contract, plus a
// `csref status` command for workspace diagnostics.
//
// File layout:
//   - main.go      - entry point, rootCmd, global flags
//   - cmd_call.go  - the "call" and "status" subcommands
//   - registry.go  - operation-name -> handler dispatch tables
//   - response.go  - JSON envelope rendering
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"csrefactor/internal/config"
	"csrefactor/internal/logging"
)

var (
	verbose       bool
	workspacePath string
	configPath    string
	opTimeout     time.Duration

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "csref",
	Short: "csref - a programmable C# refactoring engine",
	Long: `csref drives the refactoring engine's operation framework from the
command line: rename, move, extract, inline, generate, organize, convert,
and the read-only query surface (find-references, hierarchy, metrics,
diagnostics, outline, and friends).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		if workspacePath != "" {
			cfg.WorkspaceRoot = workspacePath
		}

		level := zapcore.InfoLevel
		if verbose {
			level = zapcore.DebugLevel
		}
		logging.Configure(logging.Development(level))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspacePath, "workspace", "w", "", "workspace root directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().DurationVar(&opTimeout, "timeout", 0, "override the operation's configured timeout (0 uses the family default)")

	rootCmd.AddCommand(callCmd, statusCmd, listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
