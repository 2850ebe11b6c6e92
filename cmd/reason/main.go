// Command reason is the reference external caller for reasonkit
// (SPEC_FULL.md §4.10): a cobra CLI exercising the engine's public
// API exactly as any other outside collaborator (a WebSocket handler,
// a dialogue orchestrator) would. Command implementations live in
// sibling cmd_*.go files, mirroring the teacher's cmd/nerd layout.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/codenerd/reasonkit/internal/cognition"
	"github.com/codenerd/reasonkit/internal/config"
	"github.com/codenerd/reasonkit/internal/events"
	"github.com/codenerd/reasonkit/internal/logging"
	"github.com/codenerd/reasonkit/internal/query"
	"github.com/codenerd/reasonkit/internal/tms"
)

var (
	verbose   bool
	cfgPath   string
	workspace string

	cfg      *config.Config
	zapLog   *zap.Logger
	bus      *events.Bus
	tmsStore *tms.Store
	cog      *cognition.Cognition
	exec     *query.Executor
)

var rootCmd = &cobra.Command{
	Use:   "reason",
	Short: "reasonkit - a forward-chaining KIF reasoning engine CLI",
	Long: `reason drives a reasonkit engine instance from the command line:
submit assertions and rules from a KIF file or stdin, run
ASK_BINDINGS/ASK_TRUE_FALSE/ACHIEVE_GOAL queries, and inspect a KB's
contents.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		zapLog, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("reason: build logger: %w", err)
		}

		path := cfgPath
		if path == "" {
			ws := workspace
			if ws == "" {
				ws, _ = os.Getwd()
			}
			path = filepath.Join(ws, "reasonkit.yaml")
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("reason: load config: %w", err)
		}

		bus = events.NewBus(logging.NewFromZap(zapLog, logging.CategoryEvents))
		tmsStore = tms.New(bus, logging.NewFromZap(zapLog, logging.CategoryTMS))
		cog = cognition.New(cfg.Engine.DefaultCapacity, cfg.Engine.PriorityDecay, tmsStore, bus, logging.NewFromZap(zapLog, logging.CategoryCognition))
		exec = query.New(cog, tmsStore)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cog != nil {
			cog.Close()
		}
		if bus != nil {
			bus.Close()
		}
		if zapLog != nil {
			_ = zapLog.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to reasonkit.yaml (default: <workspace>/reasonkit.yaml)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: current directory)")

	rootCmd.AddCommand(assertCmd, retractCmd, queryCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
