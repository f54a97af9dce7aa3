package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"builtwith/internal/builtwith"
	"builtwith/internal/config"
	"builtwith/internal/console"
	"builtwith/internal/ollama"
	"builtwith/internal/pipeline"
	"builtwith/internal/storage"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

var (
	verbose   bool
	noHistory bool

	cfg     config.Config
	logger  = zap.NewNop()
	printer = console.Stdio()
)

var rootCmd = &cobra.Command{
	Use:   "builtwith",
	Short: "Profile a domain's technology stack with BuiltWith",
	Long: `builtwith queries the BuiltWith API for the technologies a domain uses,
optionally asks a local Ollama model to summarize the result, and exports
both to an Excel workbook.

Configuration is read from the environment and from a .env file in the
working directory. BUILTWITH_API_KEY is required for every command that
calls the API.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}
		logger, err = console.NewLogger(cfg.LogLevel, verbose)
		if err != nil {
			return err
		}
		logger.Debug("config loaded",
			zap.String("builtwithURL", cfg.BuiltWithAPIURL),
			zap.String("ollamaHost", cfg.OllamaHost),
			zap.String("dbPath", cfg.DBPath),
			zap.Bool("runHistory", cfg.RunHistory && !noHistory))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command. Ctrl-C cancels in-flight requests.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		_ = logger.Sync()
		printer.Errorf("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the run history")
}

// newService wires the workflow for one command. The returned func releases
// the run-history database and must always be called.
func newService(needAPI bool) (*pipeline.Service, func(), error) {
	deps := pipeline.Deps{
		Analyzer: ollama.NewClient(cfg, logger.Named("ollama")),
		Printer:  printer,
		Logger:   logger,
	}
	if needAPI {
		if err := cfg.RequireAPIKey(); err != nil {
			return nil, func() {}, err
		}
		deps.Fetcher = builtwith.NewClient(cfg, logger.Named("builtwith"))
	}

	cleanup := func() {}
	if cfg.RunHistory && !noHistory {
		db, err := storage.Open(cfg.DBPath)
		if err != nil {
			logger.Warn("run history disabled", zap.String("path", cfg.DBPath), zap.Error(err))
		} else {
			deps.Runs = db
			cleanup = func() { _ = db.Close() }
		}
	}

	return pipeline.NewService(cfg, deps), cleanup, nil
}

// profileSource validates that a command got a domain or a --json file.
func profileSource(args []string, jsonPath string) (string, error) {
	domain := ""
	if len(args) > 0 {
		domain = args[0]
	}
	if jsonPath == "" && domain == "" {
		return "", errors.New("either a domain or --json must be provided")
	}
	return domain, nil
}

// ollamaTips explains the usual fixes when the analysis step failed.
func ollamaTips(err error, model string) {
	if !errors.Is(err, ollama.ErrUnavailable) && !errors.Is(err, ollama.ErrModel) {
		return
	}
	if model == "" {
		model = cfg.OllamaModel
	}
	printer.Notef("")
	printer.Tipf("Make sure Ollama is running. Start it with: ollama serve")
	printer.Tipf("Make sure the model '%s' is available. Pull it with: ollama pull %s", model, model)
}
