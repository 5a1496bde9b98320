package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/faultdrill/internal/app"
	"github.com/abhisek/faultdrill/internal/config"
	"github.com/abhisek/faultdrill/internal/debrief"
	"github.com/abhisek/faultdrill/internal/events"
	"github.com/abhisek/faultdrill/internal/feedback"
	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/llm"
	"github.com/abhisek/faultdrill/internal/logging"
	"github.com/abhisek/faultdrill/internal/scenario"
	"github.com/abhisek/faultdrill/internal/screens"
	"github.com/abhisek/faultdrill/internal/session"
	"github.com/abhisek/faultdrill/internal/store"
)

// appEnv holds everything a command needs, built from config and flags.
type appEnv struct {
	cfg       *config.Config
	logger    *zap.Logger
	kv        store.KV
	history   *history.Repo
	bank      *scenario.Bank
	publisher events.Publisher

	// debrief is nil when no LLM provider is configured.
	debrief *debrief.Service
}

// loadConfig reads the config file and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Storage.Path = db
	}
	if drv, _ := cmd.Flags().GetString("storage"); drv != "" {
		cfg.Storage.Driver = drv
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newRuntime opens storage, the scenario bank, the broker and the optional
// LLM provider. The TUI logs to a file so log lines never reach the
// terminal.
func newRuntime(cmd *cobra.Command, tui bool) (*appEnv, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	var logger *zap.Logger
	if tui || cfg.Logging.File != "" {
		logger, err = logging.NewFile(cfg.Logging.Level, cfg.Logging.File)
	} else {
		logger, err = logging.New(cfg.Logging.Level)
	}
	if err != nil {
		return nil, err
	}

	rt := &appEnv{cfg: cfg, logger: logger, publisher: events.Noop{}}

	if cfg.Scenarios.Path != "" {
		rt.bank, err = scenario.LoadBankFile(cfg.Scenarios.Path)
	} else {
		rt.bank, err = scenario.DefaultBank()
	}
	if err != nil {
		return nil, fmt.Errorf("load scenarios: %w", err)
	}

	opts, err := cfg.StoreOptions()
	if err != nil {
		return nil, err
	}
	rt.kv, err = store.OpenKV(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.history = history.NewRepo(rt.kv, logger)

	rt.publisher, err = events.Open(cfg.Broker.URL, cfg.Broker.Exchange)
	if err != nil {
		logger.Warn("event broker unavailable, events disabled", zap.Error(err))
		rt.publisher = events.Noop{}
	}

	if llmCfg, ok := cfg.LLMSettings(); ok {
		provider, err := llm.NewProvider(ctx, llmCfg, logger)
		if err != nil {
			logger.Warn("llm provider not configured", zap.Error(err))
		} else {
			rt.debrief = debrief.NewService(provider, debrief.DefaultConfig())
		}
	}

	logger.Debug("runtime ready",
		zap.String("storage", string(opts.Driver)),
		zap.Int("scenarios", rt.bank.Len()),
		zap.Bool("debrief", rt.debrief.Enabled()),
	)
	return rt, nil
}

// deps builds the screen dependencies.
func (rt *appEnv) deps() screens.Deps {
	var sink feedback.Sink = feedback.LogSink{Logger: rt.logger}
	if rt.cfg.Feedback.Bell {
		sink = feedback.Multi{sink, feedback.NewBellSink(os.Stderr)}
	}
	return screens.Deps{
		Supplier:  scenario.NewBankSupplier(rt.bank, nil),
		History:   rt.history,
		Debrief:   rt.debrief,
		Sink:      sink,
		Scheduler: feedback.WallScheduler{},
		Logger:    rt.logger,
		OnClose:   []func(history.SessionRecord){events.SessionHook(rt.publisher, rt.logger)},
	}
}

// Close releases the broker and the store.
func (rt *appEnv) Close() error {
	err := errors.Join(rt.publisher.Close(), rt.kv.Close())
	_ = rt.logger.Sync()
	return err
}

// runTUI launches the terminal UI, optionally straight into a session.
func runTUI(cmd *cobra.Command, mode session.Mode) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if !rt.debrief.Enabled() {
		fmt.Fprintln(os.Stderr, "LLM provider not configured; coach debriefs will be unavailable.")
	}
	return app.Run(rt.deps(), mode)
}
