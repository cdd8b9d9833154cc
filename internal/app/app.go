// Package app wires configuration, assets, the OCR client, the pipeline and
// the Telegram channel together.
package app

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mgetnet/faydagen/internal/channels/telegram"
	"github.com/mgetnet/faydagen/internal/compose"
	"github.com/mgetnet/faydagen/internal/config"
	"github.com/mgetnet/faydagen/internal/metrics"
	"github.com/mgetnet/faydagen/internal/ocr"
	"github.com/mgetnet/faydagen/internal/pipeline"
	"github.com/mgetnet/faydagen/internal/session"
)

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Sessions *session.Store
	Pipeline *pipeline.Pipeline
	Bot      *telegram.Bot

	sweeper    *session.Sweeper
	metricsSrv *http.Server
}

func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	m := metrics.New()

	sessions, err := session.NewStore(cfg.Session.TempDir, logger, m)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	layout, err := compose.DefaultLayout()
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	compositor, err := compose.New(cfg.Assets.TemplatePath, cfg.Assets.FontPath, layout, logger)
	if err != nil {
		return nil, fmt.Errorf("compositor: %w", err)
	}

	provider := ocr.NewGuarded(
		ocr.NewSpaceClient(ocr.Config{
			APIKey:   cfg.OCR.APIKey,
			Endpoint: cfg.OCR.Endpoint,
			Language: cfg.OCR.Language,
			Engine:   cfg.OCR.Engine,
			Timeout:  time.Duration(cfg.OCR.TimeoutSeconds) * time.Second,
		}, logger),
		ocr.GuardConfig{RequestsPerMin: cfg.OCR.RequestsPerMin},
	)

	pipe := pipeline.New(provider, compositor,
		pipeline.Options{UseSampleOnMiss: cfg.Session.UseSampleOnMiss}, logger, m)

	bot, err := telegram.NewBot(telegram.Config{
		Token:     cfg.Telegram.BotToken,
		AllowList: cfg.Telegram.AllowList,
	}, sessions, pipe, logger)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Sessions: sessions,
		Pipeline: pipe,
		Bot:      bot,
	}, nil
}

// Run starts the sweeper, the optional metrics listener and the bot, then
// blocks until SIGINT/SIGTERM.
func (a *App) Run() error {
	sweeper, err := session.StartSweeper(a.Sessions,
		a.Config.Session.SweepSpec,
		time.Duration(a.Config.Session.TTLMinutes)*time.Minute,
		a.Logger)
	if err != nil {
		return fmt.Errorf("sweeper: %w", err)
	}
	a.sweeper = sweeper

	if a.Config.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.Metrics.Handler())
		a.metricsSrv = &http.Server{Addr: a.Config.Metrics.Address, Handler: mux}
		go func() {
			a.Logger.Info("Metrics listener started", zap.String("address", a.Config.Metrics.Address))
			if err := a.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.Logger.Error("Metrics listener failed", zap.Error(err))
			}
		}()
	}

	a.Bot.Start()
	a.Logger.Info("Bot is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	a.Logger.Info("Shutting down", zap.String("signal", sig.String()))

	a.Stop()
	return nil
}

func (a *App) Stop() {
	a.Bot.Stop()
	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	if a.metricsSrv != nil {
		a.metricsSrv.Close()
	}
}
