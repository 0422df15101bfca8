package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/linecardbot/line-card-bot/internal/biz/domain"
	"github.com/linecardbot/line-card-bot/internal/biz/usecase"
	"github.com/linecardbot/line-card-bot/internal/data"
	"github.com/linecardbot/line-card-bot/internal/server"
	"github.com/linecardbot/line-card-bot/internal/service"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot (default)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closer.Close()

	// Graceful shutdown on signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := data.NewRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("[CONFIG] Failed to initialize backends", "error", err)
		return err
	}
	defer repos.Close()

	classifier := domain.NewClassifier(cfg.Capture.Phrases)
	captureUC := usecase.NewCaptureUsecase(
		repos.Trigger,
		repos.Messenger,
		repos.Ledger,
		repos.Storage,
		classifier,
		cfg.Capture.ToCaptureConfig(),
		logger,
	)
	logger.Info("[CONFIG] Capture configured",
		"platform", cfg.Platform,
		"ledger", cfg.Ledger.Backend,
		"window", captureUC.Window(),
		"phrases", classifier.Phrases(),
	)

	sweeper := service.NewSweeper(repos.Trigger, captureUC.Window(), cfg.Capture.SweepInterval, logger)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	httpServer := server.NewHTTPServer(server.HTTPConfig{
		Port:          cfg.Server.Port,
		Platform:      cfg.Platform,
		ChannelSecret: cfg.LINE.ChannelSecret,
	}, captureUC, repos.Trigger, logger)

	errCh := make(chan error, 2)
	go func() { errCh <- httpServer.Start() }()

	if cfg.Platform == domain.PlatformFeishu {
		feishuServer := server.NewFeishuServer(repos.Feishu, captureUC, logger)
		go func() { errCh <- feishuServer.Start(ctx) }()
	}

	select {
	case <-ctx.Done():
		logger.Info("[SERVER] Shutting down")
	case err = <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("[SERVER] Server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("[SERVER] Shutdown incomplete", "error", serr)
	}
	return err
}
