package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"glock/handler"
	"glock/internal/chatstate"
	"glock/internal/config"
	"glock/internal/integrations/paramstore"
	"glock/internal/integrations/telegram"
	"glock/internal/logging"
	"glock/internal/metrics"
	"glock/internal/repository"
	"glock/internal/scheduler"
	"glock/internal/usecase"
)

const chatCountPeriod = time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		fatal("failed to load configuration", err)
	}
	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		fatal("failed to configure logging", err)
	}
	settings, err := cfg.Settings()
	if err != nil {
		fatal("failed to build game settings", err)
	}

	// ---- AWS SDK config (only when a table or a token parameter is used) ----
	var awsCfg aws.Config
	if cfg.ActivityTable != "" || cfg.TelegramTokenParameter != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			fatal("failed to load AWS config", err)
		}
	}

	// ---- Clients ----
	tokenOpt := telegram.WithToken(cfg.TelegramToken)
	if cfg.TelegramTokenParameter != "" {
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			fatal("failed to create SSM client", err)
		}
		tokenOpt = telegram.WithParamStoreToken(ssmClient, cfg.TelegramTokenParameter)
	}
	bot, err := telegram.NewClient(tokenOpt, telegram.WithRateLimit(cfg.APIRatePerSecond))
	if err != nil {
		fatal("failed to create Telegram client", err)
	}
	me, err := bot.GetMe(ctx)
	if err != nil {
		fatal("failed to identify bot", err)
	}

	var registry usecase.ActivityRegistry = repository.NewMemory()
	if cfg.ActivityTable != "" {
		registry, err = repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.ActivityTable)
		if err != nil {
			fatal("failed to create activity registry", err)
		}
	}

	seed, err := chatstate.NewSeed()
	if err != nil {
		fatal("failed to seed random source", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// ---- Game ----
	chats, err := usecase.NewChats(settings, usecase.Deps{
		Gateway:  bot,
		Registry: registry,
		Rand:     chatstate.NewRand(seed),
		Now:      time.Now,
		Metrics:  m,
		Logger:   logger,
	})
	if err != nil {
		fatal("failed to create chats", err)
	}
	defer chats.Close()

	h, err := handler.NewHandler(chats, me.Username, logger)
	if err != nil {
		fatal("failed to create handler", err)
	}
	poller, err := telegram.NewPoller(bot, cfg.PollTimeout, logger)
	if err != nil {
		fatal("failed to create poller", err)
	}

	logger.Info("bot started",
		"username", me.Username,
		"activity_table", cfg.ActivityTable,
		"restrictions_duration", settings.RestrictionDuration,
		"healing_time_zone", cfg.HealingTimeZone,
	)

	// ---- Run ----
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return poller.Run(gctx, h.Handle)
	})
	g.Go(func() error {
		return scheduler.Every(gctx, cfg.RestrictionsSweepPeriod, chats.ProcessRestrictions)
	})
	g.Go(func() error {
		return scheduler.Every(gctx, cfg.TempSweepPeriod, chats.CleanTempMessages)
	})
	g.Go(func() error {
		return scheduler.Every(gctx, chatCountPeriod, chats.LogCount)
	})
	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("bot stopped with error", "err", err)
		chats.Close()
		os.Exit(1)
	}
	logger.Info("bot stopped")
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
