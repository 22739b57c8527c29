package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	configloader "github.com/hingebot/hingebot/external/config"
	generatorimpl "github.com/hingebot/hingebot/external/generator"
	moltbookimpl "github.com/hingebot/hingebot/external/moltbook"
	repositoryimpl "github.com/hingebot/hingebot/external/repository"
	"github.com/hingebot/hingebot/internal/config"
	"github.com/hingebot/hingebot/internal/conversation"
	"github.com/hingebot/hingebot/internal/matching"
	"github.com/hingebot/hingebot/internal/profile"
	"github.com/hingebot/hingebot/internal/registration"
	"github.com/hingebot/hingebot/internal/scheduler"
	"github.com/hingebot/hingebot/internal/showcase"
	"github.com/samber/do/v2"
)

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching scheduler")
	runScheduler(injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	generatorimpl.RegisterDI(injector)
	moltbookimpl.RegisterDI(injector)
	profile.RegisterDI(injector)
	registration.RegisterDI(injector)
	matching.RegisterDI(injector)
	conversation.RegisterDI(injector)
	showcase.RegisterDI(injector)
	scheduler.RegisterDI(injector)

	return injector
}

func runScheduler(injector do.Injector) {
	sched, err := do.Invoke[*scheduler.Scheduler](injector)
	if err != nil {
		slog.Error("failed to resolve scheduler", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		slog.Info("startup: entering scheduler run loop")
		sched.Run(ctx)
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
		cancel()
		<-done
	case <-done:
	}
}
