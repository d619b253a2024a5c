// Package main runs the InsightSphere terminal dashboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/insight-sphere/internal/config"
	"github.com/insight-sphere/internal/coordinator"
	"github.com/insight-sphere/internal/gateway"
	"github.com/insight-sphere/internal/logging"
	"github.com/insight-sphere/internal/netwatch"
	"github.com/insight-sphere/internal/render"
	"github.com/insight-sphere/internal/tui"
)

func main() {
	plain := flag.Bool("plain", false, "print the dashboard to stdout after every refresh instead of running the terminal UI")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.GetGlobalLogger().WithError(err).Fatal("Failed to load configuration")
	}
	if *plain {
		cfg.Dashboard.Plain = true
	}

	logger := logging.InitGlobalLogger(logging.ParseLogLevel(cfg.Logging.Level), logging.ParseLogFormat(cfg.Logging.Format))
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	// the terminal UI owns the screen, so logs go to a file
	if !cfg.Dashboard.Plain {
		f, err := os.OpenFile(cfg.Dashboard.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open log file")
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := gateway.NewClient(&gateway.ClientConfig{
		BaseURL: cfg.Dashboard.APIBaseURL,
		Timeout: cfg.Dashboard.RequestTimeout,
		Logger:  logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create API client")
	}

	board := render.NewBoard()
	coordCfg := coordinator.Config{
		Fetcher:   client,
		Surface:   board,
		Interval:  cfg.Dashboard.RefreshInterval,
		BannerTTL: cfg.Dashboard.ErrorBannerTTL,
		Logger:    logger,
	}
	if cfg.Dashboard.Plain {
		coordCfg.AfterRefresh = func(err error) {
			if err != nil {
				fmt.Fprintf(os.Stderr, "refresh failed: %v\n", err)
				return
			}
			fmt.Println(board.View())
			fmt.Println()
		}
	}

	coord, err := coordinator.New(coordCfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create coordinator")
	}
	defer coord.Close()

	monitor, err := netwatch.New(netwatch.Config{
		URL:       strings.TrimRight(cfg.Dashboard.APIBaseURL, "/") + "/health",
		Interval:  cfg.Dashboard.ProbeInterval,
		Timeout:   cfg.Dashboard.RequestTimeout,
		Logger:    logger,
		OnOnline:  coord.HandleOnline,
		OnOffline: coord.HandleOffline,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create network monitor")
	}
	go monitor.Run(ctx)

	coord.StartSchedule(ctx)
	go func() {
		if err := coord.TriggerRefresh(ctx); err != nil && !errors.Is(err, coordinator.ErrRefreshInFlight) {
			logger.WithError(err).Warn("Initial refresh failed")
		}
	}()

	if cfg.Dashboard.Plain {
		<-ctx.Done()
		return
	}

	if err := tui.Run(ctx, board, coord); err != nil {
		logger.WithError(err).Error("Terminal UI exited with error")
		stop()
		os.Exit(1)
	}
}
