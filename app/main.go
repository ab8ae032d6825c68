package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedsift/app/api"
	"feedsift/app/cfg"
	"feedsift/app/config"
	"feedsift/app/fetch"
	"feedsift/app/filter"
	"feedsift/app/poller"
	"feedsift/app/store"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting feedsift", "version", appCfg.Version)

	appConfig, err := config.Load(appCfg.ConfigPath)
	if err != nil {
		slog.Error("Failed to load application config", "path", appCfg.ConfigPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Configuration loaded", "feeds", len(appConfig.Feeds))

	feedStore := store.NewFeedStore(appConfig.MaxItemsPerFeed)
	known := store.NewKnownItems(appConfig.KnownItemsCapacity)

	// A corrupt snapshot is fatal: booting without dedup history would
	// resurface and re-evaluate everything already rejected.
	if err := known.Load(appConfig.KnownItemsFile); err != nil {
		slog.Error("Failed to load known items", "path", appConfig.KnownItemsFile, "error", err)
		os.Exit(1)
	}

	fetcher := fetch.NewFetcher(appCfg.UserAgent)
	gate := filter.NewLLMFilter(appConfig.LLM)
	feedPoller := poller.New(appConfig, feedStore, known, fetcher, gate)

	pollerCtx, cancelPoller := context.WithCancel(context.Background())
	defer cancelPoller()

	// Prime all feeds before the HTTP surface is up so the first reader
	// sees content.
	feedPoller.Prime(pollerCtx)

	pollerDone := make(chan struct{})
	go func() {
		feedPoller.Run(pollerCtx)
		close(pollerDone)
	}()

	handler := api.NewHandler(feedStore, appCfg.Version)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", appConfig.ServerHost, appConfig.ServerPort),
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error, shutting down", "error", err)
	}

	// Stop the poller first; its shutdown path flushes the known-items
	// snapshot.
	cancelPoller()
	select {
	case <-pollerDone:
	case <-time.After(30 * time.Second):
		slog.Warn("Poller did not stop in time")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
