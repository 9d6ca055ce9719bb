package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/tunedeck/tunedeck/internal/api"
	"github.com/tunedeck/tunedeck/internal/domain/discovery"
	"github.com/tunedeck/tunedeck/internal/domain/registry"
	"github.com/tunedeck/tunedeck/internal/domain/run"
	"github.com/tunedeck/tunedeck/internal/domain/workspace"
	"github.com/tunedeck/tunedeck/internal/logger"
)

func main() {
	if err := start(true); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func start(serve bool) error {
	fmt.Println("TuneDeck - Initializing...")

	appDir := os.Getenv("TUNEDECK_CONFIG_DIR")
	if appDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			configDir = "."
		}
		appDir = filepath.Join(configDir, "tunedeck")
	}

	if err := os.MkdirAll(appDir, 0755); err != nil {
		return fmt.Errorf("failed to create app dir: %w", err)
	}

	if err := logger.Init(appDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}
	defer logger.Close()

	store := workspace.NewStore(filepath.Join(appDir, "settings.yaml"))
	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// Relative workspace paths live under the app dir.
	toolsDir := resolve(appDir, settings.ToolsDir)
	settings.ToolsDir = toolsDir
	settings.RunsPath = resolve(appDir, settings.RunsPath)
	settings.PresetsPath = resolve(appDir, settings.PresetsPath)
	os.MkdirAll(toolsDir, 0755)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	engine := discovery.NewEngine(ctx)
	reg := registry.New(engine)
	defer reg.Clear()

	count, failures, err := reg.DiscoverTools(toolsDir)
	if err != nil {
		return fmt.Errorf("initial tool discovery failed: %w", err)
	}
	fmt.Printf("Registered %d tool(s)\n", count)
	for _, f := range failures {
		logger.AddLog("WARN", fmt.Sprintf("tool %s skipped: %s", f.Source, f.Reason))
	}

	if settings.AutoRefresh {
		watcher, err := registry.NewWatcher(reg, toolsDir)
		if err != nil {
			logger.AddLog("WARN", fmt.Sprintf("auto-refresh disabled: %v", err))
		} else {
			go watcher.Run(ctx)
		}
	}

	runs := run.NewStore(settings.RunsPath)
	controlServer := api.NewControlServer(reg, runs, store, settings)

	if !serve {
		return nil
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", settings.ControlPort),
		Handler: controlServer,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	fmt.Printf("Starting control server on :%d...\n", settings.ControlPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("control server failed: %w", err)
	}
	return nil
}

func resolve(appDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(appDir, path)
}
