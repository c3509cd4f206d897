package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/standardbeagle/codesnip/internal/config"
	"github.com/standardbeagle/codesnip/internal/diagnostics"
	"github.com/standardbeagle/codesnip/internal/mcp"

	"github.com/urfave/cli/v2"
)

// mcpLogFile is used when no log file is configured. Stdout carries the
// protocol, so the server never logs to the console.
func mcpLogFile() string {
	timestamp := time.Now().Format("2006-01-02T150405")
	return filepath.Join(os.TempDir(), "codesnip-mcp-logs", fmt.Sprintf("mcp-%s.log", timestamp))
}

// watchSource reloads the same config file the command started with and
// re-applies the command line overrides on every change
func watchSource(c *cli.Context) mcp.ConfigSource {
	return mcp.ConfigSource{
		File: c.String("config"),
		Load: func() (*config.Config, error) {
			return loadConfigWithOverrides(c)
		},
	}
}

func mcpCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = mcpLogFile()
	}

	logger := diagnostics.New(cfg.Logging)
	defer logger.Close()

	server, err := mcp.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if c.Bool("watch-config") {
		go func() {
			if err := server.WatchConfig(ctx, watchSource(c)); err != nil && ctx.Err() == nil {
				logger.Errorf("config watcher stopped: %v", err)
			}
		}()
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	case sig := <-sigChan:
		logger.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()

		// Give the server a moment to shutdown gracefully
		shutdownTimer := time.NewTimer(2 * time.Second)
		defer shutdownTimer.Stop()

		select {
		case <-errChan:
			logger.Printf("Server shutdown completed")
		case <-shutdownTimer.C:
			logger.Printf("Server shutdown timed out")
		}
		return nil
	}
}
