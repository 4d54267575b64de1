// Package main is the memefeed CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/memefeed/internal/config"
	"github.com/hyperjump/memefeed/internal/server"
	"github.com/hyperjump/memefeed/internal/vector"
	"github.com/hyperjump/memefeed/internal/watcher"
	"github.com/hyperjump/memefeed/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/memefeed/config.yaml"
	defaultServerURL  = "http://localhost:18080"
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// When neither file exists, built-in defaults are used.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "recommend":
		runRecommend()
	case "like", "skip":
		runFeedback(command)
	case "status":
		runStatus()
	case "search":
		runSearch()
	case "import":
		runImport()
	case "version", "--version", "-v":
		fmt.Printf("memefeed version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Debug = cfg.Debug || *debug
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", cfg.Debug),
		zap.String("data_source", cfg.Data.Source),
	)

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		var le *vector.LoadError
		if errors.As(err, &le) {
			logger.Error("Failed to load vector store", zap.String("reason", string(le.Reason)), zap.Int("row", le.Row), zap.Error(err))
			os.Exit(1)
		}
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Data.Watch {
		watchSvc := watcher.NewWatcher(
			cfg.Data.Paths(),
			func(path string) {
				logger.Info("data file changed, reloading", zap.String("path", path))
				if err := components.Reload(watchCtx); err != nil {
					logger.Warn("reload failed, keeping current store", zap.Error(err))
				}
			},
			watcher.WithLogger(logger),
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
	}

	srv := server.NewServer(components.Engine, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func printUsage() {
	fmt.Printf(`memefeed - meme recommendations from your likes

Usage:
  memefeed server [flags]            Start the HTTP server
  memefeed recommend [flags]         Show the top recommendations
  memefeed like <index> [flags]      Record a like
  memefeed skip <index> [flags]      Record a skip
  memefeed status [flags]            Show item count and feedback counters
  memefeed search [flags] <query>    Find items by file name
  memefeed import [flags]            Copy the CSV/JSON data set into the SQLite database
  memefeed version                   Print version
  memefeed help                      Show this help

Server Flags:
  --config string    Config file path (default: %[1]s)
  --debug            Enable debug logging

Client Flags (recommend, like, skip, status, search):
  --server string    Server URL (default: %[2]s). Use --server "" to work on the
                     local data set without a running server (feedback is not kept).
  --output string    text or json (default: text)
  --k int            Number of recommendations (recommend only)
  --liked string     Comma-separated liked indices for offline recommend (--server "")

Import Flags:
  --config string        Config file path
  --embeddings string    Embeddings CSV (default: data.embeddings_path)
  --identifiers string   Identifier JSON (default: data.identifiers_path)
  --database string      SQLite database (default: data.database_path)

Examples:
  memefeed server
  memefeed like 12
  memefeed recommend --k 5
  memefeed recommend --server "" --liked 0,2 --k 3
`, defaultConfigPath, defaultServerURL)
}
