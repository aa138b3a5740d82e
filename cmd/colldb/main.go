// Package main is the entry point for the colldb server.
//
// colldb is a collection-management service: users register, create named
// collections of items with custom fields, and attach comments to items
// over a websocket channel. State lives in two JSON tables on disk;
// configuration comes from CLI flags and server_config.json in the data
// directory (which holds the auto-generated JWT signing secret).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lmittmann/tint"
	"github.com/maruel/colldb/internal/auth"
	"github.com/maruel/colldb/internal/server"
	"github.com/maruel/colldb/internal/server/ratelimit"
	"github.com/maruel/colldb/internal/storage"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "colldb: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	httpAddr := flag.String("http", "localhost:5000", "Address to listen on (e.g., localhost:5000, :5000)")
	dataDir := flag.String("data-dir", "./data", "Data directory")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	watchExe := flag.Bool("watch-exe", false, "Shut down when the executable is replaced (dev restart helper)")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	if *version {
		printVersion()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	slog.SetDefault(initLogger(*logLevel))

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	cfg, err := storage.LoadServerConfig(*dataDir)
	if err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}

	userService, err := storage.NewUserService(*dataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize user storage: %w", err)
	}
	collectionService, err := storage.NewCollectionService(*dataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize collection storage: %w", err)
	}
	searchService := storage.NewSearchService(collectionService)
	authenticator := auth.NewAuthenticator(cfg.JWTSecret, userService)

	var authLimiter *ratelimit.Limiter
	if cfg.RateLimits.AuthRatePerMin > 0 {
		authLimiter = ratelimit.NewLimiter(cfg.RateLimits.AuthRatePerMin, time.Minute)
		defer authLimiter.Stop()
	}

	if *watchExe {
		if err := watchExecutable(ctx, stop); err != nil {
			slog.WarnContext(ctx, "Failed to watch executable", "err", err)
		}
	}

	httpServer := &http.Server{
		Addr: *httpAddr,
		Handler: server.NewRouter(server.Config{
			Users:         userService,
			Collections:   collectionService,
			Search:        searchService,
			Authenticator: authenticator,
			AuthLimiter:   authLimiter,
		}),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", *httpAddr, "data-dir", filepath.Clean(*dataDir))
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		slog.Info("Server stopped")
	}
	return nil
}

// initLogger initializes a structured logger with the given level.
// Output is colorized when stderr is a terminal.
func initLogger(level string) *slog.Logger {
	ll := &slog.LevelVar{}
	switch level {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
		ll.Set(slog.LevelInfo)
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		ll.Set(slog.LevelInfo)
	}
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}

// watchExecutable watches the current executable for modifications and calls
// stop to trigger graceful shutdown when detected. This enables seamless
// restarts during development.
func watchExecutable(ctx context.Context, stop context.CancelFunc) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(exe); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) {
					slog.InfoContext(ctx, "Executable modified, initiating shutdown")
					stop()
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching executable", "err", err)
			}
		}
	}()
	return nil
}

func printVersion() {
	if info, ok := debug.ReadBuildInfo(); ok {
		fmt.Println("colldb", info.Main.Version)
		return
	}
	fmt.Println("colldb (unknown version)")
}
