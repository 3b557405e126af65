package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zvidmar/inventura/internal/api"
	"github.com/zvidmar/inventura/internal/db"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

// envOr returns the value of the environment variable key, or fallback if
// it is unset or empty.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func main() {
	// Load .env if present; environment variables seed the flag defaults.
	godotenv.Load()

	fs := flag.NewFlagSet("inventura", flag.ContinueOnError)

	var dbPath string
	fs.StringVar(&dbPath, "db", envOr("INVENTURA_DB", "inventura.db"), "")
	fs.StringVar(&dbPath, "d", envOr("INVENTURA_DB", "inventura.db"), "")

	var addr string
	fs.StringVar(&addr, "addr", envOr("INVENTURA_ADDR", ":8080"), "")
	fs.StringVar(&addr, "a", envOr("INVENTURA_ADDR", ":8080"), "")

	var backupsDir string
	fs.StringVar(&backupsDir, "backups", envOr("INVENTURA_BACKUPS", "backups"), "")

	var uploadsDir string
	fs.StringVar(&uploadsDir, "uploads", envOr("INVENTURA_UPLOADS", "public/uploads"), "")

	var logPath string
	fs.StringVar(&logPath, "log", envOr("INVENTURA_LOG", ""), "")
	fs.StringVar(&logPath, "l", envOr("INVENTURA_LOG", ""), "")

	var strict bool
	fs.BoolVar(&strict, "strict", envBool("INVENTURA_STRICT_VALIDATION", true), "")

	var statsMonths int
	fs.IntVar(&statsMonths, "stats-months", envInt("INVENTURA_STATS_MONTHS", 6), "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: inventura [flags]

Flags:
  -d, -db <path>          SQLite database path (default: inventura.db)
  -a, -addr <host:port>   listen address (default: :8080)
  -backups <dir>          backups directory (default: backups)
  -uploads <dir>          public uploads directory (default: public/uploads)
  -strict                 reject blank names and negative prices (default: true)
  -stats-months <n>       months in the sales breakdown (default: 6)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Each flag also reads its INVENTURA_* environment variable, loaded from a
.env file if one exists.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	// Set up structured logging: INFO/WARN → stdout, ERROR → stderr.
	// Optionally also write to a log file.
	closeLog, err := setupLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	// Open the database handle; the handle owns the connection lifecycle,
	// including the close/reopen around restores.
	handle, err := db.OpenHandle(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer handle.Close()

	// Ensure schema exists (idempotent).
	if err := handle.View(db.EnsureSchema); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	slog.Info("database ready", "path", dbPath)

	for _, dir := range []string{backupsDir, uploadsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("failed to create directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	apiRouter := api.NewRouter(handle, api.Config{
		Policy:      api.Policy{Strict: strict},
		UploadsDir:  uploadsDir,
		BackupsDir:  backupsDir,
		StatsMonths: statsMonths,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))

	handler := api.LoggingMiddleware(mux)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}
