package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"SearchCore/internal/analysis"
	"SearchCore/internal/engine"
	"SearchCore/internal/query"
	"SearchCore/internal/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:           "searchd",
		Short:         "In-memory search engine with a query rewrite core",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP search API",
		RunE:  runServe,
	}

	rewriteCmd = &cobra.Command{
		Use:   "rewrite",
		Short: "Read a JSON query from stdin and print its simplified form",
		RunE:  runRewrite,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(serveCmd, rewriteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "searchd: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (server.Config, error) {
	if configPath == "" {
		return server.DefaultConfig(), nil
	}
	return server.LoadConfig(configPath)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("starting searchd",
		"version", Version,
		"addr", cfg.Addr,
		"config", configPath,
	)

	ix := engine.NewIndex(analysis.NewStandardAnalyzer())
	handler := server.NewHandler(ix, cfg, logger)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  cfg.IdleTimeout(),
	}

	logger.Info("listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runRewrite(cmd *cobra.Command, args []string) error {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	q, err := server.ParseQuery(data)
	if err != nil {
		return err
	}

	start := time.Now()
	rewritten := query.Rewrite(q)
	took := time.Since(start)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "input:     %s\n", q)
	fmt.Fprintf(out, "rewritten: %s\n", rewritten)
	fmt.Fprintf(out, "took:      %s\n", took)
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
