package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/abriciof/rfcnpj-parquet/internal/app"
	"github.com/abriciof/rfcnpj-parquet/internal/config"
	"github.com/abriciof/rfcnpj-parquet/internal/logger"
)

func main() {
	// a missing .env is fine; real env vars take precedence
	_ = godotenv.Load()

	cfg := config.FromEnv()
	if err := applyFlags(&cfg, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		slog.Info("shutdown signal received")
		cancel()
	}()

	if err := app.Run(ctx, cfg); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config, args []string) error {
	fs := pflag.NewFlagSet("rfcnpj-parquet", pflag.ContinueOnError)
	month := fs.String("month", cfg.ForceMonth, "process this month (YYYY-MM), same as FORCE_MONTH")
	offline := fs.Bool("offline", cfg.Offline, "skip discovery, download and extraction; convert --extracted-dir as is")
	datasets := fs.StringSlice("datasets", cfg.Datasets, "dataset types to process (default all)")
	extracted := fs.String("extracted-dir", cfg.ExtractedFilesPath, "directory with extracted files")
	parquet := fs.String("parquet-dir", cfg.ParquetFilesPath, "output directory for parquet files")
	noDownload := fs.Bool("no-download", !cfg.EnableDownload, "reuse archives already on disk")
	noExtract := fs.Bool("no-extract", !cfg.EnableExtract, "reuse files already extracted")
	logLevel := fs.String("log-level", cfg.LogLevel, "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.ForceMonth = *month
	cfg.Offline = *offline
	cfg.Datasets = *datasets
	cfg.ExtractedFilesPath = *extracted
	cfg.ParquetFilesPath = *parquet
	cfg.EnableDownload = !*noDownload
	cfg.EnableExtract = !*noExtract
	cfg.LogLevel = *logLevel
	return nil
}
