package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/JarlLyng/SampleDrumConverter/internal/audio"
	"github.com/JarlLyng/SampleDrumConverter/internal/batch"
	"github.com/JarlLyng/SampleDrumConverter/internal/config"
	"github.com/JarlLyng/SampleDrumConverter/internal/metrics"
	"github.com/JarlLyng/SampleDrumConverter/internal/server"
)

const (
	serviceName    = "sampledrumconverter"
	serviceVersion = "1.0.0"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	destDir := flag.String("dest", "", "Destination directory for converted files (required)")
	httpEnabled := flag.Bool("http", false, "Enable the monitoring HTTP API")
	flag.Parse()

	if *destDir == "" {
		fmt.Fprintln(os.Stderr, "Usage: sampledrumconverter -dest <dir> [flags] <file-or-dir>...")
		flag.PrintDefaults()
		return 2
	}
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "No input files given")
		return 2
	}

	// Load configuration, falling back to defaults when no file is given
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	if *httpEnabled {
		cfg.HTTP.Enabled = true
	}

	logger := initLogger(cfg.Logging)

	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("destination", *destDir),
	)
	logger.Info("Configuration loaded",
		slog.Int("chunk_frames", cfg.Audio.ChunkFrames),
		slog.Int64("max_file_size_mib", cfg.Audio.MaxFileSizeMiB),
		slog.Int("batch_capacity", cfg.Batch.Capacity),
		slog.Bool("http_enabled", cfg.HTTP.Enabled),
		slog.String("log_level", cfg.Logging.Level),
	)

	if err := os.MkdirAll(*destDir, 0o755); err != nil {
		logger.Error("Failed to create destination directory", slog.String("error", err.Error()))
		return 1
	}

	inputs, err := collectInputs(flag.Args())
	if err != nil {
		logger.Error("Failed to collect input files", slog.String("error", err.Error()))
		return 1
	}
	if len(inputs) == 0 {
		logger.Error("No WAV files found in the given inputs")
		return 1
	}

	// Cancellation via Ctrl-C / SIGTERM; checked once per chunk
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appMetrics := metrics.NewMetrics()
	events := batch.NewEventBus(cfg.Batch.MaxEvents)

	jobs := batch.New(cfg.Batch.Capacity, cfg.Audio.MaxFileBytes())
	report := jobs.Add(inputs)
	for _, rejected := range report.Rejected {
		appMetrics.FilesRejected.Inc()
		logger.Warn("File rejected",
			slog.String("path", rejected.Path),
			slog.String("reason", rejected.Reason),
		)
	}
	if report.Truncated > 0 {
		appMetrics.BatchTruncated.Add(float64(report.Truncated))
		logger.Warn("Batch is full, excess files dropped",
			slog.Int("dropped", report.Truncated),
			slog.Int("capacity", cfg.Batch.Capacity),
		)
	}
	logger.Info("Batch assembled",
		slog.Int("jobs", len(report.Added)),
		slog.Int("rejected", len(report.Rejected)),
		slog.Int("truncated", report.Truncated),
	)

	var httpServer *server.HTTPServer
	if cfg.HTTP.Enabled {
		httpServer = server.NewHTTPServer(cfg.HTTP, logger, cfg, jobs, events, appMetrics)
		if err := httpServer.Start(); err != nil {
			logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
			return 1
		}
	}

	converter := audio.NewConverter(logger, cfg.Audio.ChunkFrames)
	sequencer := batch.NewSequencer(jobs, batch.SequencerConfig{
		DestDir:   *destDir,
		Converter: converter,
		Logger:    logger,
		Metrics:   appMetrics,
		Events:    events,
	})

	summary := sequencer.Run(ctx)

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
		}
	}

	logger.Info("Batch finished",
		slog.Int("completed", summary.Completed),
		slog.Int("failed", summary.Failed),
		slog.Int("pending", summary.Pending),
		slog.Int("total", summary.Total),
	)

	if summary.Failed > 0 || summary.Pending > 0 {
		return 1
	}
	return 0
}

// collectInputs expands the positional arguments into a flat, ordered file
// list. Directories contribute their immediate *.wav entries; other
// arguments pass through untouched so missing files become failed jobs
// instead of aborting the batch.
func collectInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			inputs = append(inputs, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
				inputs = append(inputs, filepath.Join(arg, entry.Name()))
			}
		}
	}
	return inputs, nil
}

// initLogger creates and configures the structured logger based on
// configuration.
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stdout":
		output = os.Stdout
	case "stderr", "":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stderr\n", cfg.Output, err)
			output = os.Stderr
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
