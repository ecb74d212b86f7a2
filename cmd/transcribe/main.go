package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/skypro1111/transcribe-pipeline/internal/audio"
	"github.com/skypro1111/transcribe-pipeline/internal/config"
	"github.com/skypro1111/transcribe-pipeline/internal/metrics"
	"github.com/skypro1111/transcribe-pipeline/internal/remote"
	"github.com/skypro1111/transcribe-pipeline/internal/source"
	"github.com/skypro1111/transcribe-pipeline/internal/transcribe"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "transcribe-pipeline"
	serviceVersion    = "1.0.0"

	apiKeyEnv = "TRANSCRIBE_API_KEY"
)

var (
	flagConfig     string
	flagTimestamps bool
	flagOutput     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "transcribe [audio file]",
		Short:        "Transcribe a long audio file against the remote transcription service",
		Args:         cobra.ExactArgs(1),
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&flagConfig, "config", defaultConfigPath, "Path to configuration file")
	rootCmd.Flags().BoolVar(&flagTimestamps, "timestamps", false, "Request subtitle-formatted output with timings")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write the transcript to a file instead of stdout")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// A .env next to the binary may carry the API key.
	_ = godotenv.Load()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	apiKey := cfg.Remote.APIKey
	if env := os.Getenv(apiKeyEnv); env != "" {
		apiKey = env
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set remote.api_key or %s", apiKeyEnv)
	}

	logger := initLogger(cfg.Logging)
	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", flagConfig),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appMetrics := metrics.NewMetrics()

	direct, err := remote.NewDirectClient(remote.DirectConfig{
		Endpoint:    cfg.Direct.Endpoint,
		APIKey:      apiKey,
		Timeout:     cfg.Direct.GetTimeoutDuration(),
		Language:    cfg.Direct.Language,
		Model:       cfg.Direct.Model,
		Prompt:      cfg.Direct.Prompt,
		Temperature: cfg.Direct.Temperature,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create transcription client: %w", err)
	}

	var jobs transcribe.JobRunner
	if cfg.Remote.Enabled {
		jobClient, err := remote.NewClient(remote.Config{
			BaseURL:      cfg.Remote.BaseURL,
			APIKey:       apiKey,
			HTTPTimeout:  cfg.Remote.GetTimeoutDuration(),
			PollInterval: cfg.Remote.GetPollInterval(),
			KickInterval: cfg.Remote.GetKickInterval(),
			PollBudget:   cfg.Remote.GetPollBudget(),
		}, logger, appMetrics)
		if err != nil {
			return fmt.Errorf("failed to create job client: %w", err)
		}
		jobs = jobClient
	}

	scheduler := transcribe.NewScheduler(transcribe.SchedulerConfig{
		MaxConcurrent: cfg.Scheduler.MaxConcurrent,
		MaxRetries:    cfg.Scheduler.MaxRetries,
	}, logger, appMetrics)

	orchestrator, err := transcribe.NewOrchestrator(transcribe.OrchestratorConfig{
		DirectUploadMaxBytes: cfg.Direct.MaxUploadBytes,
		HardMaxBytes:         cfg.Limits.MaxInputBytes,
		Local: transcribe.LocalConfig{
			TargetSampleRate: cfg.Audio.TargetSampleRate,
			MaxChunkBytes:    cfg.Audio.MaxChunkBytes,
			OverlapSeconds:   cfg.Audio.OverlapSeconds,
		},
	}, scheduler, jobs, direct, audio.WAVDecoder{}, logger, appMetrics)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	src, err := source.OpenFile(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	logWAVInfo(logger, src)

	progress := transcribe.ProgressFunc(func(percent int, status string) {
		fmt.Fprintf(os.Stderr, "\r[%3d%%] %-50s", percent, status)
	})

	text, err := orchestrator.Transcribe(ctx, src, transcribe.Options{
		Timestamped: flagTimestamps,
	}, progress)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("%s", transcribe.UserMessage(err))
	}

	stats := scheduler.GetStats()
	logger.Info("Transcription finished",
		slog.String("file", src.Name()),
		slog.Uint64("attempts", stats.TotalAttempts),
		slog.Uint64("retries", stats.RetryCount),
		slog.Int("transcript_bytes", len(text)),
	)

	if flagOutput != "" {
		if err := os.WriteFile(flagOutput, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write transcript: %w", err)
		}
		return nil
	}

	fmt.Println(text)
	return nil
}

// logWAVInfo logs the audio format of a WAV input up front. A malformed
// header is only a warning here; the service may still accept the file.
func logWAVInfo(logger *slog.Logger, src *source.FileSource) {
	if src.ContentType() != "audio/wav" {
		return
	}

	header := make([]byte, audio.WAVHeaderBytes)
	if _, err := src.ReadAt(header, 0); err != nil {
		return
	}

	info, err := audio.GetWAVInfo(header)
	if err != nil {
		logger.Warn("WAV header looks malformed",
			slog.String("file", src.Name()),
			slog.String("error", err.Error()),
		)
		return
	}

	logger.Info("Audio format",
		slog.String("file", src.Name()),
		slog.Uint64("sample_rate", uint64(info.SampleRate)),
		slog.Uint64("channels", uint64(info.Channels)),
		slog.Uint64("bits_per_sample", uint64(info.BitsPerSample)),
		slog.Float64("duration_seconds", info.Duration),
	)
}

// initLogger creates and configures the structured logger based on configuration
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
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
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
