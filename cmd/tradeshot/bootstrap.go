package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	s3blob "tradeshot/internal/blob/s3"
	"tradeshot/internal/eod"
	"tradeshot/internal/eod/eodobs"
	"tradeshot/internal/interfaces"
	"tradeshot/internal/journal"
	"tradeshot/internal/llm/claude"
	"tradeshot/internal/llm/deepseek"
	"tradeshot/internal/llm/llmobs"
	"tradeshot/internal/llm/noop"
	"tradeshot/internal/logger"
	"tradeshot/internal/normalize"
	"tradeshot/internal/notify"
	"tradeshot/internal/notify/notifyobs"
	"tradeshot/internal/ocr"
	"tradeshot/internal/ocr/ocrobs"
	"tradeshot/internal/pipeline"
	"tradeshot/internal/pipeline/pipelineobs"
	"tradeshot/internal/store"
	"tradeshot/internal/trace"
	"tradeshot/internal/tradelog"
)

// initializeSystem loads .env and starts logging and tracing.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(logger.ServiceName, logger.ServiceVersion); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func shutdownSystem(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	_ = trace.Shutdown(ctx)
}

func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig(cfgFile)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", cfgFile)
		return nil, err
	}
	return cfg, nil
}

// app is everything a command needs, built once from the config.
type app struct {
	cfg       *store.Config
	store     *tradelog.Store
	processor interfaces.Processor
	journal   *journal.SQLite
}

func (a *app) Close() {
	if a.journal != nil {
		a.journal.Close()
	}
}

// buildApp wires the pipeline. publisher may be nil; overrides apply flag
// values on top of the loaded config.
func buildApp(ctx context.Context, publisher pipeline.Publisher, overrides ...func(*store.Config)) (*app, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("prepare %s: %w", dir, err)
		}
	}

	st := tradelog.New(cfg.Paths.LogDir, cfg.Paths.OutputDir)
	summaries := initializeEOD(st, cfg.Paths.SummaryDir)

	provider := initializeProvider(ctx, cfg)
	var summarizer interfaces.Summarizer
	if cfg.LLM.Summary.Enabled && cfg.LLM.Provider != "NONE" {
		summarizer = provider
	}

	a := &app{cfg: cfg, store: st}
	deps := pipeline.Deps{
		Recognizer: initializeRecognizer(ctx, cfg),
		Analyzer:   provider,
		Normalizer: normalize.New(),
		Store:      st,
		Dispatcher: notify.NewDispatcher(initializeSender(ctx, cfg), summarizer, st),
		Archiver:   initializeArchiver(ctx, cfg),
		Publisher:  publisher,
		Summaries:  summaries,
	}

	if cfg.Journal.SQLitePath != "" {
		j, err := journal.NewSQLite(cfg.Journal.SQLitePath)
		if err != nil {
			logger.Warn(ctx, "SQLite journal unavailable, continuing without it", "path", cfg.Journal.SQLitePath, "error", err)
		} else {
			a.journal = j
			deps.Journal = j
		}
	}

	proc := pipeline.New(deps, pipeline.Settings{
		OCRTimeout: cfg.OCR.Timeout,
		LLMTimeout: cfg.LLM.Timeout,
		Workers:    cfg.Pipeline.Workers,
	})
	if a.journal != nil {
		if added, err := proc.SyncJournal(ctx); err != nil {
			logger.Warn(ctx, "Journal backfill failed", "error", err)
		} else if added > 0 {
			logger.Info(ctx, "Journal backfilled from trade log", "trades", added)
		}
	}
	a.processor = pipelineobs.Wrap(proc)
	return a, nil
}

func initializeRecognizer(ctx context.Context, cfg *store.Config) interfaces.Recognizer {
	if cfg.OCR.Provider == "NONE" {
		logger.Warn(ctx, "OCR disabled - screenshots will yield no text")
		return ocrobs.Wrap(ocr.Noop{})
	}
	return ocrobs.Wrap(ocr.NewTesseract(cfg.OCR.Binary, cfg.OCR.Language))
}

func initializeProvider(ctx context.Context, cfg *store.Config) llmobs.Provider {
	var provider llmobs.Provider
	switch cfg.LLM.Provider {
	case "DEEPSEEK":
		provider = deepseek.NewAnalyzer(cfg)
	case "CLAUDE":
		provider = claude.NewAnalyzer(cfg)
	default:
		provider = noop.NewAnalyzer()
		logger.Warn(ctx, "No LLM provider configured - falling back to text heuristics")
	}
	return llmobs.Wrap(provider)
}

func initializeSender(ctx context.Context, cfg *store.Config) interfaces.Sender {
	if !cfg.EmailConfigured() {
		logger.Debug(ctx, "Email notifications not configured")
		return nil
	}
	return notifyobs.Wrap(notify.NewSendGrid(notify.SendGridParams{
		Endpoint: cfg.Email.Endpoint,
		APIKey:   cfg.Email.APIKey,
		From:     cfg.Email.From,
		To:       cfg.Email.To,
		Timeout:  cfg.Email.Timeout,
	}))
}

func initializeArchiver(ctx context.Context, cfg *store.Config) pipeline.Archiver {
	if !cfg.Archive.Enabled {
		return nil
	}
	client, err := s3blob.New(ctx, s3blob.ClientConfig{
		Endpoint:       cfg.Archive.Endpoint,
		Region:         cfg.Archive.Region,
		Bucket:         cfg.Archive.Bucket,
		AccessKey:      cfg.Archive.AccessKey,
		SecretKey:      cfg.Archive.SecretKey,
		UseSSL:         cfg.Archive.UseSSL,
		ForcePathStyle: cfg.Archive.ForcePathStyle,
	})
	if err != nil {
		logger.Warn(ctx, "S3 archive unavailable, continuing without it", "error", err)
		return nil
	}
	return s3blob.NewArchiver(client, cfg.Archive.Bucket, cfg.Archive.Prefix)
}

// initializeEOD installs the observable daily summarizer as the package
// default and returns it for the pipeline's per-trade refresh.
func initializeEOD(source eod.RecordSource, summaryDir string) interfaces.EodSummarizer {
	summarizer := eodobs.Wrap(eod.NewSummarizer(source, summaryDir))
	eod.SetDefaultSummarizer(summarizer)
	return summarizer
}

// compressOldLogs gzips rotated logs when retention is configured.
func compressOldLogs(ctx context.Context, st *tradelog.Store, days int) {
	if days <= 0 {
		return
	}
	compressed, err := st.CompressOlder(days)
	if err != nil {
		logger.Warn(ctx, "Failed to compress old logs", "error", err)
		return
	}
	if len(compressed) > 0 {
		logger.Info(ctx, "Compressed old logs", "files", compressed)
	}
}
