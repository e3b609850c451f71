package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"tradeshot/internal/eod"
	"tradeshot/internal/interfaces"
	"tradeshot/internal/logger"
	"tradeshot/internal/normalize"
	"tradeshot/internal/notify"
	"tradeshot/internal/ocr"
	"tradeshot/internal/types"
)

const (
	DefaultOCRTimeout = 60 * time.Second
	DefaultLLMTimeout = 30 * time.Second
)

var ErrCancelled = errors.New("cancelled")

// Archiver copies a stored trade somewhere durable.
type Archiver interface {
	ArchiveTrade(ctx context.Context, rec types.TradeRecord) ([]string, error)
}

// Journal mirrors stored trades for lookups and stats.
type Journal interface {
	RecordTrade(ctx context.Context, rec types.TradeRecord) error
	Backfill(ctx context.Context, recs []types.TradeRecord) (int, error)
	GetTrade(ctx context.Context, tradeID string) (types.TradeRecord, error)
	Stats(ctx context.Context) (types.Stats, error)
}

// Publisher receives every finished result, e.g. the dashboard live feed.
type Publisher interface {
	Publish(res types.Result)
}

// Deps are the collaborators of a Processor. Store is required; the rest may
// be nil.
type Deps struct {
	Recognizer interfaces.Recognizer
	Analyzer   interfaces.Analyzer
	Normalizer *normalize.Normalizer
	Store      interfaces.TradeStore
	Dispatcher *notify.Dispatcher
	Archiver   Archiver
	Journal    Journal
	Publisher  Publisher
	// Summaries, when set, rewrites the day's summary after every logged trade.
	Summaries  interfaces.EodSummarizer
}

type Settings struct {
	OCRTimeout time.Duration
	LLMTimeout time.Duration
	Workers    int
}

type Processor struct {
	deps     Deps
	settings Settings
}

var _ interfaces.Processor = (*Processor)(nil)

func New(deps Deps, settings Settings) *Processor {
	if deps.Recognizer == nil {
		deps.Recognizer = ocr.Noop{}
	}
	if deps.Normalizer == nil {
		deps.Normalizer = normalize.New()
	}
	if settings.OCRTimeout <= 0 {
		settings.OCRTimeout = DefaultOCRTimeout
	}
	if settings.LLMTimeout <= 0 {
		settings.LLMTimeout = DefaultLLMTimeout
	}
	if settings.Workers < 1 {
		settings.Workers = 1
	}
	return &Processor{deps: deps, settings: settings}
}

// ProcessSingle runs one screenshot through the whole pipeline. It always
// returns a result; collaborator failures become warnings and the record is
// stored with whatever could be recovered.
func (p *Processor) ProcessSingle(ctx context.Context, imagePath string, sendEmail bool) types.Result {
	op := logger.StartOperation(ctx, "pipeline.ProcessSingle", "image", imagePath)
	ctx = op.GetContext()

	if _, err := os.Stat(imagePath); err != nil {
		op.EndWithError(err)
		return types.Result{Image: imagePath, Error: fmt.Sprintf("image not found: %s", imagePath)}
	}

	var warnings []string

	recog, err := p.recognize(ctx, imagePath)
	if err != nil {
		warnings = append(warnings, "text recognition failed: "+err.Error())
	}

	var analysis string
	if recog.Text != "" {
		analysis, err = p.analyze(ctx, recog.Text, imagePath)
		if err != nil {
			warnings = append(warnings, "analysis failed: "+err.Error())
			analysis = ""
		}
	}

	rec := p.deps.Normalizer.Normalize(recog.Text, analysis, recog.Confidence, imagePath)
	logger.Trade(ctx, rec.TradeID, rec.Ticker, string(rec.Direction), pnlString(rec), rec.Confidence)

	storage := p.deps.Store.Append(rec)
	if storage.LogErr != nil {
		logger.ErrorWithErr(ctx, "Trade log append failed", storage.LogErr, "trade_id", rec.TradeID)
	} else if p.deps.Summaries != nil {
		if _, err := p.deps.Summaries.SummarizeDay(rec.Timestamp); err != nil {
			warnings = append(warnings, "daily summary failed: "+err.Error())
			logger.Warn(ctx, "Daily summary refresh failed", "trade_id", rec.TradeID, "error", err)
		}
	}
	if storage.FileErr != nil {
		warnings = append(warnings, "record file write failed: "+storage.FileErr.Error())
		logger.Warn(ctx, "Record file write failed", "trade_id", rec.TradeID, "error", storage.FileErr)
	}

	status := p.deps.Dispatcher.DecideAndDispatch(ctx, rec, sendEmail, p.deps.Dispatcher.Available())

	res := Assemble(rec, storage, status)

	if p.deps.Archiver != nil {
		keys, err := p.deps.Archiver.ArchiveTrade(ctx, rec)
		res.ArchiveKeys = keys
		if err != nil {
			warnings = append(warnings, "archive failed: "+err.Error())
			logger.Warn(ctx, "Archive failed", "trade_id", rec.TradeID, "error", err)
		}
	}

	if p.deps.Journal != nil {
		if err := p.deps.Journal.RecordTrade(ctx, res.Record); err != nil {
			warnings = append(warnings, "journal write failed: "+err.Error())
			logger.Warn(ctx, "Journal write failed", "trade_id", rec.TradeID, "error", err)
		}
	}

	res.Warnings = warnings
	if p.deps.Publisher != nil {
		p.deps.Publisher.Publish(res)
	}

	op.End("trade_id", rec.TradeID, "warnings", len(warnings))
	return res
}

func (p *Processor) recognize(ctx context.Context, imagePath string) (types.Recognition, error) {
	ctx, cancel := context.WithTimeout(ctx, p.settings.OCRTimeout)
	defer cancel()

	recog, err := p.deps.Recognizer.Recognize(ctx, imagePath)
	if err != nil {
		return types.Recognition{}, err
	}
	return recog, nil
}

func (p *Processor) analyze(ctx context.Context, rawText, imagePath string) (string, error) {
	if p.deps.Analyzer == nil {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.settings.LLMTimeout)
	defer cancel()
	return p.deps.Analyzer.Analyze(ctx, rawText, imagePath)
}

// ProcessBatch processes a file or every screenshot in a directory with up to
// Settings.Workers images in flight. Cancellation is checked between images;
// images that never started get a "cancelled" result. Details keep input
// order.
func (p *Processor) ProcessBatch(ctx context.Context, path string, sendEmail bool) (types.BatchResult, error) {
	images, err := ResolveImages(path)
	if err != nil {
		return types.BatchResult{}, err
	}

	logger.Info(ctx, "Batch started", "path", path, "images", len(images), "workers", p.settings.Workers)

	details := make([]types.Result, len(images))
	var g errgroup.Group
	g.SetLimit(p.settings.Workers)
	for i, img := range images {
		i, img := i, img
		if ctx.Err() != nil {
			details[i] = cancelled(img)
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				details[i] = cancelled(img)
				return nil
			}
			details[i] = p.ProcessSingle(ctx, img, sendEmail)
			return nil
		})
	}
	_ = g.Wait()

	batch := types.BatchResult{Total: len(details), Details: details}
	for _, r := range details {
		if r.Error == "" {
			batch.OK++
		} else {
			batch.Fail++
		}
		if r.EmailSent {
			batch.EmailsSent++
		}
		if r.NotificationStatus.Kind == types.NotificationFailed {
			batch.EmailFailures++
		}
	}

	logger.Info(ctx, "Batch finished",
		"total", batch.Total,
		"ok", batch.OK,
		"fail", batch.Fail,
		"emails_sent", batch.EmailsSent,
	)
	return batch, nil
}

func cancelled(img string) types.Result {
	return types.Result{Image: img, Error: ErrCancelled.Error()}
}

func (p *Processor) SearchLogs(query string, limit int) ([]types.TradeRecord, error) {
	return p.deps.Store.Search(query, limit)
}

func (p *Processor) LatestTrade() (types.TradeRecord, error) {
	return p.deps.Store.Latest()
}

// Trade looks tradeID up in the journal, falling back to its record file.
func (p *Processor) Trade(ctx context.Context, tradeID string) (types.TradeRecord, error) {
	if p.deps.Journal != nil {
		if rec, err := p.deps.Journal.GetTrade(ctx, tradeID); err == nil {
			return rec, nil
		}
	}
	return p.deps.Store.Record(tradeID)
}

// SyncJournal copies trades the journal is missing from the trade log, which
// stays the source of truth. It is a no-op without a journal.
func (p *Processor) SyncJournal(ctx context.Context) (int, error) {
	if p.deps.Journal == nil {
		return 0, nil
	}
	recs, err := p.deps.Store.All()
	if err != nil {
		return 0, fmt.Errorf("read trade log: %w", err)
	}
	return p.deps.Journal.Backfill(ctx, recs)
}

// Stats aggregates the journal when one is configured, the trade log otherwise.
// Callers keep the journal complete with SyncJournal.
func (p *Processor) Stats(ctx context.Context) (types.Stats, error) {
	if p.deps.Journal != nil {
		return p.deps.Journal.Stats(ctx)
	}
	recs, err := p.deps.Store.All()
	if err != nil {
		return types.Stats{}, err
	}
	return eod.ComputeStats(recs), nil
}

func pnlString(rec types.TradeRecord) string {
	if rec.PnLAmount == nil {
		return ""
	}
	return rec.PnLAmount.String()
}
