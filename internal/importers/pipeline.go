package importers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrlokans/pocket-migrate/internal/entities"
	"github.com/mrlokans/pocket-migrate/internal/logger"
	"github.com/mrlokans/pocket-migrate/internal/pocket"
	"github.com/mrlokans/pocket-migrate/internal/supabase"
)

const (
	defaultBatchSize = 50
	previewSize      = 3
)

// Store is the destination the links are written to.
type Store interface {
	// Probe checks the store can be reached without writing anything.
	Probe(ctx context.Context) error
	// Insert creates all links in one request.
	Insert(ctx context.Context, links []entities.Link) error
}

// Journal keeps a local record of runs. Journal errors never fail a run.
type Journal interface {
	BeginRun(run *entities.ImportRun) error
	CompleteRun(run *entities.ImportRun) error
}

// ConfirmFunc decides whether the previewed links may be sent.
type ConfirmFunc func(preview Preview) bool

// Decline is a ConfirmFunc that never approves.
func Decline(Preview) bool { return false }

// Approve is a ConfirmFunc that always approves.
func Approve(Preview) bool { return true }

// Options tune a run.
type Options struct {
	BatchSize  int
	BatchDelay time.Duration // Pause after every batch request
	RetryDelay time.Duration // Pause after every individual fallback request
	Status     string        // Only links with this status are loaded
}

// Importer drives a single import run.
type Importer struct {
	store     Store
	converter *Converter
	confirm   ConfirmFunc
	journal   Journal
	log       logger.Logger
	opts      Options
}

// NewImporter creates an importer. A nil confirm declines every run.
func NewImporter(store Store, converter *Converter, confirm ConfirmFunc, opts Options) *Importer {
	if confirm == nil {
		confirm = Decline
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Status == "" {
		opts.Status = "unread"
	}
	return &Importer{
		store:     store,
		converter: converter,
		confirm:   confirm,
		log:       logger.NewNop(),
		opts:      opts,
	}
}

// SetJournal attaches a run journal.
func (i *Importer) SetJournal(j Journal) {
	i.journal = j
}

// SetLogger replaces the default no-op logger.
func (i *Importer) SetLogger(l logger.Logger) {
	if l != nil {
		i.log = l
	}
}

// Run imports the links in the normalized file at path.
//
// A returned error wrapping ErrConnectionUnavailable or ErrLoadFailure means
// nothing was sent. A declined confirmation returns a cancelled result and a
// nil error. Failed batches and links are reported in the result, not as errors.
func (i *Importer) Run(ctx context.Context, path string) (result Result, err error) {
	result = Result{SourceFile: path, Stage: StageInit}

	run := i.beginRun(path)
	defer func() { i.completeRun(run, result, err) }()

	result.Stage = StageConnectionCheck
	if err := i.store.Probe(ctx); err != nil {
		i.log.Error("connection check failed", logger.Error(err))
		return result, fmt.Errorf("%w: %w", ErrConnectionUnavailable, err)
	}
	i.log.Info("connection check passed")

	result.Stage = StageLoad
	links, err := pocket.LoadUnreadFile(path, i.opts.Status)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrLoadFailure, err)
	}
	if len(links) == 0 {
		return result, fmt.Errorf("%w: no %s links in %s", ErrLoadFailure, i.opts.Status, path)
	}
	result.Loaded = len(links)
	i.log.Info("links loaded", logger.String("file", path), logger.Int("count", len(links)))

	result.Stage = StageConvert
	converted := make([]entities.Link, len(links))
	for n, link := range links {
		var fallback bool
		converted[n], fallback = i.converter.Convert(link)
		if fallback {
			result.TimestampFallbacks++
		}
	}
	if result.TimestampFallbacks > 0 {
		i.log.Warn("some links had no usable time_added, using current time",
			logger.Int("count", result.TimestampFallbacks))
	}

	result.Stage = StageConfirm
	if !i.confirm(buildPreview(links, converted, result.TimestampFallbacks)) {
		i.log.Info("import cancelled by operator")
		result.Cancelled = true
		return result, nil
	}

	result.Stage = StageBatchSend
	if err := i.sendBatches(ctx, converted, &result); err != nil {
		return result, err
	}

	result.Stage = StageReport
	return result, nil
}

func buildPreview(links []entities.PocketLink, converted []entities.Link, fallbacks int) Preview {
	n := min(previewSize, len(links))
	samples := make([]Sample, 0, n)
	for k := 0; k < n; k++ {
		samples = append(samples, Sample{Source: links[k], Link: converted[k]})
	}
	return Preview{Total: len(links), TimestampFallbacks: fallbacks, Samples: samples}
}

// sendBatches only returns an error when ctx ends between requests; the
// counts in result stay consistent with what was actually attempted.
func (i *Importer) sendBatches(ctx context.Context, links []entities.Link, result *Result) error {
	size := i.opts.BatchSize
	totalBatches := (len(links) + size - 1) / size

	for start := 0; start < len(links); start += size {
		end := min(start+size, len(links))
		batch := links[start:end]
		batchNum := start/size + 1

		i.log.Info("sending batch",
			logger.Int("batch", batchNum),
			logger.Int("of", totalBatches),
			logger.Int("links", len(batch)),
		)

		result.Batches++
		result.Attempted += len(batch)

		if err := i.store.Insert(ctx, batch); err != nil {
			// Counted as failed until individual sends prove otherwise.
			result.Failed += len(batch)
			msg := batchFailureMessage(batchNum, err)
			result.BatchFailures = append(result.BatchFailures, msg)
			i.log.Warn("batch failed, retrying links individually", logger.Int("batch", batchNum), logger.Error(err))

			if err := i.sendIndividually(ctx, batch, start, result); err != nil {
				return err
			}
		} else {
			result.Succeeded += len(batch)
			i.log.Info("batch created", logger.Int("batch", batchNum))
		}

		if err := pause(ctx, i.opts.BatchDelay); err != nil {
			return err
		}
	}

	return nil
}

func (i *Importer) sendIndividually(ctx context.Context, batch []entities.Link, offset int, result *Result) error {
	for n, link := range batch {
		index := offset + n + 1

		if err := i.store.Insert(ctx, []entities.Link{link}); err != nil {
			msg := individualFailureMessage(index, link.RawURL, err)
			result.Errors = append(result.Errors, msg)
			result.Failures = append(result.Failures, Failure{
				Index:   index,
				LinkID:  link.ID,
				URL:     link.RawURL,
				Message: msg,
			})
			i.log.Warn("link rejected", logger.Int("index", index), logger.String("url", link.RawURL), logger.Error(err))
		} else {
			result.Succeeded++
			result.Failed--
			i.log.Debug("link created", logger.Int("index", index), logger.String("url", link.RawURL))
		}

		if err := pause(ctx, i.opts.RetryDelay); err != nil {
			// Links of this batch not yet retried stay counted as failed.
			for k, rest := range batch[n+1:] {
				idx := index + k + 1
				msg := fmt.Sprintf("Individual %d skipped: %v - %s", idx, err, rest.RawURL)
				result.Errors = append(result.Errors, msg)
				result.Failures = append(result.Failures, Failure{Index: idx, LinkID: rest.ID, URL: rest.RawURL, Message: msg})
			}
			return err
		}
	}
	return nil
}

func batchFailureMessage(batchNum int, err error) string {
	var rejected *supabase.RejectedError
	if errors.As(err, &rejected) {
		return fmt.Sprintf("Batch %d failed: %s", batchNum, rejected.Error())
	}
	return fmt.Sprintf("Batch %d exception: %v", batchNum, err)
}

func individualFailureMessage(index int, url string, err error) string {
	var rejected *supabase.RejectedError
	if errors.As(err, &rejected) {
		return fmt.Sprintf("Individual %d failed: %d - %s", index, rejected.StatusCode, url)
	}
	return fmt.Sprintf("Individual %d exception: %v - %s", index, err, url)
}

func pause(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil || d <= 0 {
		return err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (i *Importer) beginRun(path string) *entities.ImportRun {
	if i.journal == nil {
		return nil
	}
	run := &entities.ImportRun{
		SourceFile: path,
		Status:     entities.RunStatusRunning,
		Stage:      string(StageInit),
		StartedAt:  time.Now(),
	}
	if err := i.journal.BeginRun(run); err != nil {
		i.log.Warn("failed to journal run start", logger.Error(err))
		return nil
	}
	return run
}

func (i *Importer) completeRun(run *entities.ImportRun, result Result, err error) {
	if run == nil {
		return
	}

	finished := time.Now()
	run.FinishedAt = &finished
	run.Stage = string(result.Stage)
	run.Loaded = result.Loaded
	run.Attempted = result.Attempted
	run.Succeeded = result.Succeeded
	run.Failed = result.Failed
	run.TimestampFallbacks = result.TimestampFallbacks

	switch {
	case err != nil:
		run.Status = entities.RunStatusAborted
		run.AbortReason = truncate(err.Error(), 500)
	case result.Cancelled:
		run.Status = entities.RunStatusCancelled
	default:
		run.Status = entities.RunStatusCompleted
	}

	run.Failures = make([]entities.ImportFailure, 0, len(result.Failures))
	for _, f := range result.Failures {
		run.Failures = append(run.Failures, entities.ImportFailure{
			Index:   f.Index,
			LinkID:  f.LinkID,
			RawURL:  f.URL,
			Message: truncate(f.Message, 1000),
		})
	}

	if err := i.journal.CompleteRun(run); err != nil {
		i.log.Warn("failed to journal run result", logger.Error(err))
	}
}

// truncate shortens s to at most maxLen runes without splitting a character.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
