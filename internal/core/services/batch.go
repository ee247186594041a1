package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.BatchProcessor = (*Orchestrator)(nil)

// BatchConfig configures the orchestrator.
type BatchConfig struct {
	// Workers is used when BatchOptions.Workers is zero.
	Workers int

	// Timeout bounds a whole batch. Zero means no deadline beyond ctx.
	Timeout time.Duration
}

// Orchestrator processes many files with per-file isolation.
type Orchestrator struct {
	pipeline *Pipeline
	cfg      BatchConfig

	mu        sync.RWMutex
	listeners []domain.ProgressFunc

	now func() time.Time
}

// NewOrchestrator creates a batch orchestrator.
func NewOrchestrator(pipeline *Pipeline, cfg BatchConfig) *Orchestrator {
	return &Orchestrator{
		pipeline: pipeline,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// OnProgress registers fn to receive an event after every file.
func (o *Orchestrator) OnProgress(fn domain.ProgressFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, fn)
}

// Process runs files through the pipeline.
// The deadline is checked before each file starts; a started file runs to
// completion. Per-file failures are recorded in the report; the returned
// error is always nil.
func (o *Orchestrator) Process(
	ctx context.Context, files []domain.InputFile, opts domain.BatchOptions,
) (*domain.BatchReport, error) {
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	workers := opts.Workers
	if workers == 0 {
		workers = o.cfg.Workers
	}

	logger.Section("Batch")
	logger.Debug("files=%d workers=%d tables=%t persist=%t save=%t",
		len(files), workers, opts.ExtractTables, opts.Persist, opts.SaveToFiles)

	run := &batchRun{
		report: domain.NewBatchReport(len(files), o.now()),
		emit:   o.emit,
		total:  len(files),
	}

	if workers <= 1 {
		o.sequential(ctx, run, files, opts)
	} else {
		o.parallel(ctx, run, files, opts, workers)
	}

	run.report.Finish(o.now())
	run.report.Stats = o.pipeline.stats(context.WithoutCancel(ctx))
	logger.Info("batch finished: %d processed, %d failed in %s",
		len(run.report.Processed), len(run.report.Failed), run.report.TotalDuration)
	return run.report, nil
}

// sequential processes files strictly in input order.
func (o *Orchestrator) sequential(ctx context.Context, run *batchRun, files []domain.InputFile, opts domain.BatchOptions) {
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(files); j++ {
				run.record(j, files[j].Filename, nil, notStarted(err))
			}
			return
		}
		res, err := o.pipeline.process(context.WithoutCancel(ctx), file, opts)
		run.record(i, file.Filename, res, err)
	}
}

// parallel processes files with at most workers in flight.
// Report entries are ordered by completion.
func (o *Orchestrator) parallel(
	ctx context.Context, run *batchRun, files []domain.InputFile, opts domain.BatchOptions, workers int,
) {
	var g errgroup.Group
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				run.record(i, file.Filename, nil, notStarted(err))
				return nil
			}
			res, err := o.pipeline.process(context.WithoutCancel(ctx), file, opts)
			run.record(i, file.Filename, res, err)
			return nil
		})
	}
	_ = g.Wait()
}

func (o *Orchestrator) emit(ev domain.ProgressEvent) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, fn := range o.listeners {
		fn(ev)
	}
}

// notStarted wraps the deadline error for a file that never ran.
func notStarted(err error) error {
	return fmt.Errorf("not started before batch deadline: %w", err)
}

// batchRun collects results from one Process call.
type batchRun struct {
	mu        sync.Mutex
	report    *domain.BatchReport
	completed int
	total     int
	emit      func(domain.ProgressEvent)
}

// record adds a file result to the report and emits progress.
func (r *batchRun) record(index int, filename string, res *ingestResult, err error) {
	r.mu.Lock()
	ev := domain.ProgressEvent{
		Filename: filename,
		Index:    index,
		Total:    r.total,
		At:       time.Now().UTC(),
	}
	if err != nil {
		logger.Warn("%s failed: %v", filename, err)
		r.report.AddFailed(filename, err)
		ev.Error = err.Error()
	} else {
		r.report.AddProcessed(res.outcome)
		ev.Success = true
		ev.Duplicate = res.outcome.Duplicate
	}
	r.completed++
	ev.Completed = r.completed
	r.mu.Unlock()

	r.emit(ev)
}
