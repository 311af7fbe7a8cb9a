// =============================================================================
// UltiSales Ingest - Batch Conversion
// =============================================================================
//
// Converts many files concurrently, one result per file.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/ultisales-ingest/internal/config"
	"github.com/ginjaninja78/ultisales-ingest/internal/ingest"
)

// Input is one file of a submission. When Data is nil the file is read
// from Path; Name defaults to Path.
type Input struct {
	Name string
	Path string
	Data []byte
}

func (in Input) name() string {
	if in.Name != "" {
		return in.Name
	}
	return in.Path
}

// BatchResult is the outcome of one submission.
type BatchResult struct {
	// Results holds one entry per input, in submission order.
	Results []Result

	// Committed is true when the batch's datasets and reports were added
	// to the session.
	Committed bool

	Succeeded int
	Failed    int
}

// Errors returns the errors of the failed files, in submission order.
func (b *BatchResult) Errors() []error {
	var errs []error
	for _, r := range b.Results {
		if r.Error != nil {
			errs = append(errs, r.Error)
		}
	}
	return errs
}

// =============================================================================
// SESSION
// =============================================================================

// Session accumulates datasets and ingestion reports across submissions.
//
// Datasets are kept in submission order, oldest first. Reports are kept
// newest batch first: each batch's reports are placed, in their own
// submission order, ahead of the reports of earlier batches.
type Session struct {
	conv           *Converter
	policy         string
	maxConcurrency int

	mu       sync.Mutex
	datasets []*ingest.NormalizedDataset
	reports  []*ingest.IngestionReport
}

// NewSession creates an empty session.
//
// PARAMETERS:
//   - conv: The converter used for every file.
//   - policy: config.PolicyCollect or config.PolicyAbort.
//   - maxConcurrency: Maximum files parsed at once; values below 1 mean 1.
func NewSession(conv *Converter, policy string, maxConcurrency int) *Session {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	if policy != config.PolicyAbort {
		policy = config.PolicyCollect
	}
	return &Session{conv: conv, policy: policy, maxConcurrency: maxConcurrency}
}

// Submit parses a batch of files in parallel and commits the outcome.
//
// COLLECT POLICY:
//   Successful files are committed, failed files are reported in the
//   BatchResult. The returned error wraps ErrAllFilesFailed only when no
//   file succeeded.
//
// ABORT POLICY:
//   The first failure cancels files that have not been read yet, nothing is
//   committed, and the returned error wraps ErrBatchAborted and the first
//   *FileError.
func (s *Session) Submit(ctx context.Context, inputs []Input) (*BatchResult, error) {
	batch := &BatchResult{Results: make([]Result, len(inputs))}
	if len(inputs) == 0 {
		return batch, nil
	}

	var firstErr error
	if s.policy == config.PolicyAbort {
		firstErr = s.runAbort(ctx, inputs, batch.Results)
	} else {
		s.runCollect(ctx, inputs, batch.Results)
	}

	for _, r := range batch.Results {
		if r.Success {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}

	switch {
	case firstErr != nil:
		return batch, fmt.Errorf("%w: %w", ErrBatchAborted, firstErr)
	case batch.Succeeded == 0:
		return batch, fmt.Errorf("%w: %w", ErrAllFilesFailed, errors.Join(batch.Errors()...))
	}

	s.commit(batch.Results)
	batch.Committed = true
	return batch, nil
}

// runCollect processes every input; failures stay in their Result.
func (s *Session) runCollect(ctx context.Context, inputs []Input, results []Result) {
	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)

	for i, in := range inputs {
		g.Go(func() error {
			results[i] = s.process(ctx, in)
			return nil
		})
	}
	_ = g.Wait()
}

// runAbort stops starting new files after the first failure and returns it.
func (s *Session) runAbort(ctx context.Context, inputs []Input, results []Result) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	for i, in := range inputs {
		g.Go(func() error {
			results[i] = s.process(gctx, in)
			return results[i].Error
		})
	}
	return g.Wait()
}

// process runs the read step (when needed) and the pure conversion.
func (s *Session) process(ctx context.Context, in Input) Result {
	name := in.name()
	data := in.Data
	if data == nil {
		var err error
		data, err = s.conv.ReadFile(ctx, in.Path)
		if err != nil {
			s.conv.logger.Error("failed to read file", "file", name, "err", err)
			return Result{FilePath: name, Error: err}
		}
	} else if err := ctx.Err(); err != nil {
		return Result{FilePath: name, Error: &FileError{File: name, Stage: StageRead, Err: err}}
	}
	return s.conv.Convert(name, data)
}

// commit appends the batch's datasets and prepends its reports block.
func (s *Session) commit(results []Result) {
	var (
		datasets []*ingest.NormalizedDataset
		reports  []*ingest.IngestionReport
	)
	for _, r := range results {
		if !r.Success {
			continue
		}
		datasets = append(datasets, r.Dataset)
		reports = append(reports, r.Report)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.datasets = append(s.datasets, datasets...)
	s.reports = append(reports, s.reports...)
}

// Datasets returns a snapshot of the committed datasets, oldest first.
func (s *Session) Datasets() []*ingest.NormalizedDataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ingest.NormalizedDataset(nil), s.datasets...)
}

// Reports returns a snapshot of the committed reports, newest batch first.
func (s *Session) Reports() []*ingest.IngestionReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ingest.IngestionReport(nil), s.reports...)
}
