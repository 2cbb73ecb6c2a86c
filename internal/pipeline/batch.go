package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Stats summarizes one batch cycle.
type Stats struct {
	Processed int
	Skipped   int
	Failed    int
}

// Total returns the number of documents considered this cycle.
func (s Stats) Total() int { return s.Processed + s.Skipped + s.Failed }

// RunBatch lists the source's documents and runs each through the
// processor. A failed document is counted and logged but does not stop
// the cycle; it stays unmarked for the next one. concurrency bounds the
// number of documents in flight at once.
func (p *Processor) RunBatch(ctx context.Context, concurrency int) (Stats, error) {
	docs, err := p.source.List(ctx)
	if err != nil {
		return Stats{}, eris.Wrap(err, "pipeline: list documents")
	}
	if len(docs) == 0 {
		return Stats{}, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu    sync.Mutex
		stats Stats
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			outcome, err := p.Process(ctx, doc)
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case OutcomeProcessed:
				stats.Processed++
			case OutcomeSkipped:
				stats.Skipped++
			case OutcomeFailed:
				stats.Failed++
				p.log.Errorw("document failed",
					"document", doc.ID,
					"error", err)
			}
			// Only context cancellation aborts the cycle.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	zap.S().Infow("batch complete",
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return stats, nil
}
