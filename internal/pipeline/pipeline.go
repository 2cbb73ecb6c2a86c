// Package pipeline drives the intake flow: list documents, skip the ones
// already processed, extract fields, resolve the sales rep, write ledger
// rows, and mark the document done.
package pipeline

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contract-intake/internal/dedup"
	"github.com/sells-group/contract-intake/internal/extract"
	"github.com/sells-group/contract-intake/internal/ledger"
	"github.com/sells-group/contract-intake/internal/model"
	"github.com/sells-group/contract-intake/internal/source"
)

// Outcome classifies what happened to a single document.
type Outcome int

const (
	// OutcomeProcessed means the document was extracted, written, and marked.
	OutcomeProcessed Outcome = iota
	// OutcomeSkipped means the document was already in the processed set.
	OutcomeSkipped
	// OutcomeFailed means extraction or writing failed; the document stays
	// unmarked and is re-attempted on a later cycle.
	OutcomeFailed
)

// Processor runs the per-document intake sequence.
type Processor struct {
	source    source.Source
	texts     source.TextProvider
	extractor *extract.Extractor
	resolver  resolver
	writer    writer
	processed dedup.ProcessedSet
	gate      *dedup.Gate

	// sourceName tags marked documents with where they came from.
	sourceName string
	// markProcessed can be disabled for dry runs.
	markProcessed bool

	log *zap.SugaredLogger
}

// resolver and writer are the narrow views of internal/match and
// internal/ledger the processor needs; tests substitute fakes.
type resolver interface {
	Resolve(raw string) model.MatchResult
}

type writer interface {
	Write(ctx context.Context, rec *model.ContractRecord, res model.MatchResult) *ledger.Report
}

// Options configures a Processor.
type Options struct {
	Source        source.Source
	Texts         source.TextProvider
	Extractor     *extract.Extractor
	Resolver      resolver
	Writer        writer
	Processed     dedup.ProcessedSet
	SourceName    string
	MarkProcessed bool
}

// New creates a Processor.
func New(opts Options) *Processor {
	return &Processor{
		source:        opts.Source,
		texts:         opts.Texts,
		extractor:     opts.Extractor,
		resolver:      opts.Resolver,
		writer:        opts.Writer,
		processed:     opts.Processed,
		gate:          dedup.NewGate(),
		sourceName:    opts.SourceName,
		markProcessed: opts.MarkProcessed,
		log:           zap.S().Named("pipeline"),
	}
}

// Process runs one document through the full sequence. The document is
// marked processed only after every ledger write succeeded, so a partial
// failure leaves it eligible for a clean re-run.
func (p *Processor) Process(ctx context.Context, doc model.Document) (Outcome, error) {
	release := p.gate.Acquire(doc.ID)
	defer release()

	seen, err := p.processed.Contains(ctx, doc.ID)
	if err != nil {
		return OutcomeFailed, eris.Wrapf(err, "pipeline: dedup check for %s", doc.ID)
	}
	if seen {
		p.log.Debugw("document already processed", "document", doc.ID)
		return OutcomeSkipped, nil
	}

	text, err := source.Text(ctx, p.source, p.texts, doc)
	if err != nil {
		return OutcomeFailed, eris.Wrapf(err, "pipeline: read %s", doc.ID)
	}

	rec, err := p.extractor.Extract(doc, text)
	if err != nil {
		var extErr *extract.ExtractionError
		if errors.As(err, &extErr) {
			p.log.Warnw("extraction failed",
				"document", doc.ID,
				"missing_fields", extErr.MissingFields)
		}
		return OutcomeFailed, err
	}

	res := p.resolver.Resolve(rec.SalesRep)
	if !res.Matched {
		p.log.Infow("sales rep unmatched, routing to backup",
			"document", doc.ID,
			"raw_name", rec.SalesRep,
			"best_candidate", res.Identity,
			"score", res.Score)
	}

	report := p.writer.Write(ctx, rec, res)
	if !report.Succeeded() {
		return OutcomeFailed, eris.Wrapf(report.Err(), "pipeline: write %s", doc.ID)
	}

	if p.markProcessed {
		if err := p.processed.Mark(ctx, doc.ID, p.sourceName); err != nil {
			return OutcomeFailed, eris.Wrapf(err, "pipeline: mark %s", doc.ID)
		}
	}

	p.log.Infow("document processed",
		"document", doc.ID,
		"sales_rep", res.Identity,
		"matched", res.Matched)
	return OutcomeProcessed, nil
}
