package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contract-intake/internal/dedup"
	"github.com/sells-group/contract-intake/internal/extract"
	"github.com/sells-group/contract-intake/internal/ledger"
	"github.com/sells-group/contract-intake/internal/match"
	"github.com/sells-group/contract-intake/internal/pipeline"
	"github.com/sells-group/contract-intake/internal/source"
	"github.com/sells-group/contract-intake/pkg/sheets"
)

// intakeEnv holds the initialized store, registry, and processor shared
// by the run/batch/watch commands.
type intakeEnv struct {
	Processed dedup.ProcessedSet
	Registry  *match.Registry
	Processor *pipeline.Processor
	Source    source.Source
}

// Close releases resources held by the environment.
func (e *intakeEnv) Close() {
	if e.Processed != nil {
		_ = e.Processed.Close()
	}
}

// initIntake wires the document source, extractor, resolver, ledgers, and
// processed-document store into a Processor. Callers should defer
// env.Close().
func initIntake(ctx context.Context) (*intakeEnv, error) {
	processed, err := initProcessed(ctx)
	if err != nil {
		return nil, err
	}
	if err := processed.Migrate(ctx); err != nil {
		_ = processed.Close()
		return nil, eris.Wrap(err, "migrate processed store")
	}

	registry, err := match.LoadRegistry(cfg.Match.RegistryFile)
	if err != nil {
		_ = processed.Close()
		return nil, err
	}
	resolver := match.NewResolver(registry, cfg.Match.Threshold)

	rules := extract.DefaultRules()
	if cfg.Extract.RulesFile != "" {
		rules, err = extract.LoadRules(cfg.Extract.RulesFile)
		if err != nil {
			_ = processed.Close()
			return nil, err
		}
	}
	extractor := extract.New(rules)

	src, err := initSource()
	if err != nil {
		_ = processed.Close()
		return nil, err
	}
	texts, err := source.NewTextProvider(cfg.Source.Text, cfg.Source.PdfToTextPath)
	if err != nil {
		_ = processed.Close()
		return nil, err
	}

	backend, err := initLedgerBackend(registry)
	if err != nil {
		_ = processed.Close()
		return nil, err
	}
	writer := ledger.NewWriter(backend, registry, cfg.Ledgers.Master, cfg.Ledgers.Backup, ledger.DefaultCostTable(), 0)

	proc := pipeline.New(pipeline.Options{
		Source:        src,
		Texts:         texts,
		Extractor:     extractor,
		Resolver:      resolver,
		Writer:        writer,
		Processed:     processed,
		SourceName:    cfg.Source.Kind,
		MarkProcessed: cfg.Pipeline.MarkProcessed,
	})

	zap.S().Infow("intake pipeline initialized",
		"source", cfg.Source.Kind,
		"store", cfg.Store.Driver,
		"ledger_backend", cfg.Ledgers.Backend,
		"reps", len(registry.Names()))

	return &intakeEnv{
		Processed: processed,
		Registry:  registry,
		Processor: proc,
		Source:    src,
	}, nil
}

func initProcessed(ctx context.Context) (dedup.ProcessedSet, error) {
	switch cfg.Store.Driver {
	case "postgres":
		set, err := dedup.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return set, nil
	case "sqlite", "":
		set, err := dedup.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return set, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func initSource() (source.Source, error) {
	switch cfg.Source.Kind {
	case "ftp":
		return source.NewFTP(source.FTPOptions{
			Host: cfg.Source.FTPHost,
			Dir:  cfg.Source.FTPDir,
			User: cfg.Source.FTPUser,
			Pass: cfg.Source.FTPPass,
		}), nil
	case "dir", "":
		return source.NewDir(cfg.Source.Dir), nil
	default:
		return nil, eris.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}

func initLedgerBackend(registry *match.Registry) (ledger.Ledger, error) {
	switch cfg.Ledgers.Backend {
	case "xlsx":
		headers := map[string][]string{
			cfg.Ledgers.Master: ledger.MasterHeaders,
			cfg.Ledgers.Backup: ledger.BackupHeaders,
		}
		for _, name := range registry.Names() {
			if ref, ok := registry.Ledger(name); ok {
				headers[ref] = ledger.RepHeaders
			}
		}
		return ledger.NewXLSX(headers), nil
	case "sheets", "":
		client := sheets.NewClient(
			sheets.StaticToken(cfg.Sheets.Token),
			sheets.WithBaseURL(cfg.Sheets.BaseURL),
			sheets.WithRateLimit(cfg.Sheets.RPS),
		)
		return ledger.NewSheets(client), nil
	default:
		return nil, eris.Errorf("unknown ledger backend %q", cfg.Ledgers.Backend)
	}
}
