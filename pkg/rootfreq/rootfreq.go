// Package rootfreq computes per-sura word-root statistics from a tagged
// morphology corpus and writes a ranked report.
package rootfreq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cognicore/rootfreq/pkg/rootfreq/analytics"
	"github.com/cognicore/rootfreq/pkg/rootfreq/config"
	"github.com/cognicore/rootfreq/pkg/rootfreq/corpus"
	"github.com/cognicore/rootfreq/pkg/rootfreq/counts"
	"github.com/cognicore/rootfreq/pkg/rootfreq/metrics"
	"github.com/cognicore/rootfreq/pkg/rootfreq/report"
	"github.com/cognicore/rootfreq/pkg/rootfreq/store"
	"github.com/cognicore/rootfreq/pkg/rootfreq/store/sqlite"
)

// Options configures a run.
type Options struct {
	Config *config.Config
	Logger *slog.Logger     // defaults to slog.Default()
	Now    func() time.Time // defaults to time.Now
}

// Result summarizes a finished run.
type Result struct {
	Report *report.Report
	Ingest corpus.Stats
	RunID  string // SQLite run id, empty when the export is off
}

// Run executes the whole job: ingest, count, analyze, write. The JSON report
// is staged first and renamed into place only after the optional SQLite and
// metrics exports succeed, so a failed run leaves no report behind.
func Run(ctx context.Context, opts Options) (Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	start := now()

	var res Result

	tables := counts.NewTables()
	st, err := corpus.Load(ctx, cfg.Input, tables)
	res.Ingest = st
	if err != nil {
		return res, err
	}
	tables.Freeze()
	if err := tables.Check(); err != nil {
		return res, err
	}
	log.Info("corpus loaded",
		"input", cfg.Input,
		"lines", st.Lines,
		"skipped", st.Skipped,
		"pairs", st.Pairs,
		"suras", tables.NumGroups(),
		"roots", tables.VocabSize(),
	)

	analyzer := analytics.NewAnalyzer(tables, cfg.AnalyzerParams())
	results := analyzer.Analyze()

	meta := report.NewMeta(cfg.Input, analyzer.Params(), tables.VocabSize(), tables.Total())
	res.Report = report.Build(meta, results, report.Options{Arabic: cfg.Arabic})

	pending, err := report.Stage(cfg.Output, res.Report)
	if err != nil {
		return res, err
	}
	defer pending.Discard()

	if cfg.SQLitePath != "" {
		runID, err := exportSQLite(ctx, cfg.SQLitePath, res.Report)
		if err != nil {
			return res, err
		}
		res.RunID = runID
		log.Info("exported report to sqlite", "path", cfg.SQLitePath, "run_id", runID)
	}

	if cfg.MetricsTextfile != "" {
		m := metrics.New()
		record(m, st, tables, res.Report)
		m.MarkSuccess(start, now())
		if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
			return res, err
		}
		log.Debug("wrote metrics textfile", "path", cfg.MetricsTextfile)
	}

	if err := pending.Commit(); err != nil {
		return res, err
	}
	log.Info("wrote report",
		"output", cfg.Output,
		"suras", len(res.Report.Suras),
		"roots", tables.VocabSize(),
		"tokens", tables.Total(),
	)

	return res, nil
}

func exportSQLite(ctx context.Context, path string, r *report.Report) (string, error) {
	st, err := sqlite.OpenSQLite(ctx, path)
	if err != nil {
		return "", fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer st.Close()

	runID, err := st.Export(ctx, r)
	if err != nil {
		return "", fmt.Errorf("export to sqlite %s: %w", path, err)
	}
	return runID, nil
}

func record(m *metrics.Metrics, st corpus.Stats, tables *counts.Tables, r *report.Report) {
	m.LinesRead.Set(float64(st.Lines))
	m.LinesSkipped.Set(float64(st.Skipped))
	m.RootTokens.Set(float64(tables.Total()))
	m.RootVocabSize.Set(float64(tables.VocabSize()))
	m.Suras.Set(float64(len(r.Suras)))

	var top, dist, kl, mscore int
	for _, s := range r.Suras {
		top += len(s.TopRoots)
		dist += len(s.DistinctiveRoots)
		kl += len(s.HighKLRoots)
		mscore += len(s.N2NRoots)
	}
	m.ListEntries.WithLabelValues(store.ListTop).Set(float64(top))
	m.ListEntries.WithLabelValues(store.ListDistinctive).Set(float64(dist))
	m.ListEntries.WithLabelValues(store.ListHighKL).Set(float64(kl))
	m.ListEntries.WithLabelValues(store.ListMScore).Set(float64(mscore))
}
