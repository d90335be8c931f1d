package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/cognicore/rootfreq/pkg/rootfreq/report"
	"github.com/cognicore/rootfreq/pkg/rootfreq/store"
)

// sqliteStore implements store.ReportStore using SQLite
type sqliteStore struct {
	db      *sql.DB
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// pragmas are applied when the store is opened, before the schema.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA foreign_keys=ON",
}

// OpenSQLite opens (or creates) the report database at path, creating its
// parent directory first.
func OpenSQLite(ctx context.Context, path string) (store.ReportStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := prepare(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}, nil
}

func prepare(ctx context.Context, db *sql.DB) error {
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return initSchema(ctx, db)
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	input TEXT NOT NULL,
	top_n INTEGER NOT NULL,
	alpha REAL NOT NULL,
	min_count_in_sura INTEGER NOT NULL,
	min_ratio REAL NOT NULL,
	root_vocab_size INTEGER NOT NULL,
	total_root_tokens INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS suras (
	run_id TEXT NOT NULL,
	sura INTEGER NOT NULL,
	total_root_tokens INTEGER NOT NULL,
	PRIMARY KEY(run_id, sura),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS root_metrics (
	run_id TEXT NOT NULL,
	sura INTEGER NOT NULL,
	list TEXT NOT NULL,
	rank INTEGER NOT NULL,
	root TEXT NOT NULL,
	root_ar TEXT,
	count INTEGER NOT NULL,
	score REAL NOT NULL,
	PRIMARY KEY(run_id, sura, list, rank),
	FOREIGN KEY(run_id, sura) REFERENCES suras(run_id, sura) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_root_metrics_root ON root_metrics(root);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// Export writes the report in a single transaction under a new run id.
func (s *sqliteStore) Export(ctx context.Context, r *report.Report) (string, error) {
	runID := ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	m := r.Meta
	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, created_at, input, top_n, alpha, min_count_in_sura, min_ratio, root_vocab_size, total_root_tokens)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		s.now().UTC().Format(time.RFC3339),
		m.Input,
		m.TopN,
		m.Distinctive.AlphaSmoothing,
		m.Distinctive.MinCountInSura,
		m.Distinctive.MinRatio,
		m.RootVocabSize,
		m.TotalRootTokens,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	suraStmt, err := tx.PrepareContext(ctx, `INSERT INTO suras (run_id, sura, total_root_tokens) VALUES (?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer suraStmt.Close()

	rowStmt, err := tx.PrepareContext(ctx, `
INSERT INTO root_metrics (run_id, sura, list, rank, root, root_ar, count, score)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer rowStmt.Close()

	for _, sura := range r.Suras {
		if _, err := suraStmt.ExecContext(ctx, runID, sura.Group, sura.TotalRootTokens); err != nil {
			return "", fmt.Errorf("insert sura %d: %w", sura.Group, err)
		}
		for _, row := range flatten(sura) {
			if _, err := rowStmt.ExecContext(ctx, runID, sura.Group, row.list,
				row.Rank, row.Root, nullIfEmpty(row.RootAr), row.Count, row.Score); err != nil {
				return "", fmt.Errorf("insert %s row for sura %d: %w", row.list, sura.Group, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

type listRow struct {
	list string
	store.RankedRoot
}

// flatten turns a sura's four lists into rows ranked from 1.
func flatten(s report.Sura) []listRow {
	rows := make([]listRow, 0, len(s.TopRoots)+len(s.DistinctiveRoots)+len(s.HighKLRoots)+len(s.N2NRoots))
	add := func(list string, i int, root, rootAr string, count int64, score float64) {
		rows = append(rows, listRow{
			list: list,
			RankedRoot: store.RankedRoot{
				Rank:   i + 1,
				Root:   root,
				RootAr: rootAr,
				Count:  count,
				Score:  score,
			},
		})
	}
	for i, e := range s.TopRoots {
		add(store.ListTop, i, e.Root, e.RootAr, e.Count, e.RelInSura)
	}
	for i, e := range s.DistinctiveRoots {
		add(store.ListDistinctive, i, e.Root, e.RootAr, e.Count, e.Ratio)
	}
	for i, e := range s.HighKLRoots {
		add(store.ListHighKL, i, e.Root, e.RootAr, e.Count, e.KL)
	}
	for i, e := range s.N2NRoots {
		add(store.ListMScore, i, e.Root, e.RootAr, e.Count, e.M)
	}
	return rows
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Runs lists exported runs, oldest first.
func (s *sqliteStore) Runs(ctx context.Context) ([]store.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT r.id, r.created_at, r.input, r.top_n, r.alpha, r.root_vocab_size, r.total_root_tokens,
	(SELECT COUNT(*) FROM suras s WHERE s.run_id = r.id)
FROM runs r
ORDER BY r.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Run
	for rows.Next() {
		var (
			run     store.Run
			created string
		)
		if err := rows.Scan(&run.ID, &created, &run.Input, &run.TopN, &run.Alpha,
			&run.RootVocabSize, &run.TotalRootTokens, &run.Suras); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			run.CreatedAt = t
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// SuraTotals returns sura -> total root tokens for a run.
func (s *sqliteStore) SuraTotals(ctx context.Context, runID string) (map[int]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sura, total_root_tokens FROM suras WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]int64)
	for rows.Next() {
		var (
			sura  int
			total int64
		)
		if err := rows.Scan(&sura, &total); err != nil {
			return nil, err
		}
		out[sura] = total
	}
	return out, rows.Err()
}

// RankedList returns one ranked list of a sura in rank order.
func (s *sqliteStore) RankedList(ctx context.Context, runID string, sura int, list string) ([]store.RankedRoot, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT rank, root, COALESCE(root_ar, ''), count, score
FROM root_metrics
WHERE run_id = ? AND sura = ? AND list = ?
ORDER BY rank`, runID, sura, list)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.RankedRoot
	for rows.Next() {
		var rr store.RankedRoot
		if err := rows.Scan(&rr.Rank, &rr.Root, &rr.RootAr, &rr.Count, &rr.Score); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}
