package store

import (
	"context"
	"time"

	"github.com/cognicore/rootfreq/pkg/rootfreq/report"
)

// Ranked list names, as stored in root_metrics.list.
const (
	ListTop         = "top_roots"
	ListDistinctive = "distinctive_roots"
	ListHighKL      = "high_kl_roots"
	ListMScore      = "n2_N_roots"
)

// ReportStore persists finished reports. Each Export is a separate run.
type ReportStore interface {
	Close() error

	// Export writes a report and returns the new run id.
	Export(ctx context.Context, r *report.Report) (string, error)

	// Inspection
	Runs(ctx context.Context) ([]Run, error)
	SuraTotals(ctx context.Context, runID string) (map[int]int64, error)
	RankedList(ctx context.Context, runID string, sura int, list string) ([]RankedRoot, error)
}

// Run describes one exported report.
type Run struct {
	ID              string
	CreatedAt       time.Time
	Input           string
	TopN            int
	Alpha           float64
	RootVocabSize   int
	TotalRootTokens int64
	Suras           int
}

// RankedRoot is one row of a ranked list. Score is the list's sort key:
// rel_in_sura, ratio, kl or m.
type RankedRoot struct {
	Rank   int
	Root   string
	RootAr string
	Count  int64
	Score  float64
}
