package rootfreq

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/cognicore/rootfreq/pkg/rootfreq/config"
	"github.com/cognicore/rootfreq/pkg/rootfreq/internalerr"
	"github.com/cognicore/rootfreq/pkg/rootfreq/report"
	"github.com/cognicore/rootfreq/pkg/rootfreq/store/sqlite"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// writeCorpus renders a morphology file where sura s uses roots according
// to uses[s] (root -> count), interleaved with prefix segments and noise.
func writeCorpus(t *testing.T, dir string, uses map[int]map[string]int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("# test corpus\n")
	b.WriteString("LOCATION\tFORM\tTAG\tFEATURES\n")
	suras := make([]int, 0, len(uses))
	for s := range uses {
		suras = append(suras, s)
	}
	sort.Ints(suras)
	for _, s := range suras {
		roots := uses[s]
		verse := 1
		for _, root := range sortedKeys(roots) {
			for i := 0; i < roots[root]; i++ {
				fmt.Fprintf(&b, "(%d:%d:1:1)\tAl\tDET\tPREFIX|Al+\n", s, verse)
				fmt.Fprintf(&b, "(%d:%d:1:2)\tw\tN\tSTEM|POS:N|ROOT:%s|M|NOM\n", s, verse, root)
				verse++
			}
		}
		fmt.Fprintf(&b, "(%d:%d:1)\tbroken\tN\tSTEM|ROOT:zzz\n", s, verse)
	}
	path := filepath.Join(dir, "corpus.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func testUses() map[int]map[string]int {
	return map[int]map[string]int{
		1:  {"Hmd": 6, "rbb": 4, "Elm": 2, "ktb": 1},
		2:  {"ktb": 12, "qwl": 9, "Amn": 5, "Elm": 3, "rbb": 1},
		3:  {"qwl": 4, "Elm": 4, "ktb": 2},
		10: {"nws": 8, "rbb": 2, "qwl": 1},
	}
}

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Input = writeCorpus(t, dir, testUses())
	cfg.Output = filepath.Join(dir, "out", "roots-freq.json")
	return cfg, dir
}

func TestRunEndToEnd(t *testing.T) {
	cfg, _ := testConfig(t)

	res, err := Run(context.Background(), Options{Config: cfg, Logger: quiet})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Ingest.Pairs != 64 {
		t.Errorf("pairs = %d, want 64", res.Ingest.Pairs)
	}

	rep, err := report.ReadJSON(cfg.Output)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if rep.Meta.TotalRootTokens != 64 || rep.Meta.RootVocabSize != 7 {
		t.Errorf("meta = %+v", rep.Meta)
	}
	if rep.Meta.Input != cfg.Input || rep.Meta.TopN != 10 {
		t.Errorf("meta = %+v", rep.Meta)
	}

	var sum int64
	var groups []int
	for _, s := range rep.Suras {
		sum += s.TotalRootTokens
		groups = append(groups, s.Group)
	}
	if sum != rep.Meta.TotalRootTokens {
		t.Errorf("sura totals sum to %d, want %d", sum, rep.Meta.TotalRootTokens)
	}
	if fmt.Sprint(groups) != "[1 2 3 10]" {
		t.Errorf("suras = %v, want [1 2 3 10]", groups)
	}

	s10, _ := rep.Sura(10)
	if s10.TopRoots[0].Root != "nws" || s10.TopRoots[0].Count != 8 {
		t.Errorf("sura 10 top root = %+v", s10.TopRoots[0])
	}
	if len(s10.DistinctiveRoots) == 0 || s10.DistinctiveRoots[0].Root != "nws" {
		t.Errorf("nws should be the most distinctive root of sura 10: %+v", s10.DistinctiveRoots)
	}
}

func TestRunIdempotent(t *testing.T) {
	cfg, _ := testConfig(t)

	if _, err := Run(context.Background(), Options{Config: cfg, Logger: quiet}); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(cfg.Output)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := Run(context.Background(), Options{Config: cfg, Logger: quiet}); err != nil {
			t.Fatal(err)
		}
		again, err := os.ReadFile(cfg.Output)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("re-running on the same input must produce identical output")
		}
	}
}

func TestRunMissingInput(t *testing.T) {
	cfg, dir := testConfig(t)
	cfg.Input = filepath.Join(dir, "missing.txt")

	_, err := Run(context.Background(), Options{Config: cfg, Logger: quiet})
	if !errors.Is(err, internalerr.ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", err)
	}
	if _, err := os.Stat(cfg.Output); !os.IsNotExist(err) {
		t.Error("no report may be written when the input is missing")
	}
}

func TestRunNoData(t *testing.T) {
	cfg, dir := testConfig(t)
	cfg.Input = filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(cfg.Input, []byte("LOCATION\tFORM\tTAG\tFEATURES\n(1:1:1)\tx\tN\tROOT:abc\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Run(context.Background(), Options{Config: cfg, Logger: quiet})
	if !errors.Is(err, internalerr.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if _, err := os.Stat(cfg.Output); !os.IsNotExist(err) {
		t.Error("no report may be written when nothing parsed")
	}
}

func TestRunSingleSura(t *testing.T) {
	cfg, dir := testConfig(t)
	cfg.Input = writeCorpus(t, dir, map[int]map[string]int{1: {"A": 5, "B": 2}})

	res, err := Run(context.Background(), Options{Config: cfg, Logger: quiet})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s, ok := res.Report.Sura(1)
	if !ok {
		t.Fatal("sura 1 missing")
	}
	if len(s.DistinctiveRoots) != 0 {
		t.Errorf("single-sura corpus must have no distinctive roots: %+v", s.DistinctiveRoots)
	}
}

func TestRunOptionalOutputs(t *testing.T) {
	cfg, dir := testConfig(t)
	cfg.Arabic = true
	cfg.SQLitePath = filepath.Join(dir, "out", "roots-freq.db")
	cfg.MetricsTextfile = filepath.Join(dir, "textfile", "rootfreq.prom")

	res, err := Run(context.Background(), Options{Config: cfg, Logger: quiet})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RunID == "" {
		t.Fatal("expected a sqlite run id")
	}

	st, err := sqlite.OpenSQLite(context.Background(), cfg.SQLitePath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer st.Close()
	totals, err := st.SuraTotals(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("SuraTotals: %v", err)
	}
	for _, s := range res.Report.Suras {
		if totals[s.Group] != s.TotalRootTokens {
			t.Errorf("sura %d: sqlite total %d, report %d", s.Group, totals[s.Group], s.TotalRootTokens)
		}
	}

	prom, err := os.ReadFile(cfg.MetricsTextfile)
	if err != nil {
		t.Fatalf("metrics textfile: %v", err)
	}
	if !strings.Contains(string(prom), "rootfreq_root_tokens_total 64") {
		t.Errorf("metrics textfile missing token total:\n%s", prom)
	}

	data, err := os.ReadFile(cfg.Output)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"root_ar": "نوس"`)) {
		t.Error("expected Arabic roots in the report")
	}
}

func TestRunFailedExportLeavesNoReport(t *testing.T) {
	tests := []struct {
		name string
		set  func(cfg *config.Config, blocker string)
	}{
		{
			name: "sqlite",
			set: func(cfg *config.Config, blocker string) {
				cfg.SQLitePath = filepath.Join(blocker, "roots-freq.db")
			},
		},
		{
			name: "metrics textfile",
			set: func(cfg *config.Config, blocker string) {
				cfg.MetricsTextfile = filepath.Join(blocker, "rootfreq.prom")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, dir := testConfig(t)
			blocker := filepath.Join(dir, "blocker")
			if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
				t.Fatal(err)
			}
			tt.set(cfg, blocker)

			if _, err := Run(context.Background(), Options{Config: cfg, Logger: quiet}); err == nil {
				t.Fatal("expected the export to fail")
			}
			if _, err := os.Stat(cfg.Output); !os.IsNotExist(err) {
				t.Errorf("report must not exist after a failed export, stat err = %v", err)
			}
			leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(cfg.Output), ".*.tmp"))
			if err != nil {
				t.Fatal(err)
			}
			if len(leftovers) != 0 {
				t.Errorf("temporary report files left behind: %v", leftovers)
			}
		})
	}
}

func TestRunSQLiteInNewDirectory(t *testing.T) {
	cfg, dir := testConfig(t)
	cfg.SQLitePath = filepath.Join(dir, "exports", "db", "roots-freq.db")

	res, err := Run(context.Background(), Options{Config: cfg, Logger: quiet})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RunID == "" {
		t.Error("expected a sqlite run id")
	}
	if _, err := os.Stat(cfg.SQLitePath); err != nil {
		t.Errorf("sqlite database not created: %v", err)
	}
	if _, err := os.Stat(cfg.Output); err != nil {
		t.Errorf("report not written: %v", err)
	}
}
