package analytics

import (
	"math"
	"sort"

	"github.com/cognicore/rootfreq/pkg/rootfreq/rank"
	"github.com/cognicore/rootfreq/pkg/rootfreq/smoothing"
)

// Ranking defaults.
const (
	DefaultTopN           = 10
	DefaultMinCountInSura = 3
	DefaultMinRatio       = 3.0
	DefaultMinKL          = 0.002
	DefaultKLLimit        = 100
	DefaultMinM           = 10.0
	DefaultMLimit         = 100
)

// Params tunes the four rankings.
type Params struct {
	TopN           int
	MinCountInSura int64
	MinRatio       float64
	Alpha          float64
	MinKL          float64
	KLLimit        int
	MinM           float64
	MLimit         int
}

// DefaultParams returns the stock ranking parameters.
func DefaultParams() Params {
	return Params{
		TopN:           DefaultTopN,
		MinCountInSura: DefaultMinCountInSura,
		MinRatio:       DefaultMinRatio,
		Alpha:          smoothing.DefaultAlpha,
		MinKL:          DefaultMinKL,
		KLLimit:        DefaultKLLimit,
		MinM:           DefaultMinM,
		MLimit:         DefaultMLimit,
	}
}

// Counts is the read side of the count tables the analyzer needs.
type Counts interface {
	Groups() []int
	Group(id int) map[string]int64
	GroupTotal(id int) int64
	GlobalCount(root string) int64
	Total() int64
	VocabSize() int
}

// Analyzer ranks roots within each sura against the rest of the corpus.
// It only reads the tables, so groups may be analyzed in any order.
type Analyzer struct {
	tables Counts
	params Params
	calc   *smoothing.Calculator
}

// NewAnalyzer creates an analyzer over fully ingested tables.
func NewAnalyzer(tables Counts, params Params) *Analyzer {
	calc := smoothing.NewCalculator(params.Alpha, tables.VocabSize(), tables.Total())
	params.Alpha = calc.Alpha()
	return &Analyzer{
		tables: tables,
		params: params,
		calc:   calc,
	}
}

// Params returns the effective parameters.
func (a *Analyzer) Params() Params {
	return a.params
}

// Analyze ranks every sura, in ascending sura order.
func (a *Analyzer) Analyze() []GroupResult {
	ids := a.tables.Groups()
	out := make([]GroupResult, 0, len(ids))
	for _, id := range ids {
		out = append(out, a.AnalyzeGroup(id))
	}
	return out
}

type candidate struct {
	root   string
	count  int64
	global int64
}

// AnalyzeGroup ranks the roots of one sura.
//
// Candidates are visited in ascending root order and every sort is stable,
// so ties always resolve to the lexically smaller root first.
func (a *Analyzer) AnalyzeGroup(id int) GroupResult {
	nS := a.tables.GroupTotal(id)
	g := a.calc.Group(nS)
	cands := a.candidates(id)
	p := a.params

	top := rank.Spec[candidate, TopRoot]{
		Score: func(c candidate) TopRoot {
			return TopRoot{
				Root:      c.root,
				Count:     c.count,
				RelInSura: smoothing.Rel(c.count, g.N()),
			}
		},
		Less:  func(x, y TopRoot) bool { return x.Count > y.Count },
		Limit: p.TopN,
	}

	distinctive := rank.Spec[candidate, DistinctiveRoot]{
		Score: func(c candidate) DistinctiveRoot {
			rec := DistinctiveRoot{
				Root:         c.root,
				Count:        c.count,
				RelInSura:    smoothing.Rel(c.count, g.N()),
				RelElsewhere: smoothing.Rel(c.global-c.count, g.NElse()),
			}
			if c.count < p.MinCountInSura {
				return rec
			}
			ratio, ok := g.Ratio(c.count, c.global)
			if !ok {
				return rec
			}
			rec.Ratio = ratio
			rec.LogRatio = math.Log(ratio)
			rec.defined = true
			return rec
		},
		Keep: func(r DistinctiveRoot) bool {
			return r.defined && r.Ratio >= p.MinRatio
		},
		Less: func(x, y DistinctiveRoot) bool {
			if x.LogRatio != y.LogRatio {
				return x.LogRatio > y.LogRatio
			}
			return x.Count > y.Count
		},
	}

	kl := rank.Spec[candidate, KLRoot]{
		Score: func(c candidate) KLRoot {
			return KLRoot{
				Root:  c.root,
				Count: c.count,
				PSura: g.P(c.count),
				PElse: g.QElse(c.count, c.global),
				KL:    g.KL(c.count, c.global),
			}
		},
		Keep:  func(r KLRoot) bool { return r.KL >= p.MinKL },
		Less:  func(x, y KLRoot) bool { return x.KL > y.KL },
		Limit: p.KLLimit,
	}

	m := rank.Spec[candidate, MRoot]{
		Score: func(c candidate) MRoot {
			return MRoot{
				Root:   c.root,
				Count:  c.count,
				Global: c.global,
				P:      g.P(c.count),
				Q:      a.calc.QGlobal(c.global),
				M:      g.M(c.count, c.global),
			}
		},
		Keep:  func(r MRoot) bool { return r.M >= p.MinM },
		Less:  func(x, y MRoot) bool { return x.M > y.M },
		Limit: p.MLimit,
	}

	return GroupResult{
		Group:           id,
		TotalRootTokens: nS,
		TopRoots:        top.Apply(cands),
		Distinctive:     distinctive.Apply(cands),
		HighKL:          kl.Apply(cands),
		MScore:          m.Apply(cands),
	}
}

func (a *Analyzer) candidates(id int) []candidate {
	group := a.tables.Group(id)
	roots := make([]string, 0, len(group))
	for r := range group {
		roots = append(roots, r)
	}
	sort.Strings(roots)

	out := make([]candidate, len(roots))
	for i, r := range roots {
		out[i] = candidate{
			root:   r,
			count:  group[r],
			global: a.tables.GlobalCount(r),
		}
	}
	return out
}
