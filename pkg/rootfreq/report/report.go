// Package report assembles the per-sura root statistics into the output
// document and reads/writes it as JSON.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/cognicore/rootfreq/pkg/rootfreq/analytics"
	"github.com/cognicore/rootfreq/pkg/rootfreq/buckwalter"
)

// RatioDefinition documents the distinctiveness ratio in the report header.
const RatioDefinition = "ratio = ((c_sura + alpha) / (N_sura + alpha*V)) / " +
	"((c_else + alpha) / (N_else + alpha*V)), where V is root vocabulary size."

// Report is the full output document.
type Report struct {
	Meta  Meta
	Suras []Sura // ascending by Group
}

// Meta describes the run that produced a report.
type Meta struct {
	Input           string          `json:"input"`
	TopN            int             `json:"top_n"`
	Distinctive     DistinctiveMeta `json:"distinctive"`
	RootVocabSize   int             `json:"root_vocab_size"`
	TotalRootTokens int64           `json:"total_root_tokens"`
}

// DistinctiveMeta records the distinctiveness filter settings.
type DistinctiveMeta struct {
	MinCountInSura int64   `json:"min_count_in_sura"`
	MinRatio       float64 `json:"min_ratio"`
	AlphaSmoothing float64 `json:"alpha_smoothing"`
	Definition     string  `json:"definition"`
}

// Sura holds one sura's totals and ranked lists.
type Sura struct {
	Group            int                         `json:"-"`
	TotalRootTokens  int64                       `json:"total_root_tokens"`
	TopRoots         []analytics.TopRoot         `json:"top_roots"`
	DistinctiveRoots []analytics.DistinctiveRoot `json:"distinctive_roots"`
	HighKLRoots      []analytics.KLRoot          `json:"high_kl_roots"`
	N2NRoots         []analytics.MRoot           `json:"n2_N_roots"`
}

// NewMeta builds the report header from the effective analyzer parameters.
func NewMeta(input string, params analytics.Params, vocab int, total int64) Meta {
	return Meta{
		Input: input,
		TopN:  params.TopN,
		Distinctive: DistinctiveMeta{
			MinCountInSura: params.MinCountInSura,
			MinRatio:       params.MinRatio,
			AlphaSmoothing: params.Alpha,
			Definition:     RatioDefinition,
		},
		RootVocabSize:   vocab,
		TotalRootTokens: total,
	}
}

// Options controls optional report content.
type Options struct {
	// Arabic adds root_ar, the root in Arabic script, to every entry.
	Arabic bool
}

// Build assembles a report from analyzer results. Results are ordered by
// sura regardless of the order they are passed in.
func Build(meta Meta, results []analytics.GroupResult, opts Options) *Report {
	r := &Report{
		Meta:  meta,
		Suras: make([]Sura, 0, len(results)),
	}
	for _, res := range results {
		s := Sura{
			Group:            res.Group,
			TotalRootTokens:  res.TotalRootTokens,
			TopRoots:         cloneList(res.TopRoots),
			DistinctiveRoots: cloneList(res.Distinctive),
			HighKLRoots:      cloneList(res.HighKL),
			N2NRoots:         cloneList(res.MScore),
		}
		if opts.Arabic {
			addArabic(&s)
		}
		r.Suras = append(r.Suras, s)
	}
	sort.SliceStable(r.Suras, func(i, j int) bool {
		return r.Suras[i].Group < r.Suras[j].Group
	})
	return r
}

// cloneList copies s so the report never aliases analyzer output; the copy
// is non-nil so empty lists encode as [].
func cloneList[T any](s []T) []T {
	return append(make([]T, 0, len(s)), s...)
}

func addArabic(s *Sura) {
	for i := range s.TopRoots {
		s.TopRoots[i].RootAr = buckwalter.ToArabic(s.TopRoots[i].Root)
	}
	for i := range s.DistinctiveRoots {
		s.DistinctiveRoots[i].RootAr = buckwalter.ToArabic(s.DistinctiveRoots[i].Root)
	}
	for i := range s.HighKLRoots {
		s.HighKLRoots[i].RootAr = buckwalter.ToArabic(s.HighKLRoots[i].Root)
	}
	for i := range s.N2NRoots {
		s.N2NRoots[i].RootAr = buckwalter.ToArabic(s.N2NRoots[i].Root)
	}
}

// Sura returns the entry for one sura.
func (r *Report) Sura(group int) (Sura, bool) {
	i := sort.Search(len(r.Suras), func(i int) bool { return r.Suras[i].Group >= group })
	if i < len(r.Suras) && r.Suras[i].Group == group {
		return r.Suras[i], true
	}
	return Sura{}, false
}

// MarshalJSON writes suras as an object keyed by sura number, in ascending
// numeric order.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"meta":`)
	if err := encodeCompact(&buf, r.Meta); err != nil {
		return nil, fmt.Errorf("encode meta: %w", err)
	}
	buf.WriteString(`,"suras":{`)
	for i, s := range r.Suras {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(s.Group)))
		buf.WriteByte(':')
		if err := encodeCompact(&buf, s); err != nil {
			return nil, fmt.Errorf("encode sura %d: %w", s.Group, err)
		}
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a report written by MarshalJSON.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw struct {
		Meta  Meta            `json:"meta"`
		Suras map[string]Sura `json:"suras"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Meta = raw.Meta
	r.Suras = make([]Sura, 0, len(raw.Suras))
	for key, s := range raw.Suras {
		group, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("sura key %q: %w", key, err)
		}
		s.Group = group
		r.Suras = append(r.Suras, s)
	}
	sort.Slice(r.Suras, func(i, j int) bool {
		return r.Suras[i].Group < r.Suras[j].Group
	})
	return nil
}

// encodeCompact encodes v without HTML escaping and without the trailing
// newline json.Encoder adds.
func encodeCompact(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
