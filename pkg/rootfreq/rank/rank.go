// Package rank turns scored candidates into ranked, truncated lists.
package rank

import "sort"

// Spec describes one ranking: how a candidate is scored, which scored
// records survive, how they are ordered and how many are kept.
type Spec[In, Out any] struct {
	Score func(In) Out
	Keep  func(Out) bool      // nil keeps everything
	Less  func(a, b Out) bool // true when a ranks before b
	Limit int                 // <= 0 means no truncation
}

// Apply scores, filters, sorts and truncates in. The sort is stable, so
// records that compare equal keep the order of in.
func (s Spec[In, Out]) Apply(in []In) []Out {
	out := make([]Out, 0, len(in))
	for _, c := range in {
		rec := s.Score(c)
		if s.Keep != nil && !s.Keep(rec) {
			continue
		}
		out = append(out, rec)
	}

	if s.Less != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return s.Less(out[i], out[j])
		})
	}

	if s.Limit > 0 && len(out) > s.Limit {
		out = out[:s.Limit]
	}
	return out
}
