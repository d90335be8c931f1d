package analytics

// TopRoot is an entry of the by-count list.
type TopRoot struct {
	Root      string  `json:"root"`
	RootAr    string  `json:"root_ar,omitempty"`
	Count     int64   `json:"count"`
	RelInSura float64 `json:"rel_in_sura"`
}

// DistinctiveRoot is a root over-represented in its sura.
type DistinctiveRoot struct {
	Root         string  `json:"root"`
	RootAr       string  `json:"root_ar,omitempty"`
	Count        int64   `json:"count"`
	RelInSura    float64 `json:"rel_in_sura"`
	RelElsewhere float64 `json:"rel_elsewhere"`
	Ratio        float64 `json:"ratio"`
	LogRatio     float64 `json:"log_ratio"`

	defined bool // false when the sura has no out-of-group baseline
}

// KLRoot carries a root's contribution to KL(sura || elsewhere).
type KLRoot struct {
	Root   string  `json:"root"`
	RootAr string  `json:"root_ar,omitempty"`
	Count  int64   `json:"count"`
	PSura  float64 `json:"p_sura"`
	PElse  float64 `json:"p_else"`
	KL     float64 `json:"kl"`
}

// MRoot carries the count-weighted informativeness score m = c·p/q.
type MRoot struct {
	Root   string  `json:"root"`
	RootAr string  `json:"root_ar,omitempty"`
	Count  int64   `json:"count"`
	Global int64   `json:"global"`
	P      float64 `json:"p"`
	Q      float64 `json:"q"`
	M      float64 `json:"m"`
}

// GroupResult holds the four ranked lists for one sura.
type GroupResult struct {
	Group           int
	TotalRootTokens int64
	TopRoots        []TopRoot
	Distinctive     []DistinctiveRoot
	HighKL          []KLRoot
	MScore          []MRoot
}
