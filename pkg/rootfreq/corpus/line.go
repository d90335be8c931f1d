package corpus

import (
	"regexp"
	"strconv"
	"strings"
)

// HeaderToken starts the column header line of the morphology file.
const HeaderToken = "LOCATION"

var (
	locationPattern = regexp.MustCompile(`^\((\d+):(\d+):(\d+):(\d+)\)$`)
	rootPattern     = regexp.MustCompile(`(?:^|\|)ROOT:([^|]+)`)
)

// Pair is one root occurrence attributed to a group (sura).
type Pair struct {
	Group int
	Root  string
}

// ParseLine extracts a Pair from one corpus line.
//
// Expected columns (tab-separated):
//
//	LOCATION  FORM  TAG  FEATURES
//
// LOCATION is (sura:verse:word:segment) and FEATURES is a pipe-delimited
// list that must contain ROOT:<value>. The trimmed root is kept byte for
// byte. Anything else yields ok=false.
func ParseLine(line string) (Pair, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, HeaderToken) {
		return Pair{}, false
	}

	parts := strings.Split(line, "\t")
	if len(parts) < 4 {
		return Pair{}, false
	}

	loc := locationPattern.FindStringSubmatch(strings.TrimSpace(parts[0]))
	if loc == nil {
		return Pair{}, false
	}
	// Sura numbers beyond int range fail here and the line is skipped.
	group, err := strconv.Atoi(loc[1])
	if err != nil {
		return Pair{}, false
	}

	m := rootPattern.FindStringSubmatch(strings.TrimSpace(parts[3]))
	if m == nil {
		return Pair{}, false
	}
	root := strings.TrimSpace(m[1])
	if root == "" {
		return Pair{}, false
	}

	return Pair{Group: group, Root: root}, true
}
