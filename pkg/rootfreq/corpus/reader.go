package corpus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"strings"

	"github.com/cognicore/rootfreq/pkg/rootfreq/internalerr"
)

const (
	// maxLineBytes bounds a single corpus line.
	maxLineBytes = 1 << 20

	// ctxCheckEvery is how many pairs pass between context checks in Ingest.
	ctxCheckEvery = 4096
)

// Stats describes one pass over a corpus.
type Stats struct {
	Lines   int64 // lines read
	Skipped int64 // lines that produced no pair
	Pairs   int64 // pairs emitted
}

// Reader streams pairs out of a line-oriented corpus.
type Reader struct {
	src   io.Reader
	stats Stats
	err   error
}

// NewReader wraps src. The pair sequence can be consumed once; to read the
// corpus again, open a new source.
func NewReader(src io.Reader) *Reader {
	return &Reader{src: src}
}

// Pairs returns the lazy sequence of pairs. Malformed lines are skipped.
func (r *Reader) Pairs() iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		sc := bufio.NewScanner(r.src)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for sc.Scan() {
			r.stats.Lines++
			p, ok := ParseLine(strings.ToValidUTF8(sc.Text(), "\uFFFD"))
			if !ok {
				r.stats.Skipped++
				continue
			}
			r.stats.Pairs++
			if !yield(p) {
				return
			}
		}
		r.err = sc.Err()
	}
}

// Err returns the first read error hit by Pairs, if any.
func (r *Reader) Err() error {
	return r.err
}

// Stats returns counters for the lines consumed so far.
func (r *Reader) Stats() Stats {
	return r.stats
}

// Adder receives pairs. *counts.Tables satisfies it.
type Adder interface {
	Add(group int, root string) error
}

// Load reads the corpus at path into dst.
//
// A missing file yields internalerr.ErrInputNotFound and a corpus without a
// single parseable pair yields internalerr.ErrNoData.
func Load(ctx context.Context, path string, dst Adder) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Stats{}, fmt.Errorf("%w: %s", internalerr.ErrInputNotFound, path)
		}
		return Stats{}, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	return Ingest(ctx, NewReader(f), dst)
}

// Ingest drains r into dst.
func Ingest(ctx context.Context, r *Reader, dst Adder) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return r.Stats(), fmt.Errorf("ingest corpus: %w", err)
	}
	var (
		addErr error
		n      int
	)
	for p := range r.Pairs() {
		if err := dst.Add(p.Group, p.Root); err != nil {
			addErr = err
			break
		}
		n++
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				addErr = err
				break
			}
		}
	}
	if addErr != nil {
		return r.Stats(), fmt.Errorf("ingest corpus: %w", addErr)
	}
	if err := r.Err(); err != nil {
		return r.Stats(), fmt.Errorf("read corpus: %w", err)
	}
	if r.stats.Pairs == 0 {
		return r.Stats(), fmt.Errorf("%w: check file format / delimiter (tabs expected)", internalerr.ErrNoData)
	}
	return r.Stats(), nil
}
