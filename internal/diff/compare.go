package diff

import (
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Comparer computes unit diffs. The zero value is ready to use and never
// gives up on finding a minimal diff. A Comparer is safe for concurrent use.
type Comparer struct {
	timeout time.Duration
}

type Option func(*Comparer)

// WithTimeout bounds the time spent looking for a minimal diff. Past the
// deadline, the diff is still correct but may be longer than necessary. Zero
// or negative values mean no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Comparer) {
		c.timeout = d
	}
}

func NewComparer(opts ...Option) *Comparer {
	c := new(Comparer)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compare splits a and b on separator and returns the number of units
// inserted or deleted to turn a into b, along with the segments describing
// the alignment. The distance is zero if and only if a and b are equal, in
// which case no segments are returned.
func (c *Comparer) Compare(a, b, separator string) (int, []Segment) {
	// Splitting is lossless, so equal strings are the only way to get equal
	// unit sequences.
	if a == b {
		return 0, nil
	}
	table := newUnitTable()
	ra := table.encode(split(a, separator))
	rb := table.encode(split(b, separator))
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = c.timeout
	diffs := dmp.DiffCleanupMerge(dmp.DiffMainRunes(ra, rb, false))
	return dmp.DiffLevenshtein(diffs), table.segments(diffs, separator)
}

func (t *unitTable) segments(diffs []diffmatchpatch.Diff, separator string) []Segment {
	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		var kind Kind
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			kind = Same
		case diffmatchpatch.DiffInsert:
			kind = Added
		case diffmatchpatch.DiffDelete:
			kind = Removed
		}
		segments = append(segments, Segment{
			Kind: kind,
			Text: strings.Join(t.decode(d.Text), separator),
		})
	}
	return segments
}

var defaultComparer Comparer

// Compare uses a Comparer with no deadline.
func Compare(a, b, separator string) (int, []Segment) {
	return defaultComparer.Compare(a, b, separator)
}
