// Package annotate renders the differences between two documents as a single
// linear report.
//
// Unchanged segments are copied as they are. Each changed segment is wrapped
// in its sigil, "+" for added text and "-" for removed text, and preceded by a
// marker such as
//
//	>>> a (line: 3): -removed text-
//	>>> b (line: 3): +added text+
//
// Markers alternate between "a" and "b" on every changed segment, whether or
// not an unchanged segment sits in between. The line number is a counter that
// advances once per unchanged segment and once per "a" marker; it is not an
// offset into either document.
package annotate

import (
	"strconv"
	"strings"

	"github.com/nicolagi/annodiff/internal/diff"
)

// Comparer produces the segments the report is built from. A zero distance
// means the documents are equal at the given separator.
type Comparer interface {
	Compare(a, b, separator string) (distance int, segments []diff.Segment)
}

// Annotator is safe for concurrent use if its Comparer is.
type Annotator struct {
	comparer Comparer
}

func New(comparer Comparer) *Annotator {
	return &Annotator{comparer: comparer}
}

// Generate compares a and b at the given granularity. It returns false and
// an empty report if they are equal.
func (an *Annotator) Generate(a, b string, mode Granularity) (differs bool, report string) {
	sep := mode.Separator()
	distance, segments := an.comparer.Compare(a, b, sep)
	if distance == 0 {
		return false, ""
	}
	r := reporter{sep: sep}
	for _, s := range segments {
		switch s.Kind {
		case diff.Same:
			r.same(s.Text)
		case diff.Added:
			r.change("+", s.Text)
		case diff.Removed:
			r.change("-", s.Text)
		}
	}
	return true, r.out.String()
}

var defaultAnnotator = New(diff.NewComparer())

// Generate uses an Annotator backed by a diff.Comparer with no deadline.
func Generate(a, b string, mode Granularity) (differs bool, report string) {
	return defaultAnnotator.Generate(a, b, mode)
}

// reporter accumulates the report for a single call to Generate.
type reporter struct {
	sep     string
	inBlock bool
	line    int
	out     strings.Builder
}

func (r *reporter) same(text string) {
	r.line++
	r.out.WriteString(text)
	r.out.WriteString(r.sep)
}

func (r *reporter) change(sigil, text string) {
	r.boundary()
	r.out.WriteString(sigil)
	r.out.WriteString(text)
	r.out.WriteString(sigil)
	r.out.WriteString(r.sep)
}

func (r *reporter) boundary() {
	marker := "b"
	if !r.inBlock {
		r.line++
		marker = "a"
	}
	r.inBlock = !r.inBlock
	r.out.WriteString(">>> ")
	r.out.WriteString(marker)
	r.out.WriteString(" (line: ")
	r.out.WriteString(strconv.Itoa(r.line))
	r.out.WriteString("): ")
}
