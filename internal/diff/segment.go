package diff

import "fmt"

// Kind classifies a segment.
type Kind int

const (
	Same Kind = iota
	Added
	Removed
)

func (k Kind) String() string {
	switch k {
	case Same:
		return "same"
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Segment is a run of one or more units, joined by the separator they were
// split on, that the comparison classified identically.
type Segment struct {
	Kind Kind
	Text string
}

func (s Segment) String() string {
	return fmt.Sprintf("%v(%q)", s.Kind, s.Text)
}
