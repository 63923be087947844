package annotate

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnknownGranularity is returned by ParseGranularity for selectors other
// than "line", "word" and "char".
var ErrUnknownGranularity = errors.New("unknown granularity")

// Granularity is the unit two documents are compared and rejoined by.
type Granularity int

const (
	Line Granularity = iota
	Word
	Char
)

// ParseGranularity maps a selector to a Granularity. The empty selector
// means Line.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "", "line":
		return Line, nil
	case "word":
		return Word, nil
	case "char":
		return Char, nil
	default:
		return Line, errors.Wrapf(ErrUnknownGranularity, "%q", s)
	}
}

// Separator returns the string units are split on and rejoined with.
func (g Granularity) Separator() string {
	switch g {
	case Word:
		return " "
	case Char:
		return ""
	default:
		return "\n"
	}
}

func (g Granularity) String() string {
	switch g {
	case Line:
		return "line"
	case Word:
		return "word"
	case Char:
		return "char"
	default:
		return fmt.Sprintf("Granularity(%d)", int(g))
	}
}
