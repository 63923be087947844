package diff

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/graphemes"
)

// Runes in the surrogate range do not survive a round trip through a string,
// and diffmatchpatch builds strings out of the rune slices it is given.
const (
	surrogateMin = 0xd800
	surrogateMax = 0xdfff
	surrogates   = surrogateMax - surrogateMin + 1
	maxUnits     = utf8.MaxRune + 1 - surrogates
)

// split breaks s into units. An empty separator splits into grapheme
// clusters, so that a combining sequence or an emoji with modifiers is
// compared as a whole.
func split(s, sep string) []string {
	if sep != "" {
		return strings.Split(s, sep)
	}
	var units []string
	iter := graphemes.FromString(s)
	for iter.Next() {
		units = append(units, iter.Value())
	}
	return units
}

// unitTable assigns one rune to each distinct unit. The same table must be
// used for both documents being compared.
type unitTable struct {
	index map[string]rune
	units []string
}

func newUnitTable() *unitTable {
	return &unitTable{index: make(map[string]rune)}
}

func (t *unitTable) encode(units []string) []rune {
	runes := make([]rune, len(units))
	for i, unit := range units {
		r, ok := t.index[unit]
		if !ok {
			if len(t.units) == maxUnits {
				panic(fmt.Sprintf("diff: more than %d distinct units", maxUnits))
			}
			r = toRune(len(t.units))
			t.index[unit] = r
			t.units = append(t.units, unit)
		}
		runes[i] = r
	}
	return runes
}

func (t *unitTable) decode(s string) []string {
	units := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		units = append(units, t.units[fromRune(r)])
	}
	return units
}

func toRune(i int) rune {
	if i >= surrogateMin {
		i += surrogates
	}
	return rune(i)
}

func fromRune(r rune) int {
	i := int(r)
	if i > surrogateMax {
		i -= surrogates
	}
	return i
}
