package vrfaf

import (
	"github.com/newtron-network/xrvrf/pkg/model"
	"github.com/newtron-network/xrvrf/pkg/util"
)

// Change is one leaf that must be rendered to move have towards want.
// Value is the leaf being set, or the leaf being removed when Negate is set.
type Change struct {
	Parser string
	Negate bool
	Value  any
}

// Comparator diffs two address families over the given parsers.
type Comparator interface {
	Compare(parsers []string, want, have *model.AddressFamily) []Change
}

// FieldComparator compares address families leaf by leaf, in parser order.
// A leaf set in want that differs from have is set; a leaf set only in have
// is removed.
type FieldComparator struct{}

// Compare implements Comparator.
func (FieldComparator) Compare(parsers []string, want, have *model.AddressFamily) []Change {
	var changes []Change
	for _, p := range parsers {
		f, ok := fieldIndex[p]
		if !ok {
			util.Debugf("compare: skipping unknown parser %s", p)
			continue
		}
		wv, hv := f.get(want), f.get(have)
		switch {
		case wv != nil && wv != hv:
			changes = append(changes, Change{Parser: p, Value: wv})
		case wv == nil && hv != nil:
			changes = append(changes, Change{Parser: p, Negate: true, Value: hv})
		}
	}
	return changes
}
