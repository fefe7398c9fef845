package vrfaf

import (
	"fmt"

	"github.com/mitchellh/copystructure"
	"github.com/samber/lo"

	"github.com/newtron-network/xrvrf/pkg/model"
	"github.com/newtron-network/xrvrf/pkg/util"
)

// Index is a keyed view of VRF records: VRFs by name, address families by
// (afi, safi). Input order is kept so iteration is deterministic. An Index
// owns its records and is never modified after construction.
type Index struct {
	names []string
	vrfs  map[string]*vrfEntry
}

type vrfEntry struct {
	name     string
	keys     []model.AFKey
	families map[model.AFKey]*model.AddressFamily
}

func newIndex() *Index {
	return &Index{vrfs: make(map[string]*vrfEntry)}
}

func newVRFEntry(name string) *vrfEntry {
	return &vrfEntry{name: name, families: make(map[model.AFKey]*model.AddressFamily)}
}

func (idx *Index) add(e *vrfEntry) {
	idx.names = append(idx.names, e.name)
	idx.vrfs[e.name] = e
}

func (e *vrfEntry) add(af *model.AddressFamily) {
	k := af.Key()
	e.keys = append(e.keys, k)
	e.families[k] = af
}

// Normalize indexes a list of VRF records. The input is deep-copied, so the
// caller's records are never aliased. A record without a name, a repeated
// VRF name, or a repeated (afi, safi) within one VRF is an error.
func Normalize(vrfs []model.VRF) (*Index, error) {
	idx := newIndex()
	if len(vrfs) == 0 {
		return idx, nil
	}

	raw, err := copystructure.Copy(vrfs)
	if err != nil {
		return nil, fmt.Errorf("copying vrf records: %w", err)
	}
	copied := raw.([]model.VRF)

	for i := range copied {
		v := &copied[i]
		if v.Name == "" {
			return nil, fmt.Errorf("config[%d]: %w", i, util.ErrMissingName)
		}
		if idx.Has(v.Name) {
			return nil, util.NewDuplicateKeyError(v.Name, "", "")
		}
		e := newVRFEntry(v.Name)
		for j := range v.AddressFamilies {
			af := &v.AddressFamilies[j]
			if _, dup := e.families[af.Key()]; dup {
				return nil, util.NewDuplicateKeyError(v.Name, af.AFI, af.SAFI)
			}
			e.add(af)
		}
		idx.add(e)
	}
	return idx, nil
}

// Names returns the VRF names in input order.
func (idx *Index) Names() []string {
	return append([]string(nil), idx.names...)
}

// Len returns the number of VRFs.
func (idx *Index) Len() int {
	return len(idx.names)
}

// Has reports whether a VRF with this name is indexed.
func (idx *Index) Has(name string) bool {
	_, ok := idx.vrfs[name]
	return ok
}

// Family returns the address family (afi, safi) of VRF name.
func (idx *Index) Family(name string, key model.AFKey) (*model.AddressFamily, bool) {
	e, ok := idx.vrfs[name]
	if !ok {
		return nil, false
	}
	af, ok := e.families[key]
	return af, ok
}

// Restrict returns an index holding only the named VRFs.
func (idx *Index) Restrict(names []string) *Index {
	out := newIndex()
	for _, name := range lo.Filter(idx.names, func(n string, _ int) bool { return lo.Contains(names, n) }) {
		out.add(idx.vrfs[name])
	}
	return out
}

// VRFs converts the index back to a list of records in index order.
func (idx *Index) VRFs() []model.VRF {
	out := make([]model.VRF, 0, len(idx.names))
	for _, name := range idx.names {
		e := idx.vrfs[name]
		v := model.VRF{Name: name}
		for _, k := range e.keys {
			v.AddressFamilies = append(v.AddressFamilies, *e.families[k])
		}
		out = append(out, v)
	}
	return out
}

func (idx *Index) lookup(name string) *vrfEntry {
	return idx.vrfs[name]
}
