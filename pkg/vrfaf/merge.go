package vrfaf

import (
	"github.com/samber/lo"

	"github.com/newtron-network/xrvrf/pkg/model"
)

// Merge deep-merges want onto have and returns a new index. A value set in
// want wins at every level; anything want leaves unset keeps its have value.
// VRFs and address families only in have are retained, in have order,
// followed by those only in want.
func Merge(have, want *Index) *Index {
	out := newIndex()
	for _, name := range lo.Uniq(append(have.Names(), want.names...)) {
		h, w := have.lookup(name), want.lookup(name)
		switch {
		case h == nil:
			out.add(w)
		case w == nil:
			out.add(h)
		default:
			out.add(mergeVRF(h, w))
		}
	}
	return out
}

func mergeVRF(have, want *vrfEntry) *vrfEntry {
	out := newVRFEntry(have.name)
	for _, k := range lo.Uniq(append(append([]model.AFKey(nil), have.keys...), want.keys...)) {
		h, inHave := have.families[k]
		w, inWant := want.families[k]
		switch {
		case !inHave:
			out.add(w)
		case !inWant:
			out.add(h)
		default:
			out.add(mergeFamily(h, w))
		}
	}
	return out
}

func mergeFamily(have, want *model.AddressFamily) *model.AddressFamily {
	return &model.AddressFamily{
		AFI:          want.AFI,
		SAFI:         want.SAFI,
		Export:       mergeExport(have.Export, want.Export),
		ImportConfig: mergeImport(have.ImportConfig, want.ImportConfig),
		Maximum:      mergeMaximum(have.Maximum, want.Maximum),
	}
}

func mergeExport(have, want *model.Export) *model.Export {
	if have == nil || want == nil {
		return pick(have, want)
	}
	return &model.Export{
		RoutePolicy: pick(have.RoutePolicy, want.RoutePolicy),
		RouteTarget: pick(have.RouteTarget, want.RouteTarget),
		To:          mergeExportTo(have.To, want.To),
	}
}

func mergeExportTo(have, want *model.ExportTo) *model.ExportTo {
	if have == nil || want == nil {
		return pick(have, want)
	}
	return &model.ExportTo{
		DefaultVRF: mergePolicyRef(have.DefaultVRF, want.DefaultVRF),
		VRF:        pickAllow(have.VRF, want.VRF),
	}
}

func mergeImport(have, want *model.Import) *model.Import {
	if have == nil || want == nil {
		return pick(have, want)
	}
	return &model.Import{
		RoutePolicy: pick(have.RoutePolicy, want.RoutePolicy),
		RouteTarget: pick(have.RouteTarget, want.RouteTarget),
		FromConfig:  mergeImportFrom(have.FromConfig, want.FromConfig),
	}
}

func mergeImportFrom(have, want *model.ImportFrom) *model.ImportFrom {
	if have == nil || want == nil {
		return pick(have, want)
	}
	return &model.ImportFrom{
		BridgeDomain: pickAdvertise(have.BridgeDomain, want.BridgeDomain),
		DefaultVRF:   mergePolicyRef(have.DefaultVRF, want.DefaultVRF),
		VRF:          pickAdvertise(have.VRF, want.VRF),
	}
}

func mergePolicyRef(have, want *model.RoutePolicyRef) *model.RoutePolicyRef {
	if have == nil || want == nil {
		return pick(have, want)
	}
	return &model.RoutePolicyRef{RoutePolicy: pick(have.RoutePolicy, want.RoutePolicy)}
}

func pickAllow(have, want *model.AllowImportedVPN) *model.AllowImportedVPN {
	if have == nil || want == nil {
		return pick(have, want)
	}
	return &model.AllowImportedVPN{AllowImportedVPN: pick(have.AllowImportedVPN, want.AllowImportedVPN)}
}

func pickAdvertise(have, want *model.AdvertiseAsVPN) *model.AdvertiseAsVPN {
	if have == nil || want == nil {
		return pick(have, want)
	}
	return &model.AdvertiseAsVPN{AdvertiseAsVPN: pick(have.AdvertiseAsVPN, want.AdvertiseAsVPN)}
}

func mergeMaximum(have, want *model.Maximum) *model.Maximum {
	if have == nil || want == nil {
		return pick(have, want)
	}
	return &model.Maximum{Prefix: pick(have.Prefix, want.Prefix)}
}

// pick returns want when it is set, otherwise have.
func pick[T any](have, want *T) *T {
	if want != nil {
		return want
	}
	return have
}
