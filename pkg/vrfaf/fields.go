package vrfaf

import (
	"fmt"
	"strconv"

	"github.com/newtron-network/xrvrf/pkg/model"
	"github.com/newtron-network/xrvrf/pkg/util"
)

// Parsers that render context commands rather than leaves.
const (
	ParserName            = "name"
	ParserAddressFamilies = "address_families"
	ParserAddressFamily   = "address_family"
)

// field is one comparable leaf of an address family, addressed by its
// dotted path. Boolean leaves read as nil unless true.
type field struct {
	path string
	get  func(af *model.AddressFamily) any
	set  func(af *model.AddressFamily, v string) error
}

// fields is ordered; the order is the command emission order.
// address_family is the identity of the entry and has no leaf value.
var fields = []field{
	{
		path: ParserAddressFamily,
		get:  func(*model.AddressFamily) any { return nil },
	},
	{
		path: "export.route_policy",
		get: func(af *model.AddressFamily) any {
			if af.Export == nil {
				return nil
			}
			return str(af.Export.RoutePolicy)
		},
		set: func(af *model.AddressFamily, v string) error {
			exportOf(af).RoutePolicy = model.String(v)
			return nil
		},
	},
	{
		path: "export.route_target",
		get: func(af *model.AddressFamily) any {
			if af.Export == nil {
				return nil
			}
			return str(af.Export.RouteTarget)
		},
		set: func(af *model.AddressFamily, v string) error {
			exportOf(af).RouteTarget = model.String(v)
			return nil
		},
	},
	{
		path: "export.to.default_vrf.route_policy",
		get: func(af *model.AddressFamily) any {
			if af.Export == nil || af.Export.To == nil || af.Export.To.DefaultVRF == nil {
				return nil
			}
			return str(af.Export.To.DefaultVRF.RoutePolicy)
		},
		set: func(af *model.AddressFamily, v string) error {
			exportToOf(af).DefaultVRF = &model.RoutePolicyRef{RoutePolicy: model.String(v)}
			return nil
		},
	},
	{
		path: "export.to.vrf.allow_imported_vpn",
		get: func(af *model.AddressFamily) any {
			if af.Export == nil || af.Export.To == nil || af.Export.To.VRF == nil {
				return nil
			}
			return flag(af.Export.To.VRF.AllowImportedVPN)
		},
		set: func(af *model.AddressFamily, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			exportToOf(af).VRF = &model.AllowImportedVPN{AllowImportedVPN: model.Bool(b)}
			return nil
		},
	},
	{
		path: "import_config.route_target",
		get: func(af *model.AddressFamily) any {
			if af.ImportConfig == nil {
				return nil
			}
			return str(af.ImportConfig.RouteTarget)
		},
		set: func(af *model.AddressFamily, v string) error {
			importOf(af).RouteTarget = model.String(v)
			return nil
		},
	},
	{
		path: "import_config.route_policy",
		get: func(af *model.AddressFamily) any {
			if af.ImportConfig == nil {
				return nil
			}
			return str(af.ImportConfig.RoutePolicy)
		},
		set: func(af *model.AddressFamily, v string) error {
			importOf(af).RoutePolicy = model.String(v)
			return nil
		},
	},
	{
		path: "import_config.from_config.bridge_domain.advertise_as_vpn",
		get: func(af *model.AddressFamily) any {
			from := importFrom(af)
			if from == nil || from.BridgeDomain == nil {
				return nil
			}
			return flag(from.BridgeDomain.AdvertiseAsVPN)
		},
		set: func(af *model.AddressFamily, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			importFromOf(af).BridgeDomain = &model.AdvertiseAsVPN{AdvertiseAsVPN: model.Bool(b)}
			return nil
		},
	},
	{
		path: "import_config.from_config.default_vrf.route_policy",
		get: func(af *model.AddressFamily) any {
			from := importFrom(af)
			if from == nil || from.DefaultVRF == nil {
				return nil
			}
			return str(from.DefaultVRF.RoutePolicy)
		},
		set: func(af *model.AddressFamily, v string) error {
			importFromOf(af).DefaultVRF = &model.RoutePolicyRef{RoutePolicy: model.String(v)}
			return nil
		},
	},
	{
		path: "import_config.from_config.vrf.advertise_as_vpn",
		get: func(af *model.AddressFamily) any {
			from := importFrom(af)
			if from == nil || from.VRF == nil {
				return nil
			}
			return flag(from.VRF.AdvertiseAsVPN)
		},
		set: func(af *model.AddressFamily, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			importFromOf(af).VRF = &model.AdvertiseAsVPN{AdvertiseAsVPN: model.Bool(b)}
			return nil
		},
	},
	{
		path: "maximum.prefix",
		get: func(af *model.AddressFamily) any {
			if af.Maximum == nil || af.Maximum.Prefix == nil {
				return nil
			}
			return *af.Maximum.Prefix
		},
		set: func(af *model.AddressFamily, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			af.Maximum = &model.Maximum{Prefix: model.Int(n)}
			return nil
		},
	},
}

var fieldIndex = func() map[string]*field {
	m := make(map[string]*field, len(fields))
	for i := range fields {
		m[fields[i].path] = &fields[i]
	}
	return m
}()

// Parsers returns the field paths compared for every address family,
// in emission order.
func Parsers() []string {
	paths := make([]string, len(fields))
	for i, f := range fields {
		paths[i] = f.path
	}
	return paths
}

// FieldValue returns the leaf at path, or nil when it is unset.
func FieldValue(af *model.AddressFamily, path string) (any, error) {
	f, ok := fieldIndex[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", util.ErrUnknownParser, path)
	}
	return f.get(af), nil
}

// SetField parses v and stores it at path.
func SetField(af *model.AddressFamily, path, v string) error {
	f, ok := fieldIndex[path]
	if !ok || f.set == nil {
		return fmt.Errorf("%w: %s", util.ErrUnknownParser, path)
	}
	if err := f.set(af, v); err != nil {
		return fmt.Errorf("field %s: %w", path, err)
	}
	return nil
}

// FlattenFamily returns the set leaves of af keyed by dotted path.
func FlattenFamily(af *model.AddressFamily) map[string]string {
	out := make(map[string]string)
	for _, f := range fields {
		if v := f.get(af); v != nil {
			out[f.path] = fmt.Sprint(v)
		}
	}
	return out
}

func str(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func flag(p *bool) any {
	if p == nil || !*p {
		return nil
	}
	return true
}

func importFrom(af *model.AddressFamily) *model.ImportFrom {
	if af.ImportConfig == nil {
		return nil
	}
	return af.ImportConfig.FromConfig
}

func exportOf(af *model.AddressFamily) *model.Export {
	if af.Export == nil {
		af.Export = &model.Export{}
	}
	return af.Export
}

func exportToOf(af *model.AddressFamily) *model.ExportTo {
	e := exportOf(af)
	if e.To == nil {
		e.To = &model.ExportTo{}
	}
	return e.To
}

func importOf(af *model.AddressFamily) *model.Import {
	if af.ImportConfig == nil {
		af.ImportConfig = &model.Import{}
	}
	return af.ImportConfig
}

func importFromOf(af *model.AddressFamily) *model.ImportFrom {
	i := importOf(af)
	if i.FromConfig == nil {
		i.FromConfig = &model.ImportFrom{}
	}
	return i.FromConfig
}
