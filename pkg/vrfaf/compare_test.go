package vrfaf

import (
	"reflect"
	"testing"

	"github.com/newtron-network/xrvrf/pkg/model"
)

func TestFieldComparator_Compare(t *testing.T) {
	tests := []struct {
		name string
		want *model.AddressFamily
		have *model.AddressFamily
		exp  []Change
	}{
		{
			name: "equal",
			want: fullFamily(),
			have: fullFamily(),
		},
		{
			name: "set from empty",
			want: &model.AddressFamily{AFI: "ipv4", Maximum: &model.Maximum{Prefix: model.Int(100)}},
			have: &model.AddressFamily{},
			exp:  []Change{{Parser: "maximum.prefix", Value: 100}},
		},
		{
			name: "changed value",
			want: &model.AddressFamily{AFI: "ipv4", Export: &model.Export{RoutePolicy: model.String("new")}},
			have: &model.AddressFamily{AFI: "ipv4", Export: &model.Export{RoutePolicy: model.String("old")}},
			exp:  []Change{{Parser: "export.route_policy", Value: "new"}},
		},
		{
			name: "removed value",
			want: &model.AddressFamily{AFI: "ipv4"},
			have: &model.AddressFamily{AFI: "ipv4", ImportConfig: &model.Import{RouteTarget: model.String("1:1")}},
			exp:  []Change{{Parser: "import_config.route_target", Negate: true, Value: "1:1"}},
		},
		{
			name: "boolean false removes true",
			want: &model.AddressFamily{AFI: "ipv4", Export: &model.Export{To: &model.ExportTo{
				VRF: &model.AllowImportedVPN{AllowImportedVPN: model.Bool(false)},
			}}},
			have: &model.AddressFamily{AFI: "ipv4", Export: &model.Export{To: &model.ExportTo{
				VRF: &model.AllowImportedVPN{AllowImportedVPN: model.Bool(true)},
			}}},
			exp: []Change{{Parser: "export.to.vrf.allow_imported_vpn", Negate: true, Value: true}},
		},
		{
			name: "boolean false against unset",
			want: &model.AddressFamily{AFI: "ipv4", ImportConfig: &model.Import{FromConfig: &model.ImportFrom{
				VRF: &model.AdvertiseAsVPN{AdvertiseAsVPN: model.Bool(false)},
			}}},
			have: &model.AddressFamily{AFI: "ipv4"},
		},
		{
			name: "removes follow field order",
			want: &model.AddressFamily{AFI: "ipv4"},
			have: &model.AddressFamily{
				AFI:     "ipv4",
				Maximum: &model.Maximum{Prefix: model.Int(7)},
				Export:  &model.Export{RouteTarget: model.String("3:3")},
			},
			exp: []Change{
				{Parser: "export.route_target", Negate: true, Value: "3:3"},
				{Parser: "maximum.prefix", Negate: true, Value: 7},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FieldComparator{}.Compare(Parsers(), tt.want, tt.have)
			if !reflect.DeepEqual(got, tt.exp) {
				t.Errorf("Compare() = %+v, want %+v", got, tt.exp)
			}
		})
	}
}

func TestFieldComparator_ParserSubset(t *testing.T) {
	got := FieldComparator{}.Compare(
		[]string{"maximum.prefix", "no.such.field"},
		fullFamily(),
		&model.AddressFamily{},
	)
	exp := []Change{{Parser: "maximum.prefix", Value: 5}}
	if !reflect.DeepEqual(got, exp) {
		t.Errorf("Compare() = %+v, want %+v", got, exp)
	}
}
