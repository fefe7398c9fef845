// Package model defines the VRF address-family configuration records
// exchanged between fact sources and the reconciler.
package model

import (
	"fmt"

	"github.com/newtron-network/xrvrf/pkg/util"
)

// Address family identifiers accepted under a VRF.
const (
	AFIIPv4 = "ipv4"
	AFIIPv6 = "ipv6"

	SAFIUnicast   = "unicast"
	SAFIMulticast = "multicast"
	SAFIFlowspec  = "flowspec"
)

// VRF is one vrf block and the address families configured under it.
type VRF struct {
	Name            string          `json:"name" yaml:"name"`
	AddressFamilies []AddressFamily `json:"address_families,omitempty" yaml:"address_families,omitempty"`
}

// AddressFamily is one address-family block within a VRF.
// SAFI may be empty; that is a distinct key from any named SAFI.
type AddressFamily struct {
	AFI          string   `json:"afi" yaml:"afi"`
	SAFI         string   `json:"safi,omitempty" yaml:"safi,omitempty"`
	Export       *Export  `json:"export,omitempty" yaml:"export,omitempty"`
	ImportConfig *Import  `json:"import_config,omitempty" yaml:"import_config,omitempty"`
	Maximum      *Maximum `json:"maximum,omitempty" yaml:"maximum,omitempty"`
}

// Export holds the export settings of an address family.
type Export struct {
	RoutePolicy *string   `json:"route_policy,omitempty" yaml:"route_policy,omitempty"`
	RouteTarget *string   `json:"route_target,omitempty" yaml:"route_target,omitempty"`
	To          *ExportTo `json:"to,omitempty" yaml:"to,omitempty"`
}

// ExportTo holds "export to ..." settings.
type ExportTo struct {
	DefaultVRF *RoutePolicyRef   `json:"default_vrf,omitempty" yaml:"default_vrf,omitempty"`
	VRF        *AllowImportedVPN `json:"vrf,omitempty" yaml:"vrf,omitempty"`
}

// Import holds the import settings of an address family.
type Import struct {
	RoutePolicy *string     `json:"route_policy,omitempty" yaml:"route_policy,omitempty"`
	RouteTarget *string     `json:"route_target,omitempty" yaml:"route_target,omitempty"`
	FromConfig  *ImportFrom `json:"from_config,omitempty" yaml:"from_config,omitempty"`
}

// ImportFrom holds "import from ..." settings.
type ImportFrom struct {
	BridgeDomain *AdvertiseAsVPN `json:"bridge_domain,omitempty" yaml:"bridge_domain,omitempty"`
	DefaultVRF   *RoutePolicyRef `json:"default_vrf,omitempty" yaml:"default_vrf,omitempty"`
	VRF          *AdvertiseAsVPN `json:"vrf,omitempty" yaml:"vrf,omitempty"`
}

// RoutePolicyRef names a route policy.
type RoutePolicyRef struct {
	RoutePolicy *string `json:"route_policy,omitempty" yaml:"route_policy,omitempty"`
}

// AllowImportedVPN toggles re-export of imported VPN routes.
type AllowImportedVPN struct {
	AllowImportedVPN *bool `json:"allow_imported_vpn,omitempty" yaml:"allow_imported_vpn,omitempty"`
}

// AdvertiseAsVPN toggles advertising imported routes as VPN routes.
type AdvertiseAsVPN struct {
	AdvertiseAsVPN *bool `json:"advertise_as_vpn,omitempty" yaml:"advertise_as_vpn,omitempty"`
}

// Maximum holds the prefix limit.
type Maximum struct {
	Prefix *int `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// AFKey is the natural key of an address family within a VRF.
type AFKey struct {
	AFI  string
	SAFI string
}

// Key returns the (afi, safi) key of the address family.
func (af *AddressFamily) Key() AFKey {
	return AFKey{AFI: af.AFI, SAFI: af.SAFI}
}

func (k AFKey) String() string {
	if k.SAFI == "" {
		return k.AFI
	}
	return k.AFI + " " + k.SAFI
}

// String returns a pointer to s. Used to build records in code and tests.
func String(s string) *string { return &s }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to n.
func Int(n int) *int { return &n }

var validSAFI = map[string]bool{
	"":            true,
	SAFIUnicast:   true,
	SAFIMulticast: true,
	SAFIFlowspec:  true,
}

// Validate checks the records for missing names and unsupported
// address family identifiers.
func Validate(vrfs []VRF) error {
	var vb util.ValidationBuilder
	for i := range vrfs {
		v := &vrfs[i]
		vb.Add(v.Name != "", fmt.Sprintf("config[%d]: name is required", i))
		for j := range v.AddressFamilies {
			af := &v.AddressFamilies[j]
			where := fmt.Sprintf("vrf %s address_families[%d]", v.Name, j)
			switch af.AFI {
			case AFIIPv4, AFIIPv6:
			case "":
				vb.AddErrorf("%s: afi is required", where)
			default:
				vb.AddErrorf("%s: unsupported afi %q", where, af.AFI)
			}
			vb.Add(validSAFI[af.SAFI], fmt.Sprintf("%s: unsupported safi %q", where, af.SAFI))
			if af.Maximum != nil && af.Maximum.Prefix != nil && *af.Maximum.Prefix < 0 {
				vb.AddErrorf("%s: maximum prefix must not be negative", where)
			}
		}
	}
	return vb.Build()
}
