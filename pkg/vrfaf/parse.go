package vrfaf

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/newtron-network/xrvrf/pkg/model"
	"github.com/newtron-network/xrvrf/pkg/util"
)

var (
	vrfLineRe     = regexp.MustCompile(`^vrf (\S+)$`)
	afLineRe      = regexp.MustCompile(`^address-family (ipv4|ipv6)(?: (\S+))?$`)
	rtBlockLineRe = regexp.MustCompile(`^(import|export) route-target$`)
)

// leafLines maps running-config lines under an address family to field
// paths. A pattern without a capture group sets a boolean leaf.
var leafLines = []struct {
	path string
	re   *regexp.Regexp
}{
	{"export.route_policy", regexp.MustCompile(`^export route-policy (\S+)$`)},
	{"export.route_target", regexp.MustCompile(`^export route-target (\S+)$`)},
	{"export.to.default_vrf.route_policy", regexp.MustCompile(`^export to default-vrf route-policy (\S+)$`)},
	{"export.to.vrf.allow_imported_vpn", regexp.MustCompile(`^export to vrf allow-imported-vpn$`)},
	{"import_config.route_target", regexp.MustCompile(`^import route-target (\S+)$`)},
	{"import_config.route_policy", regexp.MustCompile(`^import route-policy (\S+)$`)},
	{"import_config.from_config.bridge_domain.advertise_as_vpn", regexp.MustCompile(`^import from bridge-domain advertise-as-vpn$`)},
	{"import_config.from_config.default_vrf.route_policy", regexp.MustCompile(`^import from default-vrf route-policy (\S+)$`)},
	{"import_config.from_config.vrf.advertise_as_vpn", regexp.MustCompile(`^import from vrf advertise-as-vpn$`)},
	{"maximum.prefix", regexp.MustCompile(`^maximum prefix (\d+)(?: \d+)?$`)},
}

var rtBlockPaths = map[string]string{
	"import": "import_config.route_target",
	"export": "export.route_target",
}

// ParseRunningConfig reads "show running-config vrf" output into VRF
// records. Lines outside vrf and address-family blocks are ignored.
// Route targets may be given inline or as an indented block; only the
// first target of a block is kept.
func ParseRunningConfig(text string) ([]model.VRF, error) {
	var vrfs []model.VRF
	curVRF, curAF := -1, -1
	rtPath, rtTaken := "", false

	family := func() *model.AddressFamily {
		return &vrfs[curVRF].AddressFamilies[curAF]
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := strings.TrimRight(scanner.Text(), " \r")
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		indent := len(raw) - len(strings.TrimLeft(raw, " "))

		switch {
		case indent == 0:
			curVRF, curAF, rtPath = -1, -1, ""
			if m := vrfLineRe.FindStringSubmatch(line); m != nil {
				vrfs = append(vrfs, model.VRF{Name: m[1]})
				curVRF = len(vrfs) - 1
			}

		case curVRF < 0:

		case indent == 1:
			curAF, rtPath = -1, ""
			if m := afLineRe.FindStringSubmatch(line); m != nil {
				v := &vrfs[curVRF]
				v.AddressFamilies = append(v.AddressFamilies, model.AddressFamily{AFI: m[1], SAFI: m[2]})
				curAF = len(v.AddressFamilies) - 1
			}

		case curAF < 0:

		case indent == 2:
			rtPath = ""
			if m := rtBlockLineRe.FindStringSubmatch(line); m != nil {
				rtPath, rtTaken = rtBlockPaths[m[1]], false
				continue
			}
			if err := parseLeaf(family(), line); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}

		case rtPath != "" && line != "!":
			if rtTaken {
				util.WithVRF(vrfs[curVRF].Name).Debugf("ignoring additional route-target %s", line)
				continue
			}
			if err := SetField(family(), rtPath, line); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			rtTaken = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading running config: %w", err)
	}
	return vrfs, nil
}

func parseLeaf(af *model.AddressFamily, line string) error {
	for _, l := range leafLines {
		m := l.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v := "true"
		if len(m) > 1 {
			v = m[1]
		}
		return SetField(af, l.path, v)
	}
	return nil
}
