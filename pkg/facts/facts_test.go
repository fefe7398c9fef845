package facts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/newtron-network/xrvrf/pkg/model"
)

const runningConfig = `vrf VRF4
 address-family ipv4 unicast
  import route-target
   10.1.3.4:400
  !
  export route-policy rcp
  maximum prefix 23
 !
!
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func vrf4() []model.VRF {
	return []model.VRF{{
		Name: "VRF4",
		AddressFamilies: []model.AddressFamily{{
			AFI:          "ipv4",
			SAFI:         "unicast",
			Export:       &model.Export{RoutePolicy: model.String("rcp")},
			ImportConfig: &model.Import{RouteTarget: model.String("10.1.3.4:400")},
			Maximum:      &model.Maximum{Prefix: model.Int(23)},
		}},
	}}
}

func TestFileSource_Gather(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml list",
			file: "have.yaml",
			content: `- name: VRF4
  address_families:
    - afi: ipv4
      safi: unicast
      export:
        route_policy: rcp
      import_config:
        route_target: 10.1.3.4:400
      maximum:
        prefix: 23
`,
		},
		{
			name: "yaml config key",
			file: "have.yml",
			content: `config:
  - name: VRF4
    address_families:
      - afi: ipv4
        safi: unicast
        export: {route_policy: rcp}
        import_config: {route_target: "10.1.3.4:400"}
        maximum: {prefix: 23}
`,
		},
		{
			name:    "json",
			file:    "have.json",
			content: `[{"name":"VRF4","address_families":[{"afi":"ipv4","safi":"unicast","export":{"route_policy":"rcp"},"import_config":{"route_target":"10.1.3.4:400"},"maximum":{"prefix":23}}]}]`,
		},
		{
			name:    "running config",
			file:    "running.cfg",
			content: runningConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &FileSource{Path: writeFile(t, tt.file, tt.content)}
			got, err := src.Gather(context.Background())
			if err != nil {
				t.Fatalf("Gather() error = %v", err)
			}
			if !reflect.DeepEqual(got, vrf4()) {
				t.Errorf("Gather() = %+v, want %+v", got, vrf4())
			}
		})
	}
}

func TestFileSource_Errors(t *testing.T) {
	if _, err := (&FileSource{Path: "/nonexistent/have.yaml"}).Gather(context.Background()); err == nil {
		t.Error("Gather() on missing file should fail")
	}

	path := writeFile(t, "bad.yaml", "- name: A\n  adress_families: []\n")
	_, err := (&FileSource{Path: path}).Gather(context.Background())
	if err == nil || !strings.Contains(err.Error(), "adress_families") {
		t.Errorf("Gather() error = %v, want unknown field error", err)
	}
}

func TestDecodeVRFs_Empty(t *testing.T) {
	got, err := DecodeVRFs([]byte(""))
	if err != nil || got != nil {
		t.Errorf("DecodeVRFs(\"\") = %v, %v; want nil, nil", got, err)
	}
}

type fakeCommander struct {
	output string
	err    error
	cmds   []string
}

func (f *fakeCommander) ExecCommand(cmd string) (string, error) {
	f.cmds = append(f.cmds, cmd)
	return f.output, f.err
}

func TestDeviceSource_Gather(t *testing.T) {
	dev := &fakeCommander{output: runningConfig}
	got, err := (&DeviceSource{Device: dev}).Gather(context.Background())
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if !reflect.DeepEqual(got, vrf4()) {
		t.Errorf("Gather() = %+v, want %+v", got, vrf4())
	}
	if len(dev.cmds) != 1 || dev.cmds[0] != "show running-config vrf" {
		t.Errorf("commands sent = %v", dev.cmds)
	}

	dev.err = errors.New("session closed")
	if _, err := (&DeviceSource{Device: dev}).Gather(context.Background()); err == nil {
		t.Error("Gather() should surface exec errors")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (&DeviceSource{Device: dev}).Gather(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Gather() with cancelled context = %v", err)
	}
}

func TestEncodeDecodeEntries(t *testing.T) {
	vrfs := []model.VRF{
		{Name: "EMPTY"},
		{
			Name: "VRF4",
			AddressFamilies: []model.AddressFamily{
				{AFI: "ipv4", SAFI: "unicast", Maximum: &model.Maximum{Prefix: model.Int(23)}},
				{
					AFI: "ipv6",
					Export: &model.Export{
						To: &model.ExportTo{VRF: &model.AllowImportedVPN{AllowImportedVPN: model.Bool(true)}},
					},
				},
				{AFI: "ipv6", SAFI: "multicast"},
			},
		},
	}

	entries := encodeEntries("xr1", vrfs)

	wantKeys := map[string]map[string]string{
		"VRF_ADDRESS_FAMILY|xr1|EMPTY":               {"NULL": "NULL"},
		"VRF_ADDRESS_FAMILY|xr1|VRF4|ipv4|unicast":   {"maximum.prefix": "23"},
		"VRF_ADDRESS_FAMILY|xr1|VRF4|ipv6":           {"export.to.vrf.allow_imported_vpn": "true"},
		"VRF_ADDRESS_FAMILY|xr1|VRF4|ipv6|multicast": {"NULL": "NULL"},
	}
	if !reflect.DeepEqual(entries, wantKeys) {
		t.Fatalf("encodeEntries() = %v, want %v", entries, wantKeys)
	}

	got, err := decodeEntries("xr1", entries)
	if err != nil {
		t.Fatalf("decodeEntries() error = %v", err)
	}
	if !reflect.DeepEqual(got, vrfs) {
		t.Errorf("decodeEntries() = %+v, want %+v", got, vrfs)
	}
}

func TestDecodeEntries_Errors(t *testing.T) {
	tests := []struct {
		name   string
		hashes map[string]map[string]string
	}{
		{"too many segments", map[string]map[string]string{"VRF_ADDRESS_FAMILY|xr1|A|ipv4|unicast|x": {}}},
		{"empty vrf", map[string]map[string]string{"VRF_ADDRESS_FAMILY|xr1||ipv4": {}}},
		{"unknown field", map[string]map[string]string{"VRF_ADDRESS_FAMILY|xr1|A|ipv4": {"rd": "1:1"}}},
		{"bad prefix", map[string]map[string]string{"VRF_ADDRESS_FAMILY|xr1|A|ipv4": {"maximum.prefix": "many"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeEntries("xr1", tt.hashes); err == nil {
				t.Error("decodeEntries() should fail")
			}
		})
	}
}

func TestDecodeEntries_OtherDevice(t *testing.T) {
	got, err := decodeEntries("xr1", map[string]map[string]string{
		"VRF_ADDRESS_FAMILY|xr2|A|ipv4": {"maximum.prefix": "1"},
	})
	if err != nil || len(got) != 0 {
		t.Errorf("decodeEntries() = %v, %v; want no records", got, err)
	}
}
