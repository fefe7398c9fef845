package device

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/newtron-network/xrvrf/pkg/util"
)

func TestHostPort(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"xr1", "xr1:22"},
		{"10.0.0.1", "10.0.0.1:22"},
		{"10.0.0.1:2222", "10.0.0.1:2222"},
		{"::1", "[::1]:22"},
		{"[::1]:830", "[::1]:830"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := hostPort(tt.host); got != tt.want {
				t.Errorf("hostPort(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}

func TestConfigScript(t *testing.T) {
	got := configScript([]string{"vrf A address-family ipv4 unicast", "maximum prefix 100"})
	want := "configure terminal\n" +
		"vrf A address-family ipv4 unicast\n" +
		"maximum prefix 100\n" +
		"commit\nend\nexit\n"
	if got != want {
		t.Errorf("configScript() = %q, want %q", got, want)
	}
}

func TestCheckOutput(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		wantErr string
	}{
		{
			name:   "clean commit",
			output: "RP/0/RP0/CPU0:xr1(config)#commit\nRP/0/RP0/CPU0:xr1(config)#end\n",
		},
		{
			name:    "invalid input",
			output:  "RP/0/RP0/CPU0:xr1(config-vrf-af)#maximum prefix abc\n                                   ^\n% Invalid input detected at '^' marker.\n",
			wantErr: "% Invalid input detected",
		},
		{
			name:    "failed commit",
			output:  "  % Failed to commit one or more configuration items during a pseudo-atomic operation.\n",
			wantErr: "% Failed to commit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkOutput(tt.output)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("checkOutput() = %v, want nil", err)
				}
				return
			}
			var ce *CommitError
			if !errors.As(err, &ce) {
				t.Fatalf("checkOutput() = %v, want *CommitError", err)
			}
			if !strings.Contains(ce.Line, tt.wantErr) {
				t.Errorf("CommitError.Line = %q, want it to contain %q", ce.Line, tt.wantErr)
			}
			if ce.Output != tt.output {
				t.Error("CommitError.Output should carry the full session output")
			}
		})
	}
}

func TestClient_NotConnected(t *testing.T) {
	c := &Client{}

	if _, err := c.ExecCommand(ShowVRFCommand); !errors.Is(err, util.ErrNotConnected) {
		t.Errorf("ExecCommand() error = %v, want ErrNotConnected", err)
	}
	if err := c.Apply(context.Background(), []string{"vrf A"}); !errors.Is(err, util.ErrNotConnected) {
		t.Errorf("Apply() error = %v, want ErrNotConnected", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}
