package facts

import (
	"context"
	"fmt"

	"github.com/newtron-network/xrvrf/pkg/device"
	"github.com/newtron-network/xrvrf/pkg/model"
	"github.com/newtron-network/xrvrf/pkg/vrfaf"
)

// Commander runs a show command on a device.
type Commander interface {
	ExecCommand(cmd string) (string, error)
}

// DeviceSource gathers facts from the device's running configuration.
type DeviceSource struct {
	Device Commander
}

// Gather implements vrfaf.FactSource.
func (s *DeviceSource) Gather(ctx context.Context) ([]model.VRF, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := s.Device.ExecCommand(device.ShowVRFCommand)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", device.ShowVRFCommand, err)
	}
	return vrfaf.ParseRunningConfig(out)
}
