// Package facts provides sources of current VRF address-family
// configuration: fact files, a Redis fact cache, and the device itself.
package facts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/xrvrf/pkg/model"
	"github.com/newtron-network/xrvrf/pkg/vrfaf"
)

// FileSource reads facts from a file. Files ending in .cfg or .txt hold
// running-config text; anything else is a YAML or JSON list of VRFs.
type FileSource struct {
	Path string
}

// Gather implements vrfaf.FactSource.
func (s *FileSource) Gather(ctx context.Context) ([]model.VRF, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading facts %s: %w", s.Path, err)
	}

	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".cfg", ".txt":
		vrfs, err := vrfaf.ParseRunningConfig(string(data))
		if err != nil {
			return nil, fmt.Errorf("parsing running config %s: %w", s.Path, err)
		}
		return vrfs, nil
	}

	vrfs, err := DecodeVRFs(data)
	if err != nil {
		return nil, fmt.Errorf("parsing facts %s: %w", s.Path, err)
	}
	return vrfs, nil
}

// configFile is the document form with the list under a "config" key.
type configFile struct {
	Config []model.VRF `yaml:"config"`
}

// DecodeVRFs decodes a YAML or JSON document holding either a list of VRF
// records or a mapping with the list under "config". Unknown keys are
// rejected.
func DecodeVRFs(data []byte) ([]model.VRF, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if root.Content[0].Kind == yaml.MappingNode {
		var doc configFile
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Config, nil
	}

	var vrfs []model.VRF
	if err := dec.Decode(&vrfs); err != nil {
		return nil, err
	}
	return vrfs, nil
}
