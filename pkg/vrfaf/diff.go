package vrfaf

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/newtron-network/xrvrf/pkg/model"
)

// TextDiff renders have and want as YAML and returns a unified diff of the
// two. An empty string means both sides render identically.
func TextDiff(have, want []model.VRF) (string, error) {
	haveText, err := yaml.Marshal(have)
	if err != nil {
		return "", fmt.Errorf("marshaling have: %w", err)
	}
	wantText, err := yaml.Marshal(want)
	if err != nil {
		return "", fmt.Errorf("marshaling want: %w", err)
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(haveText)),
		B:        difflib.SplitLines(string(wantText)),
		FromFile: "have",
		ToFile:   "want",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("generating diff: %w", err)
	}
	return text, nil
}
