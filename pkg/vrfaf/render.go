package vrfaf

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/newtron-network/xrvrf/pkg/util"
)

// RenderData is what a command template can reference.
type RenderData struct {
	Name  string
	AFI   string
	SAFI  string
	Value any
}

// Renderer produces the device command for one parser.
type Renderer interface {
	Render(parser string, data RenderData, negate bool) (string, error)
}

const afSuffix = `{{.AFI}}{{with .SAFI}} {{.}}{{end}}`

// commandTemplates holds the IOS-XR command for every parser.
var commandTemplates = map[string]string{
	ParserName:            `vrf {{.Name}}`,
	ParserAddressFamilies: `vrf {{.Name}} address-family ` + afSuffix,
	ParserAddressFamily:   `address-family ` + afSuffix,

	"export.route_policy":                `export route-policy {{.Value}}`,
	"export.route_target":                `export route-target {{.Value}}`,
	"export.to.default_vrf.route_policy": `export to default-vrf route-policy {{.Value}}`,
	"export.to.vrf.allow_imported_vpn":   `export to vrf allow-imported-vpn`,

	"import_config.route_target":                               `import route-target {{.Value}}`,
	"import_config.route_policy":                               `import route-policy {{.Value}}`,
	"import_config.from_config.bridge_domain.advertise_as_vpn": `import from bridge-domain advertise-as-vpn`,
	"import_config.from_config.default_vrf.route_policy":       `import from default-vrf route-policy {{.Value}}`,
	"import_config.from_config.vrf.advertise_as_vpn":           `import from vrf advertise-as-vpn`,

	"maximum.prefix": `maximum prefix {{.Value}}`,
}

// TemplateRenderer renders commands from text/template definitions keyed
// by parser name. Negated commands are prefixed with "no".
type TemplateRenderer struct {
	templates map[string]*template.Template
}

// NewTemplateRenderer compiles the IOS-XR command templates.
func NewTemplateRenderer() *TemplateRenderer {
	r := &TemplateRenderer{templates: make(map[string]*template.Template, len(commandTemplates))}
	for parser, text := range commandTemplates {
		r.templates[parser] = template.Must(template.New(parser).Option("missingkey=error").Parse(text))
	}
	return r
}

// Render implements Renderer.
func (r *TemplateRenderer) Render(parser string, data RenderData, negate bool) (string, error) {
	t, ok := r.templates[parser]
	if !ok {
		return "", fmt.Errorf("%w: %s", util.ErrUnknownParser, parser)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", parser, err)
	}
	cmd := strings.TrimSpace(sb.String())
	if negate {
		cmd = "no " + cmd
	}
	return cmd, nil
}
