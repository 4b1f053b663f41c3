// Package templates renders deployment configuration files from the RDB
// build record.
package templates

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/cgsn-mio/moorproc/internal/adapter/rdb"
)

// mooringTemplate is the stock deployment configuration skeleton used when
// no template file is given.
//
//go:embed mooring.yaml.tmpl
var mooringTemplate string

// Render populates a deployment configuration template with the RDB build
// record. templatePath may be empty, selecting the stock mooring skeleton.
// The rendered output is validated and re-emitted as normalized YAML.
func Render(templatePath string, dep *rdb.Deployment) ([]byte, error) {
	text := mooringTemplate
	name := "mooring.yaml.tmpl"
	if templatePath != "" {
		raw, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("load template: %w", err)
		}
		text = string(raw)
		name = templatePath
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, dep); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	// round-trip through the YAML parser so malformed templates fail here
	// instead of at processing time
	var doc map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		return nil, fmt.Errorf("rendered configuration is not valid YAML: %w", err)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode configuration: %w", err)
	}
	return out, nil
}
