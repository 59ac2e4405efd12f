package plan

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml; anything else is an error.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported plan format %q", raw)
	}
}

// Ext is the file extension the engine expects for the format.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Marshal encodes the plan document. Map keys are emitted sorted, so equal
// plans produce byte-identical documents.
func Marshal(p Plan, format Format) ([]byte, error) {
	if p.TestSteps == nil {
		p.TestSteps = []Step{}
	}
	if p.Config.Variables == nil {
		p.Config.Variables = map[string]any{}
	}
	switch format {
	case FormatYAML:
		return yaml.Marshal(p)
	case FormatJSON, "":
		return json.Marshal(p)
	default:
		return nil, fmt.Errorf("unsupported plan format %q", format)
	}
}

func Unmarshal(data []byte, format Format) (Plan, error) {
	var p Plan
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &p)
	case FormatJSON, "":
		err = json.Unmarshal(data, &p)
	default:
		err = fmt.Errorf("unsupported plan format %q", format)
	}
	if err != nil {
		return Plan{}, err
	}
	for i := range p.TestSteps {
		p.TestSteps[i].Kind = p.TestSteps[i].inferKind()
	}
	return p, nil
}
