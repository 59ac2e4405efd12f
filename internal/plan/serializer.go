package plan

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"apiflow/internal/scenario"
)

// Serialize builds an environment-agnostic plan. Templates inside step
// configs are preserved; they are resolved later by Bind.
func Serialize(name string, steps []scenario.Step) Plan {
	p := Plan{
		Config:    Config{Name: name, Variables: map[string]any{}},
		TestSteps: make([]Step, 0, len(steps)),
	}
	for _, step := range steps {
		p.TestSteps = append(p.TestSteps, serializeStep(step))
	}
	return p
}

func serializeStep(step scenario.Step) Step {
	switch {
	case step.Kind.IsRequest():
		return requestStep(step)
	case step.Kind == scenario.NodeTypeWait:
		return waitStep(step)
	default:
		return Step{
			Kind:     StepRaw,
			Name:     step.Name,
			Type:     string(step.Kind),
			Raw:      maps.Clone(step.Config),
			Extract:  maps.Clone(step.Extract),
			Validate: slices.Clone(step.Validate),
		}
	}
}

func requestStep(step scenario.Step) Step {
	method := strings.ToUpper(stringValue(step.Config["method"]))
	if method == "" {
		method = "GET"
	}
	body, ok := step.Config["body"]
	if !ok {
		body = step.Config["json"]
	}
	return Step{
		Kind: StepRequest,
		Name: step.Name,
		Request: &RequestSpec{
			Method:  method,
			URL:     stringValue(step.Config["url"]),
			Headers: stringMap(step.Config["headers"]),
			JSON:    body,
		},
		Extract:  maps.Clone(step.Extract),
		Validate: slices.Clone(step.Validate),
	}
}

func waitStep(step scenario.Step) Step {
	var ms float64
	for _, key := range []string{"duration", "ms", "milliseconds"} {
		if v, ok := numberValue(step.Config[key]); ok {
			ms = v
			break
		}
	}
	return Step{
		Kind:      StepWait,
		Name:      step.Name,
		Variables: map[string]any{"sleep_time": ms / 1000.0},
		Testcase:  WaitTestcase,
	}
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func stringMap(v any) map[string]string {
	switch m := v.(type) {
	case map[string]string:
		return maps.Clone(m)
	case map[string]any:
		out := make(map[string]string, len(m))
		for key, item := range m {
			out[key] = stringValue(item)
		}
		return out
	default:
		return nil
	}
}

func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
