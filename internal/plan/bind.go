package plan

import (
	"maps"
	"sort"

	"apiflow/internal/variables"
)

// Bind resolves every template in p against scope and attaches the
// environment's base URL and default headers. Step headers win over the
// environment defaults. The returned names are every variable or function
// substituted anywhere in the plan, sorted.
func Bind(p Plan, scope variables.Scope, headers map[string]string, baseURL string) (Plan, []string) {
	used := make(map[string]struct{})
	resolve := func(v any) any {
		out, names := scope.ResolveValue(v)
		for _, name := range names {
			used[name] = struct{}{}
		}
		return out
	}
	resolveString := func(s string) string {
		return resolve(s).(string)
	}

	globals := make(map[string]any, len(scope.Environment)+len(scope.Overrides))
	maps.Copy(globals, scope.Environment)
	maps.Copy(globals, scope.Overrides)

	bound := Plan{
		Config: Config{
			Name:      p.Config.Name,
			Variables: resolve(globals).(map[string]any),
			BaseURL:   resolveString(baseURL),
		},
		TestSteps: make([]Step, 0, len(p.TestSteps)),
	}
	for name, value := range p.Config.Variables {
		if _, ok := bound.Config.Variables[name]; !ok {
			bound.Config.Variables[name] = resolve(value)
		}
	}

	for _, step := range p.TestSteps {
		out := step
		if step.Request != nil {
			merged := make(map[string]string, len(headers)+len(step.Request.Headers))
			maps.Copy(merged, headers)
			maps.Copy(merged, step.Request.Headers)
			var requestHeaders map[string]string
			if len(merged) > 0 {
				requestHeaders = resolve(merged).(map[string]string)
			}
			out.Request = &RequestSpec{
				Method:  resolveString(step.Request.Method),
				URL:     resolveString(step.Request.URL),
				Headers: requestHeaders,
				JSON:    resolve(step.Request.JSON),
			}
		}
		if step.Extract != nil {
			out.Extract = resolve(step.Extract).(map[string]string)
		}
		if step.Validate != nil {
			out.Validate = resolve(step.Validate).([]any)
		}
		if step.Raw != nil {
			out.Raw = resolve(step.Raw).(map[string]any)
		}
		if step.Variables != nil {
			out.Variables = maps.Clone(step.Variables)
		}
		bound.TestSteps = append(bound.TestSteps, out)
	}

	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}
	sort.Strings(names)
	return bound, names
}
