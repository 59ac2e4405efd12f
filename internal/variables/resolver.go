// Package variables expands {{name}} references and {{$func(args)}} calls
// inside scenario templates.
//
// Values are looked up in caller overrides first, then in the environment.
// Synthetic functions are evaluated independently of both layers. Resolution
// never fails: anything that cannot be expanded is left in place so the
// engine's diagnostics still show the original token.
package variables

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

const DefaultMaxPasses = 10

var (
	functionToken  = regexp.MustCompile(`\{\{\s*\$([A-Za-z_]\w*)\(([^(){}]*)\)\s*\}\}`)
	referenceToken = regexp.MustCompile(`\{\{\s*([A-Za-z_][\w.\-]*)\s*\}\}`)
)

// Scope holds the layered variable sources for one resolution call.
type Scope struct {
	Overrides   map[string]any
	Environment map[string]any
	MaxPasses   int
	Functions   Registry
}

// Resolve expands template against env and overrides, repeating up to
// maxPasses times so that values containing further tokens are expanded too.
// It returns the expanded text and the sorted names that were substituted.
func Resolve(template string, env, overrides map[string]any, maxPasses int) (string, []string) {
	scope := Scope{Overrides: overrides, Environment: env, MaxPasses: maxPasses}
	return scope.Resolve(template)
}

func (s Scope) Resolve(template string) (string, []string) {
	used := make(map[string]struct{})
	return s.resolve(template, used), sortedNames(used)
}

// ResolveValue walks maps and slices and resolves every string leaf.
// Non-string scalars are returned unchanged.
func (s Scope) ResolveValue(value any) (any, []string) {
	used := make(map[string]struct{})
	return s.resolveValue(value, used), sortedNames(used)
}

func (s Scope) resolveValue(value any, used map[string]struct{}) any {
	switch v := value.(type) {
	case string:
		return s.resolve(v, used)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = s.resolveValue(item, used)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(v))
		for key, item := range v {
			out[key] = s.resolve(item, used)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = s.resolveValue(item, used)
		}
		return out
	case []string:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = s.resolve(item, used)
		}
		return out
	default:
		return value
	}
}

func (s Scope) resolve(template string, used map[string]struct{}) string {
	passes := s.MaxPasses
	if passes <= 0 {
		passes = DefaultMaxPasses
	}
	functions := s.Functions
	if functions == nil {
		functions = builtins
	}

	current := template
	for i := 0; i < passes; i++ {
		next := expandFunctions(current, functions, used)
		next = s.expandReferences(next, used)
		if next == current {
			break
		}
		current = next
	}
	return current
}

func expandFunctions(text string, functions Registry, used map[string]struct{}) string {
	return functionToken.ReplaceAllStringFunc(text, func(token string) string {
		match := functionToken.FindStringSubmatch(token)
		fn, ok := functions[match[1]]
		if !ok {
			return token
		}
		result, err := fn(parseArgs(match[2]))
		if err != nil {
			return token
		}
		used[match[1]] = struct{}{}
		return result
	})
}

func (s Scope) expandReferences(text string, used map[string]struct{}) string {
	return referenceToken.ReplaceAllStringFunc(text, func(token string) string {
		name := referenceToken.FindStringSubmatch(token)[1]
		value, ok := s.lookup(name)
		if !ok {
			return token
		}
		used[name] = struct{}{}
		return value
	})
}

func (s Scope) lookup(name string) (string, bool) {
	if value, ok := s.Overrides[name]; ok {
		return Stringify(value), true
	}
	if value, ok := s.Environment[name]; ok {
		return Stringify(value), true
	}
	return "", false
}

// Stringify renders a variable value the way it is spliced into templates.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case map[string]any, []any, map[string]string, []string:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
